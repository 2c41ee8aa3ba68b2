// Package ipc exposes daemon control over JSON-RPC on a Unix domain socket.
// The CLI is the only intended client; the wire types mirror the daemon's
// public surface.
package ipc
