// Package journal persists applied mute transitions in a local SQLite
// database so the history command can show what the daemon changed and when.
// The schema is versioned; a mismatch asks the user to clear the journal
// rather than attempting in-place migration.
package journal
