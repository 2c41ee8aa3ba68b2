// Package pulse implements the audio provider on top of the PulseAudio/
// PipeWire command line client.
//
// Endpoints map to sinks and sessions to sink-inputs, both read via
// `pactl --format=json list`. Mutations go through `pactl
// set-sink-input-mute` and `set-sink-input-volume`. Owning process names are
// resolved from the application.process.id property via the process table,
// falling back to the application.process.binary property for short-lived
// owners.
package pulse
