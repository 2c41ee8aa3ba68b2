package logging

// Standardized field keys shared across components so log consumers can rely
// on stable names.
const (
	FieldComponent = "component"
	FieldEventType = "event_type"
	FieldErrorHint = "error_hint"
	FieldEndpoint  = "endpoint_id"
	FieldDevice    = "device_name"
	FieldProcess   = "process_name"
	FieldPID       = "pid"
)
