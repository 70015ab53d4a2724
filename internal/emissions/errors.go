package emissions

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors, comparable with errors.Is().
var (
	// ErrInvalidRange indicates a date range whose end precedes its start.
	ErrInvalidRange = constError("invalid date range")

	// ErrUnknownGranularity indicates an unrecognized period granularity.
	ErrUnknownGranularity = constError("unknown period granularity")
)
