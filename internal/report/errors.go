package report

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

var (
	// ErrCarlistNotFound indicates a drill-down into a carlist no row
	// belongs to.
	ErrCarlistNotFound = constError("carlist not found")
)
