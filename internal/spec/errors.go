package spec

// ErrorCode categorizes loader and parse errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError      ErrorCode = "InputError"
	NetworkError    ErrorCode = "NetworkError"
	ParseError      ErrorCode = "ParseError"
	ConversionError ErrorCode = "ConversionError"
)

// SpecError is a structured error with optional location and JSON Pointer.
type SpecError struct {
	Code        ErrorCode
	Message     string
	Location    string // file path or URL
	JSONPointer string // e.g. "#/paths/~1pets/get"
	Cause       error
}

func (e *SpecError) Error() string { return e.Message }
func (e *SpecError) Unwrap() error { return e.Cause }

// withLocation returns err with Location set when it is a *SpecError
// that does not carry one yet.
func withLocation(err error, location string) error {
	if se, ok := err.(*SpecError); ok && se.Location == "" {
		cp := *se
		cp.Location = location
		return &cp
	}
	return err
}
