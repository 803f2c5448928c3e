package diagnostics

// ScriptError is the single domain error type that runtime failures travel
// through. The compiler's location wrapper attaches the statement span when
// an error propagates without one.
type ScriptError struct {
	Code     Code
	Args     []any
	Message  string
	Location *Location
}

// Errorf builds a ScriptError from a code and its positional args, formatted
// with the default English template.
func Errorf(code Code, args ...any) *ScriptError {
	return &ScriptError{
		Code:    code,
		Args:    args,
		Message: FormatMessage(nil, code, args),
	}
}

func (e *ScriptError) Error() string {
	return e.Message
}

// HasLocation reports whether a source location is already attached.
func (e *ScriptError) HasLocation() bool {
	return e.Location != nil
}

// WithLocation returns the error with loc attached if it carries none;
// errors that already have a location pass through unchanged.
func (e *ScriptError) WithLocation(loc *Location) *ScriptError {
	if e.Location == nil {
		e.Location = loc
	}
	return e
}

// Diagnostic converts the error into an error-severity diagnostic.
func (e *ScriptError) Diagnostic() Diagnostic {
	return Diagnostic{
		Code:      e.Code,
		Severity:  Error,
		Message:   e.Message,
		Args:      e.Args,
		Location:  e.Location,
		Subsystem: e.Code.Subsystem(),
	}
}
