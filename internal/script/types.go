package script

import (
	"time"
)

// Fragment is one named unit of source text. The user's own script is the
// main fragment; code received from collaborators arrives as read-only
// fragments that may not touch the transport.
type Fragment struct {
	Name           string
	Source         string
	AllowTransport bool
}

// MainFragment returns the user's editable fragment.
func MainFragment(source string) Fragment {
	return Fragment{Name: "main", Source: source, AllowTransport: true}
}

// ErrorType categorizes the failures the gate reports
type ErrorType string

const (
	ErrorTypeCompilation       ErrorType = "compilation"
	ErrorTypeExecution         ErrorType = "execution"
	ErrorTypeTimeout           ErrorType = "timeout"
	ErrorTypeSecurityViolation ErrorType = "security_violation"
	ErrorTypeInvalidSyntax     ErrorType = "invalid_syntax"
	ErrorTypeNotFound          ErrorType = "not_found"
)

// Limits bounds one execution attempt.
type Limits struct {
	// MaxExecutionTime interrupts a runaway script. Zero disables the
	// interrupt.
	MaxExecutionTime time.Duration

	// MaxCallStackSize caps recursion depth inside the runtime.
	MaxCallStackSize int
}

// ScriptError represents host-side failures with context: binding the
// namespace, compiling the wrapper or reading a fragment from disk.
type ScriptError struct {
	Type      ErrorType
	Fragment  string
	Message   string
	Cause     error
	Timestamp time.Time
}

func (e *ScriptError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ScriptError) Unwrap() error {
	return e.Cause
}

// NewScriptError creates a new ScriptError with the given parameters
func NewScriptError(errorType ErrorType, fragment, message string, cause error) *ScriptError {
	return &ScriptError{
		Type:      errorType,
		Fragment:  fragment,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}
