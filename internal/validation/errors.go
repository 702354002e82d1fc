package validation

import (
	"errors"
	"fmt"
)

// ErrDisallowed matches every error the validator synthesizes:
// errors.Is(err, ErrDisallowed) holds for all four kinds.
var ErrDisallowed = errors.New("disallowed code")

// DisallowedFunctionCallError reports a call to a deny-listed function
type DisallowedFunctionCallError struct {
	Keyword string
}

func (e *DisallowedFunctionCallError) Error() string {
	return fmt.Sprintf("Calling the '%s' is not allowed", e.Keyword)
}

func (e *DisallowedFunctionCallError) Name() string         { return "DisallowedFunctionCallError" }
func (e *DisallowedFunctionCallError) Is(target error) bool { return target == ErrDisallowed }

// DisallowedInstanceCreationError reports new X() for a deny-listed X
type DisallowedInstanceCreationError struct {
	Keyword string
}

func (e *DisallowedInstanceCreationError) Error() string {
	return fmt.Sprintf("Creation of an instance of '%s' is not allowed", e.Keyword)
}

func (e *DisallowedInstanceCreationError) Name() string         { return "DisallowedInstanceCreationError" }
func (e *DisallowedInstanceCreationError) Is(target error) bool { return target == ErrDisallowed }

// DisallowedPropertyReferencingError reports a bare reference to a deny-listed name
type DisallowedPropertyReferencingError struct {
	Keyword string
}

func (e *DisallowedPropertyReferencingError) Error() string {
	return fmt.Sprintf("Referencing the '%s' property is not allowed", e.Keyword)
}

func (e *DisallowedPropertyReferencingError) Name() string         { return "DisallowedPropertyReferencingError" }
func (e *DisallowedPropertyReferencingError) Is(target error) bool { return target == ErrDisallowed }

// ValidationError summarizes a scan with more than one violation. Its message
// quotes a single example; it does not list every problem.
type ValidationError struct {
	Example    error
	Violations int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Contains invalid codes(such as: %s)", e.Example.Error())
}

func (e *ValidationError) Name() string         { return "ValidationError" }
func (e *ValidationError) Is(target error) bool { return target == ErrDisallowed }
func (e *ValidationError) Unwrap() error        { return e.Example }

// Named is implemented by every taxonomy error. The name is what a script
// sees as error.name.
type Named interface {
	error
	Name() string
}
