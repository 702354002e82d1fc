// Package validation is the static gate in front of script execution. It
// parses a script, counts references to deny-listed names and turns the
// findings into exactly one error.
package validation

import "fmt"

// Kind tags a violation. The numeric values are the tie-break ranks used
// when choosing which violation to report.
type Kind int

const (
	FunctionCall      Kind = 0
	InstanceCreation  Kind = 1
	PropertyReference Kind = 2
)

// Rank returns the numeric encoding compared by SynthesizeError.
func (k Kind) Rank() int { return int(k) }

func (k Kind) String() string {
	switch k {
	case FunctionCall:
		return "function_call"
	case InstanceCreation:
		return "instance_creation"
	case PropertyReference:
		return "property_reference"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText lets violations serialize with readable kinds.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Violation is one (kind, keyword, count) finding of a single scan.
type Violation struct {
	Kind    Kind   `json:"kind"`
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// Err translates the violation into its taxonomy error.
func (v Violation) Err() error {
	switch v.Kind {
	case FunctionCall:
		return &DisallowedFunctionCallError{Keyword: v.Keyword}
	case InstanceCreation:
		return &DisallowedInstanceCreationError{Keyword: v.Keyword}
	default:
		return &DisallowedPropertyReferencingError{Keyword: v.Keyword}
	}
}
