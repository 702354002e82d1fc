package validation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeError_Single(t *testing.T) {
	testCases := []struct {
		violation Violation
		wantType  error
		wantName  string
		wantMsg   string
	}{
		{
			violation: Violation{Kind: FunctionCall, Keyword: "eval", Count: 2},
			wantType:  &DisallowedFunctionCallError{},
			wantName:  "DisallowedFunctionCallError",
			wantMsg:   "Calling the 'eval' is not allowed",
		},
		{
			violation: Violation{Kind: InstanceCreation, Keyword: "WebSocket", Count: 1},
			wantType:  &DisallowedInstanceCreationError{},
			wantName:  "DisallowedInstanceCreationError",
			wantMsg:   "Creation of an instance of 'WebSocket' is not allowed",
		},
		{
			violation: Violation{Kind: PropertyReference, Keyword: "window", Count: 3},
			wantType:  &DisallowedPropertyReferencingError{},
			wantName:  "DisallowedPropertyReferencingError",
			wantMsg:   "Referencing the 'window' property is not allowed",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.wantName, func(t *testing.T) {
			err := SynthesizeError([]Violation{tc.violation})
			require.Error(t, err)

			assert.IsType(t, tc.wantType, err)
			assert.Equal(t, tc.wantMsg, err.Error())
			assert.ErrorIs(t, err, ErrDisallowed)

			var named Named
			require.True(t, errors.As(err, &named))
			assert.Equal(t, tc.wantName, named.Name())
		})
	}
}

func TestSynthesizeError_Multiple(t *testing.T) {
	violations := []Violation{
		{Kind: PropertyReference, Keyword: "window", Count: 1},
		{Kind: FunctionCall, Keyword: "alert", Count: 1},
	}

	err := SynthesizeError(violations)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Regexp(t, `^Contains invalid codes\(such as:`, err.Error())
	assert.Equal(t, "Contains invalid codes(such as: Referencing the 'window' property is not allowed)", err.Error())
	assert.Equal(t, 2, verr.Violations)
	assert.Equal(t, "ValidationError", verr.Name())
	assert.ErrorIs(t, err, ErrDisallowed)

	var inner *DisallowedPropertyReferencingError
	assert.ErrorAs(t, err, &inner)
	assert.Equal(t, "window", inner.Keyword)
}

func TestSynthesizeError_Ordering(t *testing.T) {
	prop := func(k string, n int) Violation { return Violation{Kind: PropertyReference, Keyword: k, Count: n} }
	call := func(k string, n int) Violation { return Violation{Kind: FunctionCall, Keyword: k, Count: n} }
	inst := func(k string, n int) Violation { return Violation{Kind: InstanceCreation, Keyword: k, Count: n} }

	testCases := []struct {
		name       string
		violations []Violation
		example    string
	}{
		{
			name:       "equal counts keep emission order",
			violations: []Violation{call("alert", 1), prop("window", 1)},
			example:    "Calling the 'alert' is not allowed",
		},
		{
			name:       "equal counts keep emission order reversed",
			violations: []Violation{prop("window", 1), call("alert", 1)},
			example:    "Referencing the 'window' property is not allowed",
		},
		{
			name:       "property before call when counts differ",
			violations: []Violation{prop("window", 2), call("eval", 1)},
			example:    "Referencing the 'window' property is not allowed",
		},
		{
			name:       "descending run is reversed",
			violations: []Violation{call("eval", 1), inst("WebSocket", 3)},
			example:    "Creation of an instance of 'WebSocket' is not allowed",
		},
		{
			name:       "binary insertion after a short run",
			violations: []Violation{prop("document", 1), call("fetch", 2), inst("Worker", 3)},
			example:    "Referencing the 'document' property is not allowed",
		},
		{
			name:       "instance inserted ahead of call",
			violations: []Violation{call("fetch", 2), inst("Worker", 3), call("eval", 1)},
			example:    "Creation of an instance of 'Worker' is not allowed",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := SynthesizeError(tc.violations)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.example, verr.Example.Error())
		})
	}
}

func TestSynthesizeError_DoesNotMutateInput(t *testing.T) {
	violations := []Violation{
		{Kind: FunctionCall, Keyword: "eval", Count: 1},
		{Kind: InstanceCreation, Keyword: "WebSocket", Count: 3},
	}
	before := append([]Violation(nil), violations...)

	_ = SynthesizeError(violations)

	assert.Equal(t, before, violations)
}

func TestSynthesizeError_Deterministic(t *testing.T) {
	var violations []Violation
	for i := range 80 {
		violations = append(violations, Violation{Kind: Kind(i % 3), Keyword: fmt.Sprintf("k%d", i), Count: i%5 + 1})
	}

	first := SynthesizeError(violations)
	for range 5 {
		assert.Equal(t, first.Error(), SynthesizeError(violations).Error())
	}
}

func TestSynthesizeError_Empty(t *testing.T) {
	assert.ErrorIs(t, SynthesizeError(nil), ErrNoViolations)
}

func TestTimSort_ConsistentComparatorSorts(t *testing.T) {
	var a []Violation
	for i := 150; i > 0; i-- {
		a = append(a, Violation{Count: i % 17, Keyword: fmt.Sprintf("k%d", i)})
	}
	timSort(a, func(l, r Violation) int { return l.Count - r.Count })

	for i := 1; i < len(a); i++ {
		assert.LessOrEqual(t, a[i-1].Count, a[i].Count)
	}
}
