package validation

import (
	"testing"

	"github.com/dop251/goja/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/livetone/internal/denylist"
)

func testValidator(t *testing.T) *Validator {
	t.Helper()
	deny, err := denylist.New(denylist.Config{
		Properties: []string{"window", "document"},
		Functions:  []string{"eval", "alert", "fetch"},
		Objects:    []string{"WebSocket", "Function"},
	})
	require.NoError(t, err)
	return New(deny)
}

func TestValidate_CleanCode(t *testing.T) {
	v := testValidator(t)

	for _, src := range []string{"", "1+1;", "const w = 1; w * 2;", "({ 'window': 1 })"} {
		violations, err := v.Validate(src)
		require.NoError(t, err, src)
		assert.Empty(t, violations, src)
	}
}

func TestValidate(t *testing.T) {
	v := testValidator(t)

	testCases := []struct {
		name string
		src  string
		want []Violation
	}{
		{
			name: "single call",
			src:  "eval('x')",
			want: []Violation{{Kind: FunctionCall, Keyword: "eval", Count: 1}},
		},
		{
			name: "call sites are counted",
			src:  "alert(1); alert(2); if (x) { alert(3) }",
			want: []Violation{{Kind: FunctionCall, Keyword: "alert", Count: 3}},
		},
		{
			name: "member call uses the property name",
			src:  "obj.fetch('/x'); a.b.eval()",
			want: []Violation{
				{Kind: FunctionCall, Keyword: "fetch", Count: 1},
				{Kind: FunctionCall, Keyword: "eval", Count: 1},
			},
		},
		{
			name: "computed identifier member call",
			src:  "obj[eval]()",
			want: []Violation{{Kind: FunctionCall, Keyword: "eval", Count: 1}},
		},
		{
			name: "construction",
			src:  "new WebSocket('wss://x'); new WebSocket('wss://y')",
			want: []Violation{{Kind: InstanceCreation, Keyword: "WebSocket", Count: 2}},
		},
		{
			name: "member construction is not matched",
			src:  "new lib.Player()",
			want: nil,
		},
		{
			name: "bare reference",
			src:  "window;",
			want: []Violation{{Kind: PropertyReference, Keyword: "window", Count: 1}},
		},
		{
			name: "dot property counts as a reference",
			src:  "x.document.title",
			want: []Violation{{Kind: PropertyReference, Keyword: "document", Count: 1}},
		},
		{
			name: "function name referenced without calling",
			src:  "const f = alert;",
			want: []Violation{{Kind: PropertyReference, Keyword: "alert", Count: 1}},
		},
		{
			name: "categories in emission order",
			src:  "new WebSocket(''); alert(); window; document; window;",
			want: []Violation{
				{Kind: PropertyReference, Keyword: "window", Count: 2},
				{Kind: PropertyReference, Keyword: "document", Count: 1},
				{Kind: FunctionCall, Keyword: "alert", Count: 1},
				{Kind: InstanceCreation, Keyword: "WebSocket", Count: 1},
			},
		},
		{
			name: "call suppresses later bare reference",
			src:  "eval('1'); const e = eval;",
			want: []Violation{{Kind: FunctionCall, Keyword: "eval", Count: 1}},
		},
		{
			name: "call suppresses earlier bare reference",
			src:  "const e = eval; eval('1');",
			want: []Violation{{Kind: FunctionCall, Keyword: "eval", Count: 1}},
		},
		{
			name: "construction suppresses bare reference",
			src:  "const W = WebSocket; new WebSocket('')",
			want: []Violation{{Kind: InstanceCreation, Keyword: "WebSocket", Count: 1}},
		},
		{
			name: "constructor name called as a function",
			src:  "Function('x'); new Function('y')",
			want: []Violation{{Kind: InstanceCreation, Keyword: "Function", Count: 1}},
		},
		{
			name: "references inside nested functions",
			src:  "function play() { return () => window.location }",
			want: []Violation{{Kind: PropertyReference, Keyword: "window", Count: 1}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := v.Validate(tc.src)
			require.NoError(t, err)
			if tc.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidate_FunctionAlsoObject(t *testing.T) {
	deny := denylist.MustNew(denylist.Config{
		Functions: []string{"Function"},
		Objects:   []string{"Function"},
	})
	got, err := New(deny).Validate("Function('x'); new Function('y')")
	require.NoError(t, err)

	assert.Equal(t, []Violation{
		{Kind: FunctionCall, Keyword: "Function", Count: 1},
		{Kind: InstanceCreation, Keyword: "Function", Count: 1},
	}, got)
}

func TestValidate_ParseErrorPropagates(t *testing.T) {
	v := testValidator(t)

	got, err := v.Validate("eval(")
	require.Error(t, err)
	assert.Nil(t, got)

	var list parser.ErrorList
	assert.ErrorAs(t, err, &list)
	assert.NotErrorIs(t, err, ErrDisallowed)
}

func TestValidate_Idempotent(t *testing.T) {
	v := testValidator(t)
	src := "alert(); window; new WebSocket(''); alert(); document"

	first, err := v.Validate(src)
	require.NoError(t, err)
	second, err := v.Validate(src)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestValidate_DefaultDenyList(t *testing.T) {
	v := New(denylist.Default())

	got, err := v.Validate(`
const scale = LiveTone.Scale.Major.notes('C', 4)
const itr = LiveTone.Itr.fromFirst(scale)
LiveTone.registerPlaying({ stop() {}, state: 'started' })
`)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestValidate_DefaultDenyListHostGlobals(t *testing.T) {
	v := New(denylist.Default())

	got, err := v.Validate("close(); print(); name;")
	require.NoError(t, err)
	assert.ElementsMatch(t, []Violation{
		{Kind: FunctionCall, Keyword: "close", Count: 1},
		{Kind: FunctionCall, Keyword: "print", Count: 1},
		{Kind: PropertyReference, Keyword: "name", Count: 1},
	}, got)
}
