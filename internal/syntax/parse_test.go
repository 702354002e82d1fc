package syntax

import (
	"testing"

	"github.com/dop251/goja/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(root Node) []string {
	var out []string
	Inspect(root, func(n Node) bool {
		if id, ok := n.(*Identifier); ok {
			out = append(out, id.Name)
		}
		return true
	})
	return out
}

func TestParse_Identifiers(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		want []string
	}{
		{"empty", "", nil},
		{"arithmetic", "1+1;", nil},
		{"bare reference", "window;", []string{"window"}},
		{"call", "alert('x')", []string{"alert"}},
		{"member call", "a.b.c()", []string{"a", "b", "c"}},
		{"computed member", "a[b]", []string{"a", "b"}},
		{"string member", "a['b']", []string{"a"}},
		{"optional call", "a?.b()", []string{"a", "b"}},
		{"declaration", "var x = y;", []string{"x", "y"}},
		{"function", "function f(p, ...r) { return p; }", []string{"f", "p", "r", "p"}},
		{"arrow", "(a) => b", []string{"a", "b"}},
		{"object keys", "({k: v, 'q': w, [c]: d})", []string{"k", "v", "w", "c", "d"}},
		{"shorthand", "({window})", []string{"window"}},
		{"class", "class A extends B { m() { return x; } }", []string{"A", "B", "m", "x"}},
		{"label", "outer: for (;;) { break outer; }", []string{"outer", "outer"}},
		{"try", "try { a() } catch (e) { b } finally { c }", []string{"a", "e", "b", "c"}},
		{"for of", "for (const v of list) {}", []string{"v", "list"}},
		{"template", "tag`x${y}`", []string{"tag", "y"}},
		{"switch", "switch (k) { case a: b(); default: c; }", []string{"k", "a", "b", "c"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			prg, err := Parse(tc.src)
			require.NoError(t, err)
			assert.Equal(t, tc.want, names(prg))
		})
	}
}

func TestParse_CallShapes(t *testing.T) {
	prg, err := Parse("obj.method(1); new WebSocket('wss://x'); f();")
	require.NoError(t, err)

	var calls []string
	var news []string
	Inspect(prg, func(n Node) bool {
		switch n := n.(type) {
		case *Call:
			name, ok := CalleeName(n.Callee)
			require.True(t, ok)
			calls = append(calls, name)
		case *New:
			id, ok := n.Callee.(*Identifier)
			require.True(t, ok)
			news = append(news, id.Name)
		}
		return true
	})

	assert.Equal(t, []string{"method", "f"}, calls)
	assert.Equal(t, []string{"WebSocket"}, news)
}

func TestCalleeName(t *testing.T) {
	_, ok := CalleeName(&Member{Object: &Identifier{Name: "a"}, Property: &Other{Kind: "StringLiteral"}, Computed: true})
	assert.False(t, ok)

	name, ok := CalleeName(&Member{Object: &Identifier{Name: "a"}, Property: &Identifier{Name: "eval"}, Computed: true})
	assert.True(t, ok)
	assert.Equal(t, "eval", name)

	_, ok = CalleeName(&Other{Kind: "FunctionLiteral"})
	assert.False(t, ok)
}

func TestParse_SyntaxErrorIsNative(t *testing.T) {
	_, err := Parse("function (")
	require.Error(t, err)

	var list parser.ErrorList
	assert.ErrorAs(t, err, &list)
}

func TestInspect_Prune(t *testing.T) {
	prg, err := Parse("f(g(h))")
	require.NoError(t, err)

	var visited int
	Inspect(prg, func(n Node) bool {
		visited++
		_, isCall := n.(*Call)
		return !isCall
	})

	// Program, ExpressionStatement, outer Call
	assert.Equal(t, 3, visited)
}

func TestPreorder_StopsEarly(t *testing.T) {
	prg, err := Parse("a; b; c;")
	require.NoError(t, err)

	var seen []string
	for n := range Preorder(prg) {
		if id, ok := n.(*Identifier); ok {
			seen = append(seen, id.Name)
			if id.Name == "b" {
				break
			}
		}
	}
	assert.Equal(t, []string{"a", "b"}, seen)
}
