package outline

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Extract:
// - Extract classes, methods, and standalone functions with exact line spans
// - Reproduce each declaration's source snippet verbatim (round-trip law)
// - Root is always a single module node spanning the whole file
// - Empty / comment-only / statement-only input yields an empty module
// - Syntax errors return ParseError with a diagnostic, never a partial tree
// - Methods only under classes; nesting deeper than two levels is flattened
// - Decorated definitions are unwrapped to the inner def/class
// - Async functions are ordinary functions in the outline
// - CRLF line endings survive in snippets
// - Determinism: same input, same tree
// - Structural invariants hold over generated programs

const greeterSource = `class Greeter:
    def hello(self):
        return "hi"

def standalone():
    return 1
`

func TestExtract_GreeterScenario(t *testing.T) {
	t.Parallel()

	module, err := Extract(greeterSource)
	require.NoError(t, err)
	require.NotNil(t, module)

	assert.Equal(t, KindModule, module.Kind)
	assert.Equal(t, "", module.Name)
	assert.Equal(t, greeterSource, module.Snippet)
	require.Len(t, module.Children, 2)

	greeter := module.Children[0]
	assert.Equal(t, KindClass, greeter.Kind)
	assert.Equal(t, "Greeter", greeter.Name)
	assert.Equal(t, Span{StartLine: 1, EndLine: 3}, greeter.Span)
	assert.Equal(t, "class Greeter:\n    def hello(self):\n        return \"hi\"", greeter.Snippet)

	require.Len(t, greeter.Children, 1)
	hello := greeter.Children[0]
	assert.Equal(t, KindMethod, hello.Kind)
	assert.Equal(t, "hello", hello.Name)
	assert.Equal(t, Span{StartLine: 2, EndLine: 3}, hello.Span)
	assert.Equal(t, "    def hello(self):\n        return \"hi\"", hello.Snippet)

	standalone := module.Children[1]
	assert.Equal(t, KindFunction, standalone.Kind)
	assert.Equal(t, "standalone", standalone.Name)
	assert.Equal(t, Span{StartLine: 5, EndLine: 6}, standalone.Span)
	assert.Equal(t, "def standalone():\n    return 1", standalone.Snippet)
}

func TestExtract_EmptyInput(t *testing.T) {
	t.Parallel()

	for _, source := range []string{"", "\n\n", "# just a comment\n", "   \n\t\n"} {
		module, err := Extract(source)
		require.NoError(t, err, "source %q", source)
		require.NotNil(t, module)
		assert.Equal(t, KindModule, module.Kind)
		assert.Empty(t, module.Children, "source %q", source)
	}
}

func TestExtract_ModuleStatementsOnly(t *testing.T) {
	t.Parallel()

	source := "import os\n\nx = 1\nprint(x)\n"
	module, err := Extract(source)
	require.NoError(t, err)
	assert.Empty(t, module.Children)
	assert.Equal(t, source, module.Snippet)
}

func TestExtract_SyntaxError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		source string
	}{
		{"unmatched bracket", "x = (1, 2\n"},
		{"malformed def", "def broken(:\n    pass\n"},
		{"keyword as identifier", "def class():\n    pass\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			module, err := Extract(tc.source)
			assert.Nil(t, module, "no partial tree on parse failure")
			require.Error(t, err)

			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.NotEmpty(t, parseErr.Message)
		})
	}
}

func TestExtract_ClassWithOnlyMethods(t *testing.T) {
	t.Parallel()

	source := `class Repo:
    def add(self, item):
        self.items.append(item)

    def remove(self, item):
        self.items.remove(item)

    def clear(self):
        self.items = []
`
	module, err := Extract(source)
	require.NoError(t, err)
	require.Len(t, module.Children, 1)

	repo := module.Children[0]
	require.Len(t, repo.Children, 3)
	for _, child := range repo.Children {
		assert.Equal(t, KindMethod, child.Kind)
	}
	assert.Equal(t, "add", repo.Children[0].Name)
	assert.Equal(t, "remove", repo.Children[1].Name)
	assert.Equal(t, "clear", repo.Children[2].Name)
}

func TestExtract_DeepNestingFlattened(t *testing.T) {
	t.Parallel()

	source := `class Outer:
    class Inner:
        def hidden(self):
            pass

    def visible(self):
        def inner_fn():
            pass
        return inner_fn
`
	module, err := Extract(source)
	require.NoError(t, err)
	require.Len(t, module.Children, 1)

	outer := module.Children[0]
	assert.Equal(t, "Outer", outer.Name)
	// Inner and inner_fn are below the two-level outline; only the direct
	// method surfaces, and its span still covers the nested function.
	require.Len(t, outer.Children, 1)
	visible := outer.Children[0]
	assert.Equal(t, KindMethod, visible.Kind)
	assert.Equal(t, "visible", visible.Name)
	assert.Equal(t, Span{StartLine: 6, EndLine: 9}, visible.Span)
}

func TestExtract_DecoratedDefinitions(t *testing.T) {
	t.Parallel()

	source := `@decorator
def decorated_fn():
    pass

class Service:
    @property
    def value(self):
        return self._v
`
	module, err := Extract(source)
	require.NoError(t, err)
	require.Len(t, module.Children, 2)

	fn := module.Children[0]
	assert.Equal(t, KindFunction, fn.Kind)
	assert.Equal(t, "decorated_fn", fn.Name)
	// Span starts at the def line, not the decorator line.
	assert.Equal(t, Span{StartLine: 2, EndLine: 3}, fn.Span)

	service := module.Children[1]
	require.Len(t, service.Children, 1)
	value := service.Children[0]
	assert.Equal(t, KindMethod, value.Kind)
	assert.Equal(t, "value", value.Name)
	assert.Equal(t, Span{StartLine: 7, EndLine: 8}, value.Span)
}

func TestExtract_AsyncFunction(t *testing.T) {
	t.Parallel()

	source := "async def fetch(url):\n    return await get(url)\n"
	module, err := Extract(source)
	require.NoError(t, err)
	require.Len(t, module.Children, 1)
	assert.Equal(t, KindFunction, module.Children[0].Kind)
	assert.Equal(t, "fetch", module.Children[0].Name)
}

func TestExtract_CRLFPreserved(t *testing.T) {
	t.Parallel()

	source := "class A:\r\n    def m(self):\r\n        pass\r\n"
	module, err := Extract(source)
	require.NoError(t, err)
	require.Len(t, module.Children, 1)

	a := module.Children[0]
	assert.Equal(t, Span{StartLine: 1, EndLine: 3}, a.Span)
	assert.Equal(t, "class A:\r\n    def m(self):\r\n        pass\r", a.Snippet)
}

func TestExtract_Deterministic(t *testing.T) {
	t.Parallel()

	first, err := Extract(greeterSource)
	require.NoError(t, err)
	second, err := Extract(greeterSource)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestExtract_StructuralInvariants(t *testing.T) {
	t.Parallel()

	for _, source := range generatePrograms() {
		module, err := Extract(source)
		require.NoError(t, err, "source:\n%s", source)
		checkInvariants(t, source, module)
	}
}

// checkInvariants verifies span containment, sibling ordering, and the
// span/snippet round-trip law for every node in the tree.
func checkInvariants(t *testing.T, source string, module *Node) {
	t.Helper()

	lines := strings.Split(source, "\n")

	var walk func(n *Node)
	walk = func(n *Node) {
		// Snippet line count matches the span.
		wantLines := n.Span.EndLine - n.Span.StartLine + 1
		assert.Len(t, strings.Split(n.Snippet, "\n"), wantLines, "node %q", n.Name)

		// Snippet equals the source sliced at the span.
		if n.Kind != KindModule {
			want := strings.Join(lines[n.Span.StartLine-1:n.Span.EndLine], "\n")
			assert.Equal(t, want, n.Snippet, "node %q", n.Name)
		}

		prevEnd := 0
		for _, child := range n.Children {
			// Contained in the parent.
			assert.GreaterOrEqual(t, child.Span.StartLine, n.Span.StartLine, "child %q of %q", child.Name, n.Name)
			assert.LessOrEqual(t, child.Span.EndLine, n.Span.EndLine, "child %q of %q", child.Name, n.Name)
			// Source-ordered and non-overlapping.
			assert.Greater(t, child.Span.StartLine, prevEnd, "child %q of %q overlaps its predecessor", child.Name, n.Name)
			prevEnd = child.Span.EndLine

			// Methods only under classes, never classes below the root.
			switch n.Kind {
			case KindModule:
				assert.Contains(t, []Kind{KindClass, KindFunction}, child.Kind)
			case KindClass:
				assert.Equal(t, KindMethod, child.Kind)
			default:
				t.Errorf("node %q of kind %s has children", n.Name, n.Kind)
			}
			walk(child)
		}
	}
	walk(module)
}

// generatePrograms builds a deterministic spread of small valid programs:
// varying counts of classes, methods per class, and top-level functions,
// with module-level statements interleaved.
func generatePrograms() []string {
	var programs []string
	for classes := 0; classes <= 2; classes++ {
		for methods := 1; methods <= 3; methods++ {
			for funcs := 0; funcs <= 2; funcs++ {
				var b strings.Builder
				b.WriteString("import os\n\nLIMIT = 10\n\n")
				for c := 0; c < classes; c++ {
					fmt.Fprintf(&b, "class C%d:\n", c)
					for m := 0; m < methods; m++ {
						fmt.Fprintf(&b, "    def m%d(self):\n        return %d\n", m, m)
					}
					b.WriteString("\n")
				}
				for f := 0; f < funcs; f++ {
					fmt.Fprintf(&b, "def f%d():\n    return %d\n\n", f, f)
				}
				programs = append(programs, b.String())
			}
		}
	}
	return programs
}

func TestParseError_Error(t *testing.T) {
	t.Parallel()

	withLine := &ParseError{Line: 3, Message: "syntax error near line 3"}
	assert.Equal(t, "syntax error near line 3 (line 3)", withLine.Error())

	noLine := &ParseError{Message: "source contains syntax errors"}
	assert.Equal(t, "source contains syntax errors", noLine.Error())

	assert.True(t, errors.As(error(withLine), new(*ParseError)))
}
