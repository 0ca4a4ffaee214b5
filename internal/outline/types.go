package outline

import (
	"encoding/json"
	"fmt"
)

// Kind identifies what a Node describes.
type Kind string

const (
	KindModule   Kind = "module"
	KindClass    Kind = "class"
	KindFunction Kind = "function"
	KindMethod   Kind = "method"
)

// Span is an inclusive, 1-based line range in the original source text.
type Span struct {
	StartLine int
	EndLine   int
}

// Node is one declaration in the outline of a Python source file.
//
// The root is always a single module node covering the whole file. Module
// nodes hold top-level classes and functions; class nodes hold their methods.
// The outline is exactly two levels deep: nesting below that is not modeled.
//
// Snippet is the verbatim source for Span, with original indentation and line
// breaks. Nodes are never mutated after extraction.
type Node struct {
	Kind     Kind
	Name     string // empty for the module root
	Span     Span
	Snippet  string
	Children []*Node // source order

	// Calls and CalledBy hold declaration IDs ("name" for functions,
	// "Class.name" for methods) resolved within the same file. Sorted,
	// deduplicated. Nil for module and class nodes.
	Calls    []string
	CalledBy []string
}

// MarshalJSON emits the wire shape the renderer depends on: name, type,
// snippet and children are always present (children as [] rather than null);
// call relationships are additive and omitted when empty.
func (n *Node) MarshalJSON() ([]byte, error) {
	children := n.Children
	if children == nil {
		children = []*Node{}
	}
	return json.Marshal(struct {
		Name     string   `json:"name"`
		Type     Kind     `json:"type"`
		Snippet  string   `json:"snippet"`
		Calls    []string `json:"calls,omitempty"`
		CalledBy []string `json:"called_by,omitempty"`
		Children []*Node  `json:"children"`
	}{
		Name:     n.Name,
		Type:     n.Kind,
		Snippet:  n.Snippet,
		Calls:    n.Calls,
		CalledBy: n.CalledBy,
		Children: children,
	})
}

// ParseError reports source text that does not conform to the Python grammar.
// Line is 1-based and 0 when no position could be attributed.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d)", e.Message, e.Line)
	}
	return e.Message
}
