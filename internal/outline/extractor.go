// Package outline extracts the structural outline of a single Python source
// file: top-level classes and functions, and the methods inside each class,
// each with its exact line span and verbatim source snippet.
package outline

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

var pythonLanguage = sitter.NewLanguage(python.Language())

// Extract parses source and returns its outline rooted at a module node.
//
// Extraction is a pure function of the input: it performs no I/O, holds no
// state between calls, and creates its own parser instance, so concurrent
// calls need no coordination.
//
// When the source does not conform to the grammar, Extract returns a
// *ParseError and no tree; it never returns a partial outline. Empty input,
// or input with no class or function definitions, is not an error and yields
// a module node with no children.
func Extract(source string) (*Node, error) {
	src := []byte(source)

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(pythonLanguage)

	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, &ParseError{Message: "parser produced no syntax tree"}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxError(root)
	}

	lines := strings.Split(source, "\n")
	module := &Node{
		Kind:     KindModule,
		Span:     Span{StartLine: 1, EndLine: len(lines)},
		Snippet:  source,
		Children: []*Node{},
	}

	var sites []declSite
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(uint(i))
		switch child.Kind() {
		case "class_definition":
			if cls := extractClass(child, src, lines, &sites); cls != nil {
				module.Children = append(module.Children, cls)
			}
		case "function_definition":
			if fn := declNode(child, src, lines, KindFunction); fn != nil {
				module.Children = append(module.Children, fn)
				sites = append(sites, declSite{node: fn, body: child.ChildByFieldName("body")})
			}
		case "decorated_definition":
			// The node describes the inner definition; the decorator lines
			// are not part of its span.
			def := unwrapDecorated(child)
			if def == nil {
				continue
			}
			if def.Kind() == "class_definition" {
				if cls := extractClass(def, src, lines, &sites); cls != nil {
					module.Children = append(module.Children, cls)
				}
			} else if fn := declNode(def, src, lines, KindFunction); fn != nil {
				module.Children = append(module.Children, fn)
				sites = append(sites, declSite{node: fn, body: def.ChildByFieldName("body")})
			}
		}
	}

	resolveCalls(sites, src)

	return module, nil
}

// declSite pairs an outline node with the syntax node of its body, kept just
// long enough to resolve call relationships before the tree is closed.
type declSite struct {
	node  *Node
	body  *sitter.Node
	class string // enclosing class name, empty for top-level functions
}

// extractClass builds a class node and its method children. Only direct
// function definitions in the class body become methods; nested classes and
// functions inside methods stay flattened out of the outline.
func extractClass(node *sitter.Node, src []byte, lines []string, sites *[]declSite) *Node {
	cls := declNode(node, src, lines, KindClass)
	if cls == nil {
		return nil
	}
	cls.Children = []*Node{}

	body := node.ChildByFieldName("body")
	if body == nil {
		return cls
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		stmt := body.Child(uint(i))
		def := stmt
		if stmt.Kind() == "decorated_definition" {
			def = unwrapDecorated(stmt)
			if def == nil {
				continue
			}
		}
		if def.Kind() != "function_definition" {
			continue
		}
		if m := declNode(def, src, lines, KindMethod); m != nil {
			cls.Children = append(cls.Children, m)
			*sites = append(*sites, declSite{node: m, body: def.ChildByFieldName("body"), class: cls.Name})
		}
	}
	return cls
}

// declNode builds an outline node for a class or function definition. The
// span runs from the declaration line through the last line touched by its
// subtree, as reported by the parser.
func declNode(node *sitter.Node, src []byte, lines []string, kind Kind) *Node {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	startLine := int(node.StartPosition().Row) + 1
	endLine := int(node.EndPosition().Row) + 1

	return &Node{
		Kind:    kind,
		Name:    nodeText(nameNode, src),
		Span:    Span{StartLine: startLine, EndLine: endLine},
		Snippet: extractLines(lines, startLine, endLine),
	}
}

// unwrapDecorated returns the definition inside a decorated_definition node.
func unwrapDecorated(node *sitter.Node) *sitter.Node {
	if def := node.ChildByFieldName("definition"); def != nil {
		return def
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == "class_definition" || child.Kind() == "function_definition" {
			return child
		}
	}
	return nil
}

// syntaxError builds a ParseError from the first ERROR or MISSING node in
// the tree. Tree-sitter recovers rather than failing outright, so a root
// containing an error node is the definition of "does not parse" here.
func syntaxError(root *sitter.Node) *ParseError {
	var bad *sitter.Node
	walkTree(root, func(n *sitter.Node) bool {
		if bad != nil {
			return false
		}
		if n.IsError() || n.IsMissing() {
			bad = n
			return false
		}
		return true
	})

	if bad == nil {
		return &ParseError{Message: "source contains syntax errors"}
	}
	line := int(bad.StartPosition().Row) + 1
	if bad.IsMissing() {
		return &ParseError{Line: line, Message: fmt.Sprintf("syntax error: missing %q near line %d", bad.Kind(), line)}
	}
	return &ParseError{Line: line, Message: fmt.Sprintf("syntax error near line %d", line)}
}

// nodeText extracts the text content of a syntax node.
func nodeText(node *sitter.Node, src []byte) string {
	if node == nil {
		return ""
	}
	return string(src[node.StartByte():node.EndByte()])
}

// extractLines returns source lines startLine..endLine (1-indexed, inclusive)
// joined with the original separators.
func extractLines(lines []string, startLine, endLine int) string {
	if startLine < 1 || endLine < 1 || startLine > len(lines) {
		return ""
	}
	end := endLine
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[startLine-1:end], "\n")
}

// walkTree recursively walks a syntax tree, calling visitor for each node.
// Returning false stops descent into that node's children.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visitor(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkTree(node.Child(uint(i)), visitor)
	}
}
