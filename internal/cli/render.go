package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"pyscope/internal/outline"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	classStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	functionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	methodStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// renderTree formats an outline for the terminal: one line per declaration,
// indented by nesting, with line spans and call relationships.
func renderTree(title string, root *outline.Node) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	if len(root.Children) == 0 {
		b.WriteString(dimStyle.Render("  (no classes or functions)"))
		b.WriteString("\n")
		return b.String()
	}

	var walk func(n *outline.Node, depth int)
	walk = func(n *outline.Node, depth int) {
		indent := strings.Repeat("  ", depth)
		b.WriteString(indent)
		b.WriteString(styleFor(n.Kind).Render(fmt.Sprintf("%s %s", n.Kind, n.Name)))
		b.WriteString(dimStyle.Render(fmt.Sprintf("  lines %d-%d", n.Span.StartLine, n.Span.EndLine)))
		if len(n.Calls) > 0 {
			b.WriteString(dimStyle.Render("  calls " + strings.Join(n.Calls, ", ")))
		}
		b.WriteString("\n")
		for _, child := range n.Children {
			walk(child, depth+1)
		}
	}
	for _, child := range root.Children {
		walk(child, 1)
	}
	return b.String()
}

func styleFor(kind outline.Kind) lipgloss.Style {
	switch kind {
	case outline.KindClass:
		return classStyle
	case outline.KindMethod:
		return methodStyle
	default:
		return functionStyle
	}
}
