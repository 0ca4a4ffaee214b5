package outline

import (
	"sort"

	"github.com/dominikbraun/graph"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// resolveCalls annotates every function and method node with the declarations
// it calls and the declarations that call it, resolved against the set
// extracted from the same file.
//
// Resolution mirrors what a reader can do without type inference: a callee
// name is matched first against a method of the caller's own class, then
// against a top-level function. Anything else (builtins, imported names,
// methods of other classes reached through values) is skipped.
func resolveCalls(sites []declSite, src []byte) {
	if len(sites) == 0 {
		return
	}

	defs := make(map[string]*Node, len(sites))
	for _, s := range sites {
		defs[declID(s)] = s.node
	}

	g := graph.New(graph.StringHash, graph.Directed())
	for id := range defs {
		_ = g.AddVertex(id)
	}

	for _, s := range sites {
		caller := declID(s)
		walkTree(s.body, func(n *sitter.Node) bool {
			if n.Kind() != "call" {
				return true
			}
			callee := calleeName(n, src)
			if callee == "" {
				return true
			}
			if target, ok := resolveCallee(defs, s.class, callee); ok {
				// Duplicate edges are expected when a function calls the
				// same declaration more than once.
				_ = g.AddEdge(caller, target)
			}
			return true
		})
	}

	adjacency, err := g.AdjacencyMap()
	if err != nil {
		return
	}
	predecessors, err := g.PredecessorMap()
	if err != nil {
		return
	}

	for id, node := range defs {
		node.Calls = sortedTargets(adjacency[id])
		node.CalledBy = sortedTargets(predecessors[id])
	}
}

// declID is the identifier a declaration is resolvable under: "Class.method"
// for methods, the bare name for top-level functions.
func declID(s declSite) string {
	if s.class != "" {
		return s.class + "." + s.node.Name
	}
	return s.node.Name
}

// resolveCallee maps a syntactic callee name to a declaration ID, preferring
// a method of the caller's own class over a top-level function.
func resolveCallee(defs map[string]*Node, callerClass, callee string) (string, bool) {
	if callerClass != "" {
		if id := callerClass + "." + callee; defs[id] != nil {
			return id, true
		}
	}
	if defs[callee] != nil {
		return callee, true
	}
	return "", false
}

// calleeName extracts the name being called: the identifier for f(), the
// attribute for obj.f(). Determining which object an attribute call lands on
// would need type inference, so attribute calls resolve by name only.
func calleeName(call *sitter.Node, src []byte) string {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	switch fn.Kind() {
	case "identifier":
		return nodeText(fn, src)
	case "attribute":
		return nodeText(fn.ChildByFieldName("attribute"), src)
	}
	return ""
}

func sortedTargets(edges map[string]graph.Edge[string]) []string {
	if len(edges) == 0 {
		return nil
	}
	targets := make([]string, 0, len(edges))
	for id := range edges {
		targets = append(targets, id)
	}
	sort.Strings(targets)
	return targets
}
