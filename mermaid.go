package wfgraph

import (
	"fmt"
	"strings"
)

// labelEscaper replaces characters Mermaid cannot take inside a quoted label
// with its entity codes.
var labelEscaper = strings.NewReplacer(`"`, "#quot;", "\n", " ")

// Mermaid renders the graph as a Mermaid flowchart. Edge labels carry the edge type.
func Mermaid(g Graph) string {
	var b strings.Builder
	b.WriteString("graph TD\n")
	for _, n := range g.Nodes {
		fmt.Fprintf(&b, "  n%d[\"%s\"]\n", n.ID, labelEscaper.Replace(n.Label()))
	}
	for _, e := range g.Edges {
		fmt.Fprintf(&b, "  n%d -->|%s| n%d\n", e.Source, e.Type, e.Target)
	}
	return b.String()
}
