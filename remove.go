package wfgraph

import (
	"fmt"
	"slices"
)

type child struct {
	id  int
	typ EdgeType
}

// RemoveNode returns a new graph without the target node.
//
// The target's parents are connected directly to its children, keeping the
// child's original edge type. A start -> child edge is only synthesized when
// the target was the child's sole parent, and an ordinary parent is never
// connected to a child it already points at. The input graph is not modified.
func RemoveNode(g Graph, target int) (Graph, error) {
	if target == StartNodeID {
		return Graph{}, ErrStartNode
	}

	nodes := make([]Node, 0, len(g.Nodes))
	found := false
	for _, n := range g.Nodes {
		if n.ID == target {
			found = true
			continue
		}
		nodes = append(nodes, n)
	}
	if !found {
		return Graph{}, fmt.Errorf("%w: %d", ErrNodeNotFound, target)
	}

	parentsOf := make(map[int][]int)
	edges := make([]Edge, 0, len(g.Edges))
	var (
		parents  []int
		children []child
	)
	for _, e := range g.Edges {
		parentsOf[e.Target] = append(parentsOf[e.Target], e.Source)
		switch {
		case e.Source == target:
			children = append(children, child{id: e.Target, typ: e.Type})
		case e.Target == target:
			parents = append(parents, e.Source)
		default:
			edges = append(edges, e)
		}
	}

	for _, p := range parents {
		for _, c := range children {
			if p == StartNodeID {
				if len(parentsOf[c.id]) == 1 {
					edges = append(edges, Edge{Source: StartNodeID, Target: c.id, Type: EdgeAlways})
				}
				continue
			}
			if slices.Contains(parentsOf[c.id], p) {
				continue
			}
			edges = append(edges, Edge{Source: p, Target: c.id, Type: c.typ})
		}
	}

	return Graph{Nodes: nodes, Edges: edges}, nil
}
