package wfgraph

import "fmt"

type edgeKey struct {
	source, target int
}

// Build converts a flat list of workflow step records into a graph.
//
// The start node gets local id 1 and the records get 2..n+1 in input order.
// Every record that no other record lists as a successor is a root and is
// attached to the start node with an always edge. Root edges come last.
// Build returns ErrDuplicateRecord or ErrUnknownSuccessor for malformed input.
func Build(records []Record) (Graph, error) {
	if err := CheckReferences(records); err != nil {
		return Graph{}, err
	}

	nodes := make([]Node, 0, len(records)+1)
	nodes = append(nodes, Node{ID: StartNodeID, Kind: KindStart})

	// Resolve every external id before any edge is emitted; successors may
	// appear later in the input.
	localID := make(map[string]int, len(records))
	next := StartNodeID + 1
	for _, r := range records {
		localID[r.ID] = next
		nodes = append(nodes, Node{
			ID:                 next,
			Kind:               KindStep,
			RecordID:           r.ID,
			Identifier:         r.Identifier,
			Job:                r.SummaryFields.Job,
			UnifiedJobTemplate: r.SummaryFields.UnifiedJobTemplate,
		})
		next++
	}

	var edges []Edge
	seen := make(map[edgeKey]bool)
	hasParent := make(map[string]bool)
	for _, r := range records {
		source := localID[r.ID]
		for _, group := range []struct {
			ids []string
			typ EdgeType
		}{
			{r.SuccessNodes, EdgeSuccess},
			{r.FailureNodes, EdgeFailure},
			{r.AlwaysNodes, EdgeAlways},
		} {
			for _, id := range group.ids {
				hasParent[id] = true
				k := edgeKey{source, localID[id]}
				if seen[k] {
					continue
				}
				seen[k] = true
				edges = append(edges, Edge{Source: source, Target: k.target, Type: group.typ})
			}
		}
	}

	for _, r := range records {
		if hasParent[r.ID] {
			continue
		}
		edges = append(edges, Edge{Source: StartNodeID, Target: localID[r.ID], Type: EdgeAlways})
	}

	return Graph{Nodes: nodes, Edges: edges}, nil
}

// Records converts a graph back into workflow step records, one per step node
// in node order. Edges from the start node are dropped since roots are implied.
func Records(g Graph) ([]Record, error) {
	recordID := make(map[int]string, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.Kind == KindStep {
			recordID[n.ID] = n.RecordID
		}
	}

	index := make(map[int]int, len(recordID))
	out := make([]Record, 0, len(recordID))
	for _, n := range g.Nodes {
		if n.Kind != KindStep {
			continue
		}
		index[n.ID] = len(out)
		out = append(out, Record{
			ID:           n.RecordID,
			Identifier:   n.Identifier,
			SuccessNodes: []string{},
			FailureNodes: []string{},
			AlwaysNodes:  []string{},
			SummaryFields: SummaryFields{
				Job:                n.Job,
				UnifiedJobTemplate: n.UnifiedJobTemplate,
			},
		})
	}
	for _, e := range g.Edges {
		if e.Source == StartNodeID {
			continue
		}
		i, ok := index[e.Source]
		if !ok {
			return nil, fmt.Errorf("%w: source %d", ErrDanglingEdge, e.Source)
		}
		r := &out[i]
		target, ok := recordID[e.Target]
		if !ok {
			return nil, fmt.Errorf("%w: target %d", ErrDanglingEdge, e.Target)
		}
		switch e.Type {
		case EdgeSuccess:
			r.SuccessNodes = append(r.SuccessNodes, target)
		case EdgeFailure:
			r.FailureNodes = append(r.FailureNodes, target)
		default:
			r.AlwaysNodes = append(r.AlwaysNodes, target)
		}
	}

	return out, nil
}
