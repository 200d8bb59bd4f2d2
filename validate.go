package wfgraph

import "fmt"

// Validate checks the structural invariants of a graph: exactly one start
// node with id 1 and no incoming edges, edges only between present nodes,
// no duplicate source/target pair, no cycle, and every node reachable from start.
func Validate(g Graph) error {
	present := make(map[int]bool, len(g.Nodes))
	starts := 0
	for _, n := range g.Nodes {
		if present[n.ID] {
			return fmt.Errorf("wfgraph: duplicate node id %d", n.ID)
		}
		present[n.ID] = true
		if n.Kind == KindStart {
			starts++
			if n.ID != StartNodeID {
				return fmt.Errorf("%w: start node has id %d", ErrStartNodeMissing, n.ID)
			}
		}
	}
	if starts != 1 {
		return fmt.Errorf("%w: found %d", ErrStartNodeMissing, starts)
	}

	seen := make(map[edgeKey]bool, len(g.Edges))
	for _, e := range g.Edges {
		if !present[e.Source] || !present[e.Target] {
			return fmt.Errorf("%w: %d -> %d", ErrDanglingEdge, e.Source, e.Target)
		}
		if e.Target == StartNodeID {
			return fmt.Errorf("%w: %d -> start", ErrCycleDetected, e.Source)
		}
		k := edgeKey{e.Source, e.Target}
		if seen[k] {
			return fmt.Errorf("%w: %d -> %d", ErrDuplicateEdge, e.Source, e.Target)
		}
		seen[k] = true
	}

	if err := validateAcyclic(g.Nodes, g.Edges); err != nil {
		return err
	}

	reach := Reachable(g)
	for _, n := range g.Nodes {
		if !reach[n.ID] {
			return fmt.Errorf("%w: %d", ErrUnreachable, n.ID)
		}
	}
	return nil
}

// Reachable returns the set of node ids reachable from the start node,
// including the start node itself.
func Reachable(g Graph) map[int]bool {
	adj := make(map[int][]int)
	for _, e := range g.Edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
	}

	reach := map[int]bool{StartNodeID: true}
	queue := []int{StartNodeID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range adj[id] {
			if !reach[next] {
				reach[next] = true
				queue = append(queue, next)
			}
		}
	}
	return reach
}

// validateAcyclic checks that the edges don't form a cycle using DFS.
func validateAcyclic(nodes []Node, edges []Edge) error {
	adj := make(map[int][]int)
	for _, e := range edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
	}

	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)

	state := make(map[int]int, len(nodes))
	var dfs func(id int) bool
	dfs = func(id int) bool {
		state[id] = visiting
		for _, next := range adj[id] {
			switch state[next] {
			case visiting:
				return true
			case unvisited:
				if dfs(next) {
					return true
				}
			}
		}
		state[id] = visited
		return false
	}

	// Walk in node order so the reported cycle is deterministic.
	for _, n := range nodes {
		if state[n.ID] == unvisited && dfs(n.ID) {
			return ErrCycleDetected
		}
	}
	return nil
}
