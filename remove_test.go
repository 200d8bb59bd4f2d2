package wfgraph

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBuild(t *testing.T, records ...Record) Graph {
	t.Helper()
	g, err := Build(records)
	require.NoError(t, err)
	return g
}

func nodeIDs(g Graph) []int {
	ids := make([]int, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}

func TestRemoveNode_LinearChain(t *testing.T) {
	g := mustBuild(t, rec("A", "B"), rec("B"))

	out, err := RemoveNode(g, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, nodeIDs(out))
	assert.Equal(t, []Edge{{Source: 1, Target: 3, Type: EdgeAlways}}, out.Edges)
}

func TestRemoveNode_SharedChild(t *testing.T) {
	g := mustBuild(t, rec("A", "C"), rec("B", "C"), rec("C"))

	out, err := RemoveNode(g, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 4}, nodeIDs(out))
	assert.Equal(t, []Edge{
		{Source: 3, Target: 4, Type: EdgeSuccess},
		{Source: 1, Target: 3, Type: EdgeAlways},
	}, out.Edges)
}

func TestRemoveNode_Leaf(t *testing.T) {
	g := mustBuild(t, rec("A", "B"), rec("B"))

	out, err := RemoveNode(g, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, nodeIDs(out))
	assert.Equal(t, []Edge{{Source: 1, Target: 2, Type: EdgeAlways}}, out.Edges)
}

func TestRemoveNode_Isolated(t *testing.T) {
	g := Graph{
		Nodes: []Node{{ID: 1, Kind: KindStart}, {ID: 2, Kind: KindStep}},
	}
	out, err := RemoveNode(g, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, nodeIDs(out))
	assert.Empty(t, out.Edges)
}

func TestRemoveNode_KeepsChildEdgeType(t *testing.T) {
	records := []Record{
		{ID: "a", SuccessNodes: []string{"b"}},
		{ID: "b", FailureNodes: []string{"c"}, AlwaysNodes: []string{"d"}},
		{ID: "c"},
		{ID: "d"},
	}
	g := mustBuild(t, records...)

	out, err := RemoveNode(g, 3)
	require.NoError(t, err)
	assert.Equal(t, []Edge{
		{Source: 1, Target: 2, Type: EdgeAlways},
		{Source: 2, Target: 4, Type: EdgeFailure},
		{Source: 2, Target: 5, Type: EdgeAlways},
	}, out.Edges)
}

func TestRemoveNode_NoDuplicateFromOrdinaryParent(t *testing.T) {
	// a -> b -> c and a -> c: removing b must not add a second a -> c.
	records := []Record{
		{ID: "a", SuccessNodes: []string{"b"}, FailureNodes: []string{"c"}},
		{ID: "b", SuccessNodes: []string{"c"}},
		{ID: "c"},
	}
	g := mustBuild(t, records...)

	out, err := RemoveNode(g, 3)
	require.NoError(t, err)
	assert.Equal(t, []Edge{
		{Source: 2, Target: 4, Type: EdgeFailure},
		{Source: 1, Target: 2, Type: EdgeAlways},
	}, out.Edges)
}

func TestRemoveNode_StartAndOrdinaryParent(t *testing.T) {
	// b is a root and a child of a; c hangs only off b.
	g := Graph{
		Nodes: []Node{{ID: 1, Kind: KindStart}, {ID: 2, Kind: KindStep}, {ID: 3, Kind: KindStep}, {ID: 4, Kind: KindStep}},
		Edges: []Edge{
			{Source: 1, Target: 2, Type: EdgeAlways},
			{Source: 1, Target: 3, Type: EdgeAlways},
			{Source: 2, Target: 3, Type: EdgeSuccess},
			{Source: 3, Target: 4, Type: EdgeFailure},
		},
	}
	out, err := RemoveNode(g, 3)
	require.NoError(t, err)
	assert.Equal(t, []Edge{
		{Source: 1, Target: 2, Type: EdgeAlways},
		{Source: 1, Target: 4, Type: EdgeAlways},
		{Source: 2, Target: 4, Type: EdgeFailure},
	}, out.Edges)
}

func TestRemoveNode_DoesNotMutateInput(t *testing.T) {
	g := mustBuild(t, rec("A", "B"), rec("B"))
	before := g.Clone()

	_, err := RemoveNode(g, 2)
	require.NoError(t, err)
	assert.Equal(t, before, g)
}

func TestRemoveNode_Preconditions(t *testing.T) {
	g := mustBuild(t, rec("A"))

	_, err := RemoveNode(g, StartNodeID)
	assert.ErrorIs(t, err, ErrStartNode)

	_, err = RemoveNode(g, 99)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestRemoveNode_Composes(t *testing.T) {
	g := mustBuild(t, rec("a", "b"), rec("b", "c"), rec("c", "d"), rec("d"))

	var err error
	for _, id := range []int{3, 4} {
		g, err = RemoveNode(g, id)
		require.NoError(t, err)
	}
	assert.Equal(t, []int{1, 2, 5}, nodeIDs(g))
	assert.Equal(t, []Edge{
		{Source: 1, Target: 2, Type: EdgeAlways},
		{Source: 2, Target: 5, Type: EdgeSuccess},
	}, g.Edges)
	require.NoError(t, Validate(g))
}

// randomRecords builds an acyclic record set: successors always point to a
// later record.
func randomRecords(r *rand.Rand, n int) []Record {
	records := make([]Record, n)
	for i := range records {
		records[i].ID = fmt.Sprintf("r%d", i)
	}
	for i := range records {
		for j := i + 1; j < n; j++ {
			if r.Intn(4) != 0 {
				continue
			}
			id := records[j].ID
			switch r.Intn(3) {
			case 0:
				records[i].SuccessNodes = append(records[i].SuccessNodes, id)
			case 1:
				records[i].FailureNodes = append(records[i].FailureNodes, id)
			default:
				records[i].AlwaysNodes = append(records[i].AlwaysNodes, id)
			}
		}
	}
	// Shuffle so successors are not always declared after their parents.
	r.Shuffle(n, func(i, j int) { records[i], records[j] = records[j], records[i] })
	return records
}

func TestProperties_RandomGraphs(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for iter := 0; iter < 200; iter++ {
		records := randomRecords(r, 1+r.Intn(12))
		g, err := Build(records)
		require.NoError(t, err)
		require.NoError(t, Validate(g), "built graph %d", iter)

		// Root attachment: exactly one start edge per unreferenced record.
		referenced := map[string]bool{}
		for _, rc := range records {
			for _, l := range [][]string{rc.SuccessNodes, rc.FailureNodes, rc.AlwaysNodes} {
				for _, id := range l {
					referenced[id] = true
				}
			}
		}
		for _, n := range g.Nodes[1:] {
			starts := 0
			for _, e := range g.Edges {
				if e.Source == StartNodeID && e.Target == n.ID {
					starts++
					assert.Equal(t, EdgeAlways, e.Type)
				}
			}
			if referenced[n.RecordID] {
				assert.Zero(t, starts)
			} else {
				assert.Equal(t, 1, starts)
			}
		}

		// Remove random nodes until only start is left.
		for len(g.Nodes) > 1 {
			target := g.Nodes[1+r.Intn(len(g.Nodes)-1)].ID
			out, err := RemoveNode(g, target)
			require.NoError(t, err)
			require.Len(t, out.Nodes, len(g.Nodes)-1)
			_, still := out.Node(target)
			require.False(t, still)
			require.NoError(t, Validate(out), "after removing %d in iteration %d", target, iter)
			g = out
		}
	}
}
