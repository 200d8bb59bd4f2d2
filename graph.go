package wfgraph

// StartNodeID is the local id permanently reserved for the synthetic start node.
const StartNodeID = 1

// EdgeType is the outcome under which one step triggers the next.
type EdgeType string

const (
	EdgeSuccess EdgeType = "success"
	EdgeFailure EdgeType = "failure"
	EdgeAlways  EdgeType = "always"
)

// NodeKind discriminates the synthetic start node from workflow steps.
type NodeKind string

const (
	KindStart NodeKind = "start"
	KindStep  NodeKind = "step"
)

// Record is one workflow step as returned by the record source.
// Successor lists hold the external ids of other records in the same template.
type Record struct {
	ID            string        `json:"id" yaml:"id"`
	Identifier    string        `json:"identifier,omitempty" yaml:"identifier,omitempty"`
	SuccessNodes  []string      `json:"success_nodes" yaml:"success_nodes"`
	FailureNodes  []string      `json:"failure_nodes" yaml:"failure_nodes"`
	AlwaysNodes   []string      `json:"always_nodes" yaml:"always_nodes"`
	SummaryFields SummaryFields `json:"summary_fields" yaml:"summary_fields"`
}

// SummaryFields carries display metadata about the step.
type SummaryFields struct {
	Job                *JobSummary      `json:"job,omitempty" yaml:"job,omitempty"`
	UnifiedJobTemplate *TemplateSummary `json:"unified_job_template,omitempty" yaml:"unified_job_template,omitempty"`
}

// JobSummary describes the last job launched for a step.
type JobSummary struct {
	ID     int64  `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Status string `json:"status,omitempty" yaml:"status,omitempty"`
}

// TemplateSummary describes the job template a step runs.
type TemplateSummary struct {
	ID             int64  `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	Description    string `json:"description,omitempty" yaml:"description,omitempty"`
	UnifiedJobType string `json:"unified_job_type,omitempty" yaml:"unified_job_type,omitempty"`
}

// Node is a vertex of the workflow graph.
// ID is assigned locally by Build and is unrelated to Record.ID.
type Node struct {
	ID                 int              `json:"id"`
	Kind               NodeKind         `json:"kind"`
	RecordID           string           `json:"record_id,omitempty"`
	Identifier         string           `json:"identifier,omitempty"`
	Job                *JobSummary      `json:"job,omitempty"`
	UnifiedJobTemplate *TemplateSummary `json:"unified_job_template,omitempty"`
}

// Label is the text shown for the node in diagrams.
func (n Node) Label() string {
	switch {
	case n.Kind == KindStart:
		return "START"
	case n.UnifiedJobTemplate != nil && n.UnifiedJobTemplate.Name != "":
		return n.UnifiedJobTemplate.Name
	case n.Identifier != "":
		return n.Identifier
	default:
		return n.RecordID
	}
}

// Edge is a directed connection between two nodes, referenced by local id.
type Edge struct {
	Source int      `json:"source"`
	Target int      `json:"target"`
	Type   EdgeType `json:"edge_type"`
}

// Graph is the node and edge lists fed to the layout engine.
// Operations never modify a Graph in place; they return a new one.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node returns the node with the given local id.
func (g Graph) Node(id int) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Clone returns a deep copy of the node and edge slices.
func (g Graph) Clone() Graph {
	out := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	copy(out.Nodes, g.Nodes)
	copy(out.Edges, g.Edges)
	return out
}
