package wfgraph

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/meikuraledutech/wfgraph/ctxlog"
)

// RecordWriter persists the records of a template, replacing what was there.
type RecordWriter interface {
	ReplaceRecords(ctx context.Context, templateID string, records []Record) ([]Record, error)
}

// Editor holds the current graph of one workflow template and applies
// deletions to it one at a time.
type Editor struct {
	templateID string
	pageSize   int

	mu      sync.Mutex
	graph   Graph
	removed []string
}

// Open fetches the template's records from src and builds its graph.
func Open(ctx context.Context, src RecordSource, templateID string, pageSize int) (*Editor, error) {
	e := &Editor{templateID: strings.Clone(templateID), pageSize: pageSize}
	if err := e.Reload(ctx, src); err != nil {
		return nil, err
	}
	return e, nil
}

// TemplateID returns the id of the template being edited.
func (e *Editor) TemplateID() string { return e.templateID }

// Graph returns a copy of the current graph.
func (e *Editor) Graph() Graph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph.Clone()
}

// Removed returns the record ids deleted since the last load or save.
func (e *Editor) Removed() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.removed))
	copy(out, e.removed)
	return out
}

// Dirty reports whether there are unsaved deletions.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.removed) > 0
}

// Remove deletes a node from the current graph and returns the new graph.
func (e *Editor) Remove(ctx context.Context, nodeID int) (Graph, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, ok := e.graph.Node(nodeID)
	g, err := RemoveNode(e.graph, nodeID)
	if err != nil {
		return Graph{}, err
	}
	e.graph = g
	if ok && n.RecordID != "" {
		e.removed = append(e.removed, n.RecordID)
	}

	ctxlog.FromContext(ctx).Info("removed workflow node",
		"template", e.templateID, "node", nodeID, "record", n.RecordID,
		"nodes", len(g.Nodes), "edges", len(g.Edges))
	return g.Clone(), nil
}

// Reload discards all edits and rebuilds the graph from src.
func (e *Editor) Reload(ctx context.Context, src RecordSource) error {
	records, err := FetchAll(ctx, src, e.templateID, e.pageSize)
	if err != nil {
		return err
	}
	g, err := Build(records)
	if err != nil {
		return fmt.Errorf("wfgraph: build template %s: %w", e.templateID, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.graph = g
	e.removed = nil

	ctxlog.FromContext(ctx).Info("loaded workflow graph",
		"template", e.templateID, "nodes", len(g.Nodes), "edges", len(g.Edges))
	return nil
}

// Save writes the current graph back as records and clears the removed list.
func (e *Editor) Save(ctx context.Context, w RecordWriter) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := Validate(e.graph); err != nil {
		return err
	}
	records, err := Records(e.graph)
	if err != nil {
		return err
	}
	if _, err := w.ReplaceRecords(ctx, e.templateID, records); err != nil {
		return fmt.Errorf("wfgraph: save template %s: %w", e.templateID, err)
	}

	ctxlog.FromContext(ctx).Info("saved workflow graph",
		"template", e.templateID, "records", len(records), "removed", len(e.removed))
	e.removed = nil
	return nil
}
