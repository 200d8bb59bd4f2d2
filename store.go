package wfgraph

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrStartNode        = errors.New("wfgraph: start node cannot be removed")
	ErrNodeNotFound     = errors.New("wfgraph: node not found")
	ErrDuplicateRecord  = errors.New("wfgraph: duplicate record id")
	ErrUnknownSuccessor = errors.New("wfgraph: successor references unknown record")
	ErrCycleDetected    = errors.New("wfgraph: cycle detected, graph is not acyclic")
	ErrDuplicateEdge    = errors.New("wfgraph: duplicate edge")
	ErrDanglingEdge     = errors.New("wfgraph: edge references missing node")
	ErrUnreachable      = errors.New("wfgraph: node not reachable from start")
	ErrStartNodeMissing = errors.New("wfgraph: graph must contain exactly one start node")
)

// FetchError reports a failure of the record source while loading a template.
type FetchError struct {
	TemplateID string
	Page       int
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("wfgraph: fetch template %s page %d: %v", e.TemplateID, e.Page, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// RecordPage is one page of workflow step records.
type RecordPage struct {
	Results []Record `json:"results"`
	Next    bool     `json:"next"`
}

// RecordSource supplies the workflow step records of a template, one page at a time.
// Pages are numbered from 1.
type RecordSource interface {
	ListRecords(ctx context.Context, templateID string, page, pageSize int) (*RecordPage, error)
}

// Store defines the contract for persisting and retrieving workflow step records.
type Store interface {
	RecordSource

	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// Templates (bulk operations)
	ReplaceRecords(ctx context.Context, templateID string, records []Record) ([]Record, error)
	DeleteTemplate(ctx context.Context, templateID string) error

	// Records
	GetRecord(ctx context.Context, templateID, recordID string) (*Record, error)
	DeleteRecord(ctx context.Context, templateID, recordID string) error
}

// CheckReferences verifies that records have unique ids and that every
// successor id names a record in the same set.
func CheckReferences(records []Record) error {
	ids := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, ok := ids[r.ID]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateRecord, r.ID)
		}
		ids[r.ID] = struct{}{}
	}
	for _, r := range records {
		for _, list := range [][]string{r.SuccessNodes, r.FailureNodes, r.AlwaysNodes} {
			for _, id := range list {
				if _, ok := ids[id]; !ok {
					return fmt.Errorf("%w: %q -> %q", ErrUnknownSuccessor, r.ID, id)
				}
			}
		}
	}
	return nil
}
