// Package memstore is an in-memory wfgraph.Store, used by the CLI and in tests.
package memstore

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/meikuraledutech/wfgraph"
)

// Store implements wfgraph.Store in memory. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	templates map[string][]wfgraph.Record
}

// New creates an empty Store.
func New() *Store {
	return &Store{templates: make(map[string][]wfgraph.Record)}
}

// CreateSchema is a no-op.
func (s *Store) CreateSchema(ctx context.Context) error { return nil }

// DropSchema removes every template.
func (s *Store) DropSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates = make(map[string][]wfgraph.Record)
	return nil
}

// ReplaceRecords stores records as the full content of a template.
// Records without an ID get a generated UUID.
func (s *Store) ReplaceRecords(ctx context.Context, templateID string, records []wfgraph.Record) ([]wfgraph.Record, error) {
	out := make([]wfgraph.Record, len(records))
	for i, r := range records {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		out[i] = cloneRecord(r)
	}
	if err := wfgraph.CheckReferences(out); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[templateID] = out
	return cloneRecords(out), nil
}

// ListRecords returns one page of a template's records in insertion order.
// An unknown template yields an empty last page.
func (s *Store) ListRecords(ctx context.Context, templateID string, page, pageSize int) (*wfgraph.RecordPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = wfgraph.DefaultPageSize
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.templates[templateID]
	start := (page - 1) * pageSize
	if start >= len(all) {
		return &wfgraph.RecordPage{Results: []wfgraph.Record{}}, nil
	}
	end := min(start+pageSize, len(all))
	return &wfgraph.RecordPage{
		Results: cloneRecords(all[start:end]),
		Next:    end < len(all),
	}, nil
}

// GetRecord returns nil, nil if the record does not exist.
func (s *Store) GetRecord(ctx context.Context, templateID, recordID string) (*wfgraph.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.templates[templateID] {
		if r.ID == recordID {
			c := cloneRecord(r)
			return &c, nil
		}
	}
	return nil, nil
}

// DeleteRecord removes a record and every reference to it.
// No error if the record doesn't exist.
func (s *Store) DeleteRecord(ctx context.Context, templateID, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, ok := s.templates[templateID]
	if !ok {
		return nil
	}
	kept := make([]wfgraph.Record, 0, len(all))
	for _, r := range all {
		if r.ID == recordID {
			continue
		}
		r.SuccessNodes = without(r.SuccessNodes, recordID)
		r.FailureNodes = without(r.FailureNodes, recordID)
		r.AlwaysNodes = without(r.AlwaysNodes, recordID)
		kept = append(kept, r)
	}
	s.templates[templateID] = kept
	return nil
}

// DeleteTemplate removes all records of a template.
func (s *Store) DeleteTemplate(ctx context.Context, templateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.templates, templateID)
	return nil
}

func without(ids []string, id string) []string {
	return slices.DeleteFunc(slices.Clone(ids), func(s string) bool { return s == id })
}

func cloneRecord(r wfgraph.Record) wfgraph.Record {
	r.SuccessNodes = nonNil(slices.Clone(r.SuccessNodes))
	r.FailureNodes = nonNil(slices.Clone(r.FailureNodes))
	r.AlwaysNodes = nonNil(slices.Clone(r.AlwaysNodes))
	return r
}

func cloneRecords(rs []wfgraph.Record) []wfgraph.Record {
	out := make([]wfgraph.Record, len(rs))
	for i, r := range rs {
		out[i] = cloneRecord(r)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
