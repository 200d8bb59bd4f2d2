package postgres

import (
	"context"
	"fmt"

	"github.com/meikuraledutech/wfgraph"
)

// ListRecords returns one page of a template's records, ordered by position.
// Pages are numbered from 1. An unknown template yields an empty last page.
func (s *PGStore) ListRecords(ctx context.Context, templateID string, page, pageSize int) (*wfgraph.RecordPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = wfgraph.DefaultPageSize
	}

	// Read one extra row to learn whether another page follows.
	rows, err := s.db.Query(ctx,
		`SELECT `+recordColumns+` FROM workflow_nodes
		 WHERE template_id = $1 ORDER BY position LIMIT $2 OFFSET $3`,
		templateID, pageSize+1, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("wfgraph: list records: %w", err)
	}
	defer rows.Close()

	p := &wfgraph.RecordPage{Results: []wfgraph.Record{}}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("wfgraph: scan record: %w", err)
		}
		p.Results = append(p.Results, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("wfgraph: rows records: %w", err)
	}

	if len(p.Results) > pageSize {
		p.Results = p.Results[:pageSize]
		p.Next = true
	}
	return p, nil
}
