package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meikuraledutech/wfgraph"
)

const recordColumns = `id, identifier, success_nodes, failure_nodes, always_nodes, summary`

// GetRecord fetches a single record by its ID.
// Returns nil, nil if not found.
func (s *PGStore) GetRecord(ctx context.Context, templateID, recordID string) (*wfgraph.Record, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM workflow_nodes WHERE template_id = $1 AND id = $2`,
		templateID, recordID)

	r, err := scanRecord(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("wfgraph: get record: %w", err)
	}
	return r, nil
}

// DeleteRecord deletes a record and strips its id from the successor lists
// of the remaining records of the template.
// No error if the record doesn't exist.
func (s *PGStore) DeleteRecord(ctx context.Context, templateID, recordID string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("wfgraph: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM workflow_nodes WHERE template_id = $1 AND id = $2`, templateID, recordID,
	); err != nil {
		return fmt.Errorf("wfgraph: delete record: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE workflow_nodes SET
		   success_nodes = array_remove(success_nodes, $2),
		   failure_nodes = array_remove(failure_nodes, $2),
		   always_nodes  = array_remove(always_nodes, $2)
		 WHERE template_id = $1`, templateID, recordID,
	); err != nil {
		return fmt.Errorf("wfgraph: strip references: %w", err)
	}

	return tx.Commit(ctx)
}

func scanRecord(row pgx.Row) (*wfgraph.Record, error) {
	var (
		r       wfgraph.Record
		summary []byte
	)
	if err := row.Scan(&r.ID, &r.Identifier, &r.SuccessNodes, &r.FailureNodes, &r.AlwaysNodes, &summary); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(summary, &r.SummaryFields); err != nil {
		return nil, fmt.Errorf("decode summary %s: %w", r.ID, err)
	}
	return &r, nil
}
