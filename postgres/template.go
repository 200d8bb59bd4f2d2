package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/meikuraledutech/wfgraph"
	"github.com/meikuraledutech/wfgraph/ctxlog"
)

// ReplaceRecords saves the full record set of a template in one transaction,
// replacing whatever was stored before. Records without IDs get auto-generated
// UUIDs. Successor references are checked before anything is written.
// Returns the records with all IDs filled in.
func (s *PGStore) ReplaceRecords(ctx context.Context, templateID string, records []wfgraph.Record) ([]wfgraph.Record, error) {
	out := make([]wfgraph.Record, len(records))
	copy(out, records)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.NewString()
		}
	}
	if err := wfgraph.CheckReferences(out); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("wfgraph: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM workflow_nodes WHERE template_id = $1`, templateID); err != nil {
		return nil, fmt.Errorf("wfgraph: delete records: %w", err)
	}

	for i, r := range out {
		summary, err := json.Marshal(r.SummaryFields)
		if err != nil {
			return nil, fmt.Errorf("wfgraph: encode summary %s: %w", r.ID, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO workflow_nodes
			   (id, template_id, position, identifier, success_nodes, failure_nodes, always_nodes, summary)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			r.ID, templateID, i, r.Identifier,
			nonNil(r.SuccessNodes), nonNil(r.FailureNodes), nonNil(r.AlwaysNodes),
			json.RawMessage(summary),
		); err != nil {
			return nil, fmt.Errorf("wfgraph: insert record %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("wfgraph: commit: %w", err)
	}

	ctxlog.FromContext(ctx).Debug("replaced workflow records", "template", templateID, "records", len(out))
	return out, nil
}

// DeleteTemplate removes all records of a template.
// No error if the template doesn't exist.
func (s *PGStore) DeleteTemplate(ctx context.Context, templateID string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM workflow_nodes WHERE template_id = $1`, templateID); err != nil {
		return fmt.Errorf("wfgraph: delete template: %w", err)
	}
	return nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
