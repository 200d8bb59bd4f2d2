package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS workflow_nodes (
    id            TEXT NOT NULL,
    template_id   TEXT NOT NULL,
    position      INTEGER NOT NULL,
    identifier    TEXT NOT NULL DEFAULT '',
    success_nodes TEXT[] NOT NULL DEFAULT '{}',
    failure_nodes TEXT[] NOT NULL DEFAULT '{}',
    always_nodes  TEXT[] NOT NULL DEFAULT '{}',
    summary       JSONB NOT NULL DEFAULT '{}',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (template_id, id)
);

CREATE INDEX IF NOT EXISTS idx_workflow_nodes_position ON workflow_nodes(template_id, position);
`

// CreateSchema creates the workflow_nodes table if it doesn't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the workflow_nodes table.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS workflow_nodes CASCADE;`)
	return err
}
