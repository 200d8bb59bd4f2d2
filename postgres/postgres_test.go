package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/wfgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore connects to DATABASE_URL and recreates the schema.
// Tests are skipped when no database is configured.
func newTestStore(t *testing.T) *PGStore {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := New(pool)
	require.NoError(t, s.DropSchema(ctx))
	require.NoError(t, s.CreateSchema(ctx))
	t.Cleanup(func() { _ = s.DropSchema(context.Background()) })
	return s
}

func TestPGStore_ReplaceAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	records := []wfgraph.Record{
		{ID: "a", SuccessNodes: []string{"b"}, FailureNodes: []string{"c"}},
		{ID: "b", AlwaysNodes: []string{"c"}},
		{
			ID: "c",
			SummaryFields: wfgraph.SummaryFields{
				UnifiedJobTemplate: &wfgraph.TemplateSummary{ID: 3, Name: "cleanup"},
			},
		},
	}
	_, err := s.ReplaceRecords(ctx, "wf", records)
	require.NoError(t, err)

	p, err := s.ListRecords(ctx, "wf", 1, 2)
	require.NoError(t, err)
	require.Len(t, p.Results, 2)
	assert.True(t, p.Next)
	assert.Equal(t, "a", p.Results[0].ID)
	assert.Equal(t, []string{"b"}, p.Results[0].SuccessNodes)

	all, err := wfgraph.FetchAll(ctx, s, "wf", 2)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.NotNil(t, all[2].SummaryFields.UnifiedJobTemplate)
	assert.Equal(t, "cleanup", all[2].SummaryFields.UnifiedJobTemplate.Name)
}

func TestPGStore_ReplaceIsAtomic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.ReplaceRecords(ctx, "wf", []wfgraph.Record{{ID: "a"}})
	require.NoError(t, err)

	_, err = s.ReplaceRecords(ctx, "wf", []wfgraph.Record{{ID: "x", SuccessNodes: []string{"ghost"}}})
	require.ErrorIs(t, err, wfgraph.ErrUnknownSuccessor)

	r, err := s.GetRecord(ctx, "wf", "a")
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestPGStore_DeleteRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.ReplaceRecords(ctx, "wf", []wfgraph.Record{
		{ID: "a", SuccessNodes: []string{"b"}},
		{ID: "b"},
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteRecord(ctx, "wf", "b"))

	r, err := s.GetRecord(ctx, "wf", "b")
	require.NoError(t, err)
	assert.Nil(t, r)

	a, err := s.GetRecord(ctx, "wf", "a")
	require.NoError(t, err)
	assert.Empty(t, a.SuccessNodes)

	require.NoError(t, s.DeleteTemplate(ctx, "wf"))
	p, err := s.ListRecords(ctx, "wf", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, p.Results)
}
