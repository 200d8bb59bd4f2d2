package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/wfgraph"
	"github.com/meikuraledutech/wfgraph/postgres"
)

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	// Wire up the postgres implementation behind the Store interface.
	var store wfgraph.Store = postgres.New(pool)

	// 1. Create tables
	if err := store.CreateSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}
	fmt.Println("schema created")

	// ── Bulk insert a deploy workflow ─────────────────────────────────
	records := []wfgraph.Record{
		{ID: "sync", SuccessNodes: []string{"build"}, FailureNodes: []string{"notify"}},
		{ID: "build", SuccessNodes: []string{"deploy"}, AlwaysNodes: []string{"notify"}},
		{ID: "deploy"},
		{ID: "notify"},
	}
	for i := range records {
		records[i].SummaryFields.UnifiedJobTemplate = &wfgraph.TemplateSummary{ID: int64(i + 1), Name: records[i].ID}
	}
	if _, err := store.ReplaceRecords(ctx, "deploy-app", records); err != nil {
		log.Fatalf("replace records: %v", err)
	}
	fmt.Println("records stored")

	// ── Open an editor and build the graph ────────────────────────────
	editor, err := wfgraph.Open(ctx, store, "deploy-app", wfgraph.DefaultPageSize)
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	fmt.Println("\ngraph built:")
	printJSON(editor.Graph())

	// ── Remove "build" (local id 3); its children are re-wired ────────
	g, err := editor.Remove(ctx, 3)
	if err != nil {
		log.Fatalf("remove: %v", err)
	}
	fmt.Println("\nafter removing build:")
	fmt.Print(wfgraph.Mermaid(g))

	// ── Save the edited graph back ────────────────────────────────────
	if err := editor.Save(ctx, store); err != nil {
		log.Fatalf("save: %v", err)
	}
	page, err := store.ListRecords(ctx, "deploy-app", 1, wfgraph.DefaultPageSize)
	if err != nil {
		log.Fatalf("list: %v", err)
	}
	fmt.Println("\nstored records:")
	printJSON(page.Results)

	// ── Cleanup ───────────────────────────────────────────────────────
	if err := store.DeleteTemplate(ctx, "deploy-app"); err != nil {
		log.Fatalf("delete: %v", err)
	}
	fmt.Println("\ntemplate deleted")
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
