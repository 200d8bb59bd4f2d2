package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/wfgraph"
	"github.com/meikuraledutech/wfgraph/api"
	"github.com/meikuraledutech/wfgraph/config"
	"github.com/meikuraledutech/wfgraph/ctxlog"
	"github.com/meikuraledutech/wfgraph/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	logger, err := ctxlog.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), cfg.Database.URL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	var store wfgraph.Store = postgres.New(pool)

	app := api.New(store, cfg.Fetch.PageSize, logger)

	logger.Info("listening", "addr", cfg.HTTP.Addr)
	if err := app.Listen(cfg.HTTP.Addr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
