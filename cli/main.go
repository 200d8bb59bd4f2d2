package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/meikuraledutech/wfgraph"
	"github.com/meikuraledutech/wfgraph/ctxlog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "wfgraph",
		Short:         "Build and edit workflow template graphs from record files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		logger, err := ctxlog.New(level, "text", cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
		return nil
	}

	rootCmd.AddCommand(
		buildCmd(),
		removeCmd(),
		validateCmd(),
	)
	return rootCmd
}

func buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <records-file>",
		Short: "Build the graph of a record file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGraph(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")
			return writeGraph(cmd.OutOrStdout(), g, format)
		},
	}
	cmd.Flags().String("format", "json", "output format (json, mermaid)")
	return cmd
}

func removeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <records-file>",
		Short: "Remove nodes one at a time and print the resulting graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGraph(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			ids, _ := cmd.Flags().GetIntSlice("node")
			if len(ids) == 0 {
				return fmt.Errorf("at least one --node is required")
			}
			logger := ctxlog.FromContext(cmd.Context())
			for _, id := range ids {
				g, err = wfgraph.RemoveNode(g, id)
				if err != nil {
					return fmt.Errorf("remove node %d: %w", id, err)
				}
				logger.Info("removed node", "node", id, "nodes", len(g.Nodes), "edges", len(g.Edges))
			}

			format, _ := cmd.Flags().GetString("format")
			if format == "records" {
				records, err := wfgraph.Records(g)
				if err != nil {
					return err
				}
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(records); err != nil {
					enc.Close()
					return err
				}
				return enc.Close()
			}
			return writeGraph(cmd.OutOrStdout(), g, format)
		},
	}
	cmd.Flags().IntSlice("node", nil, "local id of a node to remove (repeatable, applied in order)")
	cmd.Flags().String("format", "json", "output format (json, mermaid, records)")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <records-file>",
		Short: "Check that a record file forms a valid workflow graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGraph(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := wfgraph.Validate(g); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d nodes, %d edges\n", len(g.Nodes), len(g.Edges))
			return nil
		},
	}
}

// loadGraph reads a YAML or JSON list of records and builds its graph.
func loadGraph(ctx context.Context, path string) (wfgraph.Graph, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return wfgraph.Graph{}, err
	}
	var records []wfgraph.Record
	if err := yaml.Unmarshal(b, &records); err != nil {
		return wfgraph.Graph{}, fmt.Errorf("parse %s: %w", path, err)
	}
	ctxlog.FromContext(ctx).Debug("loaded records", "path", path, "records", len(records))
	return wfgraph.Build(records)
}

func writeGraph(w io.Writer, g wfgraph.Graph, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(g)
	case "mermaid":
		_, err := io.WriteString(w, wfgraph.Mermaid(g))
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
