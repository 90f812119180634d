package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/evrank/core"
	"github.com/rushteam/evrank/feature"
	"github.com/rushteam/evrank/mcpserver"
	"github.com/rushteam/evrank/pipeline"
	"github.com/rushteam/evrank/rerank"
	"github.com/rushteam/evrank/webui"
)

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:                "evrank",
		Short:              "Score and rank electric vehicles against a user's trained preferences",
		SilenceUsage:       true,
		PersistentPreRunE:  a.init,
		PersistentPostRunE: a.close,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "evrank.yaml", "path to the YAML config file")

	root.AddCommand(
		newServeUICmd(a),
		newServeMCPCmd(a),
		newServeCmd(a),
		newScoreCmd(a),
		newRankCmd(a),
	)
	return root
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func newServeUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve-ui",
		Short: "Run the web UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			return a.webUI().ListenAndServe(ctx, a.cfg.HTTP.Addr)
		},
	}
}

func newServeMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve-mcp",
		Short: "Run the MCP tool server on stdin/stdout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			return a.mcpServer().Serve(ctx, os.Stdin, os.Stdout)
		},
	}
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI and the MCP stdio server together",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			eg, ctx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				return a.webUI().ListenAndServe(ctx, a.cfg.HTTP.Addr)
			})
			eg.Go(func() error {
				err := a.mcpServer().Serve(ctx, os.Stdin, os.Stdout)
				// stdin 关闭后继续提供 Web UI
				if err == nil || errors.Is(err, io.EOF) || ctx.Err() != nil {
					return nil
				}
				return err
			})
			return eg.Wait()
		},
	}
}

func newScoreCmd(a *app) *cobra.Command {
	var userID string
	values := make(map[string]*float64, len(feature.Keys))
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a single car and print the result as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fields := make(map[string]any, len(feature.Keys))
			for _, key := range feature.Keys {
				if cmd.Flags().Changed(key) {
					fields[key] = *values[key]
				}
			}
			score, err := a.ranker.ScoreOne(cmd.Context(), userID, core.NewCandidate(fields))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"user_id":           userID,
				"utility":           score.Candidate.Utility,
				"coefficients_used": score.Coefficients,
				"car_features":      fields,
				"source":            score.Source,
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user ID whose coefficients to use")
	for _, key := range feature.Keys {
		values[key] = cmd.Flags().Float64(key, 0, fmt.Sprintf("raw %s value", key))
	}
	return cmd
}

func newRankCmd(a *app) *cobra.Command {
	var (
		userID string
		file   string
		top    int
	)
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank a JSON array of cars (from --file or stdin)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readInput(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			cars, err := core.ParseCandidates(data)
			if err != nil {
				return err
			}
			result, err := a.ranker.RankMany(cmd.Context(), userID, cars)
			if err != nil {
				return err
			}
			display := &pipeline.Pipeline{Nodes: []pipeline.Node{&rerank.TopNNode{N: top}}}
			shown, err := display.Run(cmd.Context(), core.NewRankContext(userID), result.Ranked)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"user_id":           userID,
				"best_car":          result.Best,
				"all_cars_ranked":   shown,
				"coefficients_used": result.Coefficients,
				"source":            result.Source,
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user ID whose coefficients to use")
	cmd.Flags().StringVar(&file, "file", "", "JSON file with an array of cars (default stdin)")
	cmd.Flags().IntVar(&top, "top", 0, "only print the top N ranked cars (0 = all)")
	return cmd
}

func (a *app) webUI() *webui.Server {
	return webui.New(a.ranker,
		webui.WithLogger(a.logger),
		webui.WithMetrics(a.metrics),
		webui.WithRoundPlaces(a.cfg.UI.RoundPlaces),
	)
}

func (a *app) mcpServer() *mcpserver.Server {
	return mcpserver.New(a.ranker, mcpserver.WithLogger(a.logger))
}

func readInput(stdin io.Reader, file string) ([]byte, error) {
	if file == "" || file == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(file)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
