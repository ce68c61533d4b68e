package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/BillIndex/internal/app"
	"github.com/dharsanguruparan/BillIndex/internal/config"
	"github.com/dharsanguruparan/BillIndex/internal/pipeline"
	"github.com/dharsanguruparan/BillIndex/internal/queue"
	"github.com/dharsanguruparan/BillIndex/internal/sink"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "billindex: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billindex",
		Short: "Bill version indexer",
		Long: `billindex reconciles the published text versions of congressional bills with their
metadata and writes version records and bill rollups to Postgres and the search index.`,
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newRunCmd(),
		newReindexCmd(),
		newEnqueueCmd(),
	)
	return cmd
}

func open(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.Open(ctx, cfg, app.NewLogger(cfg))
}

func newRunCmd() *cobra.Command {
	var (
		opts             pipeline.Options
		isolateDocuments bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Index the versions of every unindexed bill in a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			opts.Isolation = a.Config.Isolation
			if isolateDocuments {
				opts.Isolation = config.IsolateDocument
			}
			res, err := a.Runner.Run(ctx, opts)
			if pushErr := a.Metrics.Push(a.Config.PushgatewayURL, "billindex"); pushErr != nil {
				a.Log.Warn().Err(pushErr).Msg("metrics push failed")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d bills, %d versions\n", res.RunID, res.Counts.Bills, res.Counts.Versions)
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum number of bills to process")
	cmd.Flags().StringVar(&opts.BillID, "bill-id", "", "Process exactly this bill, even if already indexed")
	cmd.Flags().IntVar(&opts.RearchiveSession, "rearchive-session", 0, "Flag every bill of this session for reprocessing first")
	cmd.Flags().IntVar(&opts.Session, "session", 0, "Session to process (defaults to the current session)")
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "Trace every step")
	cmd.Flags().BoolVar(&isolateDocuments, "isolate-documents", false, "Continue with the next bill after a sink failure")
	return cmd
}

func newReindexCmd() *cobra.Command {
	var session int
	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Clear the indexed flag for a whole session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			n, err := a.Writer.Reindex(ctx, session)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d bills flagged for reindexing\n", n)
			return nil
		},
	}
	cmd.Flags().IntVar(&session, "session", 0, "Session to reset")
	_ = cmd.MarkFlagRequired("session")
	return cmd
}

func newEnqueueCmd() *cobra.Command {
	var (
		limit   int
		session int
		debug   bool
	)
	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Queue one index task per candidate bill for the worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			if session == 0 {
				session = a.Config.CurrentSession
			}

			bills, err := a.Store.CandidateBills(ctx, sink.CandidateQuery{Session: session, Limit: limit})
			if err != nil {
				return err
			}
			redis := asynq.RedisClientOpt{
				Addr:     a.Config.RedisAddr,
				Password: a.Config.RedisPassword,
				DB:       a.Config.RedisDB,
			}
			client := asynq.NewClient(redis)
			defer client.Close()
			inspector := asynq.NewInspector(redis)
			defer inspector.Close()

			counts := make(map[queue.Outcome]int)
			for _, b := range bills {
				outcome, err := queue.EnqueueIndex(ctx, client, inspector, queue.IndexPayload{BillID: b.BillID, Session: session, Debug: debug}, a.Config.TaskRetries)
				if err != nil {
					return err
				}
				counts[outcome]++
				if outcome != queue.Queued {
					a.Log.Info().Str("bill_id", b.BillID).Str("outcome", string(outcome)).Msg("existing index task")
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d bills: %d queued, %d requeued after failing, %d already pending\n",
				len(bills), counts[queue.Queued], counts[queue.Requeued], counts[queue.Pending])
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of bills to queue")
	cmd.Flags().IntVar(&session, "session", 0, "Session to queue (defaults to the current session)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Trace every step in the worker")
	return cmd
}
