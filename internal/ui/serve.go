package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/quorum/internal/jobs"
	"github.com/javiermolinar/quorum/internal/server"
)

func (a *App) serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the JSON API for events, availability, heatmaps and meetings.

Aggregated availability is cached in Redis when [cache] redis_addr is set.
Stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.config.Server.Addr
			}
			srv := server.New(svc,
				server.WithAddr(addr),
				server.WithRetention(a.config.Retention()),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", srv.Addr())
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: [server] addr)")
	return cmd
}

func (a *App) workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the background cleanup worker",
		Long: `Run the asynq worker that deletes expired events on the
[worker] cleanup_schedule. Requires [cache] redis_addr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			w, err := jobs.NewWorker(a.jobsConfig(), svc)
			if err != nil {
				return err
			}
			return w.Run(cmd.Context())
		},
	}
}

func (a *App) cleanupCmd() *cobra.Command {
	var (
		enqueue       bool
		retentionDays int
	)

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete events whose dates are long past",
		Long: `Delete every event whose last date is older than the retention window,
with its responses and meeting.

With --enqueue the cleanup is handed to a running worker instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("retention-days") {
				retentionDays = a.config.Worker.RetentionDays
			}

			if enqueue {
				cfg := a.jobsConfig()
				cfg.RetentionDays = retentionDays
				info, err := jobs.Enqueue(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Enqueued cleanup task %s on queue %s\n", formatID(info.ID), info.Queue)
				return nil
			}

			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			ids, err := svc.CleanupExpired(cmd.Context(), jobs.CleanupPayload{RetentionDays: retentionDays}.Retention())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Deleted %s\n", pluralize(len(ids), "expired event"))
			for _, id := range ids {
				fmt.Fprintf(out, "  %s\n", formatMuted(id))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&enqueue, "enqueue", false, "Hand the cleanup to the worker through Redis")
	cmd.Flags().IntVar(&retentionDays, "retention-days", 0, "Days to keep events after their last date (default: [worker] retention_days)")
	return cmd
}

func (a *App) jobsConfig() jobs.Config {
	return jobs.Config{
		RedisAddr:     a.config.Cache.RedisAddr,
		RedisPassword: a.config.Cache.RedisPassword,
		RedisDB:       a.config.Cache.RedisDB,
		Concurrency:   a.config.Worker.Concurrency,
		Schedule:      a.config.Worker.CleanupSchedule,
		RetentionDays: a.config.Worker.RetentionDays,
	}
}
