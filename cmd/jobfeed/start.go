package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobfeed/internal/scheduler"
	"github.com/amishk599/jobfeed/internal/server"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the ingestion daemon",
	Long:  "Start the scheduler and, when server.addr is set, the HTTP trigger; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug, logJSON)

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	logger.Info("config loaded",
		"schedule", cfg.Schedule,
		"families", len(cfg.Sources.Enabled()),
		"store", cfg.Store.Driver,
		"server", cfg.Server.Addr != "",
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, false)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		return err
	}
	defer st.Close()

	pipeline, err := buildPipeline(cfg, st, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		return err
	}

	sched, err := scheduler.New(cfg.Schedule, pipeline, logger)
	if err != nil {
		logger.Error("invalid schedule", "error", err)
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sched.Run(gctx) })
	if cfg.Server.Addr != "" {
		srv := server.New(cfg.Server.Addr, cfg.Server.Token, pipeline, logger)
		g.Go(func() error { return srv.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		logger.Error("daemon stopped with error", "error", err)
		return err
	}

	logger.Info("goodbye")
	return nil
}
