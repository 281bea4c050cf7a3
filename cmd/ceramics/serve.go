package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sandevgo/ceramicsrag/internal/config"
	"github.com/sandevgo/ceramicsrag/internal/transport/web"
	"github.com/sandevgo/ceramicsrag/pkg/log"
	"github.com/sandevgo/ceramicsrag/pkg/srv"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long:  `Serves stateless answers and persistent sessions over HTTP until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ctx, flushLog := setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting ceramics server")

		p, err := newPipeline(ctx)
		if err != nil {
			return err
		}

		sessions, db, err := p.openSessions(ctx)
		if err != nil {
			return err
		}

		server := web.NewServer(config.NewServerConfig(ctx), p.orchestrator, sessions, p.index)

		err = srv.Run(ctx, srv.NewCleanup(db.Close), server)
		logger.Info().Msg("ceramics server has been shut down gracefully")
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
