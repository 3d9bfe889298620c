package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/shaswatnaman/Nirnay-112/pkg/log"
	"github.com/shaswatnaman/Nirnay-112/pkg/srv"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Nirnay-112 services",
	Long:  `Initializes the decision engine and starts the configured transports.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// logger setup
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting nirnay-112")

		// Define services using the setup.go logic
		services := NewServices(ctx)

		// Start services
		srv.StartServices(ctx, services)

		// Wait for shutdown signal
		srv.ShutdownServices(ctx, services)
		logger.Info().Msg("nirnay-112 has been shut down gracefully")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
