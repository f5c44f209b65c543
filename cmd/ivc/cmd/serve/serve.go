package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"interview-capture/cmd/ivc/cmd/cli"
	"interview-capture/internal/api/server"
)

var port string

func init() {
	Cmd.Flags().StringVarP(&port, "port", "p", "", "listen port, overrides PORT")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interview capture HTTP API",
	Long: `Run the interview capture HTTP API.

Sessions, chunk uploads, transcripts and evaluations are served under /api/v1.
/health probes the record store and the chunk index; /metrics exposes Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c, cleanup, err := cli.Container(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		cfg := server.ConfigFrom(c)
		if port != "" {
			cfg.Port = port
		}
		srv := server.NewServer(cfg, server.Services(c), c.Metrics, c.HealthChecks(), c.Logger)
		if err := srv.ListenAndServe(ctx, server.DefaultShutdownTimeout); err != nil {
			c.Logger.Error("server stopped", zap.Error(err))
			return err
		}
		return nil
	},
}
