package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"interview-capture/cmd/ivc/cmd/cli"
	"interview-capture/internal/app/temporal/activities"
	"interview-capture/internal/app/temporal/pkg/common"
	tworker "interview-capture/internal/app/temporal/worker"
)

var (
	identity      string
	healthAddr    string
	maxActivities int
)

func init() {
	Cmd.Flags().StringVar(&identity, "identity", "", "worker identity (default ivc-worker-<hostname>)")
	Cmd.Flags().StringVar(&healthAddr, "health-addr", ":8081", "address of the health endpoint")
	Cmd.Flags().IntVar(&maxActivities, "max-activities", 10, "maximum concurrent activity executions")
}

// Cmd represents the worker command
var Cmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the Temporal session closeout worker",
	Long: `Run the Temporal session closeout worker.

The worker executes SessionCloseoutWorkflow: merge media, finalize the transcript
and evaluate the session. The API schedules these workflows when closeout_backend
is "temporal".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c, cleanup, err := cli.Container(ctx)
		if err != nil {
			return err
		}
		defer cleanup()
		logger := c.Logger
		tcfg := c.Config.Temporal

		if identity == "" {
			host, _ := os.Hostname()
			identity = fmt.Sprintf("ivc-worker-%s", host)
		}

		tc, err := common.NewTemporalClient(tcfg, logger)
		if err != nil {
			return err
		}
		defer tc.Close()

		w := tworker.New(tc, tcfg.TaskQueue, activities.NewCloseoutActivities(c.Closeout), tworker.Options{
			Identity:      identity,
			MaxActivities: maxActivities,
		})

		status := tworker.NewHealthStatus(identity, tcfg.TaskQueue, tcfg.HostPort)
		healthSrv := &http.Server{Addr: healthAddr, Handler: tworker.HealthHandler(status), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("health server failed", zap.Error(err))
			}
		}()

		if err := w.Start(); err != nil {
			status.SetTemporal(false, err)
			return fmt.Errorf("start worker: %w", err)
		}
		logger.Info("worker started",
			zap.String("identity", identity),
			zap.String("task_queue", tcfg.TaskQueue),
			zap.String("health", healthAddr))

		<-ctx.Done()
		logger.Info("shutting down worker")
		w.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return healthSrv.Shutdown(shutdownCtx)
	},
}
