package merge

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"interview-capture/cmd/ivc/cmd/cli"
	"interview-capture/internal/app/converter"
	"interview-capture/internal/app/model"
	"interview-capture/internal/app/repository"
)

var (
	sessionID int64
	all       bool
	kind      string
	status    string
	parallel  int
	progress  bool
)

func init() {
	Cmd.Flags().Int64VarP(&sessionID, "session", "s", 0, "session to merge")
	Cmd.Flags().BoolVar(&all, "all", false, "merge every session with the given --status")
	Cmd.Flags().StringVarP(&kind, "kind", "k", "both", "media kind: audio, video or both")
	Cmd.Flags().StringVar(&status, "status", string(model.StatusCompleted), "session status selected by --all")
	Cmd.Flags().IntVarP(&parallel, "parallel", "j", 2, "merges run at once")
	Cmd.Flags().BoolVar(&progress, "progress", false, "force progress bars even without a terminal")

	Cmd.MarkFlagsOneRequired("session", "all")
	Cmd.MarkFlagsMutuallyExclusive("session", "all")
}

// Cmd represents the merge command
var Cmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge recorded chunks into session artifacts",
	Long: `Merge recorded chunks into session artifacts.

- Concatenate the stored chunks of a session in chunk order
- Record the artifact path on the session
- Sessions without chunks of a kind are reported and skipped`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kinds, err := parseKinds(kind)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c, cleanup, err := cli.Container(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		ids := []int64{sessionID}
		if all {
			sessions, err := c.Store.ListSessions(ctx, repository.ListOptions{Status: model.SessionStatus(status)})
			if err != nil {
				return err
			}
			ids = make([]int64, len(sessions))
			for i, s := range sessions {
				ids[i] = s.ID
			}
		}

		batch := converter.NewBatchMerger(c.Merge, converter.ProgressConfig{
			Enabled: converter.Interactive(progress),
			Writer:  cmd.ErrOrStderr(),
		}, c.Logger)
		outcomes, err := batch.MergeAll(ctx, ids, kinds, parallel)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		failed := 0
		for _, o := range outcomes {
			switch {
			case o.Err != nil:
				failed++
				fmt.Fprintf(out, "session %d %s: failed: %v\n", o.SessionID, o.Kind, o.Err)
			case o.Skipped:
				fmt.Fprintf(out, "session %d %s: no chunks\n", o.SessionID, o.Kind)
			default:
				fmt.Fprintf(out, "session %d %s: %s\n", o.SessionID, o.Kind, o.Path)
			}
		}
		fmt.Fprintln(out, converter.Summary(outcomes))
		if failed > 0 {
			return fmt.Errorf("%d merges failed", failed)
		}
		return nil
	},
}

func parseKinds(raw string) ([]model.ChunkKind, error) {
	switch raw {
	case "both", "":
		return []model.ChunkKind{model.KindVideo, model.KindAudio}, nil
	case string(model.KindAudio), string(model.KindVideo):
		return []model.ChunkKind{model.ChunkKind(raw)}, nil
	default:
		return nil, fmt.Errorf("unknown media kind %q", raw)
	}
}
