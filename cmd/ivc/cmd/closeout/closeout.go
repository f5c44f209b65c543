package closeout

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"interview-capture/cmd/ivc/cmd/cli"
)

var sessionID int64

func init() {
	Cmd.Flags().Int64VarP(&sessionID, "session", "s", 0, "session to close out")
	Cmd.MarkFlagRequired("session")
}

// Cmd represents the closeout command
var Cmd = &cobra.Command{
	Use:   "closeout",
	Short: "Run the closeout pipeline of an ended session in the foreground",
	Long: `Run the closeout pipeline of an ended session in the foreground

- Merge the video and audio chunks
- Write the speech-to-text file and transcribe the merged audio
- Score the session and print the summary as JSON

Useful to recover a session whose background closeout failed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c, cleanup, err := cli.Container(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		summary, err := c.Closeout.Run(ctx, sessionID)
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if summary != nil {
			if encErr := enc.Encode(summary); encErr != nil {
				return encErr
			}
		}
		return err
	},
}
