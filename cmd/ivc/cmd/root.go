package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"interview-capture/cmd/ivc/cmd/cli"
	"interview-capture/cmd/ivc/cmd/closeout"
	"interview-capture/cmd/ivc/cmd/export"
	"interview-capture/cmd/ivc/cmd/merge"
	"interview-capture/cmd/ivc/cmd/serve"
	"interview-capture/cmd/ivc/cmd/version"
	"interview-capture/cmd/ivc/cmd/worker"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ivc",
	Short: "Interview capture server and maintenance tools",
	Long: `Interview capture records interview sessions chunk by chunk, transcribes them
and scores the candidate.

- serve runs the HTTP API
- worker runs the Temporal closeout worker
- merge, closeout and export operate on stored sessions from the command line`,
	TraverseChildren: true,
	SilenceUsage:     true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(worker.Cmd)
	rootCmd.AddCommand(merge.Cmd)
	rootCmd.AddCommand(closeout.Cmd)
	rootCmd.AddCommand(export.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolVarP(&cli.Verbose, "verbose", "V", false, "verbose output")
}
