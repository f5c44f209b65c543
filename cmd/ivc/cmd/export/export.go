package export

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"interview-capture/cmd/ivc/cmd/cli"
)

var outputFilePath string

func init() {
	Cmd.Flags().StringVarP(&outputFilePath, "outputFilePath", "o", "", "copy the workbook to this path")
}

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export every evaluation to an excel workbook",
	Long: `Export every evaluation to an excel workbook

- One row per evaluation with the candidate, position and scores
- The workbook is written under the media storage exports directory`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		c, cleanup, err := cli.Container(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		rel, err := c.Reports.ExportAll(ctx)
		if err != nil {
			return err
		}
		path := c.Disk.Abs(rel)
		if outputFilePath != "" {
			if err := copyFile(path, outputFilePath); err != nil {
				return err
			}
			path = outputFilePath
		}
		fmt.Fprintf(cmd.OutOrStdout(), "export finished, exported file path: %v\n", path)
		return nil
	},
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
