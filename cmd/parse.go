package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/huanfeng/apkinspect/pkg/inspect"
	"github.com/huanfeng/apkinspect/pkg/report"
)

var parseRaw bool

var parseCmd = &cobra.Command{
	Use:   "parse [apk-file]",
	Short: "Extract APK metadata only",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}

		// Convert to absolute path
		absPath, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve APK path: %w", err)
		}

		analysis, err := newInspector(inspect.WithRawOutput(parseRaw)).InspectMetadata(cmd.Context(), absPath)
		if err != nil {
			return err
		}

		switch format {
		case report.FormatJSON:
			return report.EncodeJSON(os.Stdout, analysis)
		case report.FormatYAML:
			return report.EncodeYAML(os.Stdout, analysis)
		default:
			return report.NewRenderer(nil).WriteMetadata(os.Stdout, analysis)
		}
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVar(&parseRaw, "raw", false, "keep raw tool output in the result")
}
