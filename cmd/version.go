package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/huanfeng/apkinspect/internal/version"
	"github.com/huanfeng/apkinspect/pkg/report"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}
		switch format {
		case report.FormatJSON:
			return report.EncodeJSON(os.Stdout, version.Get())
		case report.FormatYAML:
			return report.EncodeYAML(os.Stdout, version.Get())
		default:
			fmt.Println(version.Info())
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
