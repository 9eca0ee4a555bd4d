package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/huanfeng/apkinspect/pkg/apk"
	"github.com/huanfeng/apkinspect/pkg/models"
	"github.com/huanfeng/apkinspect/pkg/toolchain"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the metadata extraction strategies in the order they run",
	RunE: func(cmd *cobra.Command, args []string) error {
		locator := toolchain.NewLocator(appConfig.Tools)
		strategies := apk.NewDefaultOrchestrator(logger).Strategies()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PRIORITY\tNAME\tMETHOD\tAVAILABLE")
		fmt.Fprintln(w, "--------\t----\t------\t---------")

		for _, info := range strategies {
			available := "Yes"
			switch info.Method {
			case models.ExtractionAAPT:
				available = yesNo(locator.Locate(toolchain.AAPT).Available)
			case models.ExtractionAAPT2:
				available = yesNo(locator.Locate(toolchain.AAPT2).Available)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", info.Priority, info.Name, info.Method, available)
		}

		return w.Flush()
	},
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}
