package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/huanfeng/apkinspect/internal/i18n"
	"github.com/huanfeng/apkinspect/pkg/report"
	"github.com/huanfeng/apkinspect/pkg/toolchain"
)

var (
	toolsClearCache bool
	toolsRequire    []string
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Show which SDK and JDK tools were found",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}

		locator := toolchain.NewLocator(appConfig.Tools)
		if toolsClearCache {
			locator.ClearCache()
		}
		statuses := locator.CheckAll()

		switch format {
		case report.FormatJSON:
			if err := report.EncodeJSON(os.Stdout, statuses); err != nil {
				return err
			}
		case report.FormatYAML:
			if err := report.EncodeYAML(os.Stdout, statuses); err != nil {
				return err
			}
		default:
			printToolTable(statuses)
		}

		if len(toolsRequire) == 0 {
			return nil
		}
		required := make([]toolchain.Tool, 0, len(toolsRequire))
		for _, name := range toolsRequire {
			required = append(required, toolchain.Tool(strings.TrimSpace(name)))
		}
		return locator.Require(required...)
	},
}

func printToolTable(statuses []toolchain.ToolStatus) {
	fmt.Println(i18n.T("tools.title"))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, i18n.T("tools.header"))
	fmt.Fprintln(w, "----\t------\t-------\t------\t-------")

	var missing []toolchain.Tool
	for _, st := range statuses {
		status := "❌ " + i18n.T("tools.missing")
		if st.Available {
			status = "✅ " + i18n.T("tools.available")
		} else {
			missing = append(missing, st.Name)
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			st.Name, status, st.Version, st.Source, strings.Join(st.UsedBy, ", "))
	}
	w.Flush()

	for _, tool := range missing {
		fmt.Printf("\n🔧 %s\n", i18n.T("tools.install", map[string]interface{}{"Tool": tool}))
		for i, step := range toolchain.InstallInstructions(tool) {
			fmt.Printf("   %d. %s\n", i+1, step)
		}
	}
}

func init() {
	rootCmd.AddCommand(toolsCmd)

	toolsCmd.Flags().BoolVar(&toolsClearCache, "clear-cache", false, "clear the tool location cache first")
	toolsCmd.Flags().StringSliceVar(&toolsRequire, "require", nil, "exit non-zero unless these tools are found (e.g. aapt,apksigner)")
}
