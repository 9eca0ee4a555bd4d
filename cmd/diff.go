package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/huanfeng/apkinspect/internal/i18n"
	"github.com/huanfeng/apkinspect/pkg/diff"
	"github.com/huanfeng/apkinspect/pkg/report"
)

// errDrift signals differences to scripts using --exit-code
var errDrift = errors.New("analyses differ")

var diffExitCode bool

var diffCmd = &cobra.Command{
	Use:   "diff [old.json] [new.json]",
	Short: "Compare two saved analyses",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}

		oldA, err := diff.LoadAnalysis(args[0])
		if err != nil {
			return err
		}
		newA, err := diff.LoadAnalysis(args[1])
		if err != nil {
			return err
		}

		result, err := diff.Compare(oldA, newA)
		if err != nil {
			return err
		}

		switch format {
		case report.FormatJSON:
			err = report.EncodeJSON(os.Stdout, result)
		case report.FormatYAML:
			err = report.EncodeYAML(os.Stdout, result)
		default:
			printChanges(result)
		}
		if err != nil {
			return err
		}

		if diffExitCode && result.HasChanges() {
			return errDrift
		}
		return nil
	},
}

func printChanges(result *diff.Result) {
	if !result.HasChanges() {
		fmt.Println(i18n.T("diff.no_changes"))
		return
	}
	fmt.Println(i18n.T("diff.summary", map[string]interface{}{"Changes": len(result.Changes)}))
	for _, c := range result.Changes {
		fmt.Printf("  %s %s\n", opSymbol(c.Op), c.Message)
	}
}

func opSymbol(op string) string {
	switch op {
	case "add":
		return "+"
	case "remove":
		return "-"
	default:
		return "~"
	}
}

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().BoolVar(&diffExitCode, "exit-code", false, "exit with status 3 when the analyses differ")
}
