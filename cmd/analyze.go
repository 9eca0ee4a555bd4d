package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/huanfeng/apkinspect/internal/i18n"
	"github.com/huanfeng/apkinspect/pkg/apk"
	"github.com/huanfeng/apkinspect/pkg/compliance"
	"github.com/huanfeng/apkinspect/pkg/inspect"
	"github.com/huanfeng/apkinspect/pkg/models"
	"github.com/huanfeng/apkinspect/pkg/policy"
	"github.com/huanfeng/apkinspect/pkg/report"
	"github.com/huanfeng/apkinspect/pkg/signature"
	"github.com/huanfeng/apkinspect/pkg/toolchain"
)

// errPolicyFailed makes the process exit with status 2 after the report
// has been printed
var errPolicyFailed = errors.New("policy rules failed")

var (
	analyzePolicy       string
	analyzeRaw          bool
	analyzeNoCompliance bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [apk-file]",
	Short: "Analyze an APK and print the full report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}

		absPath, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve APK path: %w", err)
		}

		rules, err := policyRules()
		if err != nil {
			return err
		}
		var gate *policy.Engine
		if len(rules) > 0 {
			if gate, err = policy.NewEngine(); err != nil {
				return err
			}
			if err := gate.Validate(rules); err != nil {
				return err
			}
		}

		opts := []inspect.Option{inspect.WithRawOutput(analyzeRaw)}
		if !analyzeNoCompliance {
			engine := compliance.NewEngine(compliance.WithPaymentKeywords(appConfig.Analysis.SensitiveKeywords))
			opts = append(opts, inspect.WithAnalyzer(engine))
		}

		analysis, err := newInspector(opts...).Inspect(cmd.Context(), absPath)
		if err != nil {
			return err
		}

		if gate != nil {
			results, err := gate.Evaluate(rules, analysis)
			if err != nil {
				return err
			}
			analysis.Policy = results
		}

		if err := report.NewRenderer(nil).Write(os.Stdout, analysis, format); err != nil {
			return err
		}

		if !policy.Passed(analysis.Policy) {
			failed := 0
			for _, res := range analysis.Policy {
				if !res.Passed {
					failed++
				}
			}
			fmt.Fprintln(os.Stderr, i18n.T("analyze.policy_failed", map[string]interface{}{
				"Failed": failed,
				"Rules":  len(analysis.Policy),
			}))
			return errPolicyFailed
		}
		return nil
	},
}

// policyRules merges policy.rules from the config with --policy
func policyRules() ([]models.PolicyRule, error) {
	rules := append([]models.PolicyRule{}, appConfig.Policy.Rules...)
	if analyzePolicy == "" {
		return rules, nil
	}
	extra, err := policy.Resolve(analyzePolicy)
	if err != nil {
		return nil, err
	}
	return append(rules, extra.Rules...), nil
}

// newInspector wires the SDK tool runner, the default extraction chain and
// the signature parser
func newInspector(opts ...inspect.Option) *inspect.Inspector {
	locator := toolchain.NewLocator(appConfig.Tools)
	runner := toolchain.NewExecRunner(locator, appConfig.Tools.Timeout, logger)
	return inspect.New(
		runner,
		apk.NewDefaultOrchestrator(logger),
		signature.NewParser(logger),
		logger,
		opts...,
	)
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzePolicy, "policy", "p", "", "policy preset (baseline, strict) or rules file")
	analyzeCmd.Flags().BoolVar(&analyzeRaw, "raw", false, "keep raw tool output in the result")
	analyzeCmd.Flags().BoolVar(&analyzeNoCompliance, "no-compliance", false, "skip the PCI DSS review")
}
