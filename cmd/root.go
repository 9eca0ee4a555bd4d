package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/huanfeng/apkinspect/internal/config"
	apkerrors "github.com/huanfeng/apkinspect/internal/errors"
	"github.com/huanfeng/apkinspect/internal/i18n"
	"github.com/huanfeng/apkinspect/internal/version"
	"github.com/huanfeng/apkinspect/pkg/models"
	"github.com/huanfeng/apkinspect/pkg/report"
	"github.com/huanfeng/apkinspect/pkg/utils"
)

var (
	cfgFile    string
	logLevel   string
	langFlag   string
	formatFlag string

	appConfig *models.Config
	logger    utils.Logger
)

var rootCmd = &cobra.Command{
	Use:           "apkinspect",
	Short:         "Inspect Android APKs for metadata, signatures and PCI DSS risk",
	Version:       version.Short(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		appConfig = cfg

		level, err := utils.ParseLogLevel(logLevel)
		if err != nil {
			return err
		}
		logCfg := utils.DefaultLoggerConfig()
		logCfg.Level = level
		if err := utils.InitGlobalLogger(logCfg); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = utils.GetGlobalLogger()

		// the report language may come from the config file
		if f := cmd.Flag("lang"); (f == nil || !f.Changed) && cfg.Analysis.Lang != "" {
			if err := i18n.Init(cfg.Analysis.Lang); err != nil {
				logger.Warn("Failed to load locales: %v", err)
			}
		}
		return nil
	},
}

// Execute runs the root command and exits with a non-zero status on error
func Execute() {
	if err := i18n.Init(langFromArgs(os.Args[1:])); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	applyCommandLocalization()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(reportError(err))
	}
}

// reportError prints err and returns the exit status for it
func reportError(err error) int {
	switch err {
	case errPolicyFailed:
		return 2
	case errDrift:
		return 3
	}
	if rerr, ok := apkerrors.As(err); ok {
		fmt.Fprint(os.Stderr, rerr.FormatDetailed())
		return 1
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}

// langFromArgs finds --lang before cobra parses flags, so help text is
// already localized
func langFromArgs(args []string) string {
	for i, arg := range args {
		switch {
		case arg == "--":
			return ""
		case strings.HasPrefix(arg, "--lang="):
			return strings.TrimPrefix(arg, "--lang=")
		case arg == "--lang" && i+1 < len(args):
			return args[i+1]
		}
	}
	return ""
}

// outputFormat resolves --format against output.format
func outputFormat(cmd *cobra.Command) (report.Format, error) {
	value := formatFlag
	if f := cmd.Flag("format"); (f == nil || !f.Changed) && appConfig != nil {
		value = appConfig.Output.Format
	}
	return report.ParseFormat(value)
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./apkinspect.yaml or ~/.config/apkinspect/apkinspect.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&langFlag, "lang", "auto", "report language: auto, en or es")
	rootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "output format: text, compact, json or yaml")
}
