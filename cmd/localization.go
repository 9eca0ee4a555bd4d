package cmd

import "github.com/huanfeng/apkinspect/internal/i18n"

// applyCommandLocalization updates command and flag descriptions after i18n is initialized.
func applyCommandLocalization() {
	rootCmd.Short = i18n.T("cmd.root.short")
	rootCmd.Long = i18n.T("cmd.root.long")

	flagUsage := map[string]string{
		"config":    "flags.config",
		"log-level": "flags.log_level",
		"lang":      "flags.lang",
		"format":    "flags.format",
	}
	for name, key := range flagUsage {
		if flag := rootCmd.PersistentFlags().Lookup(name); flag != nil {
			flag.Usage = i18n.T(key)
		}
	}

	analyzeCmd.Short = i18n.T("cmd.analyze.short")
	parseCmd.Short = i18n.T("cmd.parse.short")
	toolsCmd.Short = i18n.T("cmd.tools.short")
	strategiesCmd.Short = i18n.T("cmd.strategies.short")
	diffCmd.Short = i18n.T("cmd.diff.short")
	configCmd.Short = i18n.T("cmd.config.short")
	configInitCmd.Short = i18n.T("cmd.config_init.short")
	versionCmd.Short = i18n.T("cmd.version.short")

	if flag := analyzeCmd.Flags().Lookup("policy"); flag != nil {
		flag.Usage = i18n.T("flags.policy")
	}
	if flag := analyzeCmd.Flags().Lookup("raw"); flag != nil {
		flag.Usage = i18n.T("flags.raw")
	}
	if flag := parseCmd.Flags().Lookup("raw"); flag != nil {
		flag.Usage = i18n.T("flags.raw")
	}
	if flag := analyzeCmd.Flags().Lookup("no-compliance"); flag != nil {
		flag.Usage = i18n.T("flags.no_compliance")
	}
	if flag := toolsCmd.Flags().Lookup("clear-cache"); flag != nil {
		flag.Usage = i18n.T("flags.clear_cache")
	}
	if flag := configInitCmd.Flags().Lookup("force"); flag != nil {
		flag.Usage = i18n.T("flags.force")
	}
}
