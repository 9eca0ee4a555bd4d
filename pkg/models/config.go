package models

import "time"

// Config represents the application configuration
type Config struct {
	Tools    ToolsConfig    `mapstructure:"tools" json:"tools" yaml:"tools"`
	Analysis AnalysisConfig `mapstructure:"analysis" json:"analysis" yaml:"analysis"`
	Output   OutputConfig   `mapstructure:"output" json:"output" yaml:"output"`
	Policy   PolicyConfig   `mapstructure:"policy" json:"policy" yaml:"policy"`
}

// ToolsConfig locates the Android SDK and JDK binaries
type ToolsConfig struct {
	SDKRoot    string        `mapstructure:"sdk_root" json:"sdk_root" yaml:"sdk_root"`
	BuildTools string        `mapstructure:"build_tools" json:"build_tools" yaml:"build_tools"`
	JDKBin     string        `mapstructure:"jdk_bin" json:"jdk_bin" yaml:"jdk_bin"`
	Timeout    time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`
}

// AnalysisConfig tunes the compliance heuristics and report language
type AnalysisConfig struct {
	SensitiveKeywords []string `mapstructure:"sensitive_keywords" json:"sensitive_keywords" yaml:"sensitive_keywords"`
	Lang              string   `mapstructure:"lang" json:"lang" yaml:"lang"`
}

// OutputConfig selects how results are printed
type OutputConfig struct {
	Format string `mapstructure:"format" json:"format" yaml:"format"` // "text", "compact", "json", "yaml"
}

// PolicyConfig holds CEL rules evaluated against each analysis
type PolicyConfig struct {
	Rules []PolicyRule `mapstructure:"rules" json:"rules" yaml:"rules"`
}

// PolicyRule is a single CEL expression that must evaluate to true
type PolicyRule struct {
	Name       string `mapstructure:"name" json:"name" yaml:"name"`
	Expr       string `mapstructure:"expr" json:"expr" yaml:"expr"`
	FailureMsg string `mapstructure:"failure_msg" json:"failure_msg" yaml:"failure_msg"`
}

// PolicyResult is the outcome of one rule
type PolicyResult struct {
	RuleName   string `json:"rule_name" yaml:"rule_name"`
	Passed     bool   `json:"passed" yaml:"passed"`
	FailureMsg string `json:"failure_msg,omitempty" yaml:"failure_msg,omitempty"`
}
