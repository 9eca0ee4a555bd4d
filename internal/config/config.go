package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	apkerrors "github.com/huanfeng/apkinspect/internal/errors"
	"github.com/huanfeng/apkinspect/pkg/compliance"
	"github.com/huanfeng/apkinspect/pkg/models"
)

// EnvPrefix prefixes every environment override, e.g. APKINSPECT_TOOLS_TIMEOUT
const EnvPrefix = "APKINSPECT"

var defaultConfig = models.Config{
	Tools: models.ToolsConfig{
		Timeout: 30 * time.Second,
	},
	Analysis: models.AnalysisConfig{
		SensitiveKeywords: compliance.DefaultPaymentKeywords,
		Lang:              "auto",
	},
	Output: models.OutputConfig{
		Format: "text",
	},
}

// Default returns the built-in configuration
func Default() *models.Config {
	cfg := defaultConfig
	cfg.Analysis.SensitiveKeywords = append([]string{}, defaultConfig.Analysis.SensitiveKeywords...)
	return &cfg
}

// Load loads configuration from file and environment. An empty path looks
// for apkinspect.yaml in the working directory and ~/.config/apkinspect;
// a missing file there is not an error.
func Load(configPath string) (*models.Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("tools.sdk_root", defaultConfig.Tools.SDKRoot)
	v.SetDefault("tools.build_tools", defaultConfig.Tools.BuildTools)
	v.SetDefault("tools.jdk_bin", defaultConfig.Tools.JDKBin)
	v.SetDefault("tools.timeout", defaultConfig.Tools.Timeout)
	v.SetDefault("analysis.sensitive_keywords", defaultConfig.Analysis.SensitiveKeywords)
	v.SetDefault("analysis.lang", defaultConfig.Analysis.Lang)
	v.SetDefault("output.format", defaultConfig.Output.Format)
	v.SetDefault("policy.rules", []models.PolicyRule{})

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("apkinspect")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "apkinspect"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, apkerrors.WrapError(err, apkerrors.ErrorTypeConfiguration, apkerrors.CodeConfigLoad, "failed to read config file").
				WithContext("path", configPath).
				WithSuggestion("Run 'apkinspect config init' to write a fresh template")
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config models.Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, apkerrors.WrapError(err, apkerrors.ErrorTypeConfiguration, apkerrors.CodeConfigLoad, "failed to unmarshal config")
	}
	return &config, nil
}

// SaveTemplate saves a configuration template
func SaveTemplate(path string) error {
	templateContent := `# apkinspect configuration file

tools:
  # Android SDK root; ANDROID_SDK_ROOT and ANDROID_HOME are used when empty
  sdk_root: ""

  # A specific build-tools directory; the newest under the SDK root is used when empty
  build_tools: ""

  # JDK bin directory holding jarsigner; JAVA_HOME/bin is used when empty
  jdk_bin: ""

  # Limit for a single aapt, apksigner or jarsigner run
  timeout: 30s

analysis:
  # Keyword stems that mark an app as payment related (label or package)
  sensitive_keywords:
` + keywordLines() + `
  # Report language: auto, en or es
  lang: auto

output:
  # text, compact, json or yaml
  format: text

policy:
  # CEL rules checked by 'apkinspect analyze --policy-config'
  # rules:
  #   - name: release_build
  #     expr: 'input.metadata.debuggable == false'
  #     failure_msg: "APK is debuggable"
  rules: []
`

	return os.WriteFile(path, []byte(templateContent), 0644)
}

func keywordLines() string {
	var b strings.Builder
	for _, kw := range compliance.DefaultPaymentKeywords {
		b.WriteString("    - \"" + kw + "\"\n")
	}
	return b.String()
}
