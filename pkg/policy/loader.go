package policy

import (
	"embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/huanfeng/apkinspect/internal/errors"
	"github.com/huanfeng/apkinspect/pkg/models"
)

//go:embed presets/*.yaml
var presetFS embed.FS

var presetFiles = map[string]string{
	"baseline": "presets/baseline.yaml",
	"strict":   "presets/strict.yaml",
}

// Preset returns a built-in rule set by name
func Preset(name string) (*models.PolicyConfig, error) {
	path, ok := presetFiles[name]
	if !ok {
		return nil, errors.NewError(errors.ErrorTypeNotFound, errors.CodePolicyCompile, fmt.Sprintf("unknown policy preset %q", name)).
			WithSuggestions(PresetNames())
	}
	data, err := presetFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset %s: %w", name, err)
	}
	return parse(data, name)
}

// PresetNames lists the built-in rule sets
func PresetNames() []string {
	names := make([]string, 0, len(presetFiles))
	for name := range presetFiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadFile reads rules from a YAML file with a top-level rules list
func LoadFile(path string) (*models.PolicyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeFileSystem, errors.CodeConfigLoad, "failed to read policy file").
			WithContext("path", path)
	}
	return parse(data, path)
}

// Resolve treats ref as a preset name first and as a file path otherwise
func Resolve(ref string) (*models.PolicyConfig, error) {
	if _, ok := presetFiles[ref]; ok {
		return Preset(ref)
	}
	return LoadFile(ref)
}

func parse(data []byte, source string) (*models.PolicyConfig, error) {
	var config models.PolicyConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeConfiguration, errors.CodePolicyCompile, "invalid policy YAML").
			WithContext("source", source)
	}
	return &config, nil
}
