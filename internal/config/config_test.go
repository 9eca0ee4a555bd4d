package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apkerrors "github.com/huanfeng/apkinspect/internal/errors"
	"github.com/huanfeng/apkinspect/pkg/compliance"
)

func TestLoad_TemplateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apkinspect.yaml")
	require.NoError(t, SaveTemplate(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Tools.Timeout)
	assert.Equal(t, compliance.DefaultPaymentKeywords, cfg.Analysis.SensitiveKeywords)
	assert.Equal(t, "auto", cfg.Analysis.Lang)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Empty(t, cfg.Policy.Rules)
}

func TestLoad_FileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	content := `tools:
  sdk_root: /opt/android
  timeout: 5s
output:
  format: json
policy:
  rules:
    - name: release_build
      expr: 'input.metadata.debuggable == false'
      failure_msg: APK is debuggable
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/android", cfg.Tools.SDKRoot)
	assert.Equal(t, 5*time.Second, cfg.Tools.Timeout)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "auto", cfg.Analysis.Lang, "unset keys keep their defaults")
	require.Len(t, cfg.Policy.Rules, 1)
	assert.Equal(t, "release_build", cfg.Policy.Rules[0].Name)
	assert.Equal(t, "APK is debuggable", cfg.Policy.Rules[0].FailureMsg)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apkinspect.yaml")
	require.NoError(t, SaveTemplate(path))
	t.Setenv("APKINSPECT_OUTPUT_FORMAT", "compact")
	t.Setenv("APKINSPECT_TOOLS_JDK_BIN", "/usr/lib/jvm/bin")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "compact", cfg.Output.Format)
	assert.Equal(t, "/usr/lib/jvm/bin", cfg.Tools.JDKBin)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, apkerrors.HasCode(err, apkerrors.CodeConfigLoad))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("tools: [unclosed"), 0644))
	_, err = Load(bad)
	require.Error(t, err)
	assert.True(t, apkerrors.HasCode(err, apkerrors.CodeConfigLoad))
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Output.Format, cfg.Output.Format)
	assert.Equal(t, 30*time.Second, cfg.Tools.Timeout)
}
