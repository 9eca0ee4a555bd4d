package apk

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/huanfeng/apkinspect/pkg/models"
)

var allowBackupRe = regexp.MustCompile(`(?i)allowBackup="(true|false)"`)

// BuildFlags are the security-relevant manifest flags found in tool text
type BuildFlags struct {
	Debuggable bool
	// AllowBackup is nil when the text carries no explicit attribute
	AllowBackup *bool
}

// DetectBuildFlags scans tool output for debuggable and allowBackup markers
func DetectBuildFlags(text string) BuildFlags {
	var flags BuildFlags

	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)

		switch {
		case strings.Contains(lower, "application-debuggable"):
			flags.Debuggable = true
		case strings.Contains(lower, `debuggable="true"`):
			flags.Debuggable = true
		case strings.Contains(lower, "debuggable(0x") && strings.Contains(lower, "0xffffffff"):
			flags.Debuggable = true
		}

		if flags.AllowBackup == nil {
			if m := allowBackupRe.FindStringSubmatch(line); m != nil {
				v := strings.EqualFold(m[1], "true")
				flags.AllowBackup = &v
			}
		}
	}

	return flags
}

var (
	debugIndicators       = []string{"debug", "test", "dev", "uat", "staging", "preprod"}
	devPackageIndicators  = []string{".sample", ".demo"}
	versionCodeIndicators = []string{"debug", "test", "dev"}
)

const (
	BuildModeDebug   = "Debug"
	BuildModeRelease = "Release"
)

// BuildMode labels an APK Debug or Release for display. It trusts the
// debuggable flag first and then looks for naming conventions.
func BuildMode(meta *models.ApkMetadata, apkPath string) string {
	if meta == nil {
		return BuildModeRelease
	}
	if meta.Debuggable {
		return BuildModeDebug
	}

	fields := []string{
		detectedLower(meta.Package),
		detectedLower(meta.VersionName),
		detectedLower(meta.AppLabel),
		strings.ToLower(filepath.Base(apkPath)),
	}
	for _, field := range fields {
		for _, indicator := range debugIndicators {
			if field != "" && strings.Contains(field, indicator) {
				return BuildModeDebug
			}
		}
	}

	code := detectedLower(meta.VersionCode)
	for _, indicator := range versionCodeIndicators {
		if strings.Contains(code, indicator) {
			return BuildModeDebug
		}
	}

	pkg := detectedLower(meta.Package)
	for _, indicator := range devPackageIndicators {
		if strings.Contains(pkg, indicator) {
			return BuildModeDebug
		}
	}

	return BuildModeRelease
}

func detectedLower(v string) string {
	if !models.IsDetected(v) {
		return ""
	}
	return strings.ToLower(v)
}
