package apk

import (
	"fmt"
	"strings"

	"github.com/huanfeng/apkinspect/pkg/models"
	"github.com/huanfeng/apkinspect/pkg/utils"
)

// BadgingParser turns `aapt dump badging` / `aapt2 dump badging` text into metadata
type BadgingParser struct {
	logger utils.Logger
}

// NewBadgingParser creates a new badging parser
func NewBadgingParser(logger utils.Logger) *BadgingParser {
	return &BadgingParser{logger: utils.OrDiscard(logger)}
}

// badgingState tracks label precedence while scanning
type badgingState struct {
	meta             *models.ApkMetadata
	unlocalizedLabel bool
}

// Parse parses badging output. Lines that fail to parse are dropped and
// scanning continues with the next line.
func (p *BadgingParser) Parse(output string) *models.ApkMetadata {
	state := &badgingState{meta: models.NewApkMetadata()}

	for n, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if err := p.parseLine(line, state); err != nil {
			p.logger.Debug("Skipping malformed badging line %d: %v", n+1, err)
		}
	}

	flags := DetectBuildFlags(output)
	state.meta.Debuggable = flags.Debuggable
	if flags.AllowBackup != nil {
		state.meta.AllowBackup = *flags.AllowBackup
	}

	p.logger.Debug("Badging parsed - package: %q, label: %q, permissions: %d",
		state.meta.Package, state.meta.AppLabel, len(state.meta.Permissions))
	return state.meta
}

func (p *BadgingParser) parseLine(line string, state *badgingState) error {
	meta := state.meta

	switch {
	case strings.HasPrefix(line, "package:"):
		return parsePackageLine(line, meta)

	case strings.HasPrefix(line, "targetSdkVersion:"):
		v, ok := FirstQuoted(line)
		if !ok {
			return fmt.Errorf("targetSdkVersion without quoted value")
		}
		meta.TargetSDK = v

	case strings.HasPrefix(line, "sdkVersion:"):
		v, ok := FirstQuoted(line)
		if !ok {
			return fmt.Errorf("sdkVersion without quoted value")
		}
		meta.MinSDK = v

	case strings.HasPrefix(line, "uses-permission:"), strings.HasPrefix(line, "uses-permission-sdk-23:"):
		v, ok := KeyedQuoted(line, "name")
		if !ok {
			// older aapt prints uses-permission:'android.permission.X'
			v, ok = FirstQuoted(line)
		}
		if !ok || v == "" {
			return fmt.Errorf("uses-permission without name")
		}
		meta.AddPermission(v)

	case strings.HasPrefix(line, "uses-feature:"):
		v, ok := KeyedQuoted(line, "name")
		if !ok {
			v, ok = FirstQuoted(line)
		}
		if !ok || v == "" {
			return fmt.Errorf("uses-feature without name")
		}
		meta.AddFeature(v)

	case strings.HasPrefix(line, "application-label:"):
		v, ok := FirstQuoted(line)
		if !ok {
			return fmt.Errorf("application-label without quoted value")
		}
		if v != "" {
			meta.AppLabel = v
			state.unlocalizedLabel = true
		}

	case strings.HasPrefix(line, "application-label-"):
		if !strings.Contains(line, ":") {
			return fmt.Errorf("localized label without delimiter")
		}
		v, ok := FirstQuoted(line)
		if !ok {
			return fmt.Errorf("localized label without quoted value")
		}
		if !state.unlocalizedLabel && meta.AppLabel == "" {
			meta.AppLabel = v
		}

	case strings.HasPrefix(line, "application:"):
		if v, ok := KeyedQuoted(line, "label"); ok && !state.unlocalizedLabel && meta.AppLabel == "" {
			meta.AppLabel = v
		}

	case strings.HasPrefix(line, "native-code:"), strings.HasPrefix(line, "alt-native-code:"):
		abis := QuotedList(line)
		if len(abis) == 0 {
			return fmt.Errorf("native-code without ABIs")
		}
		for _, abi := range abis {
			meta.AddArchitecture(abi)
		}

	case strings.HasPrefix(line, "densities:"):
		meta.Densities = append(meta.Densities, QuotedList(line)...)
	}

	return nil
}

// parsePackageLine extracts each sub-field on its own; a missing one does
// not stop the others.
func parsePackageLine(line string, meta *models.ApkMetadata) error {
	found := 0
	for key, dst := range map[string]*string{
		"name":                     &meta.Package,
		"versionCode":              &meta.VersionCode,
		"versionName":              &meta.VersionName,
		"platformBuildVersionName": &meta.PlatformBuildVersion,
		"compileSdkVersion":        &meta.CompileSDK,
	} {
		if v, ok := KeyedQuoted(line, key); ok {
			*dst = v
			found++
		}
	}
	if found == 0 {
		return fmt.Errorf("package line without recognizable fields")
	}
	return nil
}
