package apk

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/huanfeng/apkinspect/pkg/utils"
)

const (
	manifestEntry = "AndroidManifest.xml"
	// Compiled resource tables are binary; only small plain-text values
	// files are worth reading.
	maxStringsEntrySize = 256 << 10
)

var appNameRe = regexp.MustCompile(`<string\s+name="app_name"\s*>([^<]+)</string>`)

// ArchiveFindings is what a zip listing of the package reveals
type ArchiveFindings struct {
	Entries       int
	HasManifest   bool
	Architectures []string
	AppName       string
}

// Empty reports whether the archive gave nothing usable
func (f *ArchiveFindings) Empty() bool {
	return f == nil || (!f.HasManifest && len(f.Architectures) == 0 && f.AppName == "")
}

// ArchiveInspector reads an APK as a plain zip archive
type ArchiveInspector struct {
	logger utils.Logger
}

// NewArchiveInspector creates a new archive inspector
func NewArchiveInspector(logger utils.Logger) *ArchiveInspector {
	return &ArchiveInspector{logger: utils.OrDiscard(logger)}
}

// Inspect opens the archive and scans entry names. The error is non-nil
// only when the zip cannot be opened at all.
func (a *ArchiveInspector) Inspect(apkPath string) (*ArchiveFindings, error) {
	reader, err := zip.OpenReader(apkPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open APK as zip: %w", err)
	}
	defer reader.Close()

	findings := &ArchiveFindings{Entries: len(reader.File)}
	abiSet := make(map[string]struct{})
	var stringsFiles []*zip.File

	for _, file := range reader.File {
		name := file.Name
		switch {
		case name == manifestEntry:
			findings.HasManifest = true
		case strings.HasPrefix(name, "lib/") && strings.HasSuffix(name, ".so"):
			// lib/<abi>/libfoo.so
			parts := strings.Split(name, "/")
			if len(parts) >= 3 && parts[1] != "" {
				abiSet[parts[1]] = struct{}{}
			}
		case isValuesStrings(name):
			stringsFiles = append(stringsFiles, file)
		}
	}

	for abi := range abiSet {
		findings.Architectures = append(findings.Architectures, abi)
	}
	sort.Strings(findings.Architectures)

	// res/values/strings.xml before any qualified variant
	sort.SliceStable(stringsFiles, func(i, j int) bool {
		return stringsFiles[i].Name == "res/values/strings.xml" && stringsFiles[j].Name != "res/values/strings.xml"
	})
	for _, file := range stringsFiles {
		if name := a.readAppName(file); name != "" {
			findings.AppName = name
			break
		}
	}

	a.logger.Debug("Archive scanned - entries: %d, manifest: %t, abis: %v, app_name: %q",
		findings.Entries, findings.HasManifest, findings.Architectures, findings.AppName)
	return findings, nil
}

func isValuesStrings(name string) bool {
	dir, file := path.Split(name)
	return file == "strings.xml" && strings.HasPrefix(dir, "res/values")
}

func (a *ArchiveInspector) readAppName(file *zip.File) string {
	if file.UncompressedSize64 == 0 || file.UncompressedSize64 > maxStringsEntrySize {
		return ""
	}

	rc, err := file.Open()
	if err != nil {
		a.logger.Debug("Cannot open %s: %v", file.Name, err)
		return ""
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxStringsEntrySize))
	if err != nil {
		a.logger.Debug("Cannot read %s: %v", file.Name, err)
		return ""
	}

	data = bytes.TrimSpace(data)
	if !bytes.HasPrefix(data, []byte("<")) {
		// binary XML
		return ""
	}

	if m := appNameRe.FindSubmatch(data); m != nil {
		return strings.TrimSpace(string(m[1]))
	}
	return ""
}
