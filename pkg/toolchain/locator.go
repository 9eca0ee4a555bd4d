package toolchain

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/huanfeng/apkinspect/internal/errors"
	"github.com/huanfeng/apkinspect/pkg/models"
)

// Tool names an external binary the analysis runs
type Tool string

const (
	AAPT      Tool = "aapt"
	AAPT2     Tool = "aapt2"
	APKSigner Tool = "apksigner"
	JarSigner Tool = "jarsigner"
	Java      Tool = "java"
)

// AllTools lists the tools reported by CheckAll, in display order
var AllTools = []Tool{AAPT, AAPT2, APKSigner, JarSigner, Java}

var usedBy = map[Tool][]string{
	AAPT:      {"metadata (primary)"},
	AAPT2:     {"metadata (secondary)"},
	APKSigner: {"signature (primary)"},
	JarSigner: {"signature (secondary)"},
	Java:      {"apksigner.jar"},
}

// Command is how to launch a located tool
type Command struct {
	Path string
	Args []string
}

// ToolStatus represents the result of locating one tool
type ToolStatus struct {
	Name        Tool      `json:"name" yaml:"name"`
	Available   bool      `json:"available" yaml:"available"`
	Path        string    `json:"path,omitempty" yaml:"path,omitempty"`
	Source      string    `json:"source,omitempty" yaml:"source,omitempty"`
	Version     string    `json:"version,omitempty" yaml:"version,omitempty"`
	UsedBy      []string  `json:"used_by" yaml:"used_by"`
	LastChecked time.Time `json:"last_checked" yaml:"last_checked"`
	Error       string    `json:"error,omitempty" yaml:"error,omitempty"`
	Command     Command   `json:"-" yaml:"-"`
}

// Where a tool was found
const (
	SourceConfig     = "config"
	SourceBuildTools = "build-tools"
	SourceJDK        = "jdk"
	SourcePath       = "PATH"
)

// Locator finds the SDK build-tools and JDK binaries
type Locator struct {
	cfg      models.ToolsConfig
	cache    map[Tool]ToolStatus
	cacheMu  sync.RWMutex
	cacheTTL time.Duration

	getenv   func(string) string
	lookPath func(string) (string, error)
	goos     string
}

// NewLocator creates a locator over the configured directories
func NewLocator(cfg models.ToolsConfig) *Locator {
	return &Locator{
		cfg:      cfg,
		cache:    make(map[Tool]ToolStatus),
		cacheTTL: 5 * time.Minute,
		getenv:   os.Getenv,
		lookPath: exec.LookPath,
		goos:     runtime.GOOS,
	}
}

// Locate returns the status of one tool, cached for the TTL
func (l *Locator) Locate(tool Tool) ToolStatus {
	l.cacheMu.RLock()
	if cached, ok := l.cache[tool]; ok && time.Since(cached.LastChecked) < l.cacheTTL {
		l.cacheMu.RUnlock()
		return cached
	}
	l.cacheMu.RUnlock()

	status := l.locate(tool)

	l.cacheMu.Lock()
	l.cache[tool] = status
	l.cacheMu.Unlock()
	return status
}

// CheckAll locates every known tool
func (l *Locator) CheckAll() []ToolStatus {
	statuses := make([]ToolStatus, 0, len(AllTools))
	for _, tool := range AllTools {
		statuses = append(statuses, l.Locate(tool))
	}
	return statuses
}

// ClearCache forgets every located tool
func (l *Locator) ClearCache() {
	l.cacheMu.Lock()
	defer l.cacheMu.Unlock()
	l.cache = make(map[Tool]ToolStatus)
}

// SetCacheTTL sets how long a lookup stays valid
func (l *Locator) SetCacheTTL(d time.Duration) {
	l.cacheTTL = d
}

func (l *Locator) locate(tool Tool) ToolStatus {
	status := ToolStatus{
		Name:        tool,
		UsedBy:      usedBy[tool],
		LastChecked: time.Now(),
	}

	found := func(path, source, version string, args ...string) ToolStatus {
		status.Available = true
		status.Path = path
		status.Source = source
		status.Version = version
		status.Command = Command{Path: path, Args: args}
		return status
	}

	switch tool {
	case AAPT, AAPT2:
		if dir, version, source := l.BuildToolsDir(); dir != "" {
			if p := l.executableIn(dir, string(tool)); p != "" {
				return found(p, source, version)
			}
		}
	case APKSigner:
		if dir, version, source := l.BuildToolsDir(); dir != "" {
			var scripts []string
			if l.goos == "windows" {
				scripts = append(scripts, "apksigner.bat")
			}
			scripts = append(scripts, "apksigner")
			for _, name := range scripts {
				if p := filepath.Join(dir, name); isRegularFile(p) {
					return found(p, source, version)
				}
			}
			for _, jar := range []string{filepath.Join(dir, "lib", "apksigner.jar"), filepath.Join(dir, "apksigner.jar")} {
				if !isRegularFile(jar) {
					continue
				}
				java := l.Locate(Java)
				if !java.Available {
					status.Error = "apksigner.jar found but no java runtime to launch it"
					return status
				}
				return found(java.Path, source, version, "-jar", jar)
			}
		}
	case JarSigner, Java:
		if dir, source := l.JDKBinDir(); dir != "" {
			if p := l.executableIn(dir, string(tool)); p != "" {
				return found(p, source, "")
			}
		}
	}

	if p, err := l.lookPath(string(tool)); err == nil {
		return found(p, SourcePath, "")
	}

	status.Error = string(tool) + " not found in build-tools, JDK or PATH"
	return status
}

// BuildToolsDir returns the build-tools directory in use, its version and
// where it came from. An explicit tools.build_tools wins over the newest
// version found under an SDK root.
func (l *Locator) BuildToolsDir() (dir, version, source string) {
	if l.cfg.BuildTools != "" && isDir(l.cfg.BuildTools) {
		return l.cfg.BuildTools, filepath.Base(l.cfg.BuildTools), SourceConfig
	}
	for _, root := range l.SDKRoots() {
		if dir, ok := LatestBuildTools(root); ok {
			return dir, filepath.Base(dir), SourceBuildTools
		}
	}
	return "", "", ""
}

// JDKBinDir returns the JDK bin directory from the config or JAVA_HOME
func (l *Locator) JDKBinDir() (string, string) {
	if l.cfg.JDKBin != "" && isDir(l.cfg.JDKBin) {
		return l.cfg.JDKBin, SourceConfig
	}
	if home := l.getenv("JAVA_HOME"); home != "" {
		if bin := filepath.Join(home, "bin"); isDir(bin) {
			return bin, SourceJDK
		}
	}
	return "", ""
}

// SDKRoots lists the existing SDK directories in lookup order
func (l *Locator) SDKRoots() []string {
	candidates := []string{l.cfg.SDKRoot, l.getenv("ANDROID_SDK_ROOT"), l.getenv("ANDROID_HOME")}
	candidates = append(candidates, l.commonSDKPaths()...)

	var roots []string
	seen := make(map[string]bool)
	for _, c := range candidates {
		if c == "" || seen[c] || !isDir(c) {
			continue
		}
		seen[c] = true
		roots = append(roots, c)
	}
	return roots
}

func (l *Locator) commonSDKPaths() []string {
	home := l.getenv("HOME")
	var paths []string

	switch l.goos {
	case "linux":
		paths = []string{"/opt/android-sdk", "/usr/lib/android-sdk"}
		if home != "" {
			paths = append(paths, filepath.Join(home, "Android", "Sdk"), filepath.Join(home, ".android-sdk"))
		}
	case "darwin":
		if home != "" {
			paths = append(paths, filepath.Join(home, "Library", "Android", "sdk"))
		}
	case "windows":
		if local := l.getenv("LOCALAPPDATA"); local != "" {
			paths = append(paths, filepath.Join(local, "Android", "Sdk"))
		}
		paths = append(paths, `C:\Android\Sdk`)
	}
	return paths
}

func (l *Locator) executableIn(dir, name string) string {
	if l.goos == "windows" {
		name += ".exe"
	}
	p := filepath.Join(dir, name)
	if isRegularFile(p) {
		return p
	}
	return ""
}

// LatestBuildTools returns the highest version directory under
// <sdkRoot>/build-tools
func LatestBuildTools(sdkRoot string) (string, bool) {
	entries, err := os.ReadDir(filepath.Join(sdkRoot, "build-tools"))
	if err != nil {
		return "", false
	}

	var versions []string
	for _, e := range entries {
		if e.IsDir() {
			versions = append(versions, e.Name())
		}
	}
	if len(versions) == 0 {
		return "", false
	}
	sort.Slice(versions, func(i, j int) bool {
		return compareVersions(versions[i], versions[j]) > 0
	})
	return filepath.Join(sdkRoot, "build-tools", versions[0]), true
}

// compareVersions orders dotted numeric versions. A pre-release suffix
// such as "-rc1" ranks below the same version without one.
func compareVersions(a, b string) int {
	aNum, aSuffix := splitVersion(a)
	bNum, bSuffix := splitVersion(b)

	for i := 0; i < len(aNum) || i < len(bNum); i++ {
		var x, y int
		if i < len(aNum) {
			x = aNum[i]
		}
		if i < len(bNum) {
			y = bNum[i]
		}
		if x != y {
			if x > y {
				return 1
			}
			return -1
		}
	}

	switch {
	case aSuffix == bSuffix:
		return 0
	case aSuffix == "":
		return 1
	case bSuffix == "":
		return -1
	default:
		return strings.Compare(aSuffix, bSuffix)
	}
}

func splitVersion(v string) ([]int, string) {
	suffix := ""
	if i := strings.IndexAny(v, "-_ "); i >= 0 {
		v, suffix = v[:i], v[i+1:]
	}
	var nums []int
	for _, part := range strings.Split(v, ".") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nums, part + suffix
		}
		nums = append(nums, n)
	}
	return nums, suffix
}

// InstallInstructions explains how to obtain a missing tool
func InstallInstructions(tool Tool) []string {
	switch tool {
	case AAPT, AAPT2, APKSigner:
		switch runtime.GOOS {
		case "linux":
			return []string{
				"Ubuntu/Debian: sudo apt-get install aapt apksigner",
				"Manual: sdkmanager \"build-tools;34.0.0\" from https://developer.android.com/studio#command-tools",
				"Then set ANDROID_SDK_ROOT or tools.build_tools",
			}
		case "darwin":
			return []string{
				"Homebrew: brew install --cask android-commandlinetools",
				"Then: sdkmanager \"build-tools;34.0.0\" and set ANDROID_SDK_ROOT",
			}
		default:
			return []string{
				"Download the Android command line tools from https://developer.android.com/studio#command-tools",
				"Install build-tools with sdkmanager and set tools.build_tools",
			}
		}
	case JarSigner, Java:
		return []string{
			"Install a JDK (for example Eclipse Temurin 17)",
			"Set JAVA_HOME or tools.jdk_bin",
		}
	default:
		return []string{"Unknown tool: " + string(tool)}
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Require returns a TOOL_NOT_FOUND error naming every tool the locator
// cannot find
func (l *Locator) Require(tools ...Tool) error {
	var missing []string
	var suggestions []string
	for _, tool := range tools {
		status := l.Locate(tool)
		if status.Available {
			continue
		}
		missing = append(missing, string(tool))
		suggestions = append(suggestions, InstallInstructions(tool)...)
	}
	if len(missing) == 0 {
		return nil
	}
	return errors.NewDependencyError(errors.CodeToolNotFound, "required tools not found").
		WithContext("tools", strings.Join(missing, ", ")).
		WithSuggestions(suggestions)
}
