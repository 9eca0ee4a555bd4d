package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the version of the application, set by build flags
	Version = "dev"
	// Commit is the git commit hash, set by build flags
	Commit = "unknown"
	// BuildDate is the build date, set by build flags
	BuildDate = "unknown"
)

// Details is the machine-readable form of Info
type Details struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Get returns the build details of this binary
func Get() Details {
	return Details{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// Info returns version information
func Info() string {
	d := Get()
	return fmt.Sprintf("apkinspect %s\nCommit: %s\nBuilt: %s\nGo: %s\nOS/Arch: %s",
		d.Version, d.Commit, d.BuildDate, d.GoVersion, d.Platform)
}

// Short returns short version string
func Short() string {
	return Version
}
