package models

import "strings"

// Undetected marks a metadata field no extraction strategy could recover
const Undetected = "undetected"

// ExtractionMethod records which strategy supplied the metadata
type ExtractionMethod string

const (
	ExtractionAAPT             ExtractionMethod = "aapt"
	ExtractionAAPT2            ExtractionMethod = "aapt2"
	ExtractionArchiveFallback  ExtractionMethod = "archive-fallback"
	ExtractionFilenameFallback ExtractionMethod = "filename-fallback"
	// ExtractionUndetected is set when every strategy came back empty
	ExtractionUndetected ExtractionMethod = "undetected"
)

// ApkMetadata is the merged package metadata of one analysis run
type ApkMetadata struct {
	Package              string           `json:"package" yaml:"package"`
	VersionName          string           `json:"version_name" yaml:"version_name"`
	VersionCode          string           `json:"version_code" yaml:"version_code"`
	TargetSDK            string           `json:"target_sdk" yaml:"target_sdk"`
	MinSDK               string           `json:"min_sdk" yaml:"min_sdk"`
	CompileSDK           string           `json:"compile_sdk,omitempty" yaml:"compile_sdk,omitempty"`
	PlatformBuildVersion string           `json:"platform_build_version,omitempty" yaml:"platform_build_version,omitempty"`
	AppLabel             string           `json:"app_label" yaml:"app_label"`
	Permissions          []string         `json:"permissions" yaml:"permissions"`
	Features             []string         `json:"features" yaml:"features"`
	Densities            []string         `json:"densities,omitempty" yaml:"densities,omitempty"`
	Debuggable           bool             `json:"debuggable" yaml:"debuggable"`
	AllowBackup          bool             `json:"allow_backup" yaml:"allow_backup"`
	NativeLibraries      bool             `json:"native_libraries" yaml:"native_libraries"`
	Architectures        []string         `json:"architectures" yaml:"architectures"`
	ExtractionMethod     ExtractionMethod `json:"extraction_method" yaml:"extraction_method"`
}

// NewApkMetadata returns an empty record with platform defaults applied
func NewApkMetadata() *ApkMetadata {
	return &ApkMetadata{
		Permissions:   []string{},
		Features:      []string{},
		Architectures: []string{},
		AllowBackup:   true,
	}
}

// AddPermission appends a permission unless it is already present
func (m *ApkMetadata) AddPermission(name string) {
	if name == "" || m.HasPermission(name) {
		return
	}
	m.Permissions = append(m.Permissions, name)
}

// HasPermission reports whether the permission was declared
func (m *ApkMetadata) HasPermission(name string) bool {
	for _, p := range m.Permissions {
		if p == name {
			return true
		}
	}
	return false
}

// AddFeature appends a feature unless it is already present
func (m *ApkMetadata) AddFeature(name string) {
	if name == "" {
		return
	}
	for _, f := range m.Features {
		if f == name {
			return
		}
	}
	m.Features = append(m.Features, name)
}

// HasFeature reports whether the hardware/software feature was declared
func (m *ApkMetadata) HasFeature(name string) bool {
	for _, f := range m.Features {
		if f == name {
			return true
		}
	}
	return false
}

// AddArchitecture records a native ABI, keeping the list sorted and unique
func (m *ApkMetadata) AddArchitecture(abi string) {
	abi = strings.TrimSpace(abi)
	if abi == "" {
		return
	}
	i := 0
	for ; i < len(m.Architectures); i++ {
		if m.Architectures[i] == abi {
			return
		}
		if m.Architectures[i] > abi {
			break
		}
	}
	m.Architectures = append(m.Architectures, "")
	copy(m.Architectures[i+1:], m.Architectures[i:])
	m.Architectures[i] = abi
	m.NativeLibraries = true
}

// Identified reports whether a package or a label was recovered
func (m *ApkMetadata) Identified() bool {
	return IsDetected(m.Package) || IsDetected(m.AppLabel)
}

// FillUndetected replaces unset identity fields with the Undetected sentinel
func (m *ApkMetadata) FillUndetected() {
	for _, field := range []*string{
		&m.Package, &m.VersionName, &m.VersionCode,
		&m.TargetSDK, &m.MinSDK, &m.AppLabel,
	} {
		if strings.TrimSpace(*field) == "" || strings.EqualFold(*field, "none") {
			*field = Undetected
		}
	}
}

// Clone returns a deep copy of the record
func (m *ApkMetadata) Clone() *ApkMetadata {
	if m == nil {
		return nil
	}
	c := *m
	c.Permissions = append([]string{}, m.Permissions...)
	c.Features = append([]string{}, m.Features...)
	c.Architectures = append([]string{}, m.Architectures...)
	if m.Densities != nil {
		c.Densities = append([]string{}, m.Densities...)
	}
	return &c
}

// IsDetected reports whether a field holds a real value
func IsDetected(v string) bool {
	return strings.TrimSpace(v) != "" && v != Undetected
}
