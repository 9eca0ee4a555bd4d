package models

// RawOutputs holds the unparsed text captured from the SDK tools.
// A tool that could not run leaves a sentinel string carrying an error marker.
type RawOutputs struct {
	AAPT      string `json:"aapt,omitempty" yaml:"aapt,omitempty"`
	AAPT2     string `json:"aapt2,omitempty" yaml:"aapt2,omitempty"`
	APKSigner string `json:"apksigner,omitempty" yaml:"apksigner,omitempty"`
	JarSigner string `json:"jarsigner,omitempty" yaml:"jarsigner,omitempty"`
}

// Quality describes how complete the extracted metadata is
type Quality struct {
	Detected   []string `json:"detected" yaml:"detected"`
	Missing    []string `json:"missing" yaml:"missing"`
	Percentage float64  `json:"percentage" yaml:"percentage"`
	Confidence string   `json:"confidence" yaml:"confidence"` // "HIGH", "MEDIUM", "LOW"
	Reliable   bool     `json:"reliable" yaml:"reliable"`
}

// FileDigests identifies the exact APK file that was analyzed
type FileDigests struct {
	Size   int64  `json:"size" yaml:"size"`
	MD5    string `json:"md5" yaml:"md5"`
	SHA1   string `json:"sha1" yaml:"sha1"`
	SHA256 string `json:"sha256" yaml:"sha256"`
}

// Analysis is everything produced for one APK
type Analysis struct {
	RunID      string            `json:"run_id" yaml:"run_id"`
	APKFile    string            `json:"apk_file" yaml:"apk_file"`
	Digests    *FileDigests      `json:"digests,omitempty" yaml:"digests,omitempty"`
	BuildMode  string            `json:"build_mode" yaml:"build_mode"`
	Metadata   *ApkMetadata      `json:"metadata" yaml:"metadata"`
	Signature  *SignatureInfo    `json:"signature" yaml:"signature"`
	Compliance *ComplianceReport `json:"compliance,omitempty" yaml:"compliance,omitempty"`
	Quality    *Quality          `json:"quality" yaml:"quality"`
	Policy     []PolicyResult    `json:"policy,omitempty" yaml:"policy,omitempty"`
	Skipped    []string          `json:"skipped_strategies,omitempty" yaml:"skipped_strategies,omitempty"`
	Raw        *RawOutputs       `json:"raw,omitempty" yaml:"raw,omitempty"`
}
