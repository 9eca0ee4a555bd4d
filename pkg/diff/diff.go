package diff

import (
	"fmt"
	"strings"

	"github.com/wI2L/jsondiff"

	"github.com/huanfeng/apkinspect/internal/errors"
	"github.com/huanfeng/apkinspect/pkg/models"
)

// Change is one readable difference between two analyses
type Change struct {
	Op      string      `json:"op" yaml:"op"`
	Path    string      `json:"path" yaml:"path"`
	Old     interface{} `json:"old,omitempty" yaml:"old,omitempty"`
	New     interface{} `json:"new,omitempty" yaml:"new,omitempty"`
	Message string      `json:"message" yaml:"message"`
}

// Result holds the raw patch and its translation
type Result struct {
	Patch   jsondiff.Patch `json:"patch" yaml:"-"`
	Changes []Change       `json:"changes" yaml:"changes"`
}

// HasChanges reports whether the analyses differ in any compared field
func (r *Result) HasChanges() bool {
	return len(r.Changes) > 0
}

// Compare diffs the metadata, signature and compliance of two analyses.
// Run ids, digests and raw tool output are not compared.
func Compare(oldA, newA *models.Analysis) (*Result, error) {
	if oldA == nil || newA == nil {
		return nil, errors.NewValidationError(errors.CodeDiffInput, "both analyses are required")
	}

	patch, err := jsondiff.Compare(snapshotOf(oldA), snapshotOf(newA))
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeParsing, errors.CodeDiffInput, "failed to compare analyses")
	}

	result := &Result{Patch: patch, Changes: []Change{}}
	for _, op := range patch {
		result.Changes = append(result.Changes, translate(op)...)
	}
	return result, nil
}

// snapshot is the comparable view of an analysis. Lists whose order carries
// no meaning become sets so the patch names members instead of indexes.
type snapshot struct {
	Metadata   metadataSnapshot   `json:"metadata"`
	Signature  signatureSnapshot  `json:"signature"`
	Compliance complianceSnapshot `json:"compliance"`
}

type metadataSnapshot struct {
	Package       string          `json:"package"`
	AppLabel      string          `json:"app_label"`
	VersionName   string          `json:"version_name"`
	VersionCode   string          `json:"version_code"`
	MinSDK        string          `json:"min_sdk"`
	TargetSDK     string          `json:"target_sdk"`
	Debuggable    bool            `json:"debuggable"`
	AllowBackup   bool            `json:"allow_backup"`
	Permissions   map[string]bool `json:"permissions"`
	Features      map[string]bool `json:"features"`
	Architectures map[string]bool `json:"architectures"`
}

type signatureSnapshot struct {
	Company     string          `json:"company"`
	Versions    map[string]bool `json:"signature_versions"`
	IsValid     bool            `json:"is_valid"`
	IntegrityOK bool            `json:"integrity_ok"`
	CertHash    string          `json:"cert_hash"`
}

type complianceSnapshot struct {
	OverallStatus string            `json:"overall_status,omitempty"`
	Score         *float64          `json:"score,omitempty"`
	RiskTier      string            `json:"risk_tier,omitempty"`
	Findings      map[string]string `json:"findings"`
}

func snapshotOf(a *models.Analysis) snapshot {
	var s snapshot

	meta := a.Metadata
	if meta == nil {
		meta = models.NewApkMetadata()
	}
	s.Metadata = metadataSnapshot{
		Package:       meta.Package,
		AppLabel:      meta.AppLabel,
		VersionName:   meta.VersionName,
		VersionCode:   meta.VersionCode,
		MinSDK:        meta.MinSDK,
		TargetSDK:     meta.TargetSDK,
		Debuggable:    meta.Debuggable,
		AllowBackup:   meta.AllowBackup,
		Permissions:   toSet(meta.Permissions),
		Features:      toSet(meta.Features),
		Architectures: toSet(meta.Architectures),
	}

	sig := a.Signature
	if sig == nil {
		sig = models.NewSignatureInfo()
	}
	s.Signature = signatureSnapshot{
		Company:     sig.Company,
		Versions:    toSet(sig.SignatureVersions),
		IsValid:     sig.IsValid,
		IntegrityOK: sig.IntegrityOK,
		CertHash:    sig.CertHash,
	}

	s.Compliance.Findings = map[string]string{}
	if c := a.Compliance; c != nil {
		score := c.Score
		s.Compliance.OverallStatus = string(c.OverallStatus)
		s.Compliance.Score = &score
		s.Compliance.RiskTier = string(c.RiskTier)
		for _, f := range c.Findings {
			s.Compliance.Findings[findingKey(f)] = string(f.Severity)
		}
	}
	return s
}

func findingKey(f models.ComplianceFinding) string {
	if f.Subject == "" {
		return string(f.Category)
	}
	return string(f.Category) + ":" + f.Subject
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

// setLabels names the members of each set-valued path
var setLabels = map[string]string{
	"/metadata/permissions":         "Permission",
	"/metadata/features":            "Feature",
	"/metadata/architectures":       "Architecture",
	"/signature/signature_versions": "Signature scheme",
	"/compliance/findings":          "Finding",
}

// fieldLabels names scalar fields in messages
var fieldLabels = map[string]string{
	"/metadata/package":          "Package",
	"/metadata/app_label":        "App label",
	"/metadata/version_name":     "Version name",
	"/metadata/version_code":     "Version code",
	"/metadata/min_sdk":          "minSdkVersion",
	"/metadata/target_sdk":       "targetSdkVersion",
	"/metadata/debuggable":       "Debuggable",
	"/metadata/allow_backup":     "allowBackup",
	"/signature/company":         "Signer company",
	"/signature/is_valid":        "Signature valid",
	"/signature/integrity_ok":    "Signature integrity",
	"/signature/cert_hash":       "Signing certificate",
	"/compliance/overall_status": "Compliance status",
	"/compliance/score":          "Compliance score",
	"/compliance/risk_tier":      "Risk tier",
}

func translate(op jsondiff.Operation) []Change {
	parent, member := splitPointer(op.Path)

	if label, ok := setLabels[parent]; ok {
		return []Change{memberChange(op, label, member, op.Value, op.OldValue)}
	}

	label, ok := fieldLabels[op.Path]
	if !ok {
		label = op.Path
	}
	c := Change{Op: op.Type, Path: op.Path, Old: op.OldValue, New: op.Value}
	switch op.Type {
	case jsondiff.OperationAdd:
		c.Old = nil
		c.Message = fmt.Sprintf("%s set: %s", label, formatValue(op.Value))
	case jsondiff.OperationRemove:
		c.New = nil
		c.Message = fmt.Sprintf("%s removed (was %s)", label, formatValue(op.OldValue))
	default:
		if op.Path == "/signature/cert_hash" {
			c.Message = fmt.Sprintf("%s changed", label)
		} else {
			c.Message = fmt.Sprintf("%s changed: %s -> %s", label, formatValue(op.OldValue), formatValue(op.Value))
		}
	}
	return []Change{c}
}

func memberChange(op jsondiff.Operation, label, member string, value, old interface{}) Change {
	c := Change{Op: op.Type, Path: op.Path}
	switch op.Type {
	case jsondiff.OperationAdd:
		c.New = value
		c.Message = fmt.Sprintf("%s added: %s", label, describeMember(member, value))
	case jsondiff.OperationRemove:
		c.Old = old
		c.Message = fmt.Sprintf("%s removed: %s", label, describeMember(member, old))
	default:
		c.Old, c.New = old, value
		c.Message = fmt.Sprintf("%s changed: %s %s -> %s", label, member, formatValue(old), formatValue(value))
	}
	return c
}

// describeMember appends the severity of a finding; set members carry true
func describeMember(member string, value interface{}) string {
	if s, ok := value.(string); ok && s != "" {
		return fmt.Sprintf("%s (%s)", member, s)
	}
	return member
}

func formatValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "none"
	case string:
		if t == "" {
			return `""`
		}
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// splitPointer returns the parent pointer and the unescaped last token
func splitPointer(path string) (string, string) {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return "", unescapePointer(path)
	}
	return path[:i], unescapePointer(path[i+1:])
}

func unescapePointer(token string) string {
	return strings.NewReplacer("~1", "/", "~0", "~").Replace(token)
}
