package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/huanfeng/apkinspect/internal/i18n"
	"github.com/huanfeng/apkinspect/pkg/compliance"
	"github.com/huanfeng/apkinspect/pkg/models"
)

// Renderer writes human-readable reports in the translator's language
type Renderer struct {
	tr *i18n.Translator
}

// NewRenderer creates a renderer. A nil translator uses the package-level one.
func NewRenderer(tr *i18n.Translator) *Renderer {
	if tr == nil {
		tr = i18n.Default()
	}
	return &Renderer{tr: tr}
}

// textWriter accumulates output and remembers the first write error
type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) printf(format string, args ...interface{}) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}

func (t *textWriter) field(label string, value interface{}) {
	t.printf("%s: %v\n", label, value)
}

// WriteFull writes the complete report
func (r *Renderer) WriteFull(w io.Writer, a *models.Analysis) error {
	out := &textWriter{w: w}

	out.printf("%s\n\n", r.tr.T("report.title"))
	out.field(r.tr.T("report.file"), a.APKFile)
	if a.RunID != "" {
		out.field(r.tr.T("report.run_id"), a.RunID)
	}
	if d := a.Digests; d != nil {
		out.field(r.tr.T("report.size"), fmt.Sprintf("%.2f MB", float64(d.Size)/(1024*1024)))
		out.field("SHA-256", d.SHA256)
	}

	r.writeMetadata(out, a)
	r.writeSignature(out, a.Signature)
	r.writePermissions(out, a.Metadata)
	if a.Compliance != nil {
		r.writeCompliance(out, a.Compliance)
	}
	r.writePolicy(out, a.Policy)

	out.printf("\n%s\n", r.tr.T("report.note.qsa"))
	return out.err
}

// WriteMetadata writes only the application and permission sections
func (r *Renderer) WriteMetadata(w io.Writer, a *models.Analysis) error {
	out := &textWriter{w: w}
	out.field(r.tr.T("report.file"), a.APKFile)
	r.writeMetadata(out, a)
	r.writePermissions(out, a.Metadata)
	return out.err
}

func (r *Renderer) writeMetadata(out *textWriter, a *models.Analysis) {
	meta := a.Metadata
	if meta == nil {
		return
	}
	out.printf("\n=== %s ===\n", r.tr.T("report.section.app"))
	out.field(r.tr.T("report.field.package"), meta.Package)
	out.field(r.tr.T("report.field.label"), meta.AppLabel)
	out.field(r.tr.T("report.field.version"), fmt.Sprintf("%s (%s)", meta.VersionName, meta.VersionCode))
	out.field(r.tr.T("report.field.sdk"), fmt.Sprintf("%s / %s", meta.MinSDK, meta.TargetSDK))
	if meta.CompileSDK != "" {
		out.field("compileSdkVersion", meta.CompileSDK)
	}
	if a.BuildMode != "" {
		out.field(r.tr.T("report.field.build_mode"), a.BuildMode)
	}
	out.field(r.tr.T("report.field.method"), meta.ExtractionMethod)
	out.field(r.tr.T("report.field.debuggable"), r.yesNo(meta.Debuggable))
	out.field(r.tr.T("report.field.allow_backup"), r.yesNo(meta.AllowBackup))
	out.field(r.tr.T("report.field.architectures"), r.list(meta.Architectures))
	if len(meta.Features) > 0 {
		out.field(r.tr.T("report.field.features"), r.list(meta.Features))
	}
	if q := a.Quality; q != nil {
		out.field(r.tr.T("report.field.quality"), fmt.Sprintf("%.1f%% (%s)", q.Percentage, q.Confidence))
		if len(q.Missing) > 0 {
			out.field(r.tr.T("report.field.missing"), strings.Join(q.Missing, ", "))
		}
	}
	for _, s := range a.Skipped {
		out.field(r.tr.T("report.field.skipped"), s)
	}
}

func (r *Renderer) writeSignature(out *textWriter, sig *models.SignatureInfo) {
	if sig == nil {
		return
	}
	out.printf("\n=== %s ===\n", r.tr.T("report.section.signature"))
	out.field(r.tr.T("report.field.company"), sig.Company)
	out.field(r.tr.T("report.field.schemes"), sig.SignatureType)
	out.field(r.tr.T("report.field.valid"), r.yesNo(sig.IsValid))
	out.field(r.tr.T("report.field.integrity"), r.yesNo(sig.IntegrityOK))
	if sig.CertHash != "" {
		out.field(r.tr.T("report.field.cert_hash"), sig.CertHash)
	}
	if sig.CertificateInfo != "" {
		out.field(r.tr.T("report.field.certificate"), sig.CertificateInfo)
	}
}

func (r *Renderer) writePermissions(out *textWriter, meta *models.ApkMetadata) {
	if meta == nil {
		return
	}
	sensitive := compliance.SensitivePermissions(meta.Permissions)
	out.printf("\n=== %s ===\n", r.tr.T("report.section.permissions", map[string]interface{}{
		"Sensitive": len(sensitive),
		"All":       len(meta.Permissions),
	}))
	if len(sensitive) == 0 {
		out.printf("  %s\n", r.tr.T("report.none"))
		return
	}
	for _, p := range sensitive {
		out.printf("  - %s\n", compliance.ShortPermission(p))
	}
}

func (r *Renderer) writeCompliance(out *textWriter, c *models.ComplianceReport) {
	out.printf("\n=== %s ===\n", r.tr.T("report.section.compliance"))
	out.field(r.tr.T("report.field.status"), r.status(c.OverallStatus))
	out.field(r.tr.T("report.field.score"), fmt.Sprintf("%.1f/100", c.Score))
	out.field(r.tr.T("report.field.risk"), r.tr.TDefault("risk."+string(c.RiskTier), string(c.RiskTier)))
	out.field(r.tr.T("report.field.satisfied"), r.requirements(c.SatisfiedRequirements))
	out.field(r.tr.T("report.field.unsatisfied"), r.requirements(c.UnsatisfiedRequirements))

	out.printf("\n%s (%d):\n", r.tr.T("report.section.findings"), len(c.Findings))
	if len(c.Findings) == 0 {
		out.printf("  %s\n", r.tr.T("report.none"))
	}
	for _, f := range c.Findings {
		t := r.finding(f)
		out.printf("  [%s] %s %s\n", r.severity(f.Severity), f.RequirementID, t.Title)
		out.printf("      %s\n", t.Description)
		out.printf("      %s: %s\n", r.tr.T("report.field.recommendation"), t.Recommendation)
		out.printf("      %s: %s\n", r.tr.T("report.field.impact"), t.Impact)
	}

	out.printf("\n%s:\n", r.tr.T("report.section.recommendations"))
	for i, rec := range c.Recommendations {
		out.printf("  %d. %s\n", i+1, r.recommendation(rec))
	}
}

func (r *Renderer) writePolicy(out *textWriter, results []models.PolicyResult) {
	if len(results) == 0 {
		return
	}
	out.printf("\n=== %s ===\n", r.tr.T("report.section.policy"))
	for _, res := range results {
		if res.Passed {
			out.printf("  [%s] %s\n", r.tr.T("report.policy.pass"), res.RuleName)
			continue
		}
		out.printf("  [%s] %s: %s\n", r.tr.T("report.policy.fail"), res.RuleName, res.FailureMsg)
	}
}

// WriteCompact writes the HIGH-only summary
func (r *Renderer) WriteCompact(w io.Writer, a *models.Analysis) error {
	out := &textWriter{w: w}

	label, pkg, version := "", "", ""
	if m := a.Metadata; m != nil {
		label, pkg, version = m.AppLabel, m.Package, m.VersionName
	}
	out.printf("%s %s (%s) %s\n", r.tr.T("report.compact.app"), label, pkg, version)
	if a.BuildMode != "" {
		out.field(r.tr.T("report.field.build_mode"), a.BuildMode)
	}
	if sig := a.Signature; sig != nil {
		out.printf("%s: %s, %s: %s\n",
			r.tr.T("report.field.schemes"), sig.SignatureType,
			r.tr.T("report.field.integrity"), r.yesNo(sig.IntegrityOK))
	}

	if c := a.Compliance; c != nil {
		out.printf("PCI DSS: %s, %s %.1f/100, %s %s\n",
			r.status(c.OverallStatus),
			r.tr.T("report.field.score"), c.Score,
			r.tr.T("report.field.risk"), r.tr.TDefault("risk."+string(c.RiskTier), string(c.RiskTier)))

		if len(c.HighFindings) == 0 {
			out.printf("%s\n", r.tr.T("report.compact.no_high"))
		} else {
			out.printf("%s (%d):\n", r.tr.T("report.compact.high"), len(c.HighFindings))
			for _, f := range c.HighFindings {
				out.printf("  - %s %s\n", f.RequirementID, r.finding(f).Title)
			}
		}
	}

	failed := 0
	for _, res := range a.Policy {
		if !res.Passed {
			failed++
		}
	}
	if len(a.Policy) > 0 {
		out.printf("%s: %d/%d\n", r.tr.T("report.section.policy"), len(a.Policy)-failed, len(a.Policy))
	}

	out.printf("%s\n", r.tr.T("report.note.qsa"))
	return out.err
}

// findingText is a finding rendered in the report language
type findingText struct {
	Title, Description, Recommendation, Impact string
}

func (r *Renderer) finding(f models.ComplianceFinding) findingText {
	prefix := "finding." + string(f.Category) + "."
	data := map[string]interface{}{"Subject": f.Subject}
	return findingText{
		Title:          r.tr.TDefault(prefix+"title", f.Title, data),
		Description:    r.tr.TDefault(prefix+"description", f.Description, data),
		Recommendation: r.tr.TDefault(prefix+"recommendation", f.Recommendation, data),
		Impact:         r.tr.TDefault(prefix+"impact", f.Impact, data),
	}
}

func (r *Renderer) recommendation(rec models.Recommendation) string {
	var data map[string]interface{}
	if rec.Count > 0 {
		data = map[string]interface{}{"Count": rec.Count}
	}
	return r.tr.TDefault("recommendation."+rec.ID, rec.Text, data)
}

func (r *Renderer) status(s models.ComplianceStatus) string {
	return r.tr.TDefault("status."+string(s), string(s))
}

func (r *Renderer) severity(s models.Severity) string {
	return r.tr.TDefault("severity."+string(s), string(s))
}

func (r *Renderer) requirements(names []string) string {
	if len(names) == 0 {
		return r.tr.T("report.none")
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		num := strings.TrimPrefix(name, "Requirement ")
		out = append(out, r.tr.TDefault("report.requirement", name, map[string]interface{}{"Number": num}))
	}
	return strings.Join(out, ", ")
}

func (r *Renderer) yesNo(b bool) string {
	if b {
		return r.tr.T("report.yes")
	}
	return r.tr.T("report.no")
}

func (r *Renderer) list(items []string) string {
	if len(items) == 0 {
		return r.tr.T("report.none")
	}
	return strings.Join(items, ", ")
}
