package compliance

import (
	"fmt"
	"math"

	"github.com/huanfeng/apkinspect/pkg/models"
)

// Score thresholds shared by status and risk tier
const (
	CompliantThreshold = 90.0
	PartialThreshold   = 70.0
	// below this score a full audit is recommended
	AuditThreshold = 80.0
)

// Analyzer produces a compliance report for one analysis
type Analyzer interface {
	Analyze(meta *models.ApkMetadata, sig *models.SignatureInfo) *models.ComplianceReport
}

// Engine is the heuristic PCI DSS rule engine. It keeps no state between
// calls and never modifies its inputs.
type Engine struct {
	keywords []string
}

// Option configures an Engine
type Option func(*Engine)

// WithPaymentKeywords replaces the payment keyword stems. An empty list
// keeps the defaults.
func WithPaymentKeywords(keywords []string) Option {
	return func(e *Engine) {
		if len(keywords) > 0 {
			e.keywords = append([]string{}, keywords...)
		}
	}
}

// NewEngine creates a compliance engine
func NewEngine(opts ...Option) *Engine {
	e := &Engine{keywords: DefaultPaymentKeywords}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ Analyzer = (*Engine)(nil)

// Analyze evaluates every rule group and scores the result. No current
// rule reads the signature.
func (e *Engine) Analyze(meta *models.ApkMetadata, _ *models.SignatureInfo) *models.ComplianceReport {
	if meta == nil {
		meta = models.NewApkMetadata()
	}
	in := &ruleInput{
		meta:           meta,
		paymentRelated: isPaymentRelated(meta, e.keywords),
	}

	report := &models.ComplianceReport{
		SatisfiedRequirements:   []string{},
		UnsatisfiedRequirements: []string{},
		Findings:                []models.ComplianceFinding{},
		HighFindings:            []models.ComplianceFinding{},
	}

	for _, group := range ruleGroups {
		findings := group.evaluate(in)
		if len(findings) == 0 {
			report.SatisfiedRequirements = append(report.SatisfiedRequirements, group.name)
			continue
		}
		report.UnsatisfiedRequirements = append(report.UnsatisfiedRequirements, group.name)
		report.Findings = append(report.Findings, findings...)
	}

	for _, f := range report.Findings {
		if f.Severity == models.SeverityHigh {
			report.HighFindings = append(report.HighFindings, f)
		}
	}

	score := float64(len(report.SatisfiedRequirements)) / float64(len(ruleGroups)) * 100
	report.Score = math.Round(score*10) / 10

	switch {
	case report.Score >= CompliantThreshold:
		report.OverallStatus = models.StatusCompliant
		report.RiskTier = models.RiskLow
	case report.Score >= PartialThreshold:
		report.OverallStatus = models.StatusPartial
		report.RiskTier = models.RiskMedium
	default:
		report.OverallStatus = models.StatusNonCompliant
		report.RiskTier = models.RiskHigh
	}

	report.Recommendations = recommendations(report)
	return report
}

// Recommendation IDs
const (
	RecFullAudit         = "full_audit"
	RecFixHighFindings   = "fix_high_findings"
	RecCertPinning       = "certificate_pinning"
	RecEncryptedBackup   = "encrypted_backup"
	RecReleaseBuild      = "release_build"
	RecQualifiedAssessor = "qsa_validation"
)

// categoryRecommendations fire once when any finding of the category exists
var categoryRecommendations = []struct {
	category models.FindingCategory
	id       string
	text     string
}{
	{models.CategoryNetworkTransport, RecCertPinning, "Implement certificate pinning for TLS connections to payment servers"},
	{models.CategoryBackupEnabled, RecEncryptedBackup, "Adopt an encrypted backup policy or disable automatic backup"},
	{models.CategoryDebugMode, RecReleaseBuild, "Build the release variant with minification and obfuscation enabled"},
}

func recommendations(report *models.ComplianceReport) []models.Recommendation {
	var recs []models.Recommendation
	seen := make(map[string]bool)
	add := func(r models.Recommendation) {
		if seen[r.ID] {
			return
		}
		seen[r.ID] = true
		recs = append(recs, r)
	}

	if report.Score < AuditThreshold {
		add(models.Recommendation{ID: RecFullAudit, Text: "Run a full security audit before processing payments"})
	}
	if n := len(report.HighFindings); n > 0 {
		add(models.Recommendation{
			ID:    RecFixHighFindings,
			Text:  fmt.Sprintf("Fix %d HIGH risk findings before production", n),
			Count: n,
		})
	}
	for _, cr := range categoryRecommendations {
		if report.HasCategory(cr.category) {
			add(models.Recommendation{ID: cr.id, Text: cr.text})
		}
	}

	add(models.Recommendation{
		ID:   RecQualifiedAssessor,
		Text: "Consult a QSA (Qualified Security Assessor) for full PCI DSS validation",
	})
	return recs
}
