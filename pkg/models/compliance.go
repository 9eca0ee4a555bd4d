package models

// Severity of a compliance finding
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// ComplianceStatus is the overall verdict of an assessment
type ComplianceStatus string

const (
	StatusCompliant    ComplianceStatus = "COMPLIANT"
	StatusPartial      ComplianceStatus = "PARTIAL"
	StatusNonCompliant ComplianceStatus = "NON_COMPLIANT"
)

// RiskTier mirrors the status thresholds
type RiskTier string

const (
	RiskLow    RiskTier = "LOW"
	RiskMedium RiskTier = "MEDIUM"
	RiskHigh   RiskTier = "HIGH"
)

// FindingCategory groups findings for recommendation triggers and translation
type FindingCategory string

const (
	CategoryInsecureStorage   FindingCategory = "INSECURE_STORAGE"
	CategoryStorageRead       FindingCategory = "STORAGE_READ"
	CategorySensitiveData     FindingCategory = "SENSITIVE_DATA"
	CategoryNetworkTransport  FindingCategory = "NETWORK_TRANSPORT"
	CategoryContactlessPay    FindingCategory = "CONTACTLESS_PAYMENT"
	CategoryBluetooth         FindingCategory = "BLUETOOTH"
	CategoryDebugMode         FindingCategory = "DEBUG_MODE"
	CategoryBackupEnabled     FindingCategory = "BACKUP_ENABLED"
	CategoryExportedComponent FindingCategory = "EXPORTED_COMPONENTS"
	CategorySystemPermission  FindingCategory = "SYSTEM_PERMISSION"
	CategoryPreciseLocation   FindingCategory = "PRECISE_LOCATION"
	CategoryBiometricAuth     FindingCategory = "BIOMETRIC_AUTH"
	CategoryKeyguardDisable   FindingCategory = "KEYGUARD_DISABLE"
)

// ComplianceFinding is one deficiency detected by a rule group
type ComplianceFinding struct {
	RequirementID  string          `json:"requirement_id" yaml:"requirement_id"`
	Category       FindingCategory `json:"category" yaml:"category"`
	Title          string          `json:"title" yaml:"title"`
	Description    string          `json:"description" yaml:"description"`
	Recommendation string          `json:"recommendation" yaml:"recommendation"`
	Impact         string          `json:"impact" yaml:"impact"`
	Severity       Severity        `json:"severity" yaml:"severity"`
	// Subject is the permission or flag that triggered the finding, if any
	Subject string `json:"subject,omitempty" yaml:"subject,omitempty"`
}

// Recommendation is a remediation line triggered by the findings.
// Count carries the number it refers to, if any.
type Recommendation struct {
	ID    string `json:"id" yaml:"id"`
	Text  string `json:"text" yaml:"text"`
	Count int    `json:"count,omitempty" yaml:"count,omitempty"`
}

// ComplianceReport is the output of the compliance heuristic engine
type ComplianceReport struct {
	OverallStatus           ComplianceStatus    `json:"overall_status" yaml:"overall_status"`
	Score                   float64             `json:"score" yaml:"score"`
	RiskTier                RiskTier            `json:"risk_tier" yaml:"risk_tier"`
	SatisfiedRequirements   []string            `json:"satisfied_requirements" yaml:"satisfied_requirements"`
	UnsatisfiedRequirements []string            `json:"unsatisfied_requirements" yaml:"unsatisfied_requirements"`
	Findings                []ComplianceFinding `json:"findings" yaml:"findings"`
	HighFindings            []ComplianceFinding `json:"high_findings" yaml:"high_findings"`
	Recommendations         []Recommendation    `json:"recommendations" yaml:"recommendations"`
}

// CountBySeverity returns how many findings carry the given severity
func (r *ComplianceReport) CountBySeverity(s Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == s {
			n++
		}
	}
	return n
}

// HasCategory reports whether any finding belongs to the category
func (r *ComplianceReport) HasCategory(c FindingCategory) bool {
	for _, f := range r.Findings {
		if f.Category == c {
			return true
		}
	}
	return false
}
