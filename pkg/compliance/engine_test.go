package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huanfeng/apkinspect/pkg/models"
)

func cleanMetadata() *models.ApkMetadata {
	meta := models.NewApkMetadata()
	meta.Package = "com.acme.notes"
	meta.AppLabel = "Notes"
	meta.AllowBackup = false
	return meta
}

func recommendationIDs(r *models.ComplianceReport) []string {
	var ids []string
	for _, rec := range r.Recommendations {
		ids = append(ids, rec.ID)
	}
	return ids
}

func TestEngine_Compliant(t *testing.T) {
	report := NewEngine().Analyze(cleanMetadata(), models.NewSignatureInfo())

	assert.Equal(t, models.StatusCompliant, report.OverallStatus)
	assert.Equal(t, models.RiskLow, report.RiskTier)
	assert.Equal(t, 100.0, report.Score)
	assert.Empty(t, report.Findings)
	assert.Empty(t, report.UnsatisfiedRequirements)
	assert.Len(t, report.SatisfiedRequirements, 5)
	assert.Equal(t, []string{RecQualifiedAssessor}, recommendationIDs(report))
}

func TestEngine_DebugBackupInternet(t *testing.T) {
	meta := cleanMetadata()
	meta.Debuggable = true
	meta.AllowBackup = true
	meta.AddPermission(PermInternet)

	report := NewEngine().Analyze(meta, nil)

	assert.GreaterOrEqual(t, report.CountBySeverity(models.SeverityHigh), 3)
	assert.Less(t, report.Score, 90.0)
	assert.Equal(t, 60.0, report.Score)
	assert.Equal(t, models.StatusNonCompliant, report.OverallStatus)
	assert.Equal(t, models.RiskHigh, report.RiskTier)
	assert.Equal(t, []string{"Requirement 4", "Requirement 6"}, report.UnsatisfiedRequirements)
	assert.Len(t, report.HighFindings, 3)

	assert.Equal(t, []string{
		RecFullAudit,
		RecFixHighFindings,
		RecCertPinning,
		RecEncryptedBackup,
		RecReleaseBuild,
		RecQualifiedAssessor,
	}, recommendationIDs(report))
	assert.Equal(t, 3, report.Recommendations[1].Count)
	assert.Equal(t, "Fix 3 HIGH risk findings before production", report.Recommendations[1].Text)
}

func TestEngine_PartialScore(t *testing.T) {
	meta := cleanMetadata()
	meta.AddPermission(PermFineLocation)

	report := NewEngine().Analyze(meta, nil)

	assert.Equal(t, 80.0, report.Score)
	assert.Equal(t, models.StatusPartial, report.OverallStatus)
	assert.Equal(t, models.RiskMedium, report.RiskTier)
	assert.Empty(t, report.HighFindings)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, "7.2.1", report.Findings[0].RequirementID)
	assert.Equal(t, models.SeverityMedium, report.Findings[0].Severity)
	assert.Equal(t, []string{RecQualifiedAssessor}, recommendationIDs(report))
}

func TestEngine_PaymentApp(t *testing.T) {
	meta := cleanMetadata()
	meta.Package = "com.banco.movil"
	meta.AppLabel = "Mi Banco"
	meta.AddPermission(PermNFC)

	report := NewEngine().Analyze(meta, nil)

	assert.True(t, report.HasCategory(models.CategorySensitiveData))
	assert.True(t, report.HasCategory(models.CategoryBiometricAuth))
	assert.True(t, report.HasCategory(models.CategoryContactlessPay))

	meta.AddFeature("android.hardware.fingerprint")
	report = NewEngine().Analyze(meta, nil)
	assert.False(t, report.HasCategory(models.CategoryBiometricAuth))
}

func TestEngine_PrivilegedPermissionsEachFlagged(t *testing.T) {
	meta := cleanMetadata()
	for _, p := range PrivilegedPermissions {
		meta.AddPermission(p)
	}
	meta.AddPermission(PermDisableKeyguard)

	report := NewEngine().Analyze(meta, nil)

	var system []models.ComplianceFinding
	for _, f := range report.Findings {
		if f.Category == models.CategorySystemPermission {
			system = append(system, f)
		}
	}
	require.Len(t, system, len(PrivilegedPermissions))
	assert.Equal(t, "android.permission.READ_LOGS", system[0].Subject)
	assert.Contains(t, system[0].Description, "android.permission.READ_LOGS")
	assert.True(t, report.HasCategory(models.CategoryKeyguardDisable))
	assert.Contains(t, report.UnsatisfiedRequirements, "Requirement 8")
}

func TestEngine_CustomKeywords(t *testing.T) {
	meta := cleanMetadata()
	meta.AppLabel = "Acme Kasse"

	assert.False(t, NewEngine().Analyze(meta, nil).HasCategory(models.CategorySensitiveData))
	report := NewEngine(WithPaymentKeywords([]string{"kasse"})).Analyze(meta, nil)
	assert.True(t, report.HasCategory(models.CategorySensitiveData))
}

func TestEngine_UndetectedFieldsAreNotKeywords(t *testing.T) {
	meta := models.NewApkMetadata()
	meta.AllowBackup = false
	meta.FillUndetected()

	report := NewEngine(WithPaymentKeywords([]string{"detect"})).Analyze(meta, nil)
	assert.Equal(t, models.StatusCompliant, report.OverallStatus)
}

func TestEngine_PureAndDeterministic(t *testing.T) {
	meta := cleanMetadata()
	meta.Debuggable = true
	meta.AddPermission(PermInternet)
	meta.AddPermission(PermWriteExternalStorage)
	before := meta.Clone()

	engine := NewEngine()
	first := engine.Analyze(meta, nil)
	second := engine.Analyze(meta, nil)

	assert.Equal(t, before, meta)
	assert.Equal(t, first, second)
}

func TestSensitivePermissions(t *testing.T) {
	perms := []string{
		"android.permission.INTERNET",
		"android.permission.VIBRATE",
		"android.permission.USE_BIOMETRIC",
		"com.android.vending.BILLING",
	}
	assert.Equal(t, []string{
		"android.permission.INTERNET",
		"android.permission.USE_BIOMETRIC",
		"com.android.vending.BILLING",
	}, SensitivePermissions(perms))
	assert.Empty(t, SensitivePermissions(nil))
	assert.Equal(t, "CAMERA", ShortPermission("android.permission.CAMERA"))
}
