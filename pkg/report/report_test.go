package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/huanfeng/apkinspect/internal/i18n"
	"github.com/huanfeng/apkinspect/pkg/compliance"
	"github.com/huanfeng/apkinspect/pkg/models"
)

func debugAnalysis() *models.Analysis {
	meta := models.NewApkMetadata()
	meta.Package = "com.banco.movil"
	meta.AppLabel = "Mi Banco"
	meta.VersionName = "3.1.0"
	meta.VersionCode = "310"
	meta.MinSDK = "24"
	meta.TargetSDK = "34"
	meta.Debuggable = true
	meta.ExtractionMethod = models.ExtractionAAPT
	meta.AddPermission(compliance.PermInternet)
	meta.AddPermission("android.permission.READ_LOGS")
	meta.AddPermission("android.permission.VIBRATE")

	sig := models.NewSignatureInfo()
	sig.SignatureVersions = []string{"v1", "v2"}
	sig.SignatureType = "v1/v2"
	sig.IsValid = true
	sig.IntegrityOK = true
	sig.Company = "Banco Ejemplo"

	return &models.Analysis{
		RunID:      "2f1b7c1e-0000-4000-8000-000000000000",
		APKFile:    "banco.apk",
		BuildMode:  "Debug",
		Metadata:   meta,
		Signature:  sig,
		Compliance: compliance.NewEngine().Analyze(meta, sig),
		Quality:    &models.Quality{Percentage: 100, Confidence: "HIGH", Reliable: true},
		Policy: []models.PolicyResult{
			{RuleName: "release_build", Passed: false, FailureMsg: "APK is debuggable"},
		},
	}
}

func translator(t *testing.T, lang string) *i18n.Translator {
	t.Helper()
	tr, err := i18n.NewTranslator(lang)
	require.NoError(t, err)
	return tr
}

func TestWriteFull_English(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(translator(t, "en")).WriteFull(&buf, debugAnalysis()))
	out := buf.String()

	assert.Contains(t, out, "=== APK Analysis Report ===")
	assert.Contains(t, out, "Package: com.banco.movil")
	assert.Contains(t, out, "Sensitive permissions (1 of 3)")
	assert.Contains(t, out, "  - INTERNET")
	assert.NotContains(t, out, "VIBRATE")
	assert.Contains(t, out, "[HIGH] 6.3.2 APK built in debug mode")
	assert.Contains(t, out, "App holds a privileged system permission: android.permission.READ_LOGS")
	assert.Contains(t, out, "Status: Non-compliant")
	assert.Contains(t, out, "Unsatisfied: Requirement 3, Requirement 4, Requirement 6, Requirement 7, Requirement 8")
	assert.Contains(t, out, "[FAIL] release_build: APK is debuggable")
	assert.Contains(t, out, "Qualified Security Assessor")
}

func TestWriteFull_Spanish(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(translator(t, "es")).WriteFull(&buf, debugAnalysis()))
	out := buf.String()

	assert.Contains(t, out, "=== Informe de análisis de APK ===")
	assert.Contains(t, out, "Paquete: com.banco.movil")
	assert.Contains(t, out, "[ALTO] 6.3.2 APK compilado en modo debug")
	assert.Contains(t, out, "La app tiene un permiso privilegiado de sistema: android.permission.READ_LOGS")
	assert.Contains(t, out, "Estado: No cumple")
	assert.Contains(t, out, "Requisito 3")
	assert.Contains(t, out, "Evaluador de Seguridad Calificado")
	assert.Contains(t, out, "hallazgos de riesgo ALTO antes de producción")
}

func TestWriteCompact_HighOnly(t *testing.T) {
	a := debugAnalysis()
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(translator(t, "en")).WriteCompact(&buf, a))
	out := buf.String()

	assert.Contains(t, out, "APK: Mi Banco (com.banco.movil) 3.1.0")
	assert.Contains(t, out, "HIGH risk findings (")
	assert.Contains(t, out, "6.3.2 APK built in debug mode")
	assert.NotContains(t, out, "Missing biometric authentication", "MEDIUM findings are left out")
	assert.Contains(t, out, "Policy: 0/1")
	assert.Contains(t, out, "Qualified Security Assessor")
}

func TestWriteCompact_WithoutCompliance(t *testing.T) {
	a := debugAnalysis()
	a.Compliance = nil
	a.Policy = nil

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(translator(t, "en")).WriteCompact(&buf, a))
	assert.NotContains(t, buf.String(), "PCI DSS:")
}

func TestEncoders(t *testing.T) {
	a := debugAnalysis()
	r := NewRenderer(translator(t, "en"))

	var jsonBuf bytes.Buffer
	require.NoError(t, r.Write(&jsonBuf, a, FormatJSON))
	var decoded models.Analysis
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &decoded))
	assert.Equal(t, a.Metadata, decoded.Metadata)
	assert.Equal(t, a.Compliance.Score, decoded.Compliance.Score)

	var yamlBuf bytes.Buffer
	require.NoError(t, r.Write(&yamlBuf, a, FormatYAML))
	var fromYAML models.Analysis
	require.NoError(t, yaml.Unmarshal(yamlBuf.Bytes(), &fromYAML))
	assert.Equal(t, a.Signature, fromYAML.Signature)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	f, err = ParseFormat(" JSON ")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestWriteMetadata(t *testing.T) {
	a := debugAnalysis()
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(translator(t, "en")).WriteMetadata(&buf, a))
	out := buf.String()

	assert.Contains(t, out, "File: banco.apk")
	assert.Contains(t, out, "Version: 3.1.0 (310)")
	assert.Contains(t, out, "  - INTERNET")
	assert.NotContains(t, out, "PCI DSS")
	assert.NotContains(t, out, "Qualified Security Assessor")
}
