package compliance

import (
	"strings"

	"github.com/huanfeng/apkinspect/pkg/models"
)

// Android permission and feature identifiers inspected by the rules
const (
	PermWriteExternalStorage = "android.permission.WRITE_EXTERNAL_STORAGE"
	PermReadExternalStorage  = "android.permission.READ_EXTERNAL_STORAGE"
	PermInternet             = "android.permission.INTERNET"
	PermNFC                  = "android.permission.NFC"
	PermBluetooth            = "android.permission.BLUETOOTH"
	PermFineLocation         = "android.permission.ACCESS_FINE_LOCATION"
	PermDisableKeyguard      = "android.permission.DISABLE_KEYGUARD"
)

// PrivilegedPermissions are system permissions flagged one finding each
var PrivilegedPermissions = []string{
	"android.permission.READ_LOGS",
	"android.permission.DUMP",
	"android.permission.SYSTEM_ALERT_WINDOW",
	"android.permission.BIND_DEVICE_ADMIN",
}

// BiometricFeatures count as biometric authentication support
var BiometricFeatures = []string{
	"android.hardware.biometrics",
	"android.hardware.fingerprint",
}

// DefaultPaymentKeywords are stems that mark an app as payment related when
// found in its label or package
var DefaultPaymentKeywords = []string{
	"bank", "banco", "payment", "pago", "card", "tarjeta", "wallet",
	"billetera", "pay", "money", "dinero", "transfer", "transferencia",
	"financi", "finance", "credit", "crédito", "debit", "débito",
}

// ruleGroup is one requirement family
type ruleGroup struct {
	name     string
	evaluate func(in *ruleInput) []models.ComplianceFinding
}

// ruleInput is the read-only view the rules evaluate
type ruleInput struct {
	meta           *models.ApkMetadata
	paymentRelated bool
}

var ruleGroups = []ruleGroup{
	{name: "Requirement 3", evaluate: dataProtection},
	{name: "Requirement 4", evaluate: transportSecurity},
	{name: "Requirement 6", evaluate: secureBuild},
	{name: "Requirement 7", evaluate: accessControl},
	{name: "Requirement 8", evaluate: authentication},
}

func dataProtection(in *ruleInput) []models.ComplianceFinding {
	var findings []models.ComplianceFinding
	if in.meta.HasPermission(PermWriteExternalStorage) {
		findings = append(findings, newFinding(models.CategoryInsecureStorage, PermWriteExternalStorage))
	}
	if in.meta.HasPermission(PermReadExternalStorage) {
		findings = append(findings, newFinding(models.CategoryStorageRead, PermReadExternalStorage))
	}
	if in.paymentRelated {
		findings = append(findings, newFinding(models.CategorySensitiveData, ""))
	}
	return findings
}

func transportSecurity(in *ruleInput) []models.ComplianceFinding {
	var findings []models.ComplianceFinding
	if in.meta.HasPermission(PermInternet) {
		findings = append(findings, newFinding(models.CategoryNetworkTransport, PermInternet))
	}
	if in.meta.HasPermission(PermNFC) {
		findings = append(findings, newFinding(models.CategoryContactlessPay, PermNFC))
	}
	if in.meta.HasPermission(PermBluetooth) {
		findings = append(findings, newFinding(models.CategoryBluetooth, PermBluetooth))
	}
	return findings
}

func secureBuild(in *ruleInput) []models.ComplianceFinding {
	var findings []models.ComplianceFinding
	if in.meta.Debuggable {
		findings = append(findings, newFinding(models.CategoryDebugMode, "debuggable"))
	}
	if in.meta.AllowBackup {
		findings = append(findings, newFinding(models.CategoryBackupEnabled, "allowBackup"))
	}
	if hasUnprotectedExportedComponents(in.meta) {
		findings = append(findings, newFinding(models.CategoryExportedComponent, ""))
	}
	return findings
}

// hasUnprotectedExportedComponents always reports false. Badging output
// does not list component export flags and the binary manifest is not
// decoded, so there is nothing to decide on.
func hasUnprotectedExportedComponents(*models.ApkMetadata) bool {
	return false
}

func accessControl(in *ruleInput) []models.ComplianceFinding {
	var findings []models.ComplianceFinding
	for _, perm := range PrivilegedPermissions {
		if in.meta.HasPermission(perm) {
			findings = append(findings, newFinding(models.CategorySystemPermission, perm))
		}
	}
	if in.meta.HasPermission(PermFineLocation) {
		findings = append(findings, newFinding(models.CategoryPreciseLocation, PermFineLocation))
	}
	return findings
}

func authentication(in *ruleInput) []models.ComplianceFinding {
	var findings []models.ComplianceFinding

	hasBiometric := false
	for _, feature := range BiometricFeatures {
		if in.meta.HasFeature(feature) {
			hasBiometric = true
			break
		}
	}
	if !hasBiometric && in.paymentRelated {
		findings = append(findings, newFinding(models.CategoryBiometricAuth, ""))
	}
	if in.meta.HasPermission(PermDisableKeyguard) {
		findings = append(findings, newFinding(models.CategoryKeyguardDisable, PermDisableKeyguard))
	}
	return findings
}

// isPaymentRelated looks for keyword stems in the label and package
func isPaymentRelated(meta *models.ApkMetadata, keywords []string) bool {
	var fields []string
	for _, v := range []string{meta.AppLabel, meta.Package} {
		if models.IsDetected(v) {
			fields = append(fields, strings.ToLower(v))
		}
	}
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		for _, field := range fields {
			if strings.Contains(field, kw) {
				return true
			}
		}
	}
	return false
}
