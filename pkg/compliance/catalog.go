package compliance

import (
	"fmt"

	"github.com/huanfeng/apkinspect/pkg/models"
)

// findingTemplate is the fixed text of one finding kind
type findingTemplate struct {
	requirementID  string
	title          string
	description    string
	recommendation string
	impact         string
	severity       models.Severity
}

var catalog = map[models.FindingCategory]findingTemplate{
	models.CategoryInsecureStorage: {
		requirementID:  "3.2.1",
		title:          "Insecure data storage",
		description:    "App can write to external storage without encryption",
		recommendation: "Use encrypted internal storage for sensitive payment data",
		impact:         "Card data exposed on unprotected storage",
		severity:       models.SeverityHigh,
	},
	models.CategoryStorageRead: {
		requirementID:  "3.2.2",
		title:          "External storage read access",
		description:    "App can read external storage",
		recommendation: "Verify that no card data is read from external storage",
		impact:         "Possible access to sensitive data on shared storage",
		severity:       models.SeverityMedium,
	},
	models.CategorySensitiveData: {
		requirementID:  "3.1",
		title:          "App handles payment data",
		description:    "Application processes payment or card information",
		recommendation: "Encrypt data at rest and define retention policies",
		impact:         "Card data exposed if not adequately protected",
		severity:       models.SeverityHigh,
	},
	models.CategoryNetworkTransport: {
		requirementID:  "4.1",
		title:          "Network traffic without TLS validation",
		description:    "App connects to the internet and must enforce TLS validation",
		recommendation: "Use TLS 1.2+ with certificate validation for all connections",
		impact:         "Card data intercepted in transit if TLS is not used",
		severity:       models.SeverityHigh,
	},
	models.CategoryContactlessPay: {
		requirementID:  "4.3",
		title:          "NFC payment channel",
		description:    "App uses NFC and requires encrypted contactless communication",
		recommendation: "Validate end-to-end encryption of NFC transactions",
		impact:         "Payment data intercepted over NFC",
		severity:       models.SeverityHigh,
	},
	models.CategoryBluetooth: {
		requirementID:  "4.4",
		title:          "Bluetooth communication",
		description:    "App uses Bluetooth and its connections must be secured",
		recommendation: "Use encrypted Bluetooth LE for sensitive communication",
		impact:         "Data intercepted over insecure Bluetooth connections",
		severity:       models.SeverityMedium,
	},
	models.CategoryDebugMode: {
		requirementID:  "6.3.2",
		title:          "APK built in debug mode",
		description:    "APK was compiled with debugging enabled",
		recommendation: "Build in release mode with debuggable=false for production",
		impact:         "Sensitive information and attack surface exposed",
		severity:       models.SeverityHigh,
	},
	models.CategoryBackupEnabled: {
		requirementID:  "6.4",
		title:          "Automatic backup enabled",
		description:    "Automatic backup is enabled without dedicated encryption",
		recommendation: "Disable android:allowBackup or encrypt backups with a secure key",
		impact:         "App data exposed in unencrypted backups",
		severity:       models.SeverityHigh,
	},
	models.CategoryExportedComponent: {
		requirementID:  "6.5",
		title:          "Unprotected exported components",
		description:    "Activities, services or receivers are exported without restriction",
		recommendation: "Review exported components and protect them with permissions",
		impact:         "Unauthorized access to app functionality",
		severity:       models.SeverityHigh,
	},
	models.CategorySystemPermission: {
		requirementID:  "7.1.1",
		title:          "High-risk system permission",
		description:    "App holds a privileged system permission: %s",
		recommendation: "Review whether payment processing needs this permission",
		impact:         "Elevated system access likely unnecessary for payment processing",
		severity:       models.SeverityHigh,
	},
	models.CategoryPreciseLocation: {
		requirementID:  "7.2.1",
		title:          "Precise location access",
		description:    "App reads precise GPS location",
		recommendation: "Validate the need for location and protect location data",
		impact:         "User location information exposed",
		severity:       models.SeverityMedium,
	},
	models.CategoryBiometricAuth: {
		requirementID:  "8.2.1",
		title:          "Missing biometric authentication",
		description:    "Payment app declares no biometric authentication hardware",
		recommendation: "Add biometric authentication for payment transactions",
		impact:         "Weaker authentication for sensitive transactions",
		severity:       models.SeverityMedium,
	},
	models.CategoryKeyguardDisable: {
		requirementID:  "8.3.1",
		title:          "Can disable keyguard",
		description:    "App can disable the lock screen",
		recommendation: "Review whether a payment app needs this permission",
		impact:         "Possible bypass of device security",
		severity:       models.SeverityHigh,
	},
}

// newFinding builds a finding from the catalog. subject fills the
// description of findings that name a permission.
func newFinding(category models.FindingCategory, subject string) models.ComplianceFinding {
	tpl := catalog[category]
	description := tpl.description
	if subject != "" && category == models.CategorySystemPermission {
		description = fmt.Sprintf(tpl.description, subject)
	}
	return models.ComplianceFinding{
		RequirementID:  tpl.requirementID,
		Category:       category,
		Title:          tpl.title,
		Description:    description,
		Recommendation: tpl.recommendation,
		Impact:         tpl.impact,
		Severity:       tpl.severity,
		Subject:        subject,
	}
}
