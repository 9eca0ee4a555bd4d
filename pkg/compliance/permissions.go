package compliance

import "strings"

// sensitiveKeywords mark a permission worth listing in a summary
var sensitiveKeywords = []string{
	"INTERNET", "ACCESS_FINE_LOCATION", "ACCESS_COARSE_LOCATION",
	"CAMERA", "RECORD_AUDIO", "READ_CONTACTS", "WRITE_CONTACTS",
	"READ_EXTERNAL_STORAGE", "WRITE_EXTERNAL_STORAGE", "READ_PHONE_STATE",
	"CALL_PHONE", "READ_SMS", "SEND_SMS", "ACCESS_BACKGROUND_LOCATION",
	"BILLING", "FOREGROUND_SERVICE", "BLUETOOTH", "NFC", "BIOMETRIC",
	"FINGERPRINT", "ACCESS_NETWORK_STATE",
}

// SensitivePermissions returns the permissions matching a sensitive
// keyword, in their original order
func SensitivePermissions(perms []string) []string {
	out := []string{}
	for _, perm := range perms {
		upper := strings.ToUpper(perm)
		for _, kw := range sensitiveKeywords {
			if strings.Contains(upper, kw) {
				out = append(out, perm)
				break
			}
		}
	}
	return out
}

// ShortPermission drops the android.permission. prefix for display
func ShortPermission(perm string) string {
	return strings.TrimPrefix(perm, "android.permission.")
}
