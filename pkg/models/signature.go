package models

// UnknownCompany is the signer organization when no DN component matched
const UnknownCompany = "Unknown"

// SignatureInfo contains APK signature information parsed from signer tool output
type SignatureInfo struct {
	Company           string   `json:"company" yaml:"company"`
	SignatureVersions []string `json:"signature_versions" yaml:"signature_versions"`
	IsValid           bool     `json:"is_valid" yaml:"is_valid"`
	IntegrityOK       bool     `json:"integrity_ok" yaml:"integrity_ok"`
	CertHash          string   `json:"cert_hash,omitempty" yaml:"cert_hash,omitempty"`
	CertificateDN     string   `json:"certificate_dn,omitempty" yaml:"certificate_dn,omitempty"`
	CertificateInfo   string   `json:"certificate_info,omitempty" yaml:"certificate_info,omitempty"`
	SignatureType     string   `json:"signature_type" yaml:"signature_type"`
}

// NewSignatureInfo returns an unsigned record
func NewSignatureInfo() *SignatureInfo {
	return &SignatureInfo{
		Company:           UnknownCompany,
		SignatureVersions: []string{},
		SignatureType:     "unsigned",
	}
}

// HasVersion reports whether the APK verified under the given scheme
func (s *SignatureInfo) HasVersion(v string) bool {
	for _, sv := range s.SignatureVersions {
		if sv == v {
			return true
		}
	}
	return false
}
