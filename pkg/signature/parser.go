package signature

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/huanfeng/apkinspect/pkg/apk"
	"github.com/huanfeng/apkinspect/pkg/models"
	"github.com/huanfeng/apkinspect/pkg/utils"
)

var (
	// Only a scheme explicitly paired with "true" counts
	schemeVerifiedRe = regexp.MustCompile(`(?i)Verified using (v\d+(?:\.\d+)?) scheme(?:\s*\([^)]*\))?:\s*true\b`)
	sha256DigestRe   = regexp.MustCompile(`SHA-256 digest:\s*([0-9A-Fa-f:]+)`)
	keyAlgorithmRe   = regexp.MustCompile(`key algorithm:\s*(\S+)`)
	keySizeRe        = regexp.MustCompile(`key size \(bits\):\s*(\d+)`)
)

const (
	notVerifiedMarker = "DOES NOT VERIFY"
	// jarsigner prints Owner: a few lines below Certificate[n]:
	certificateLookahead = 10
)

// Parser turns signer-verification output into a SignatureInfo
type Parser struct {
	logger utils.Logger
}

// NewParser creates a new signature parser
func NewParser(logger utils.Logger) *Parser {
	return &Parser{logger: utils.OrDiscard(logger)}
}

// Parse reads apksigner (primary) and jarsigner (secondary) output. Either
// may be an unavailability sentinel, in which case it is ignored.
func (p *Parser) Parse(apksigner, jarsigner string) *models.SignatureInfo {
	info := models.NewSignatureInfo()

	primaryOK := apk.IsUsableOutput(apksigner)
	secondaryOK := apk.IsUsableListing(jarsigner)
	if !primaryOK {
		p.logger.Warn("apksigner output is unusable, skipping")
	}
	if !secondaryOK {
		p.logger.Warn("jarsigner output is unusable, skipping")
	}

	verified := false
	rejected := false
	var keyAlgorithm, keySize string

	if primaryOK {
		info.SignatureVersions = schemeVersions(apksigner)

		for _, raw := range strings.Split(apksigner, "\n") {
			line := strings.TrimSpace(raw)
			switch {
			case info.CertHash == "" && sha256DigestRe.MatchString(line):
				info.CertHash = strings.ToLower(sha256DigestRe.FindStringSubmatch(line)[1])
			case info.CertificateDN == "" && strings.Contains(line, "certificate DN:"):
				info.CertificateDN, _ = apk.AfterPrefix(line, "certificate DN:")
			case keyAlgorithm == "" && keyAlgorithmRe.MatchString(line):
				keyAlgorithm = keyAlgorithmRe.FindStringSubmatch(line)[1]
			case keySize == "" && keySizeRe.MatchString(line):
				keySize = keySizeRe.FindStringSubmatch(line)[1]
			}
		}

		verified = hasVerifiedMarker(apksigner)
		rejected = strings.Contains(apksigner, notVerifiedMarker)
		info.Company = ExtractCompany(info.CertificateDN)
	}

	if secondaryOK {
		if info.CertHash == "" {
			if m := sha256DigestRe.FindStringSubmatch(jarsigner); m != nil {
				info.CertHash = strings.ToLower(m[1])
			}
		}
		verified = verified || hasVerifiedMarker(jarsigner)
		rejected = rejected || strings.Contains(jarsigner, notVerifiedMarker)

		if info.Company == models.UnknownCompany {
			if dn := jarsignerDN(jarsigner); dn != "" {
				info.CertificateDN = dn
				info.Company = ExtractCompany(dn)
			}
		}
	}

	info.IsValid = len(info.SignatureVersions) > 0
	info.IntegrityOK = (info.IsValid || verified) && !rejected
	if info.IsValid {
		info.SignatureType = strings.Join(info.SignatureVersions, "/")
	}
	info.CertificateInfo = certificateInfo(info.CertificateDN, keyAlgorithm, keySize)

	p.logger.Debug("Signature parsed - company: %q, versions: %v, hash set: %t",
		info.Company, info.SignatureVersions, info.CertHash != "")
	return info
}

// schemeVersions collects verified schemes, deduplicated and sorted by
// scheme number
func schemeVersions(output string) []string {
	seen := make(map[string]bool)
	versions := []string{}
	for _, m := range schemeVerifiedRe.FindAllStringSubmatch(output, -1) {
		v := strings.ToLower(m[1])
		if !seen[v] {
			seen[v] = true
			versions = append(versions, v)
		}
	}
	sort.SliceStable(versions, func(i, j int) bool {
		return schemeNumber(versions[i]) < schemeNumber(versions[j])
	})
	return versions
}

func schemeNumber(v string) float64 {
	n, err := strconv.ParseFloat(strings.TrimPrefix(v, "v"), 64)
	if err != nil {
		return 0
	}
	return n
}

func hasVerifiedMarker(output string) bool {
	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)
		if line == "Verifies" || line == "jar verified." || strings.HasPrefix(line, "Verified successfully") {
			return true
		}
	}
	return false
}

// jarsignerDN finds the signer DN in the formats jarsigner and keytool print
func jarsignerDN(output string) string {
	lines := strings.Split(output, "\n")
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case strings.Contains(line, "certificate DN:"):
			dn, _ := apk.AfterPrefix(line, "certificate DN:")
			return dn
		case strings.Contains(line, "Owner:"):
			dn, _ := apk.AfterPrefix(line, "Owner:")
			return dn
		case strings.Contains(line, "Issuer:"):
			dn, _ := apk.AfterPrefix(line, "Issuer:")
			return dn
		case strings.HasPrefix(line, "X.509,"):
			return strings.TrimSpace(strings.TrimPrefix(line, "X.509,"))
		case strings.Contains(line, "Certificate[") && strings.Contains(line, "]"):
			end := i + certificateLookahead
			if end > len(lines) {
				end = len(lines)
			}
			for _, next := range lines[i+1 : end] {
				if dn, ok := apk.AfterPrefix(next, "Owner:"); ok {
					return dn
				}
			}
		}
	}
	return ""
}

func certificateInfo(dn, keyAlgorithm, keySize string) string {
	var parts []string
	if dn != "" {
		parts = append(parts, dn)
	}
	switch {
	case keyAlgorithm != "" && keySize != "":
		parts = append(parts, fmt.Sprintf("key: %s %s bits", keyAlgorithm, keySize))
	case keyAlgorithm != "":
		parts = append(parts, "key: "+keyAlgorithm)
	}
	return strings.Join(parts, "; ")
}
