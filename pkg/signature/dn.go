package signature

import (
	"regexp"
	"strings"

	"github.com/huanfeng/apkinspect/pkg/models"
)

// Company components in priority order, each read up to the next comma.
// A component must start the DN or follow a comma.
var dnComponentRes = []*regexp.Regexp{
	regexp.MustCompile(`(?:^|,\s*)O\s*=\s*([^,]+)`),
	regexp.MustCompile(`(?:^|,\s*)OU\s*=\s*([^,]+)`),
	regexp.MustCompile(`(?:^|,\s*)CN\s*=\s*([^,]+)`),
}

// ExtractCompany returns the signer organization from a Distinguished
// Name: O=, then OU=, then CN=. It returns models.UnknownCompany when none
// is present.
func ExtractCompany(dn string) string {
	dn = strings.TrimSpace(dn)
	if dn == "" {
		return models.UnknownCompany
	}
	for _, re := range dnComponentRes {
		if m := re.FindStringSubmatch(dn); m != nil {
			if v := strings.Trim(strings.TrimSpace(m[1]), `"`); v != "" {
				return v
			}
		}
	}
	return models.UnknownCompany
}
