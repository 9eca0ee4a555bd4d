package apk

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// filenamePattern captures name and version from a file stem
type filenamePattern struct {
	re    *regexp.Regexp
	debug bool
}

// Tried in order; the first match wins.
var filenamePatterns = []filenamePattern{
	{re: regexp.MustCompile(`(?i)^(.+?)-debug-(\d[\w.]*)$`), debug: true},
	{re: regexp.MustCompile(`(?i)^(.+?)-release-(\d[\w.]*)$`)},
	{re: regexp.MustCompile(`(?i)^(.+?)-v?(\d+(?:\.\d+)+)$`)},
	{re: regexp.MustCompile(`(?i)^(.+?)_v(\d+(?:\.\d+)*)$`)},
}

var (
	buildSuffixRe  = regexp.MustCompile(`(?i)-(debug|release|unsigned)$`)
	packageSplitRe = regexp.MustCompile(`[^a-z0-9]+`)
)

// FilenameGuess is what can be inferred from an APK file name alone
type FilenameGuess struct {
	// Name is the raw name part of the stem, before title-casing
	Name    string
	Label   string
	Version string
	// Debug is display-only; it never sets ApkMetadata.Debuggable
	Debug bool
}

// GuessFromFilename infers a display name and version from the APK file
// name. It returns false when the name carries nothing usable.
func GuessFromFilename(path string) (FilenameGuess, bool) {
	stem := fileStem(path)
	if stem == "" {
		return FilenameGuess{}, false
	}

	guess := FilenameGuess{
		Debug: strings.Contains(strings.ToLower(stem), "-debug"),
	}

	matched := false
	for _, p := range filenamePatterns {
		if m := p.re.FindStringSubmatch(stem); m != nil {
			guess.Name = m[1]
			guess.Version = m[2]
			guess.Debug = guess.Debug || p.debug
			matched = true
			break
		}
	}

	if !matched {
		name := stem
		for buildSuffixRe.MatchString(name) {
			name = buildSuffixRe.ReplaceAllString(name, "")
		}
		guess.Name = name
	}

	guess.Label = titleCase(guess.Name)
	if guess.Label == "" {
		return FilenameGuess{}, false
	}
	return guess, true
}

// PackageFromFilename builds a package-like identifier from the file name,
// e.g. "com.acme.Wallet-release-2.0.apk" gives "com.acme.wallet".
func PackageFromFilename(path string) string {
	guess, ok := GuessFromFilename(path)
	if !ok {
		return ""
	}
	var segments []string
	for _, s := range packageSplitRe.Split(strings.ToLower(guess.Name), -1) {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return strings.Join(segments, ".")
}

func fileStem(path string) string {
	if path == "" {
		return ""
	}
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	if strings.EqualFold(filepath.Ext(base), ".apk") {
		base = base[:len(base)-len(filepath.Ext(base))]
	}
	return strings.TrimSpace(base)
}

func titleCase(name string) string {
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	// a Caser carries state, so each call gets its own
	return cases.Title(language.Und, cases.NoLower).String(name)
}
