package apk

import (
	"regexp"
	"strings"
)

var quotedValueRe = regexp.MustCompile(`'([^']*)'`)

// keyedValueRes is built once; lookups never write to it.
var keyedValueRes = func() map[string]*regexp.Regexp {
	res := make(map[string]*regexp.Regexp)
	for _, key := range []string{
		"name", "versionCode", "versionName", "label",
		"platformBuildVersionName", "compileSdkVersion",
	} {
		res[key] = keyedPattern(key)
	}
	return res
}()

func keyedPattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[\s:])` + regexp.QuoteMeta(key) + `='([^']*)'`)
}

// unusableMarkerRe flags tool output that is an error message or an
// "unavailable" sentinel rather than real tool data. Markers must stand as
// whole words so entry names like res/layout/error_view.xml do not count.
var unusableMarkerRe = regexp.MustCompile(
	`(?i)\b(error|not found|not configured|unavailable|no encontrado|no disponible|no configurado)\b`)

// IsUsableOutput reports whether raw tool output can be parsed
func IsUsableOutput(output string) bool {
	if strings.TrimSpace(output) == "" {
		return false
	}
	return !unusableMarkerRe.MatchString(output)
}

// IsUsableListing is IsUsableOutput for output that lists archive entries,
// such as jarsigner -verbose. Entry names are arbitrary, so only the first
// non-empty line, where a sentinel or tool failure appears, is checked.
func IsUsableListing(output string) bool {
	for _, raw := range strings.Split(output, "\n") {
		if line := strings.TrimSpace(raw); line != "" {
			return !unusableMarkerRe.MatchString(line)
		}
	}
	return false
}

// FirstQuoted returns the first single-quoted value on the line
func FirstQuoted(line string) (string, bool) {
	m := quotedValueRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// KeyedQuoted returns the value of key='value' on the line. The key must
// start the line or follow whitespace, so name= does not match versionName=.
func KeyedQuoted(line, key string) (string, bool) {
	re, ok := keyedValueRes[key]
	if !ok {
		re = keyedPattern(key)
	}
	m := re.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// QuotedList splits the first quoted run of a line like
// native-code: 'arm64-v8a' 'x86_64' into its values.
func QuotedList(line string) []string {
	var values []string
	for _, m := range quotedValueRe.FindAllStringSubmatch(line, -1) {
		if v := strings.TrimSpace(m[1]); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// AfterPrefix returns the trimmed remainder of a line after prefix, with
// surrounding quotes removed.
func AfterPrefix(line, prefix string) (string, bool) {
	idx := strings.Index(line, prefix)
	if idx < 0 {
		return "", false
	}
	v := strings.TrimSpace(line[idx+len(prefix):])
	return strings.Trim(v, `'"`), true
}
