package extract

// keys.go derives the canonical group key for a document from its file name.
//
// Input names look like COMPRESOR4-ABR-JUN-25.PDF or compresor_12-data.pdf.
// Resolution is an ordered list of matchers, first match wins, with a
// guaranteed fallback so every document routes somewhere. The whole thing is
// a pure function of the name; warnings about fallback use are the caller's
// concern.

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// keyMatchers is the ordered list of primary matchers. Each captures the
// compressor number in group 1.
var keyMatchers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)compresor(\d+)`),     // COMPRESOR4
	regexp.MustCompile(`(?i)compresor[-_](\d+)`), // COMPRESOR-4, compresor_4
	regexp.MustCompile(`(?i)compresor\s+(\d+)`),  // COMPRESOR 4
}

// fallbackMatchers run when no primary matcher applies.
var fallbackMatchers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)compresor[-_]?(\d+)`),
	regexp.MustCompile(`(\d+)`), // any number in the name
}

// ResolveKey returns the canonical group key for a document name, e.g.
// "Compressor 4". The second result reports whether a primary pattern
// matched; false means a fallback key was derived and the caller should
// record a resolution-miss warning.
func ResolveKey(name string) (string, bool) {
	base := filepath.Base(name)

	for _, re := range keyMatchers {
		if m := re.FindStringSubmatch(base); m != nil {
			return "Compressor " + m[1], true
		}
	}
	return fallbackKey(base), false
}

// fallbackKey derives a deterministic key from a name that matched no
// primary pattern.
func fallbackKey(base string) string {
	for _, re := range fallbackMatchers {
		if m := re.FindStringSubmatch(base); m != nil {
			return "Compressor " + m[1]
		}
	}

	// No number anywhere: use the first meaningful part of the stem.
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.SplitN(stem, "-", 2)[0]
	stem = strings.SplitN(stem, "_", 2)[0]
	if stem != "" {
		return fmt.Sprintf("Compressor (%s)", stem)
	}
	return "Compressor (Unknown)"
}
