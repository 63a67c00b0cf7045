package listing

import (
	"regexp"
	"strconv"
	"strings"
)

const bom = "\ufeff"

// NormalizeCode converts a raw cell value into a canonical item code.
// The BOM is removed, trailing ".0" suffixes are stripped until none is left,
// whitespace is trimmed and the result is upper-cased. NormalizeCode(NormalizeCode(s)) == NormalizeCode(s).
func NormalizeCode(raw string) string {
	return strings.ToUpper(cleanKey(raw))
}

// cleanKey is NormalizeCode without case folding.
func cleanKey(raw string) string {
	s := strings.ReplaceAll(raw, bom, "")
	s = strings.TrimSpace(s)
	for strings.HasSuffix(s, ".0") {
		s = strings.TrimSpace(strings.TrimSuffix(s, ".0"))
	}
	return s
}

// CompactDate reduces a date or datetime cell to its first eight digits
// (YYYYMMDD). Cells without digits yield "".
func CompactDate(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == 8 {
				break
			}
		}
	}
	return b.String()
}

// IsZero reports whether a quantity cell holds the number zero.
// Empty and malformed cells are not zero.
func IsZero(raw string) bool {
	s := strings.TrimSpace(raw)
	if s == "" {
		return false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	return err == nil && f == 0
}

var vendorPatterns = []struct {
	re   *regexp.Regexp
	size int
}{
	{regexp.MustCompile(`^\d{2}[A-Z]{4}`), 6},
	{regexp.MustCompile(`^[A-Z]{4}`), 4},
	{regexp.MustCompile(`^[A-Z]{3}`), 3},
}

// VendorCode derives the vendor prefix of an item code.
func VendorCode(code string) string {
	for _, p := range vendorPatterns {
		if p.re.MatchString(code) {
			return code[:p.size]
		}
	}
	return ""
}

// BracketKey returns the text between the first '[' and the following ']'.
func BracketKey(raw string) (string, bool) {
	open := strings.IndexByte(raw, '[')
	if open < 0 {
		return "", false
	}
	rest := raw[open+1:]
	end := strings.IndexByte(rest, ']')
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}
