package catalog

import "strings"

var isbnPrefixes = []string{"ISBN-10: ", "ISBN-13: ", "ISBN-10 ", "ISBN-13 ", "ISBN: ", "ISBN "}

// ValidISBN reports whether s is a well-formed ISBN-10 or ISBN-13. Hyphens or
// spaces may separate the groups, and an "ISBN", "ISBN-10" or "ISBN-13"
// label may precede the number. Check digits are not verified.
func ValidISBN(s string) bool {
	_, ok := NormalizeISBN(s)
	return ok
}

// NormalizeISBN returns the bare digits (and trailing X) of a well-formed
// ISBN, so that "978-0-7432-7356-5" and "9780743273565" compare equal.
func NormalizeISBN(s string) (string, bool) {
	for _, prefix := range isbnPrefixes {
		if strings.HasPrefix(s, prefix) {
			s = s[len(prefix):]
			break
		}
	}
	if s == "" || isSeparator(s[0]) || isSeparator(s[len(s)-1]) {
		return "", false
	}

	var b strings.Builder
	separators := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isSeparator(c) {
			if isSeparator(s[i-1]) {
				return "", false
			}
			separators++
			continue
		}
		b.WriteByte(c)
	}
	compact := b.String()

	var ok bool
	switch {
	case len(compact) == 10 && (separators == 0 || separators == 3):
		ok = allDigits(compact[:9]) && (isDigit(compact[9]) || compact[9] == 'X')
	case len(compact) == 13 && (separators == 0 || separators == 4):
		ok = allDigits(compact) && (strings.HasPrefix(compact, "978") || strings.HasPrefix(compact, "979"))
	}
	if !ok {
		return "", false
	}
	return compact, true
}

// stripISBNSeparators drops hyphens and spaces from a partial ISBN used as
// a search term.
func stripISBNSeparators(s string) string {
	return strings.NewReplacer("-", "", " ", "").Replace(s)
}

func isSeparator(c byte) bool { return c == '-' || c == ' ' }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}
