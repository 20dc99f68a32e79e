package nlp

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CleanText lower-cases text, folds accents and replaces everything that is not
// a letter, digit or space with a single space.
func CleanText(text string) string {
	return normalize(text, nil)
}

// normalizeTimeText is CleanText but keeps the characters that carry meaning in
// clock expressions ("9:30", "a.m.").
func normalizeTimeText(text string) string {
	text = strings.ReplaceAll(strings.ToLower(text), "a.m.", "am")
	text = strings.ReplaceAll(text, "p.m.", "pm")
	return normalize(text, func(r rune) bool { return r == ':' })
}

func normalize(text string, keep func(rune) bool) string {
	text = strings.ToLower(text)

	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	result, _, err := transform.String(t, text)
	if err != nil {
		result = text
	}

	result = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		if keep != nil && keep(r) {
			return r
		}
		return ' '
	}, result)

	return strings.Join(strings.Fields(result), " ")
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

// ContainsAnyWord reports whether the cleaned text contains one of the phrases
// on word boundaries.
func ContainsAnyWord(text string, phrases ...string) bool {
	padded := " " + CleanText(text) + " "
	for _, p := range phrases {
		if strings.Contains(padded, " "+CleanText(p)+" ") {
			return true
		}
	}
	return false
}
