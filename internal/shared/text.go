package shared

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var superscripts = strings.NewReplacer("²", "2", "³", "3")

// Fold lowercases s and strips diacritics ("Recámaras" -> "recamaras",
// "baño" -> "bano"). Line breaks and punctuation are kept.
func Fold(s string) string {
	s = superscripts.Replace(s)
	// transformers carry state; build one per call so Fold is goroutine-safe
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Squash collapses runs of spaces and tabs into one space, trimming each line.
func Squash(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// IndexWord returns the byte offset of the first occurrence of phrase in text
// that starts and ends on a word boundary, or -1. Edges of the phrase that are
// not letters or digits ("/mes") need no boundary.
func IndexWord(text, phrase string) int {
	if phrase == "" {
		return -1
	}
	first, _ := utf8.DecodeRuneInString(phrase)
	last, _ := utf8.DecodeLastRuneInString(phrase)
	from := 0
	for from <= len(text) {
		i := strings.Index(text[from:], phrase)
		if i < 0 {
			return -1
		}
		i += from
		okStart := !isWordRune(first) || boundaryBefore(text, i)
		okEnd := !isWordRune(last) || boundaryAfter(text, i+len(phrase))
		if okStart && okEnd {
			return i
		}
		from = i + 1
	}
	return -1
}

// ContainsWord reports whether phrase occurs in text as whole words.
func ContainsWord(text, phrase string) bool { return IndexWord(text, phrase) >= 0 }

// FirstWord returns the first phrase of the list present in text.
func FirstWord(text string, phrases []string) (string, bool) {
	for _, p := range phrases {
		if ContainsWord(text, p) {
			return p, true
		}
	}
	return "", false
}

func isWordRune(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}
