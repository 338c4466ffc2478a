// Package sortname builds the keys catalog rows and archive entries are
// sorted by.
package sortname

import (
	"strings"
	"unicode"
)

// TitleArticles are moved from the start of a title to its end
// ("The Hobbit" -> "Hobbit, The").
var TitleArticles = []string{
	"The",
	"A",
	"An",
}

// ForTitle returns the sort title for a display title.
func ForTitle(title string) string {
	title = strings.TrimSpace(title)
	for _, article := range TitleArticles {
		if len(title) <= len(article)+1 {
			continue
		}
		if !strings.EqualFold(title[:len(article)], article) || title[len(article)] != ' ' {
			continue
		}
		rest := strings.TrimSpace(title[len(article)+1:])
		if rest == "" {
			return title
		}
		return rest + ", " + title[:len(article)]
	}
	return title
}

// NaturalLess reports whether a sorts before b when runs of digits are
// compared by numeric value and everything else case-insensitively, so
// "page2" sorts before "Page10".
func NaturalLess(a, b string) bool {
	return NaturalCompare(a, b) < 0
}

// NaturalCompare compares a and b the way NaturalLess orders them and returns
// -1, 0 or 1.
func NaturalCompare(a, b string) int {
	for a != "" && b != "" {
		var ta, tb string
		var da, db bool
		ta, a, da = nextChunk(a)
		tb, b, db = nextChunk(b)

		var c int
		switch {
		case da && db:
			c = compareDigits(ta, tb)
		case !da && !db:
			c = strings.Compare(strings.ToLower(ta), strings.ToLower(tb))
		case da:
			// Text chunks start both keys, so a digit chunk facing a text
			// chunk means the text side is the longer prefix.
			c = -1
		default:
			c = 1
		}
		if c != 0 {
			return c
		}
	}
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	}
	return 1
}

// nextChunk splits off the leading run of digits or non-digits.
func nextChunk(s string) (string, string, bool) {
	digit := isDigit(rune(s[0]))
	i := 0
	for i < len(s) && isDigit(rune(s[i])) == digit {
		i++
	}
	return s[:i], s[i:], digit
}

func isDigit(r rune) bool {
	return r < unicode.MaxASCII && unicode.IsDigit(r)
}

// compareDigits compares two runs of ASCII digits by value without
// overflowing on long runs.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
