package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CustomerRecord is a directory entry used by the link form autocomplete.
type CustomerRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Initials string `json:"initials"`
}

// Initials derives display initials from the first two words of name.
func Initials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(word)
		out = append(out, unicode.ToUpper(r))
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}
