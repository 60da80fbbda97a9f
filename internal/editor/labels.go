package editor

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Label turns a camelCase field name into a display label: "addressZipcode" -> "Address Zipcode".
func Label(name string) string {
	var words []string
	var current []rune
	for _, r := range name {
		if unicode.IsUpper(r) && len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
		current = append(current, unicode.ToLower(r))
	}
	if len(current) > 0 {
		words = append(words, string(current))
	}
	label := cases.Title(language.English).String(strings.Join(words, " "))
	return strings.ReplaceAll(label, "Url", "URL")
}
