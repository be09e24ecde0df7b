package services

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// LanguageName returns the English name of a language code such as "tr" or
// "pt-BR". Codes that cannot be resolved are returned unchanged.
func LanguageName(code string) string {
	code = strings.TrimSpace(code)
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}
