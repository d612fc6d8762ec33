package domain

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Sound is one loopable asset found in the sounds directory.
type Sound struct {
	Name string
	Path string
}

var supportedExtensions = map[string]struct{}{
	".ogg": {},
	".wav": {},
	".mp3": {},
}

// Supported reports whether path has a playable extension, ignoring case.
func Supported(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// NameFromPath derives the display name: "heavy-rain.ogg" becomes "Heavy Rain".
// Only hyphens become spaces, and every run of cased letters is title-cased on
// its own, so "light_rain.ogg" becomes "Light_Rain". Saved mixes refer to
// channels by these names.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return titleWords(strings.ReplaceAll(base, "-", " "))
}

func titleWords(s string) string {
	caser := cases.Title(language.English)
	var b strings.Builder
	start := -1
	for i, r := range s {
		if cased(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			b.WriteString(caser.String(s[start:i]))
			start = -1
		}
		b.WriteRune(r)
	}
	if start >= 0 {
		b.WriteString(caser.String(s[start:]))
	}
	return b.String()
}

func cased(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
}
