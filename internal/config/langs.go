package config

import (
	"fmt"
	"sort"
	"strings"
)

// languages is the fixed set of supported languages: code → display name.
var languages = map[string]string{
	"en": "English",
	"ru": "Русский",
}

// Langs resolves language codes and translation-pair codes.
// A translation-pair code is "<foreign>-<native>", e.g. "en-ru".
type Langs struct{}

// Codes returns the supported language codes, sorted.
func (Langs) Codes() []string {
	codes := make([]string, 0, len(languages))
	for c := range languages {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// LanguageName returns the display name for a language code,
// or the code itself if it is unknown.
func (Langs) LanguageName(code string) string {
	if name, ok := languages[code]; ok {
		return name
	}
	return code
}

// TranslationCode builds a pair code from native and foreign language codes.
func (Langs) TranslationCode(nativeCode, foreignCode string) string {
	return fmt.Sprintf("%s-%s", foreignCode, nativeCode)
}

// ForeignCode extracts the foreign language code from a pair code.
func (Langs) ForeignCode(translationCode string) string {
	return strings.SplitN(translationCode, "-", 2)[0]
}

// NativeCode extracts the native language code from a pair code.
func (Langs) NativeCode(translationCode string) string {
	parts := strings.SplitN(translationCode, "-", 2)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// ForeignName returns the display name of the foreign language of a pair.
func (l Langs) ForeignName(translationCode string) string {
	return l.LanguageName(l.ForeignCode(translationCode))
}

// TranslationText renders a pair code as "Foreign ➡ Native" for keyboards.
// With reverse the direction arrow is flipped.
func (l Langs) TranslationText(translationCode string, reverse bool) string {
	names := []string{
		l.LanguageName(l.ForeignCode(translationCode)),
		l.LanguageName(l.NativeCode(translationCode)),
	}
	if reverse {
		names[0], names[1] = names[1], names[0]
	}
	return strings.Join(names, "  ➡  ")
}
