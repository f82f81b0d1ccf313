package vocab

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ipakeev/words-fan-bot/internal/domain"
)

const (
	minWordLen = 2
	maxWordLen = 20
)

// forbiddenChars are rejected in word input: markup, punctuation and
// digits never appear in a dictionary headword.
const forbiddenChars = "[]()<>/?,.|\\~`!@#$%^&*_+=:;1234567890"

// quotedWord extracts the `"..."` part of a shared link: browsers wrap
// the selected text in quotes when sharing a page.
var quotedWord = regexp.MustCompile(`"(.+)"`)

// normalizeOriginal lowercases and trims the raw message text and
// validates it as a dictionary headword.
func normalizeOriginal(text string) (string, error) {
	original := strings.ToLower(strings.TrimSpace(text))

	if strings.Contains(original, "http") {
		m := quotedWord.FindStringSubmatch(original)
		if m == nil {
			return "", domain.NewValidationError("word", "cannot extract a word from the link")
		}
		original = m[1]
	}

	switch n := utf8.RuneCountInString(original); {
	case n < minWordLen:
		return "", domain.NewValidationError("word", "too short")
	case n > maxWordLen:
		return "", domain.NewValidationError("word", "too long")
	}

	if strings.ContainsAny(original, forbiddenChars) {
		return "", domain.NewValidationError("word", "contains forbidden characters")
	}
	return original, nil
}
