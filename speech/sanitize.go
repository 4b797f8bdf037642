package speech

import (
	"strings"
	"unicode"
)

const maxSpeechChars = 1000

// Sanitize prepares assistant text for the synthesis model: markup and
// emphasis characters are dropped, anything outside printable ASCII is
// stripped, and the result is capped with a truncation marker. The
// synthesis voices read punctuation fine but stumble on markdown and
// emoji.
func Sanitize(text string) string {
	text = strings.NewReplacer("*", "", "_", "", "#", "").Replace(text)

	var b strings.Builder
	for _, r := range text {
		if r > unicode.MaxASCII {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || strings.ContainsRune(".,!?-", r) {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if len(clean) > maxSpeechChars {
		clean = clean[:maxSpeechChars] + "..."
	}
	return clean
}
