package capture

import (
	"regexp"

	"golang.org/x/text/unicode/norm"

	"github.com/0xfern/chatsnipe/internal/model"
)

// Word boundaries keep a 40-hex prefix of a longer hex run from matching.
var addressPattern = regexp.MustCompile(`\b0[xX][0-9a-fA-F]{40}\b`)

// ExtractAddress returns the first contract address found in text, in
// canonical form. Text is NFKC-folded first so full-width characters pasted
// from chat clients still match.
func ExtractAddress(text string) (string, bool) {
	folded := norm.NFKC.String(text)

	match := addressPattern.FindString(folded)
	if match == "" {
		return "", false
	}

	addr, err := model.NormalizeAddress(match)
	if err != nil {
		return "", false
	}
	return addr, true
}
