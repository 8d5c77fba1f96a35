package groups

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// codeAlphabet is the 32-character alphabet for join codes. Visually
// confusable glyphs (0/O, 1/I) are excluded so codes survive being read
// aloud or copied by hand.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the length of a group join code.
const CodeLength = 6

// NewCode generates a random join code.
func NewCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	var b strings.Builder
	for _, c := range buf {
		b.WriteByte(codeAlphabet[int(c)%len(codeAlphabet)])
	}
	return b.String(), nil
}

// NormalizeCode canonicalizes a user-supplied join code: codes are
// case-insensitive and stored upper-case.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
