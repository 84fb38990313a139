package draw

import (
	"crypto/rand"
	"fmt"
)

// codeAlphabet is the 32-symbol alphabet for winner codes. Visually
// confusable glyphs (0/O, 1/I) are excluded so codes survive handwriting and
// phone calls. Because 32 divides 256 evenly, mapping a random byte to an
// index by modulo introduces no bias.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the fixed length of a winner code. 32^8 gives roughly 1.1e12
// combinations; uniqueness is still enforced by the database constraint, with
// generation retried on conflict.
const CodeLength = 8

// NewCode returns a fresh candidate winner code from a cryptographically
// secure source.
func NewCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read randomness: %w", err)
	}

	out := make([]byte, CodeLength)
	for i, b := range buf {
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(out), nil
}
