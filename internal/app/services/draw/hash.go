package draw

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// identifierNamespace is prepended to the normalized phone number before
// hashing so identifiers from this campaign never collide with digests of the
// bare number elsewhere.
const identifierNamespace = "qr-campaign:"

// Identifier derives the stable pseudonymous identifier for a phone number.
// Whitespace is stripped and a leading +62/62 country prefix rewritten to the
// local trunk prefix 0, so equivalent numbers entered in different formats
// collapse to the same identifier. Unsalted on purpose: this is deduplication,
// not authentication, and the value must be stable across restarts.
func Identifier(phone string) string {
	normalized := normalizePhone(phone)
	sum := sha256.Sum256([]byte(identifierNamespace + normalized))
	return hex.EncodeToString(sum[:])
}

func normalizePhone(phone string) string {
	stripped := strings.Join(strings.Fields(phone), "")
	if rest, ok := strings.CutPrefix(stripped, "+62"); ok {
		return "0" + rest
	}
	if rest, ok := strings.CutPrefix(stripped, "62"); ok {
		return "0" + rest
	}
	return stripped
}
