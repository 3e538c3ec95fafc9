package store

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	maxKeyLength  = 50
	keyHashLength = 12
)

// Key derives a deterministic, filesystem-safe file stem from an article id
// or feed URL. Only ASCII letters, digits, '-' and '_' survive; anything else
// becomes '_'. A value that had to be altered or shortened gets a hash suffix
// so that distinct ids sharing a long prefix never map to the same file.
func Key(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isKeyRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	sanitized := b.String()

	if sanitized == s && len(sanitized) <= maxKeyLength && sanitized != "" {
		return sanitized
	}

	sum := sha256.Sum256([]byte(s))
	suffix := hex.EncodeToString(sum[:])[:keyHashLength]

	prefixLength := maxKeyLength - keyHashLength - 1
	if len(sanitized) > prefixLength {
		sanitized = sanitized[:prefixLength]
	}
	if sanitized == "" {
		return suffix
	}

	return sanitized + "-" + suffix
}

// NormalizeID returns id the way it reads back from a stored record: line
// breaks become spaces and surrounding whitespace is dropped.
func NormalizeID(id string) string {
	return strings.TrimSpace(singleLine(id))
}

func isKeyRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_'
}
