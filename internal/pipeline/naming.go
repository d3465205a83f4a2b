package pipeline

import (
	"crypto/sha1"
	"encoding/base64"
	"strings"
	"unicode"
)

// DefaultReplacement is substituted for characters FileSafe does not keep.
const DefaultReplacement = "-"

// FileSafe converts s into a lower-case string usable as a file name
// component. Every character other than an ASCII or Unicode letter, digit,
// underscore or hyphen is replaced by replacement (which may be empty).
func FileSafe(s, replacement string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '_' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteString(replacement)
	}
	return strings.ToLower(b.String())
}

// FileSafeDefault is FileSafe with DefaultReplacement.
func FileSafeDefault(s string) string {
	return FileSafe(s, DefaultReplacement)
}

// B64URLSafeHash returns the URL-safe base64 SHA-1 digest of s with the
// padding stripped. Used to key directories by source revision.
func B64URLSafeHash(s string) string {
	sum := sha1.Sum([]byte(s))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
