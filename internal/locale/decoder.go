// Package locale implements LocaleKeyDecoder: extracting a BCP-47-ish
// locale tag from a desktop-entry key's parenthesized (bracketed) suffix,
// e.g. "Name[de_DE]" -> "de_DE".
package locale

import (
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Unlocalized is the reserved tag for the untranslated base value.
const Unlocalized = "C"

var validToken = regexp.MustCompile(`^[a-zA-Z]+(_[a-zA-Z]+)?(@[a-zA-Z0-9]+)?$`)

// Decoder decodes desktop-entry locale suffixes. Validity checks are
// memoized in a small bounded cache, since the same handful of locale
// suffixes recur across every desktop file in a repository slice.
type Decoder struct {
	cache *lru.Cache[string, bool]
}

// NewDecoder creates a Decoder with a cache sized for a typical repository
// slice's locale vocabulary.
func NewDecoder() *Decoder {
	cache, _ := lru.New[string, bool](512)
	return &Decoder{cache: cache}
}

// Decode extracts the locale tag from a desktop-entry key, e.g.
// "Name[de_DE]" -> "de_DE", "Name" -> "C". Returns ok=false when the
// bracketed token fails the locale-validity predicate, signalling the
// caller to ignore the key entirely.
func (d *Decoder) Decode(key string) (string, bool) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		return Unlocalized, true
	}
	close := strings.LastIndexByte(key, ']')
	if close < open {
		return "", false
	}

	token := key[open+1 : close]
	token = stripEncodingSuffix(token)

	if token == "" {
		return "", false
	}

	if d.cache != nil {
		if valid, ok := d.cache.Get(token); ok {
			if !valid {
				return "", false
			}
			return token, true
		}
	}

	valid := validToken.MatchString(token)
	if d.cache != nil {
		d.cache.Add(token, valid)
	}
	if !valid {
		return "", false
	}
	return token, true
}

// stripEncodingSuffix trims a trailing ".UTF-8"/".utf-8" and, if another
// "." remains, a trailing ".iso*" encoding suffix (case-insensitive).
func stripEncodingSuffix(token string) string {
	if idx := lastDot(token); idx >= 0 {
		suffix := token[idx+1:]
		if strings.EqualFold(suffix, "UTF-8") {
			token = token[:idx]
		}
	}
	if idx := lastDot(token); idx >= 0 {
		suffix := strings.ToLower(token[idx+1:])
		if strings.HasPrefix(suffix, "iso") {
			token = token[:idx]
		}
	}
	return token
}

func lastDot(s string) int {
	return strings.LastIndexByte(s, '.')
}
