package app

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	maxSlugBase     = 240
	maxUsernameBase = 140
)

// Slugify lower-cases s, drops diacritics ("Hôtel Sénégal" -> "hotel-senegal")
// and joins runs of letters/digits with single dashes.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if len(out) > maxSlugBase {
		out = strings.TrimRight(out[:maxSlugBase], "-")
	}
	if out == "" {
		return "hotel"
	}
	return out
}

// usernameBase is the local part of an email address.
func usernameBase(email string) string {
	local := email
	if i := strings.IndexByte(email, '@'); i >= 0 {
		local = email[:i]
	}
	local = strings.TrimSpace(local)
	if len(local) > maxUsernameBase {
		local = local[:maxUsernameBase]
	}
	if local == "" {
		return "user"
	}
	return local
}
