// Package match finds likely duplicate contacts via an ordered rule cascade
// over normalized fields.
package match

import "strings"

// NormalizeProfileURL canonicalizes a professional-network profile URL:
// lower-case, scheme and leading "www." stripped, query string and trailing
// slash removed. Returns "" for empty input. Malformed input degrades to a
// best-effort canonical form, never an error.
func NormalizeProfileURL(raw string) string {
	u := strings.ToLower(strings.TrimSpace(raw))
	if u == "" {
		return ""
	}
	if i := strings.Index(u, "://"); i >= 0 {
		u = u[i+3:]
	}
	u = strings.TrimPrefix(u, "www.")
	if i := strings.IndexByte(u, '?'); i >= 0 {
		u = u[:i]
	}
	return strings.TrimSuffix(u, "/")
}

// EmailDomain returns the lower-cased domain part of an email address, or ""
// when the input is empty or contains no "@".
func EmailDomain(email string) string {
	i := strings.LastIndexByte(email, '@')
	if i < 0 || i == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[i+1:])
}

// NormalizePhone strips every non-digit character from a phone number.
func NormalizePhone(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
