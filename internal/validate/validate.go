// Package validate holds the pure format checks applied to user-submitted
// guestbook fields. None of these touch the store or the network.
package validate

import (
	"regexp"
	"unicode/utf8"
)

var (
	// Letters, digits, underscore, and CJK unified ideographs.
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_\x{4e00}-\x{9fa5}]+$`)

	// http(s) scheme, a host that starts right after //, no whitespace.
	websiteURLRe = regexp.MustCompile(`^https?://[^\s/$.?#].[^\s]*$`)

	// local@domain.tld with a 2+ character top-level segment.
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[a-zA-Z]{2,}$`)
)

// Username reports whether s is a well-formed author name: 2-50 runes,
// limited to ASCII letters, digits, underscore, and CJK ideographs.
// The empty string is invalid.
func Username(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < 2 || n > 50 {
		return false
	}
	return usernameRe.MatchString(s)
}

// WebsiteURL reports whether s is an acceptable website link. The field is
// optional, so the empty string is valid.
func WebsiteURL(s string) bool {
	if s == "" {
		return true
	}
	return websiteURLRe.MatchString(s)
}

// Email reports whether s is an acceptable address. The empty string is
// valid here; callers that require an email check for emptiness themselves.
func Email(s string) bool {
	if s == "" {
		return true
	}
	return emailRe.MatchString(s)
}
