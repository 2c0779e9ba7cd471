package parser

import (
	"regexp"
	"strings"
)

// Redaction passes, applied in order. Phone shapes must go before contact
// keywords so "contact 9876543210" does not leave an orphaned label, and
// emails before the whitespace collapse.
var (
	// Phone-shaped substrings: 7-15 digits total, optional leading +,
	// optional parenthesized group, single separators between digit runs.
	phoneRe = regexp.MustCompile(`\+?\(?\d{1,4}\)?(?:[-.\s]?\d{1,4}){2,6}`)

	// Backstop for anything phone-like the shape pattern missed.
	longDigitRunRe = regexp.MustCompile(`\d{7,}`)

	contactKeywordRe = regexp.MustCompile(`(?i)\b(contact|call|phone|mobile|tel|whatsapp)\b\s*:?\s*\d*`)

	attributionRe = regexp.MustCompile(`\b(?i:builder|owner|proprietor|developer|by)\b\s*:?\s*[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*`)

	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

// FilterSensitive derives the broker-facing detail string from a raw
// property line: phone numbers, contact labels, builder/owner attributions
// and email addresses are stripped, whitespace is collapsed. The input is
// never mutated; admins read the raw line instead.
//
// Guarantee: the output contains no digit run of length >= 7 and no token
// containing '@'.
func FilterSensitive(raw string) string {
	s := phoneRe.ReplaceAllStringFunc(raw, func(m string) string {
		if countDigits(m) >= 7 {
			return ""
		}
		return m
	})
	s = longDigitRunRe.ReplaceAllString(s, "")
	s = contactKeywordRe.ReplaceAllString(s, "")
	s = attributionRe.ReplaceAllString(s, "")
	s = emailRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "@", "")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
