// Package parser turns the free-text layer of a monthly listing sheet into
// structured property records. The sheets are loosely formatted: area names
// appear as standalone headings, and each property line underneath packs an
// id, size, floor codes and bedroom counts with ad-hoc abbreviations.
package parser

import (
	"regexp"
	"strings"
)

var (
	nonLetterRe  = regexp.MustCompile(`[^a-z\s]`)
	multiSpaceRe = regexp.MustCompile(`\s+`)
)

// NormalizeLines splits raw extracted document text into trimmed, non-empty
// lines, preserving order.
func NormalizeLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

// NormalizeArea canonicalizes an area-heading line: lowercase, letters and
// spaces only, single spaces. Idempotent: normalizing an already-normalized
// area yields the same string.
func NormalizeArea(line string) string {
	s := strings.ToLower(line)
	s = nonLetterRe.ReplaceAllString(s, " ")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
