package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// Legacy extractors cover the transactional fields earlier sheet revisions
// carried (status, contact, price, type, notes). They only run when
// Options.Legacy is set; the canonical variant narrows the contract to
// size/floor/bedroom/location search plus detail/rawDetail.

// Status is the construction/sale status of a listing.
type Status string

const (
	StatusReady             Status = "ready"
	StatusUnderConstruction Status = "under_construction"
	StatusBooking           Status = "booking"
)

// PropertyType distinguishes plots from built flats.
type PropertyType string

const (
	TypePlot PropertyType = "plot"
	TypeFlat PropertyType = "flat"
)

var (
	statusReadyRe   = regexp.MustCompile(`(?i)\bREADY\b`)
	statusUCRe      = regexp.MustCompile(`(?i)U/[CR]`)
	statusBookingRe = regexp.MustCompile(`(?i)\bBOOKING\b`)

	contactRe = regexp.MustCompile(`\d{8,11}`)

	// Sheets quote prices in lakhs after ₹, Rs. or @.
	priceRe = regexp.MustCompile(`(?i)(?:₹|RS\.?|@)\s*(\d+(?:\.\d+)?)`)

	notesRe = regexp.MustCompile(`(?i)note|remark`)
)

// priceLakhMultiplier converts sheet-quoted lakhs to rupees.
const priceLakhMultiplier = 100000

// ExtractStatus returns the first status token in the line.
func ExtractStatus(line string) (Status, bool) {
	switch {
	case statusReadyRe.MatchString(line):
		return StatusReady, true
	case statusUCRe.MatchString(line):
		return StatusUnderConstruction, true
	case statusBookingRe.MatchString(line):
		return StatusBooking, true
	}
	return "", false
}

// ExtractContacts collects 8-11 digit sequences as a comma-joined list.
// Internal use only: the public detail string never carries these.
func ExtractContacts(line string) (string, bool) {
	matches := contactRe.FindAllString(line, -1)
	if len(matches) == 0 {
		return "", false
	}
	return strings.Join(matches, ","), true
}

// ExtractPrice returns the rupee price from a lakh-quoted numeral.
func ExtractPrice(line string) (float64, bool) {
	m := priceRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v * priceLakhMultiplier, true
}

// ExtractPropertyType detects plot/flat mentions.
func ExtractPropertyType(line string) (PropertyType, bool) {
	lower := strings.ToLower(line)
	if strings.Contains(lower, "plot") {
		return TypePlot, true
	}
	if strings.Contains(lower, "flat") || strings.Contains(lower, "apartment") {
		return TypeFlat, true
	}
	return "", false
}

// ExtractBrokerNotes keeps the whole line when it is marked as a note.
func ExtractBrokerNotes(line string) (string, bool) {
	if notesRe.MatchString(line) {
		return line, true
	}
	return "", false
}
