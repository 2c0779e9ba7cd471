package parser

import (
	"regexp"
)

// LineKind is the classification of a single sheet line.
type LineKind int

const (
	LineUnclassified LineKind = iota
	LineCityMarker
	LineNoise
	LineAreaHeading
	LinePropertyData
)

func (k LineKind) String() string {
	switch k {
	case LineCityMarker:
		return "city_marker"
	case LineNoise:
		return "noise"
	case LineAreaHeading:
		return "area_heading"
	case LinePropertyData:
		return "property_data"
	default:
		return "unclassified"
	}
}

// Context carries the mutable parse state for one document pass: the city
// and area that subsequent property lines belong to. One Context per Parse
// call; it is never shared across documents.
type Context struct {
	City string
	Area string
}

// NewContext returns a fresh parse context. An empty defaultCity falls back
// to "south delhi", the sheets' home market.
func NewContext(defaultCity string) *Context {
	if defaultCity == "" {
		defaultCity = "south delhi"
	}
	return &Context{City: defaultCity}
}

var (
	cityMarkerRe = regexp.MustCompile(`(?i)DELHI`)

	// Header/footer vocabulary: report title words, month names, bare page
	// numbers. Checked before area headings so "RESIDENTIAL PROPERTIES" is
	// never promoted to an area.
	noiseRe = regexp.MustCompile(`(?i)RESIDENTIAL|SALE|PAGE|^\d+$|` +
		`\b(?:JANUARY|FEBRUARY|MARCH|APRIL|MAY|JUNE|JULY|AUGUST|SEPTEMBER|OCTOBER|NOVEMBER|DECEMBER)\b`)

	// An area heading is letters/spaces/hyphens/dots only.
	areaCharsRe = regexp.MustCompile(`^[A-Za-z\s\-.]+$`)

	// Keywords that indicate a line is NOT an area heading.
	reservedKeywordRe = regexp.MustCompile(`(?i)\d+|BR|BHK|GAJ|GJ|YD|YARD|SQFT|SQ\.FT|SFT|FT|` +
		`BMT|GF|FF|SF|TF|TERR|STILT|BASEMENT|GROUND|FIRST|SECOND|THIRD|` +
		`READY|BOOKING|U/C|U/R|₹|RS|CR|CRORE|PLOT|FLAT|SALE|@`)

	digitRe        = regexp.MustCompile(`\d`)
	sizeTokenRe    = regexp.MustCompile(`(?i)YD|GAJ|GJ|SQFT|SQ\.FT|SFT|FT`)
	bedroomTokenRe = regexp.MustCompile(`(?i)BR|BHK`)
	floorTokenRe   = regexp.MustCompile(`(?i)GF|FF|SF|TF|BMT`)
)

// classifyRule is one predicate in the ordered classification table.
type classifyRule struct {
	kind  LineKind
	match func(line string, ctx *Context) bool
}

// Rules are evaluated top to bottom; the first match wins. The order is
// load-bearing: noise must be rejected before area headings, and property
// data is only meaningful once an area heading has been seen.
var classifyRules = []classifyRule{
	{LineCityMarker, func(line string, _ *Context) bool {
		return len(line) < 30 && cityMarkerRe.MatchString(line)
	}},
	{LineNoise, func(line string, _ *Context) bool {
		return noiseRe.MatchString(line)
	}},
	{LineAreaHeading, func(line string, _ *Context) bool {
		return len(line) >= 5 && len(line) <= 50 &&
			areaCharsRe.MatchString(line) &&
			!reservedKeywordRe.MatchString(line)
	}},
	{LinePropertyData, func(line string, ctx *Context) bool {
		if ctx.Area == "" {
			return false
		}
		if !digitRe.MatchString(line) {
			return false
		}
		return sizeTokenRe.MatchString(line) ||
			bedroomTokenRe.MatchString(line) ||
			floorTokenRe.MatchString(line)
	}},
}

// Classify decides what a trimmed line is, given the current parse context.
// It does not mutate the context; the assembler applies side effects.
func Classify(line string, ctx *Context) LineKind {
	for _, r := range classifyRules {
		if r.match(line, ctx) {
			return r.kind
		}
	}
	return LineUnclassified
}
