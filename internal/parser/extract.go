package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/propertydesk/property-broker/constants"
)

// Size is a plot/flat size as quoted on the sheet.
type Size struct {
	Value float64            `json:"value" bson:"value"`
	Unit  constants.SizeUnit `json:"unit" bson:"unit"`
}

// Sqft returns the size in square feet, the canonical comparison unit.
func (s Size) Sqft() float64 {
	return constants.ToSqft(s.Value, s.Unit)
}

var (
	propertyIDRe = regexp.MustCompile(`(?i)^([A-Z]-?\d+|\d+[A-Z]?)`)
	sizeRe       = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(GJ|GAJ|YD|YARD|FT|SQFT|SQ\.FT|SFT)`)
	bedroomsRe   = regexp.MustCompile(`(?i)(\d+)\s*(BR|BHK)`)
)

// floorPatterns are tested independently; every match joins the floor set.
var floorPatterns = []struct {
	re    *regexp.Regexp
	floor constants.FloorType
}{
	{regexp.MustCompile(`(?i)\bBMT\b|\bBASEMENT\b`), constants.FloorBasement},
	{regexp.MustCompile(`(?i)\bGF\b|\bGROUND\b`), constants.FloorGround},
	{regexp.MustCompile(`(?i)\bFF\b|\bFIRST\b`), constants.FloorFirst},
	{regexp.MustCompile(`(?i)\bSF\b|\bSECOND\b`), constants.FloorSecond},
	{regexp.MustCompile(`(?i)\bTF\b|\bTHIRD\b`), constants.FloorThird},
	{regexp.MustCompile(`(?i)\bTERR\b|\bTERRACE\b`), constants.FloorTerrace},
	{regexp.MustCompile(`(?i)\bSTILT\b`), constants.FloorStilt},
}

// ExtractPropertyID returns the leading plot/flat token (e.g. "A-12", "12B").
func ExtractPropertyID(line string) (string, bool) {
	m := propertyIDRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractSize returns the first size+unit token in the line. Unit tokens
// containing G map to gaj, tokens containing Y map to yd, the rest to sqft.
func ExtractSize(line string) (Size, bool) {
	m := sizeRe.FindStringSubmatch(line)
	if m == nil {
		return Size{}, false
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Size{}, false
	}
	raw := strings.ToUpper(m[2])
	unit := constants.UnitSqft
	switch {
	case strings.Contains(raw, "G"):
		unit = constants.UnitGaj
	case strings.Contains(raw, "Y"):
		unit = constants.UnitYard
	}
	return Size{Value: value, Unit: unit}, true
}

// ExtractBedrooms returns the bedroom count from a BR/BHK token.
func ExtractBedrooms(line string) (int, bool) {
	m := bedroomsRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ExtractFloors unions every floor-code match in the line. An empty result
// defaults to ground: sheets omit the floor for single-storey plots.
func ExtractFloors(line string) []constants.FloorType {
	var floors []constants.FloorType
	for _, p := range floorPatterns {
		if p.re.MatchString(line) {
			floors = append(floors, p.floor)
		}
	}
	if len(floors) == 0 {
		floors = append(floors, constants.FloorGround)
	}
	return floors
}
