package constants

import (
	"strings"
)

// FloorType is the canonical floor designation for a property record.
type FloorType string

// Stable values (store these exact strings in DB).
const (
	FloorBasement FloorType = "basement"
	FloorGround   FloorType = "ground"
	FloorFirst    FloorType = "first"
	FloorSecond   FloorType = "second"
	FloorThird    FloorType = "third"
	FloorTerrace  FloorType = "terrace"
	FloorStilt    FloorType = "stilt"
)

var allFloors = []FloorType{
	FloorBasement,
	FloorGround,
	FloorFirst,
	FloorSecond,
	FloorThird,
	FloorTerrace,
	FloorStilt,
}

// AllFloors returns the floor taxonomy as strings.
func AllFloors() []string {
	result := make([]string, len(allFloors))
	for i, f := range allFloors {
		result[i] = string(f)
	}
	return result
}

// CanonicalizeFloor maps listing-sheet shorthand and free-form search input
// onto the floor taxonomy.
func CanonicalizeFloor(input string) (FloorType, bool) {
	if input == "" {
		return FloorGround, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// sheet shorthand
	synonyms := map[string]FloorType{
		"bmt":          FloorBasement,
		"gf":           FloorGround,
		"ff":           FloorFirst,
		"sf":           FloorSecond,
		"tf":           FloorThird,
		"terr":         FloorTerrace,
		"ground floor": FloorGround,
		"first floor":  FloorFirst,
		"second floor": FloorSecond,
		"third floor":  FloorThird,
	}

	if f, ok := synonyms[normalized]; ok {
		return f, true
	}

	for _, f := range allFloors {
		if normalized == string(f) {
			return f, true
		}
	}

	return FloorGround, false
}
