package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propertydesk/property-broker/constants"
)

func TestExtractPropertyID(t *testing.T) {
	tests := []struct {
		line string
		want string
		ok   bool
	}{
		{"A-12 200 YD", "A-12", true},
		{"12B GF FF", "12B", true},
		{"B5 150 SQFT", "B5", true},
		{"7 GAJ PLOT", "7", true},
		{"PLOT NEAR PARK", "", false},
	}
	for _, tt := range tests {
		got, ok := ExtractPropertyID(tt.line)
		assert.Equal(t, tt.ok, ok, tt.line)
		assert.Equal(t, tt.want, got, tt.line)
	}
}

func TestExtractSize(t *testing.T) {
	tests := []struct {
		line  string
		value float64
		unit  constants.SizeUnit
		ok    bool
	}{
		{"A-12 200 YD 3BR", 200, constants.UnitYard, true},
		{"150 GAJ GF", 150, constants.UnitGaj, true},
		{"60 GJ PLOT", 60, constants.UnitGaj, true},
		{"1200 SQFT 2BHK", 1200, constants.UnitSqft, true},
		{"850 SFT FF", 850, constants.UnitSqft, true},
		{"112.5 YARD", 112.5, constants.UnitYard, true},
		{"3BHK READY", 0, "", false},
	}
	for _, tt := range tests {
		got, ok := ExtractSize(tt.line)
		require.Equal(t, tt.ok, ok, tt.line)
		if ok {
			assert.Equal(t, tt.value, got.Value, tt.line)
			assert.Equal(t, tt.unit, got.Unit, tt.line)
		}
	}
}

func TestExtractSizeFirstMatchWins(t *testing.T) {
	got, ok := ExtractSize("200 YD CORNER 1800 SQFT COVERED")
	require.True(t, ok)
	assert.Equal(t, 200.0, got.Value)
	assert.Equal(t, constants.UnitYard, got.Unit)
}

func TestSizeSqftConversion(t *testing.T) {
	// gaj and yd are the same unit for comparison purposes
	assert.Equal(t, 1800.0, Size{Value: 200, Unit: constants.UnitGaj}.Sqft())
	assert.Equal(t, 1800.0, Size{Value: 200, Unit: constants.UnitYard}.Sqft())
	assert.Equal(t, 200.0, Size{Value: 200, Unit: constants.UnitSqft}.Sqft())
}

func TestExtractBedrooms(t *testing.T) {
	n, ok := ExtractBedrooms("A-12 200 YD 3BR GF")
	require.True(t, ok)
	assert.Equal(t, 3, n)

	n, ok = ExtractBedrooms("1200 SQFT 4 BHK")
	require.True(t, ok)
	assert.Equal(t, 4, n)

	_, ok = ExtractBedrooms("200 YD PLOT")
	assert.False(t, ok)
}

func TestExtractFloors(t *testing.T) {
	floors := ExtractFloors("A-12 200 YD GF FF SF")
	assert.ElementsMatch(t, []constants.FloorType{
		constants.FloorGround, constants.FloorFirst, constants.FloorSecond,
	}, floors)

	floors = ExtractFloors("BMT GF TERR STILT")
	assert.ElementsMatch(t, []constants.FloorType{
		constants.FloorBasement, constants.FloorGround,
		constants.FloorTerrace, constants.FloorStilt,
	}, floors)
}

func TestExtractFloorsDefaultsToGround(t *testing.T) {
	floors := ExtractFloors("A-12 200 YD 3BR")
	assert.Equal(t, []constants.FloorType{constants.FloorGround}, floors)
}

func TestExtractFloorsWordBoundary(t *testing.T) {
	// GF inside an unrelated token must not count as a floor code
	floors := ExtractFloors("200 YD NEAR GFX TOWER")
	assert.Equal(t, []constants.FloorType{constants.FloorGround}, floors)
}

func TestLegacyExtractors(t *testing.T) {
	st, ok := ExtractStatus("200 YD READY PLOT")
	require.True(t, ok)
	assert.Equal(t, StatusReady, st)

	st, ok = ExtractStatus("FLAT U/C POSSESSION SOON")
	require.True(t, ok)
	assert.Equal(t, StatusUnderConstruction, st)

	_, ok = ExtractStatus("200 YD PLOT")
	assert.False(t, ok)

	contacts, ok := ExtractContacts("CALL 9876543210 OR 9812345678")
	require.True(t, ok)
	assert.Equal(t, "9876543210,9812345678", contacts)

	price, ok := ExtractPrice("200 YD @ 2.5")
	require.True(t, ok)
	assert.Equal(t, 250000.0, price)

	price, ok = ExtractPrice("FLAT RS. 80")
	require.True(t, ok)
	assert.Equal(t, 8000000.0, price)

	pt, ok := ExtractPropertyType("CORNER PLOT 200 GAJ")
	require.True(t, ok)
	assert.Equal(t, TypePlot, pt)
}
