package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propertydesk/property-broker/constants"
)

func parse(t *testing.T, lines ...string) Result {
	t.Helper()
	a := NewAssembler(Options{}, nil)
	return a.Parse(strings.Join(lines, "\n"))
}

func TestParseSingleRecord(t *testing.T) {
	res := parse(t,
		"SOUTH DELHI",
		"VASANT VIHAR",
		"A-12  200 YD 3BR GF",
	)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	assert.Equal(t, "south delhi", rec.Location.City)
	assert.Equal(t, "vasant vihar", rec.Location.Area)
	assert.Equal(t, "A-12", rec.PropertyID)
	require.NotNil(t, rec.Size)
	assert.Equal(t, 200.0, rec.Size.Value)
	assert.Equal(t, constants.UnitYard, rec.Size.Unit)
	require.NotNil(t, rec.Bedrooms)
	assert.Equal(t, 3, *rec.Bedrooms)
	assert.Equal(t, []constants.FloorType{constants.FloorGround}, rec.Floors)
}

func TestParseNoAreaNoRecords(t *testing.T) {
	// property lines before any area heading are ignored
	res := parse(t,
		"SOUTH DELHI",
		"A-12 200 YD 3BR GF",
		"B-7 150 GAJ 2BR FF",
	)
	assert.Empty(t, res.Records)
}

func TestParseAreaCarriesUntilNextHeading(t *testing.T) {
	res := parse(t,
		"VASANT VIHAR",
		"A-1 100 GAJ GF",
		"A-2 150 GAJ FF",
		"DEFENCE COLONY",
		"B-1 200 YD SF",
	)
	require.Len(t, res.Records, 3)
	assert.Equal(t, "vasant vihar", res.Records[0].Location.Area)
	assert.Equal(t, "vasant vihar", res.Records[1].Location.Area)
	assert.Equal(t, "defence colony", res.Records[2].Location.Area)
}

func TestParseCityMarkerUpdatesCity(t *testing.T) {
	res := parse(t,
		"WEST DELHI",
		"RAJOURI GARDEN",
		"C-3 120 GAJ GF",
	)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "west delhi", res.Records[0].Location.City)
}

func TestParseSizelessLinesDroppedAndCounted(t *testing.T) {
	res := parse(t,
		"VASANT VIHAR",
		"A-1 3BR GF",       // bedrooms+floor but no size
		"A-2 150 GAJ 2BR",  // emitted
	)
	require.Len(t, res.Records, 1)
	assert.Equal(t, 1, res.Dropped)
}

func TestParseEveryRecordHasAreaAndFloors(t *testing.T) {
	res := parse(t,
		"NOISE HEADER RESIDENTIAL",
		"SOUTH DELHI",
		"GREEN PARK",
		"12B 80 GAJ 2BHK",
		"45 200 SQFT BMT FF",
		"PLOT NEAR MARKET 300 YD",
	)
	require.NotEmpty(t, res.Records)
	for _, rec := range res.Records {
		assert.NotEmpty(t, rec.Location.Area)
		assert.NotEmpty(t, rec.Floors)
	}
}

func TestParseDetailFiltering(t *testing.T) {
	res := parse(t,
		"VASANT VIHAR",
		"B-5 150 SQFT 2BR contact 9876543210",
	)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	assert.Equal(t, "B-5 150 SQFT 2BR contact 9876543210", rec.RawDetail)
	assert.NotContains(t, rec.Detail, "9876543210")
	// the filter applied to the raw line reproduces the public detail
	assert.Equal(t, FilterSensitive(rec.RawDetail), rec.Detail)
}

func TestParseLegacyVariant(t *testing.T) {
	a := NewAssembler(Options{Legacy: true}, nil)
	res := a.Parse(strings.Join([]string{
		"VASANT VIHAR",
		"A-7 3BR GF READY CALL 9876543210",
	}, "\n"))

	// legacy variant emits without size when other fields matched
	require.Len(t, res.Records, 1)
	rec := res.Records[0]
	assert.Nil(t, rec.Size)
	assert.Equal(t, StatusReady, rec.Status)
	assert.Equal(t, "9876543210", rec.Contact)
	assert.NotContains(t, rec.Detail, "9876543210")
}

func TestParseLegacyPrice(t *testing.T) {
	a := NewAssembler(Options{Legacy: true}, nil)
	res := a.Parse(strings.Join([]string{
		"GREEN PARK",
		"A-7 200 GAJ GF @ 2.5",
	}, "\n"))
	require.Len(t, res.Records, 1)
	require.NotNil(t, res.Records[0].Price)
	assert.Equal(t, 250000.0, *res.Records[0].Price)
}

func TestParseEmptyInput(t *testing.T) {
	res := parse(t, "")
	assert.Empty(t, res.Records)
	assert.Zero(t, res.Dropped)
}

func TestParseIsolatedContexts(t *testing.T) {
	// two parses over different documents must not share state
	a := NewAssembler(Options{}, nil)
	first := a.Parse("VASANT VIHAR\nA-1 100 GAJ GF")
	second := a.Parse("B-9 500 YD GF") // no heading in this document

	assert.Len(t, first.Records, 1)
	assert.Empty(t, second.Records)
}
