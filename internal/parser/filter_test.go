package parser

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var digitRunCheck = regexp.MustCompile(`\d{7,}`)

func TestFilterSensitiveStripsPhones(t *testing.T) {
	tests := []string{
		"B-5 150 SQFT 2BR contact 9876543210",
		"200 YD GF CALL 98765-43210",
		"3BR FLAT +91-9876543210",
		"PLOT 100 GAJ (987) 654-3210",
	}
	for _, line := range tests {
		got := FilterSensitive(line)
		assert.False(t, digitRunCheck.MatchString(got), "digit run leaked: %q -> %q", line, got)
		assert.NotContains(t, got, "9876543210")
	}
}

func TestFilterSensitivePreservesListingData(t *testing.T) {
	got := FilterSensitive("B-5 150 SQFT 2BR contact 9876543210")
	assert.Contains(t, got, "150 SQFT")
	assert.Contains(t, got, "2BR")
	assert.Contains(t, got, "B-5")
}

func TestFilterSensitiveStripsContactKeywords(t *testing.T) {
	got := FilterSensitive("200 YD GF WHATSAPP 9812345678")
	assert.NotContains(t, strings.ToLower(got), "whatsapp")
	assert.False(t, digitRunCheck.MatchString(got))
}

func TestFilterSensitiveStripsAttribution(t *testing.T) {
	got := FilterSensitive("200 YD GF BUILDER Ramesh Kumar")
	assert.NotContains(t, got, "Ramesh")
	assert.NotContains(t, got, "Kumar")
	assert.Contains(t, got, "200 YD")
}

func TestFilterSensitiveStripsEmails(t *testing.T) {
	got := FilterSensitive("150 GAJ FF mail broker.one@example.com for details")
	assert.NotContains(t, got, "@")
	assert.NotContains(t, got, "example.com")
}

func TestFilterSensitiveCollapsesWhitespace(t *testing.T) {
	got := FilterSensitive("  200   YD   GF  ")
	assert.Equal(t, "200 YD GF", got)
}

func TestFilterSensitiveDoesNotMutateInput(t *testing.T) {
	raw := "B-5 150 SQFT 2BR contact 9876543210"
	_ = FilterSensitive(raw)
	assert.Equal(t, "B-5 150 SQFT 2BR contact 9876543210", raw)
}

func TestFilterGuarantee(t *testing.T) {
	lines := []string{
		"A-12 200 YD 3BR GF 9876543210987 extra",
		"FLAT 1200 SQFT owner: Suresh 98765 43210",
		"PLOT @ 50 CALL 12345678901234",
	}
	for _, line := range lines {
		got := FilterSensitive(line)
		assert.False(t, digitRunCheck.MatchString(got), "line %q -> %q", line, got)
		for _, tok := range strings.Fields(got) {
			assert.NotContains(t, tok, "@", "line %q -> %q", line, got)
		}
	}
}
