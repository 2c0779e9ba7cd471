package parser

import (
	"log/slog"

	"github.com/propertydesk/property-broker/constants"
)

// Location is the city/area a record was filed under.
type Location struct {
	City string `json:"city" bson:"city"`
	Area string `json:"area" bson:"area"`
}

// Record is one structured property extracted from a sheet line.
// PropertyID, Size, Bedrooms, Detail and RawDetail are optional; Location
// and Floors are always set. The legacy fields are only populated when the
// assembler runs with Options.Legacy.
type Record struct {
	Location   Location              `json:"location"`
	PropertyID string                `json:"propertyId,omitempty"`
	Size       *Size                 `json:"size,omitempty"`
	Floors     []constants.FloorType `json:"floors"`
	Bedrooms   *int                  `json:"bedrooms,omitempty"`
	Detail     string                `json:"detail,omitempty"`
	RawDetail  string                `json:"rawDetail,omitempty"`

	// Legacy variant fields.
	Status       Status       `json:"status,omitempty"`
	Contact      string       `json:"contact,omitempty"`
	Price        *float64     `json:"price,omitempty"`
	PropertyType PropertyType `json:"propertyType,omitempty"`
	BrokerNotes  string       `json:"brokerNotes,omitempty"`
}

// Options configure one parsing pass.
type Options struct {
	// DefaultCity seeds the context before any city marker is seen.
	DefaultCity string
	// Legacy enables the transactional field extractors and relaxes the
	// size-gated emission rule to match the earlier sheet revisions.
	Legacy bool
}

// Result is the outcome of one parsing pass.
type Result struct {
	Records []Record
	// Dropped counts property-data lines that matched the classifier but
	// produced no emittable record (no parseable size in the canonical
	// variant). Surfaced so the loss is observable.
	Dropped int
}

// Assembler walks classified lines in a single forward scan, carrying the
// current city/area context, and emits one record per qualifying line.
type Assembler struct {
	opts   Options
	logger *slog.Logger
}

// NewAssembler creates an assembler. A nil logger falls back to the default.
func NewAssembler(opts Options, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{opts: opts, logger: logger}
}

// Parse runs one pass over the raw document text. Each call owns a fresh
// Context, so concurrent parses of different documents are independent.
func (a *Assembler) Parse(text string) Result {
	ctx := NewContext(a.opts.DefaultCity)
	var res Result

	for _, line := range NormalizeLines(text) {
		switch Classify(line, ctx) {
		case LineCityMarker:
			ctx.City = normalizeCity(line)
		case LineNoise:
			// discarded unconditionally
		case LineAreaHeading:
			ctx.Area = NormalizeArea(line)
			a.logger.Debug("area heading", "area", ctx.Area, "city", ctx.City)
		case LinePropertyData:
			rec, ok := a.assembleLine(line, ctx)
			if !ok {
				res.Dropped++
				a.logger.Debug("property line dropped", "line", line, "area", ctx.Area)
				continue
			}
			res.Records = append(res.Records, rec)
		}
	}

	a.logger.Info("sheet parsed",
		"records", len(res.Records),
		"dropped", res.Dropped,
	)
	return res
}

// assembleLine runs the extractors and the sensitive filter over one
// property-data line. Only reachable once an area heading has been seen, so
// every emitted record carries a non-empty area.
func (a *Assembler) assembleLine(line string, ctx *Context) (Record, bool) {
	rec := Record{
		Location:  Location{City: ctx.City, Area: ctx.Area},
		Floors:    ExtractFloors(line),
		Detail:    FilterSensitive(line),
		RawDetail: line,
	}

	if id, ok := ExtractPropertyID(line); ok {
		rec.PropertyID = id
	}
	if size, ok := ExtractSize(line); ok {
		rec.Size = &size
	}
	if n, ok := ExtractBedrooms(line); ok {
		rec.Bedrooms = &n
	}

	if !a.opts.Legacy {
		// Canonical emission rule: no size, no record.
		return rec, rec.Size != nil
	}

	if st, ok := ExtractStatus(line); ok {
		rec.Status = st
	}
	if contacts, ok := ExtractContacts(line); ok {
		rec.Contact = contacts
	}
	if price, ok := ExtractPrice(line); ok {
		rec.Price = &price
	}
	if pt, ok := ExtractPropertyType(line); ok {
		rec.PropertyType = pt
	}
	if notes, ok := ExtractBrokerNotes(line); ok {
		rec.BrokerNotes = notes
	}

	// Legacy emission: any recognized field qualifies the line.
	ok := rec.Size != nil || rec.PropertyID != "" || rec.Bedrooms != nil ||
		rec.Status != "" || rec.Price != nil || rec.Contact != ""
	return rec, ok
}

func normalizeCity(line string) string {
	return NormalizeArea(line)
}
