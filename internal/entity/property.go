package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/propertydesk/property-broker/constants"
	"github.com/propertydesk/property-broker/internal/parser"
)

// Property is a persisted listing record. Detail is the broker-facing
// redacted text; RawDetail is admin-only and must be stripped before a
// non-admin response leaves the API.
type Property struct {
	ID         primitive.ObjectID    `json:"id" bson:"_id,omitempty"`
	Location   parser.Location       `json:"location" bson:"location"`
	PropertyID string                `json:"propertyId,omitempty" bson:"property_id,omitempty"`
	Size       *parser.Size          `json:"size,omitempty" bson:"size,omitempty"`
	Floors     []constants.FloorType `json:"floors" bson:"floors"`
	Bedrooms   *int                  `json:"bedrooms,omitempty" bson:"bedrooms,omitempty"`
	Detail     string                `json:"detail,omitempty" bson:"detail,omitempty"`
	RawDetail  string                `json:"rawDetail,omitempty" bson:"raw_detail,omitempty"`

	// Legacy sheet-revision fields, populated only by the legacy parser
	// variant.
	Status       parser.Status       `json:"status,omitempty" bson:"status,omitempty"`
	Contact      string              `json:"-" bson:"contact,omitempty"`
	Price        *float64            `json:"price,omitempty" bson:"price,omitempty"`
	PropertyType parser.PropertyType `json:"propertyType,omitempty" bson:"property_type,omitempty"`
	BrokerNotes  string              `json:"brokerNotes,omitempty" bson:"broker_notes,omitempty"`

	SourcePDF  string    `json:"sourcePdf,omitempty" bson:"source_pdf,omitempty"`
	UploadedAt time.Time `json:"uploadedAt" bson:"uploaded_at"`
	CreatedAt  time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updated_at"`
}

// Redacted returns a copy safe for non-admin consumers: the raw line and
// the internal contact list are dropped.
func (p Property) Redacted() Property {
	p.RawDetail = ""
	p.Contact = ""
	return p
}

// FromRecord builds a Property from a parsed record.
func FromRecord(rec parser.Record, sourcePDF string, uploadedAt time.Time) Property {
	return Property{
		Location:     rec.Location,
		PropertyID:   rec.PropertyID,
		Size:         rec.Size,
		Floors:       rec.Floors,
		Bedrooms:     rec.Bedrooms,
		Detail:       rec.Detail,
		RawDetail:    rec.RawDetail,
		Status:       rec.Status,
		Contact:      rec.Contact,
		Price:        rec.Price,
		PropertyType: rec.PropertyType,
		BrokerNotes:  rec.BrokerNotes,
		SourcePDF:    sourcePDF,
		UploadedAt:   uploadedAt,
	}
}
