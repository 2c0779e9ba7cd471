package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SearchParams are the filters a broker submitted; all optional.
type SearchParams struct {
	City         string   `json:"city,omitempty" bson:"city,omitempty"`
	Area         string   `json:"area,omitempty" bson:"area,omitempty"`
	PropertyType string   `json:"propertyType,omitempty" bson:"property_type,omitempty"`
	SizeMin      *float64 `json:"sizeMin,omitempty" bson:"size_min,omitempty"`
	SizeMax      *float64 `json:"sizeMax,omitempty" bson:"size_max,omitempty"`
	SizeUnit     string   `json:"sizeUnit,omitempty" bson:"size_unit,omitempty"`
	Bedrooms     *int     `json:"bedrooms,omitempty" bson:"bedrooms,omitempty"`
	Floors       string   `json:"floors,omitempty" bson:"floors,omitempty"`
	Status       string   `json:"status,omitempty" bson:"status,omitempty"`
	BudgetMin    *float64 `json:"budgetMin,omitempty" bson:"budget_min,omitempty"`
	BudgetMax    *float64 `json:"budgetMax,omitempty" bson:"budget_max,omitempty"`
}

// SearchLog records one executed broker search for demand analytics.
type SearchLog struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID       primitive.ObjectID `json:"userId" bson:"user_id"`
	Params       SearchParams       `json:"searchParams" bson:"search_params"`
	ResultsCount int                `json:"resultsCount" bson:"results_count"`
	SearchedAt   time.Time          `json:"searchedAt" bson:"searched_at"`
}

// Requirement is a broker's saved demand profile, derived from a search.
type Requirement struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID       primitive.ObjectID `json:"userId" bson:"user_id"`
	City         string             `json:"city,omitempty" bson:"city,omitempty"`
	Area         string             `json:"area,omitempty" bson:"area,omitempty"`
	PropertyType string             `json:"propertyType,omitempty" bson:"property_type,omitempty"`
	SizeMin      *float64           `json:"sizeMin,omitempty" bson:"size_min,omitempty"`
	SizeMax      *float64           `json:"sizeMax,omitempty" bson:"size_max,omitempty"`
	SizeUnit     string             `json:"sizeUnit,omitempty" bson:"size_unit,omitempty"`
	BudgetMin    float64            `json:"budgetMin" bson:"budget_min"`
	BudgetMax    float64            `json:"budgetMax" bson:"budget_max"`
	CreatedAt    time.Time          `json:"createdAt" bson:"created_at"`
}
