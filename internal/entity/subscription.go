package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/propertydesk/property-broker/constants"
)

// Subscription represents one purchased access window for a broker.
type Subscription struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID           primitive.ObjectID `json:"userId" bson:"user_id"`
	PlanType         constants.PlanType `json:"planType" bson:"plan_type"`
	PaymentID        string             `json:"paymentId" bson:"payment_id"`
	GatewayOrderID   string             `json:"-" bson:"gateway_order_id,omitempty"`
	GatewayPaymentID string             `json:"-" bson:"gateway_payment_id,omitempty"`
	GatewaySignature string             `json:"-" bson:"gateway_signature,omitempty"`
	Amount           int64              `json:"amount" bson:"amount"`
	StartDate        time.Time          `json:"startDate" bson:"start_date"`
	ExpiryDate       time.Time          `json:"expiryDate" bson:"expiry_date"`
	IsActive         bool               `json:"isActive" bson:"is_active"`
	CreatedAt        time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt        time.Time          `json:"updatedAt" bson:"updated_at"`
}

// Expired reports whether the subscription window has passed.
func (s Subscription) Expired() bool {
	return time.Now().After(s.ExpiryDate)
}
