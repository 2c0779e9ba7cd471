package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/propertydesk/property-broker/constants"
)

// User represents a platform account for data transfer between layers.
// PasswordHash never serializes to JSON.
type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FullName     string             `json:"fullName" bson:"full_name"`
	PhoneNumber  string             `json:"phoneNumber" bson:"phone_number"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"password"`
	Role         constants.Role     `json:"role" bson:"role"`
	IsActive     bool               `json:"isActive" bson:"is_active"`
	CreatedAt    time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updated_at"`
}
