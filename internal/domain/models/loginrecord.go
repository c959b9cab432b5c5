// internal/domain/models/loginrecord.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoginRecord captures one successful sign-in.
type LoginRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	VolunteerID primitive.ObjectID `bson:"volunteer_id"`
	Email       string             `bson:"email"`
	Method      string             `bson:"method"` // "google"
	CreatedAt   time.Time          `bson:"created_at"`
}
