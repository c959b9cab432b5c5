// internal/domain/models/volunteer.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Volunteer is a volunteer's persisted identity record.
// Email is the unique key; a unique index is ensured at startup.
type Volunteer struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Email       string             `bson:"email" json:"email"`
	Age         *int               `bson:"age,omitempty" json:"age,omitempty"`
	Preferences []string           `bson:"preferences" json:"preferences"`

	// RegistrationDate is set once at creation and never updated.
	RegistrationDate time.Time `bson:"registration_date" json:"registration_date"`
}
