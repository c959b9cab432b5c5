// internal/domain/models/opportunity.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Coordinates is an optional lat/lng pair for map display.
type Coordinates struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Opportunity is a postable volunteering listing.
//
// PostedBy is a denormalized reference (organization email or ID); it is not
// enforced against the organizations collection.
type Opportunity struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	Coordinates *Coordinates       `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
	Category    []string           `bson:"category" json:"category"`
	PostedBy    string             `bson:"posted_by" json:"postedBy"`

	// CreatedAt is set once at creation and never updated.
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
