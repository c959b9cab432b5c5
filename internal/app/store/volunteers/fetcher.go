package volunteers

import (
	"context"

	"github.com/virtuhq/virtu/internal/app/system/auth"
	"github.com/virtuhq/virtu/internal/app/system/timeouts"
	"github.com/virtuhq/virtu/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fetcher implements auth.ProfileFetcher so the session middleware loads
// fresh profile data on each request. Profile edits and deletions take
// effect immediately this way.
type Fetcher struct {
	c *mongo.Collection
}

// NewFetcher creates a ProfileFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{c: db.Collection("volunteers")}
}

// FetchProfile retrieves a volunteer by ID and returns nil if the profile is
// gone or any error occurs, which downgrades the request to anonymous.
func (f *Fetcher) FetchProfile(ctx context.Context, profileID string) *auth.SessionUser {
	oid, err := primitive.ObjectIDFromHex(profileID)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var v models.Volunteer
	if err := f.c.FindOne(ctx, bson.M{"_id": oid}).Decode(&v); err != nil {
		return nil
	}

	return &auth.SessionUser{
		ID:          v.ID.Hex(),
		Name:        v.Name,
		Email:       v.Email,
		Preferences: v.Preferences,
	}
}
