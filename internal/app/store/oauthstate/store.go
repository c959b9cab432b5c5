// Package oauthstate persists one-shot OAuth state tokens. Each record
// carries the mode the client selected when starting the flow, so the
// callback can recover it even if the session cookie was lost in transit.
package oauthstate

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("oauth_states")}
}

type record struct {
	State     string    `bson:"state"`
	Mode      string    `bson:"mode"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// Save stores a state token with its requested mode and expiry.
func (s *Store) Save(ctx context.Context, state, mode string, expiresAt time.Time) error {
	_, err := s.c.InsertOne(ctx, record{
		State:     state,
		Mode:      mode,
		ExpiresAt: expiresAt,
	})
	return err
}

// Validate consumes a state token. It returns the stored mode and
// valid=true exactly once per token; unknown, expired, or replayed tokens
// yield valid=false. The TTL index reaps leftovers, but expiry is checked
// here too since Mongo's reaper runs on a coarse interval.
func (s *Store) Validate(ctx context.Context, state string) (mode string, valid bool, err error) {
	var rec record
	findErr := s.c.FindOneAndDelete(ctx, bson.M{"state": state}).Decode(&rec)
	if findErr == mongo.ErrNoDocuments {
		return "", false, nil
	}
	if findErr != nil {
		return "", false, findErr
	}
	if time.Now().UTC().After(rec.ExpiresAt) {
		return "", false, nil
	}
	return rec.Mode, true, nil
}
