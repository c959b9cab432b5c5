// Package loginrecords keeps a history of successful sign-ins.
package loginrecords

import (
	"context"
	"time"

	"github.com/virtuhq/virtu/internal/app/system/normalize"
	"github.com/virtuhq/virtu/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("login_records")}
}

// Record writes one sign-in event. Failures here never block a login; the
// caller logs and continues.
func (s *Store) Record(ctx context.Context, volunteerID primitive.ObjectID, email, method string) error {
	_, err := s.c.InsertOne(ctx, models.LoginRecord{
		ID:          primitive.NewObjectID(),
		VolunteerID: volunteerID,
		Email:       normalize.Email(email),
		Method:      method,
		CreatedAt:   time.Now().UTC(),
	})
	return err
}

// Recent returns the newest records for a volunteer, newest first.
func (s *Store) Recent(ctx context.Context, volunteerID primitive.ObjectID, limit int64) ([]models.LoginRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := s.c.Find(ctx, bson.M{"volunteer_id": volunteerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.LoginRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
