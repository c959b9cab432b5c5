// Package volunteers persists volunteer profiles keyed by email.
package volunteers

import (
	"context"
	"errors"
	"time"

	"github.com/virtuhq/virtu/internal/app/system/normalize"
	"github.com/virtuhq/virtu/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("volunteers")}
}

var (
	// ErrDuplicateEmail is returned when a profile with this email already exists.
	ErrDuplicateEmail = errors.New("a volunteer with this email already exists")

	errNameRequired  = errors.New("name is required")
	errEmailRequired = errors.New("email is required")
)

// GetByEmail looks up a profile by normalized email.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Volunteer, error) {
	var v models.Volunteer
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

// GetByID loads a profile by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Volunteer, error) {
	var v models.Volunteer
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Create inserts a new profile after normalizing fields. Preferences default
// to an empty set; RegistrationDate is set here and never updated.
func (s *Store) Create(ctx context.Context, v models.Volunteer) (models.Volunteer, error) {
	v.ID = primitive.NewObjectID()
	v.Name = normalize.Name(v.Name)
	v.Email = normalize.Email(v.Email)
	if v.Name == "" {
		return models.Volunteer{}, errNameRequired
	}
	if v.Email == "" {
		return models.Volunteer{}, errEmailRequired
	}
	if v.Preferences == nil {
		v.Preferences = []string{}
	}
	// BSON datetimes are millisecond precision; truncate so the returned
	// struct matches the stored value.
	v.RegistrationDate = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := s.c.InsertOne(ctx, v); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Volunteer{}, ErrDuplicateEmail
		}
		return models.Volunteer{}, err
	}
	return v, nil
}

// ProfileUpdate holds the editable profile fields. The whole set is
// overwritten on save; preferences arrive already coerced to a slice.
type ProfileUpdate struct {
	Name        string
	Age         *int
	Preferences []string
}

// Update overwrites name/age/preferences for the profile with this email.
// Email and registration date are immutable.
func (s *Store) Update(ctx context.Context, email string, upd ProfileUpdate) error {
	name := normalize.Name(upd.Name)
	if name == "" {
		return errNameRequired
	}
	prefs := upd.Preferences
	if prefs == nil {
		prefs = []string{}
	}

	_, err := s.c.UpdateOne(ctx,
		bson.M{"email": normalize.Email(email)},
		bson.M{"$set": bson.M{
			"name":        name,
			"age":         upd.Age,
			"preferences": prefs,
		}},
	)
	return err
}

// DeleteByEmail removes the profile. Absent email is a no-op success.
func (s *Store) DeleteByEmail(ctx context.Context, email string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"email": normalize.Email(email)})
	return err
}
