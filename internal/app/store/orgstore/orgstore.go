// Package orgstore persists organization profiles. No route creates or
// authenticates an organization yet; the store exists so opportunity
// posted_by references have a real collaborator with the same unique-email
// invariant as volunteers.
package orgstore

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
	return &Store{c: db.Collection("organizations")}
}

var (
	ErrDuplicateEmail = errors.New("an organization with this email already exists")

	errNameRequired  = errors.New("name is required")
	errEmailRequired = errors.New("email is required")
)

// GetByEmail looks up an organization by normalized email.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Organization, error) {
	var org models.Organization
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&org); err != nil {
		return nil, err
	}
	return &org, nil
}

// Create inserts a new organization profile.
func (s *Store) Create(ctx context.Context, org models.Organization) (models.Organization, error) {
	org.ID = primitive.NewObjectID()
	org.Name = normalize.Name(org.Name)
	org.Email = normalize.Email(org.Email)
	if org.Name == "" {
		return models.Organization{}, errNameRequired
	}
	if org.Email == "" {
		return models.Organization{}, errEmailRequired
	}
	org.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := s.c.InsertOne(ctx, org); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Organization{}, ErrDuplicateEmail
		}
		return models.Organization{}, err
	}
	return org, nil
}
