package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/virtuhq/virtu/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// UniqueEmail returns an email address that won't collide across fixtures.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%s@example.com", prefix, uuid.NewString()[:8])
}

// CreateVolunteer inserts a volunteer with the given preferences.
func (f *Fixtures) CreateVolunteer(ctx context.Context, name, email string, preferences []string) models.Volunteer {
	f.t.Helper()

	if preferences == nil {
		preferences = []string{}
	}
	v := models.Volunteer{
		ID:               primitive.NewObjectID(),
		Name:             name,
		Email:            email,
		Preferences:      preferences,
		RegistrationDate: time.Now().UTC(),
	}
	if _, err := f.db.Collection("volunteers").InsertOne(ctx, v); err != nil {
		f.t.Fatalf("failed to create test volunteer: %v", err)
	}
	return v
}

// CreateOpportunity inserts an opportunity posted by the given identifier.
func (f *Fixtures) CreateOpportunity(ctx context.Context, title string, category []string, postedBy string) models.Opportunity {
	f.t.Helper()

	op := models.Opportunity{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Category:  category,
		PostedBy:  postedBy,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("opportunities").InsertOne(ctx, op); err != nil {
		f.t.Fatalf("failed to create test opportunity: %v", err)
	}
	return op
}

// CreateOrganization inserts an organization profile.
func (f *Fixtures) CreateOrganization(ctx context.Context, name, email string) models.Organization {
	f.t.Helper()

	org := models.Organization{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("organizations").InsertOne(ctx, org); err != nil {
		f.t.Fatalf("failed to create test organization: %v", err)
	}
	return org
}
