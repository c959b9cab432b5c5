package orgstore_test

import (
	"errors"
	"testing"

	"github.com/virtuhq/virtu/internal/app/store/orgstore"
	"github.com/virtuhq/virtu/internal/domain/models"
	"github.com/virtuhq/virtu/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestCreateAndGetByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := orgstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Organization{
		Name:        "Helping Hands",
		Email:       "Contact@HelpingHands.ORG",
		Description: "Neighborhood aid network",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Email != "contact@helpinghands.org" {
		t.Errorf("email not normalized: %q", created.Email)
	}
	if created.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	got, err := store.GetByEmail(ctx, "contact@helpinghands.org")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.Name != "Helping Hands" {
		t.Errorf("Name: got %q", got.Name)
	}
}

func TestGetByEmail_Missing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := orgstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByEmail(ctx, "nobody@example.com"); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.EnsureIndexes(t, db)
	store := orgstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Organization{Name: "First", Email: "org@example.com"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.Organization{Name: "Second", Email: "org@example.com"})
	if !errors.Is(err, orgstore.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}
