package volunteers_test

import (
	"errors"
	"testing"

	"github.com/virtuhq/virtu/internal/app/store/volunteers"
	"github.com/virtuhq/virtu/internal/domain/models"
	"github.com/virtuhq/virtu/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestCreateAndGetByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := volunteers.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	age := 28
	created, err := store.Create(ctx, models.Volunteer{
		Name:        "Jane Doe",
		Email:       "Jane@Example.COM",
		Age:         &age,
		Preferences: []string{"Healthcare"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Email != "jane@example.com" {
		t.Errorf("email not normalized: %q", created.Email)
	}
	if created.RegistrationDate.IsZero() {
		t.Error("RegistrationDate not set")
	}

	// Lookup is case-insensitive via normalization.
	got, err := store.GetByEmail(ctx, "  JANE@example.com ")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.Name != "Jane Doe" {
		t.Errorf("Name: got %q", got.Name)
	}
	if got.Age == nil || *got.Age != 28 {
		t.Errorf("Age: got %v", got.Age)
	}
}

func TestCreate_DefaultsEmptyPreferences(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := volunteers.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Volunteer{Name: "No Prefs", Email: "np@example.com"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Preferences == nil || len(created.Preferences) != 0 {
		t.Errorf("Preferences: got %v, want empty set", created.Preferences)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.EnsureIndexes(t, db)
	store := volunteers.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Volunteer{Name: "First", Email: "dup@example.com"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.Volunteer{Name: "Second", Email: "DUP@example.com"})
	if !errors.Is(err, volunteers.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestUpdate_OverwritesProfileFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := volunteers.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Volunteer{Name: "Old Name", Email: "edit@example.com"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	age := 40
	err = store.Update(ctx, "edit@example.com", volunteers.ProfileUpdate{
		Name:        "New Name",
		Age:         &age,
		Preferences: []string{"Environment"},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.GetByEmail(ctx, "edit@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.Name != "New Name" {
		t.Errorf("Name: got %q", got.Name)
	}
	if got.Age == nil || *got.Age != 40 {
		t.Errorf("Age: got %v", got.Age)
	}
	if len(got.Preferences) != 1 || got.Preferences[0] != "Environment" {
		t.Errorf("Preferences: got %v", got.Preferences)
	}
	if !got.RegistrationDate.Equal(created.RegistrationDate) {
		t.Error("RegistrationDate must be immutable")
	}
}

func TestDeleteByEmail_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := volunteers.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Volunteer{Name: "Bye", Email: "bye@example.com"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.DeleteByEmail(ctx, "bye@example.com"); err != nil {
		t.Fatalf("DeleteByEmail failed: %v", err)
	}
	if _, err := store.GetByEmail(ctx, "bye@example.com"); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments after delete, got %v", err)
	}
	// Absent email still succeeds.
	if err := store.DeleteByEmail(ctx, "bye@example.com"); err != nil {
		t.Fatalf("repeat DeleteByEmail failed: %v", err)
	}
}

func TestFetcher_RoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := volunteers.New(db)
	fetcher := volunteers.NewFetcher(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Volunteer{
		Name:        "Fetch Me",
		Email:       "fetch@example.com",
		Preferences: []string{"Technology"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	u := fetcher.FetchProfile(ctx, created.ID.Hex())
	if u == nil {
		t.Fatal("FetchProfile returned nil for existing profile")
	}
	if u.Email != "fetch@example.com" || u.Name != "Fetch Me" {
		t.Errorf("unexpected session user: %+v", u)
	}
	if len(u.Preferences) != 1 || u.Preferences[0] != "Technology" {
		t.Errorf("Preferences: got %v", u.Preferences)
	}

	if got := fetcher.FetchProfile(ctx, "not-a-hex-id"); got != nil {
		t.Error("FetchProfile should return nil for malformed IDs")
	}
}
