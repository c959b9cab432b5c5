// Package opportunities persists volunteering opportunities and applies the
// category allow-list on every write.
package opportunities

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/virtuhq/virtu/internal/app/system/categories"
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
	return &Store{c: db.Collection("opportunities")}
}

var (
	// ErrNotFound is returned when an opportunity ID does not resolve.
	ErrNotFound = errors.New("opportunity not found")

	errTitleRequired    = errors.New("title is required")
	errPostedByRequired = errors.New("postedBy is required")
	errCategoryRequired = errors.New("at least one category is required")
)

// InvalidCategoryError names every rejected label from a write.
type InvalidCategoryError struct {
	Labels []string
}

func (e *InvalidCategoryError) Error() string {
	return "invalid categories: " + strings.Join(e.Labels, ", ")
}

// IsValidation reports whether err is a caller error (bad input) rather than
// a store failure.
func IsValidation(err error) bool {
	var ice *InvalidCategoryError
	if errors.As(err, &ice) {
		return true
	}
	return errors.Is(err, errTitleRequired) ||
		errors.Is(err, errPostedByRequired) ||
		errors.Is(err, errCategoryRequired)
}

// CreateInput holds the fields accepted when posting an opportunity.
type CreateInput struct {
	Title       string
	Description string
	Location    string
	Coordinates *models.Coordinates
	Category    []string
	PostedBy    string
}

// Create validates and inserts a new opportunity. The category set must be
// non-empty and a subset of the fixed enumeration; otherwise the write is
// rejected with an InvalidCategoryError naming every bad label and nothing
// is persisted.
func (s *Store) Create(ctx context.Context, in CreateInput) (models.Opportunity, error) {
	title := normalize.Name(in.Title)
	if title == "" {
		return models.Opportunity{}, errTitleRequired
	}
	postedBy := strings.TrimSpace(in.PostedBy)
	if postedBy == "" {
		return models.Opportunity{}, errPostedByRequired
	}
	if len(in.Category) == 0 {
		return models.Opportunity{}, errCategoryRequired
	}
	if bad := categories.Invalid(in.Category); len(bad) > 0 {
		return models.Opportunity{}, &InvalidCategoryError{Labels: bad}
	}

	op := models.Opportunity{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: in.Description,
		Location:    in.Location,
		Coordinates: in.Coordinates,
		Category:    in.Category,
		PostedBy:    postedBy,
		// BSON datetimes are millisecond precision; truncate so the
		// returned struct matches the stored value.
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	if _, err := s.c.InsertOne(ctx, op); err != nil {
		return models.Opportunity{}, err
	}
	return op, nil
}

// UpdateInput holds the partial fields of an update. Nil pointers (and a nil
// category slice) leave the stored value untouched.
type UpdateInput struct {
	Title       *string
	Description *string
	Location    *string
	Coordinates *models.Coordinates
	Category    []string
	PostedBy    *string
}

// Update merges the provided fields into an existing opportunity. A present
// category set is re-validated against the enumeration. CreatedAt is never
// touched. Returns ErrNotFound when the ID does not resolve.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd UpdateInput) (models.Opportunity, error) {
	set := bson.M{}
	if upd.Title != nil {
		title := normalize.Name(*upd.Title)
		if title == "" {
			return models.Opportunity{}, errTitleRequired
		}
		set["title"] = title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Location != nil {
		set["location"] = *upd.Location
	}
	if upd.Coordinates != nil {
		set["coordinates"] = upd.Coordinates
	}
	if upd.Category != nil {
		if bad := categories.Invalid(upd.Category); len(bad) > 0 {
			return models.Opportunity{}, &InvalidCategoryError{Labels: bad}
		}
		set["category"] = upd.Category
	}
	if upd.PostedBy != nil {
		postedBy := strings.TrimSpace(*upd.PostedBy)
		if postedBy == "" {
			return models.Opportunity{}, errPostedByRequired
		}
		set["posted_by"] = postedBy
	}

	if len(set) == 0 {
		// Nothing to change; return the current document.
		return s.GetByID(ctx, id)
	}

	var op models.Opportunity
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&op)
	if err == mongo.ErrNoDocuments {
		return models.Opportunity{}, ErrNotFound
	}
	if err != nil {
		return models.Opportunity{}, err
	}
	return op, nil
}

// Delete removes an opportunity by ID. Deleting an absent ID is a no-op
// success.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// GetByID loads one opportunity.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Opportunity, error) {
	var op models.Opportunity
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&op)
	if err == mongo.ErrNoDocuments {
		return models.Opportunity{}, ErrNotFound
	}
	if err != nil {
		return models.Opportunity{}, err
	}
	return op, nil
}

// List returns opportunities. A nil preference slice means unrestricted; a
// non-nil slice intersects, so an empty set matches nothing ($in with an
// empty array). Any opportunity sharing at least one category label
// qualifies. limit <= 0 means no cap. Re-querying repeats the same read;
// there is no cursor state.
func (s *Store) List(ctx context.Context, preferences []string, limit int64) ([]models.Opportunity, error) {
	filter := bson.M{}
	if preferences != nil {
		filter["category"] = bson.M{"$in": preferences}
	}

	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Opportunity
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
