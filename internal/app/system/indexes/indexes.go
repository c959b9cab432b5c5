// Package indexes creates the indexes Virtu relies on. Called once at
// startup; every ensure function is idempotent.
package indexes

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureAll reconciles all collections. Problems are aggregated so startup can
// fail fast with every issue visible.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	if err := ensureVolunteers(ctx, db, logger); err != nil {
		problems = append(problems, "volunteers: "+err.Error())
	}
	if err := ensureOrganizations(ctx, db, logger); err != nil {
		problems = append(problems, "organizations: "+err.Error())
	}
	if err := ensureOpportunities(ctx, db, logger); err != nil {
		problems = append(problems, "opportunities: "+err.Error())
	}
	if err := ensureOAuthStates(ctx, db, logger); err != nil {
		problems = append(problems, "oauth_states: "+err.Error())
	}
	if err := ensureLoginRecords(ctx, db, logger); err != nil {
		problems = append(problems, "login_records: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureVolunteers(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	// email uniquely identifies at most one volunteer profile.
	return createIndexes(ctx, db.Collection("volunteers"), logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_email").SetUnique(true),
		},
	})
}

func ensureOrganizations(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return createIndexes(ctx, db.Collection("organizations"), logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_email").SetUnique(true),
		},
	})
}

func ensureOpportunities(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return createIndexes(ctx, db.Collection("opportunities"), logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "category", Value: 1}},
			Options: options.Index().SetName("by_category"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_created_at"),
		},
	})
}

func ensureOAuthStates(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return createIndexes(ctx, db.Collection("oauth_states"), logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "state", Value: 1}},
			Options: options.Index().SetName("uniq_state").SetUnique(true),
		},
		{
			// Mongo reaps expired states; Validate double-checks expiry.
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("ttl_expires_at").SetExpireAfterSeconds(0),
		},
	})
}

func ensureLoginRecords(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return createIndexes(ctx, db.Collection("login_records"), logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "volunteer_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_volunteer_recent"),
		},
	})
}

func createIndexes(ctx context.Context, coll *mongo.Collection, logger *zap.Logger, models []mongo.IndexModel) error {
	var errs []string
	for _, m := range models {
		name := ""
		if m.Options != nil && m.Options.Name != nil {
			name = *m.Options.Name
		}

		start := time.Now()
		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			logger.Warn("create index failed",
				zap.String("collection", coll.Name()),
				zap.String("name", name),
				zap.Error(err))
			errs = append(errs, coll.Name()+"("+name+"): "+err.Error())
			continue
		}
		logger.Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("took", time.Since(start).String()))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
