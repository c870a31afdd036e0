package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	SubmitterRole = "feedback_submitter"
	AdminRole     = "feedback_admin"
)

// FeedbackSchema is the $jsonSchema validator applied to the feedback collection.
func FeedbackSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "enrollment_no", "feedback", "created_at"},
			"properties": bson.M{
				"name":          bson.M{"bsonType": "string", "maxLength": 255},
				"enrollment_no": bson.M{"bsonType": "string", "maxLength": 255},
				"feedback":      bson.M{"bsonType": "string", "maxLength": 2000},
				"created_at":    bson.M{"bsonType": "date"},
			},
		},
	}
}

// RoleCommands returns the createRole commands for the submitter (insert only)
// and admin (read, update, delete) roles on one collection.
func RoleCommands(databaseName, collectionName string) []bson.D {
	resource := bson.D{{Key: "db", Value: databaseName}, {Key: "collection", Value: collectionName}}
	role := func(name string, actions ...string) bson.D {
		acts := bson.A{}
		for _, a := range actions {
			acts = append(acts, a)
		}
		return bson.D{
			{Key: "createRole", Value: name},
			{Key: "privileges", Value: bson.A{
				bson.D{{Key: "resource", Value: resource}, {Key: "actions", Value: acts}},
			}},
			{Key: "roles", Value: bson.A{}},
		}
	}
	return []bson.D{
		role(SubmitterRole, "insert"),
		role(AdminRole, "find", "update", "remove"),
	}
}

// Provision creates the feedback collection with its validator, the access roles and
// the created_at index. It is meant to run once; a second run fails on the existing roles.
func Provision(ctx context.Context, db *mongo.Database, collectionName string, log *zap.SugaredLogger) error {
	log.Infow("Creating collection", "database", db.Name(), "collection", collectionName)
	opts := options.CreateCollection().
		SetValidator(FeedbackSchema()).
		SetValidationLevel("strict").
		SetValidationAction("error")
	if err := db.CreateCollection(ctx, collectionName, opts); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", collectionName, err)
	}

	log.Infow("Creating roles", "roles", []string{SubmitterRole, AdminRole})
	for _, cmd := range RoleCommands(db.Name(), collectionName) {
		if err := db.RunCommand(ctx, cmd).Err(); err != nil {
			return fmt.Errorf("failed to create role %v: %w", cmd[0].Value, err)
		}
	}

	log.Infow("Creating created_at index")
	_, err := db.Collection(collectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: -1}},
		Options: options.Index().SetName("created_at_desc"),
	})
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	log.Infow("Provisioning complete")
	return nil
}
