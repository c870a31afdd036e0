package store

import (
	"context"
	"testing"
	"time"

	"github.com/raushankrgupta/club-feedback/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"
)

var janeDoe = models.FeedbackInput{
	Name:         "Jane Doe",
	EnrollmentNo: "0111CS221045",
	Feedback:     "Great club, more workshops please",
}

func TestCreateFeedback(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("assigns id and timestamp", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		s := NewWithCollection(mt.Coll)
		fixed := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
		s.now = func() time.Time { return fixed }

		entry, err := s.CreateFeedback(context.Background(), janeDoe)

		require.NoError(mt, err)
		assert.False(mt, entry.ID.IsZero())
		assert.Equal(mt, fixed, entry.CreatedAt)
		assert.Equal(mt, "Jane Doe", entry.Name)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "insert", started.CommandName)
	})

	mt.Run("identical inputs get distinct ids", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())
		s := NewWithCollection(mt.Coll)

		first, err := s.CreateFeedback(context.Background(), janeDoe)
		require.NoError(mt, err)
		second, err := s.CreateFeedback(context.Background(), janeDoe)
		require.NoError(mt, err)

		assert.NotEqual(mt, first.ID, second.ID)
	})

	mt.Run("returns the driver error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    121,
			Message: "Document failed validation",
		}))
		s := NewWithCollection(mt.Coll)

		_, err := s.CreateFeedback(context.Background(), janeDoe)

		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "failed to save feedback")
		var writeErr mongo.WriteException
		assert.ErrorAs(mt, err, &writeErr)
	})
}

func TestListFeedback(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes entries", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		created := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "name", Value: "Jane Doe"},
			{Key: "enrollment_no", Value: "0111CS221045"},
			{Key: "feedback", Value: "Great club, more workshops please"},
			{Key: "created_at", Value: primitive.NewDateTimeFromTime(created)},
		}))
		s := NewWithCollection(mt.Coll)

		entries, err := s.ListFeedback(context.Background(), 10)

		require.NoError(mt, err)
		require.Len(mt, entries, 1)
		assert.Equal(mt, id, entries[0].ID)
		assert.Equal(mt, "0111CS221045", entries[0].EnrollmentNo)
		assert.True(mt, created.Equal(entries[0].CreatedAt))

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "find", started.CommandName)
		assert.Equal(mt, int64(10), started.Command.Lookup("limit").AsInt64())
	})

	mt.Run("empty collection", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		s := NewWithCollection(mt.Coll)

		entries, err := s.ListFeedback(context.Background(), 0)

		require.NoError(mt, err)
		assert.Empty(mt, entries)
		assert.NotNil(mt, entries)
	})
}

func TestPing(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("ok", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		assert.NoError(mt, NewWithCollection(mt.Coll).Ping(context.Background()))
	})

	mt.Run("error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "command ping requires authentication",
		}))
		err := NewWithCollection(mt.Coll).Ping(context.Background())
		assert.ErrorContains(mt, err, "failed to ping mongodb")
	})
}

func TestProvision(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates collection roles and index", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)

		err := Provision(context.Background(), mt.DB, "feedback_entries", zap.NewNop().Sugar())
		require.NoError(mt, err)

		var commands []string
		for e := mt.GetStartedEvent(); e != nil; e = mt.GetStartedEvent() {
			commands = append(commands, e.CommandName)
		}
		assert.Equal(mt, []string{"create", "createRole", "createRole", "createIndexes"}, commands)
	})

	mt.Run("second run fails on existing role", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCommandErrorResponse(mtest.CommandError{
				Code:    51002,
				Name:    "Location51002",
				Message: "Role \"feedback_submitter@test\" already exists",
			}),
		)

		err := Provision(context.Background(), mt.DB, "feedback_entries", zap.NewNop().Sugar())
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "failed to create role feedback_submitter")
	})
}

func TestFeedbackSchema(t *testing.T) {
	schema := FeedbackSchema()["$jsonSchema"].(bson.M)
	props := schema["properties"].(bson.M)

	assert.Equal(t, bson.A{"name", "enrollment_no", "feedback", "created_at"}, schema["required"])
	assert.Equal(t, 255, props["name"].(bson.M)["maxLength"])
	assert.Equal(t, 255, props["enrollment_no"].(bson.M)["maxLength"])
	assert.Equal(t, 2000, props["feedback"].(bson.M)["maxLength"])
	assert.Equal(t, "date", props["created_at"].(bson.M)["bsonType"])
}

func TestRoleCommands(t *testing.T) {
	cmds := RoleCommands("club_feedback", "feedback_entries")
	require.Len(t, cmds, 2)

	actions := func(cmd bson.D) bson.A {
		privileges := cmd[1].Value.(bson.A)
		return privileges[0].(bson.D)[1].Value.(bson.A)
	}

	assert.Equal(t, SubmitterRole, cmds[0][0].Value)
	assert.Equal(t, bson.A{"insert"}, actions(cmds[0]))
	assert.Equal(t, AdminRole, cmds[1][0].Value)
	assert.Equal(t, bson.A{"find", "update", "remove"}, actions(cmds[1]))
}
