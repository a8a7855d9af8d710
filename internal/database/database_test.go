package database

import (
	"context"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"planmate/internal/config"
	"planmate/internal/models"
)

func TestBuildURI(t *testing.T) {
	uri, logURI := BuildURI(config.MongoDBConfig{URI: "mongodb://example:27017/x"})
	assert.Equal(t, "mongodb://example:27017/x", uri)
	assert.Equal(t, uri, logURI)

	uri, logURI = BuildURI(config.MongoDBConfig{
		Username: "planner",
		Password: "p@ss word",
		Host:     "db",
		Port:     "27017",
		Database: "planmate",
	})
	assert.Equal(t, "mongodb://planner:p%40ss%20word@db:27017/planmate?authSource=admin", uri)
	assert.Equal(t, "mongodb://planner:***@db:27017/planmate?authSource=admin", logURI)
	assert.NotContains(t, logURI, "word")

	uri, _ = BuildURI(config.MongoDBConfig{Host: "localhost", Port: "27017", Database: "planmate"})
	assert.Equal(t, "mongodb://localhost:27017/planmate", uri)
}

func TestCompletionPoint(t *testing.T) {
	created := time.Date(2025, 1, 13, 8, 0, 0, 0, time.UTC)
	completed := created.Add(90 * time.Minute)
	task := models.Task{
		ID:          "t1",
		UserID:      "u1",
		Priority:    models.PriorityHigh,
		Completed:   true,
		CreatedAt:   &created,
		CompletedAt: &completed,
	}

	line := write.PointToLineProtocol(CompletionPoint(task, completed), time.Second)
	assert.Contains(t, line, "task_completion,priority=high,user_id=u1 ")
	assert.Contains(t, line, "completed=true")
	assert.Contains(t, line, "duration_seconds=5400")

	task.Completed = false
	task.CompletedAt = nil
	line = write.PointToLineProtocol(CompletionPoint(task, completed), time.Second)
	assert.Contains(t, line, "completed=false")
	assert.NotContains(t, line, "duration_seconds")
}

const unreachableMongoURI = "mongodb://127.0.0.1:1/planmate?serverSelectionTimeoutMS=200&connectTimeoutMS=200"

func TestPingFailureDisconnectsClient(t *testing.T) {
	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(unreachableMongoURI))
	require.NoError(t, err)

	require.Error(t, pingOrDisconnect(ctx, client))
	assert.ErrorIs(t, client.Disconnect(ctx), mongo.ErrClientDisconnected)
}

func TestNewMongoDBClientUnreachable(t *testing.T) {
	client, err := NewMongoDBClient(config.MongoDBConfig{URI: unreachableMongoURI, Database: "planmate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping MongoDB")
	assert.Nil(t, client)
}
