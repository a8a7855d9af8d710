package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"planmate/internal/config"
	"planmate/internal/models"
)

const (
	tasksCollectionName         = "tasks"
	subscriptionsCollectionName = "digest-subscriptions"

	queryTimeout = 5 * time.Second
	writeTimeout = 10 * time.Second
)

// MongoDBClient wraps the MongoDB client holding tasks and digest subscriptions
type MongoDBClient struct {
	client                  *mongo.Client
	database                *mongo.Database
	tasksCollection         *mongo.Collection
	subscriptionsCollection *mongo.Collection
}

// BuildURI returns the connection URI and a copy safe for logging (password masked)
func BuildURI(cfg config.MongoDBConfig) (uri, logURI string) {
	uri = cfg.URI
	if uri != "" {
		return uri, uri
	}

	authSource := cfg.AuthSource
	if authSource == "" {
		authSource = "admin"
	}

	if cfg.Username != "" && cfg.Password != "" {
		userInfo := url.UserPassword(cfg.Username, cfg.Password)
		uri = fmt.Sprintf("mongodb://%s@%s:%s/%s?authSource=%s",
			userInfo.String(), cfg.Host, cfg.Port, cfg.Database, url.QueryEscape(authSource))
		logURI = fmt.Sprintf("mongodb://%s:***@%s:%s/%s?authSource=%s",
			url.User(cfg.Username).String(), cfg.Host, cfg.Port, cfg.Database, url.QueryEscape(authSource))
		return uri, logURI
	}

	uri = fmt.Sprintf("mongodb://%s:%s/%s", cfg.Host, cfg.Port, cfg.Database)
	return uri, uri
}

// NewMongoDBClient connects to MongoDB and prepares the collections and indexes
func NewMongoDBClient(cfg config.MongoDBConfig) (*MongoDBClient, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uri, logURI := BuildURI(cfg)
	log.Printf("[MONGO] Attempting to connect to MongoDB at %s", logURI)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB at %s: %w", logURI, err)
	}

	if err := pingOrDisconnect(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB at %s: %w", logURI, err)
	}

	database := client.Database(cfg.Database)
	tasksCollection := database.Collection(tasksCollectionName)
	subscriptionsCollection := database.Collection(subscriptionsCollectionName)

	// Listing is always per user, newest due date first
	taskIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "dueDate", Value: -1}},
	}
	if _, err := tasksCollection.Indexes().CreateOne(ctx, taskIndex); err != nil {
		log.Printf("[MONGO] Note: tasks index creation: %v", err)
	}

	subscriptionIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := subscriptionsCollection.Indexes().CreateOne(ctx, subscriptionIndex); err != nil {
		log.Printf("[MONGO] Note: digest-subscriptions index creation: %v", err)
	}

	return &MongoDBClient{
		client:                  client,
		database:                database,
		tasksCollection:         tasksCollection,
		subscriptionsCollection: subscriptionsCollection,
	}, nil
}

// pingOrDisconnect verifies the server is reachable, releasing the client's pools when it is not
func pingOrDisconnect(ctx context.Context, client *mongo.Client) error {
	err := client.Ping(ctx, nil)
	if err == nil {
		return nil
	}
	disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if derr := client.Disconnect(disconnectCtx); derr != nil {
		log.Printf("[MONGO] Failed to disconnect after ping failure: %v", derr)
	}
	return err
}

// Close closes the MongoDB client connection
func (c *MongoDBClient) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}

// InsertTask stores a new task
func (c *MongoDBClient) InsertTask(ctx context.Context, task *models.Task) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if _, err := c.tasksCollection.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// FindTask retrieves one of the user's tasks. Returns nil, nil when it does not exist.
func (c *MongoDBClient) FindTask(ctx context.Context, userID, taskID string) (*models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var task models.Task
	err := c.tasksCollection.FindOne(ctx, bson.M{"_id": taskID, "userId": userID}).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query task: %w", err)
	}
	return &task, nil
}

// FindTasksByUser retrieves every task owned by the user
func (c *MongoDBClient) FindTasksByUser(ctx context.Context, userID string) ([]models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := c.tasksCollection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := []models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	return tasks, nil
}

// ReplaceTask overwrites a stored task. Reports false when no task matched.
func (c *MongoDBClient) ReplaceTask(ctx context.Context, task *models.Task) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	result, err := c.tasksCollection.ReplaceOne(ctx, bson.M{"_id": task.ID, "userId": task.UserID}, task)
	if err != nil {
		return false, fmt.Errorf("failed to update task: %w", err)
	}
	return result.MatchedCount > 0, nil
}

// DeleteTask removes one of the user's tasks. Reports false when no task matched.
func (c *MongoDBClient) DeleteTask(ctx context.Context, userID, taskID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := c.tasksCollection.DeleteOne(ctx, bson.M{"_id": taskID, "userId": userID})
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// UpsertSubscription adds or replaces the user's digest subscription
func (c *MongoDBClient) UpsertSubscription(ctx context.Context, sub models.DigestSubscription) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"userId": sub.UserID}
	update := bson.M{"$set": sub}

	if _, err := c.subscriptionsCollection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to add digest subscription: %w", err)
	}
	return nil
}

// RemoveSubscription deletes the user's digest subscription
func (c *MongoDBClient) RemoveSubscription(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := c.subscriptionsCollection.DeleteOne(ctx, bson.M{"userId": userID}); err != nil {
		return fmt.Errorf("failed to remove digest subscription: %w", err)
	}
	return nil
}

// FindSubscription retrieves the user's digest subscription. Returns nil, nil when absent.
func (c *MongoDBClient) FindSubscription(ctx context.Context, userID string) (*models.DigestSubscription, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var sub models.DigestSubscription
	err := c.subscriptionsCollection.FindOne(ctx, bson.M{"userId": userID}).Decode(&sub)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query digest subscription: %w", err)
	}
	return &sub, nil
}

// FindAllSubscriptions retrieves every digest subscription
func (c *MongoDBClient) FindAllSubscriptions(ctx context.Context) ([]models.DigestSubscription, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := c.subscriptionsCollection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query digest subscriptions: %w", err)
	}
	defer cursor.Close(ctx)

	var subs []models.DigestSubscription
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, fmt.Errorf("failed to decode digest subscriptions: %w", err)
	}
	return subs, nil
}
