package database

import (
	"context"
	"fmt"
	"log"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"planmate/internal/models"
)

// CompletionMeasurement is the measurement written on every completion toggle
const CompletionMeasurement = "task_completion"

// InfluxDBClient records task completion events as time series
type InfluxDBClient struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	org      string
	bucket   string
}

// NewInfluxDBClient creates a new InfluxDB client and checks the server is healthy
func NewInfluxDBClient(url, token, org, bucket string) (*InfluxDBClient, error) {
	log.Printf("[INFLUX-INIT] Initializing InfluxDB 2.0 client: url=%s, org=%s, bucket=%s", url, org, bucket)

	client := influxdb2.NewClient(url, token)

	health, err := client.Health(context.Background())
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to InfluxDB: %w", err)
	}
	if health.Status != "pass" {
		log.Printf("[INFLUX-WARN] InfluxDB health check returned status: %s", health.Status)
	}

	return &InfluxDBClient{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		org:      org,
		bucket:   bucket,
	}, nil
}

// CompletionPoint builds the point for a task whose completion state just changed
func CompletionPoint(task models.Task, at time.Time) *write.Point {
	tags := map[string]string{
		"user_id":  task.UserID,
		"priority": string(task.Priority),
	}
	fields := map[string]interface{}{
		"completed": task.Completed,
	}
	if task.Completed && task.CompletedAt != nil && task.CreatedAt != nil && task.CompletedAt.After(*task.CreatedAt) {
		fields["duration_seconds"] = task.CompletedAt.Sub(*task.CreatedAt).Seconds()
	}
	return influxdb2.NewPoint(CompletionMeasurement, tags, fields, at)
}

// RecordCompletion writes a completion point for the task
func (c *InfluxDBClient) RecordCompletion(ctx context.Context, task models.Task) error {
	at := time.Now()
	if task.Completed && task.CompletedAt != nil {
		at = *task.CompletedAt
	}

	if err := c.writeAPI.WritePoint(ctx, CompletionPoint(task, at)); err != nil {
		return fmt.Errorf("failed to write to InfluxDB (org=%s, bucket=%s): %w", c.org, c.bucket, err)
	}
	return nil
}

// Close closes the InfluxDB client connection
func (c *InfluxDBClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}
