package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"planmate/internal/config"
	"planmate/internal/utils"
)

// ReportArchive stores rendered progress reports.
// This allows switching between S3 and local storage implementations.
type ReportArchive interface {
	// UploadReport stores a report PDF and returns its storage key
	UploadReport(ctx context.Context, userID string, weekStart time.Time, pdfData []byte) (string, error)

	// GetFileURL returns the full URL for a given key
	GetFileURL(key string) string
}

// ReportKey is the storage key for a user's report of the week starting at weekStart
func ReportKey(userID string, weekStart time.Time) string {
	return fmt.Sprintf("reports/%s/%s.pdf", userID, utils.FormatDate(weekStart))
}

// S3Service archives reports in S3
type S3Service struct {
	client   *s3.Client
	bucket   string
	region   string
	endpoint string // Custom endpoint for MinIO/S3-compatible services
}

// NewS3Service creates a new S3 service
func NewS3Service(cfg config.S3Config) (*S3Service, error) {
	ctx := context.Background()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var client *s3.Client
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // Required for MinIO
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	return &S3Service{
		client:   client,
		bucket:   cfg.Bucket,
		region:   cfg.Region,
		endpoint: cfg.Endpoint,
	}, nil
}

// UploadReport uploads a report PDF to S3
func (s *S3Service) UploadReport(ctx context.Context, userID string, weekStart time.Time, pdfData []byte) (string, error) {
	key := ReportKey(userID, weekStart)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(pdfData),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return key, nil
}

// GetFileURL returns the full HTTPS URL for a given key
func (s *S3Service) GetFileURL(key string) string {
	if s.endpoint != "" {
		// Format: <endpoint>/<bucket>/<key>
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	}
	// Format: https://<bucket>.s3.<region>.amazonaws.com/<key>
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// LocalArchive stores reports on the local filesystem
type LocalArchive struct {
	basePath string
	baseURL  string // Base URL for serving files (e.g., http://localhost:8085/reports)
}

// NewLocalArchive creates a local archive rooted at basePath
func NewLocalArchive(basePath, baseURL string) (*LocalArchive, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalArchive{basePath: basePath, baseURL: baseURL}, nil
}

// UploadReport writes a report PDF under basePath
func (a *LocalArchive) UploadReport(ctx context.Context, userID string, weekStart time.Time, pdfData []byte) (string, error) {
	key := ReportKey(userID, weekStart)
	fullPath := filepath.Join(a.basePath, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(fullPath, pdfData, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return key, nil
}

// GetFileURL returns the URL the report is served from
func (a *LocalArchive) GetFileURL(key string) string {
	return fmt.Sprintf("%s/%s", a.baseURL, key)
}
