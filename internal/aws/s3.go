package aws

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Publisher uploads a migrated database and its report to S3.
type Publisher struct {
	client Client
	bucket string
	key    string
}

// NewPublisher creates a publisher. An empty key means the database's base name.
func NewPublisher(client Client, bucket, key string) *Publisher {
	return &Publisher{
		client: client,
		bucket: bucket,
		key:    strings.TrimPrefix(key, "/"),
	}
}

// UploadResult holds the S3 URIs of uploaded objects.
type UploadResult struct {
	DatabaseURI string
	ReportURI   string
}

// ObjectKey returns the key the database at dbPath is stored under.
func (p *Publisher) ObjectKey(dbPath string) string {
	if p.key == "" {
		return filepath.Base(dbPath)
	}
	if strings.HasSuffix(p.key, "/") {
		return p.key + filepath.Base(dbPath)
	}
	return p.key
}

// Publish uploads the database file and, when report is non-empty, the JSON
// report next to it as <key>.report.json.
func (p *Publisher) Publish(ctx context.Context, dbPath string, report []byte) (*UploadResult, error) {
	result := &UploadResult{}

	key := p.ObjectKey(dbPath)
	if err := p.client.UploadFileToS3(ctx, p.bucket, key, dbPath); err != nil {
		return nil, fmt.Errorf("uploading database: %w", err)
	}
	result.DatabaseURI = S3URI(p.bucket, key)

	if len(report) > 0 {
		reportKey := key + ".report.json"
		if err := p.client.UploadToS3(ctx, p.bucket, reportKey, report); err != nil {
			return nil, fmt.Errorf("uploading report: %w", err)
		}
		result.ReportURI = S3URI(p.bucket, reportKey)
	}

	return result, nil
}
