// Package aws publishes the finished SQLite database to S3.
package aws

import (
	"context"
	"fmt"
	"strings"
)

// Client defines AWS operations needed by the migration tool.
type Client interface {
	VerifyCredentials(ctx context.Context) (*CallerIdentity, error)
	UploadToS3(ctx context.Context, bucket, key string, data []byte) error
	UploadFileToS3(ctx context.Context, bucket, key, localPath string) error
	DeleteFromS3(ctx context.Context, bucket, key string) error
}

// CallerIdentity holds AWS STS caller identity information.
type CallerIdentity struct {
	Account string
	ARN     string
	UserID  string
}

// CheckCredentials verifies that the client can authenticate before any
// table is copied, so a bad profile fails fast rather than after the run.
func CheckCredentials(ctx context.Context, client Client) (*CallerIdentity, error) {
	id, err := client.VerifyCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("verifying AWS credentials: %w", err)
	}
	if id == nil || id.Account == "" {
		return nil, fmt.Errorf("verifying AWS credentials: empty caller identity")
	}
	return id, nil
}

// S3URI formats an s3:// URI.
func S3URI(bucket, key string) string {
	return fmt.Sprintf("s3://%s/%s", bucket, key)
}

// ParseS3URI splits "s3://bucket/key" into bucket and key.
func ParseS3URI(uri string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(uri, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, _ = strings.Cut(rest, "/")
	return bucket, key, bucket != "" && key != ""
}
