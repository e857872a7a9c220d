package aws

import (
	"context"
	"errors"
	"testing"
)

func TestCheckCredentials(t *testing.T) {
	id, err := CheckCredentials(context.Background(), NewMockClient())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Account != "123456789012" {
		t.Errorf("Account = %q", id.Account)
	}
}

func TestCheckCredentials_Error(t *testing.T) {
	mock := NewMockClient()
	mock.Identity = nil
	mock.IdentityErr = errors.New("expired token")

	if _, err := CheckCredentials(context.Background(), mock); err == nil {
		t.Error("expected error")
	}
}

func TestCheckCredentials_EmptyIdentity(t *testing.T) {
	mock := NewMockClient()
	mock.Identity = &CallerIdentity{}

	if _, err := CheckCredentials(context.Background(), mock); err == nil {
		t.Error("expected error for empty identity")
	}
}

func TestPublisher_ObjectKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", "shop.db"},
		{"exports/", "exports/shop.db"},
		{"/exports/latest.db", "exports/latest.db"},
		{"fixed.sqlite", "fixed.sqlite"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			p := NewPublisher(NewMockClient(), "bucket", tt.key)
			if got := p.ObjectKey("/data/out/shop.db"); got != tt.want {
				t.Errorf("ObjectKey = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPublisher_Publish(t *testing.T) {
	mock := NewMockClient()
	p := NewPublisher(mock, "my-bucket", "exports/")

	result, err := p.Publish(context.Background(), "/data/shop.db", []byte(`{"version":"1"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.DatabaseURI != "s3://my-bucket/exports/shop.db" {
		t.Errorf("DatabaseURI = %q", result.DatabaseURI)
	}
	if result.ReportURI != "s3://my-bucket/exports/shop.db.report.json" {
		t.Errorf("ReportURI = %q", result.ReportURI)
	}
	if mock.UploadedFiles["my-bucket/exports/shop.db"] != "/data/shop.db" {
		t.Errorf("database not uploaded: %v", mock.UploadedFiles)
	}
	if string(mock.UploadedObjects["my-bucket/exports/shop.db.report.json"]) != `{"version":"1"}` {
		t.Errorf("report not uploaded: %v", mock.UploadedObjects)
	}
}

func TestPublisher_PublishWithoutReport(t *testing.T) {
	mock := NewMockClient()
	result, err := NewPublisher(mock, "b", "").Publish(context.Background(), "shop.db", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ReportURI != "" {
		t.Errorf("ReportURI = %q, want empty", result.ReportURI)
	}
	if len(mock.UploadedObjects) != 0 {
		t.Error("no report object should be uploaded")
	}
}

func TestPublisher_UploadErrors(t *testing.T) {
	mock := NewMockClient()
	mock.UploadFileErr = errors.New("access denied")
	if _, err := NewPublisher(mock, "b", "").Publish(context.Background(), "shop.db", nil); err == nil {
		t.Error("expected database upload error")
	}

	mock = NewMockClient()
	mock.UploadErr = errors.New("access denied")
	if _, err := NewPublisher(mock, "b", "").Publish(context.Background(), "shop.db", []byte("{}")); err == nil {
		t.Error("expected report upload error")
	}
}

func TestS3URI(t *testing.T) {
	if got := S3URI("b", "k/x.db"); got != "s3://b/k/x.db" {
		t.Errorf("S3URI = %q", got)
	}
}

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		uri    string
		bucket string
		key    string
		ok     bool
	}{
		{"s3://my-bucket/exports/shop.db", "my-bucket", "exports/shop.db", true},
		{"s3://my-bucket/", "my-bucket", "", false},
		{"s3://my-bucket", "my-bucket", "", false},
		{"https://example.com/x", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, key, ok := ParseS3URI(tt.uri)
			if bucket != tt.bucket || key != tt.key || ok != tt.ok {
				t.Errorf("ParseS3URI(%q) = %q, %q, %v", tt.uri, bucket, key, ok)
			}
		})
	}
}
