package aws

import "context"

// MockClient is a test double for the Client interface.
type MockClient struct {
	Identity      *CallerIdentity
	IdentityErr   error
	UploadErr     error
	UploadFileErr error
	DeleteErr     error

	// Track calls
	UploadedObjects map[string][]byte // bucket/key → data
	UploadedFiles   map[string]string // bucket/key → local path
	DeletedObjects  []string          // bucket/key
}

// NewMockClient creates a new MockClient with default values.
func NewMockClient() *MockClient {
	return &MockClient{
		Identity: &CallerIdentity{
			Account: "123456789012",
			ARN:     "arn:aws:iam::123456789012:user/test",
			UserID:  "AIDA12345",
		},
		UploadedObjects: make(map[string][]byte),
		UploadedFiles:   make(map[string]string),
	}
}

func (m *MockClient) VerifyCredentials(_ context.Context) (*CallerIdentity, error) {
	return m.Identity, m.IdentityErr
}

func (m *MockClient) UploadToS3(_ context.Context, bucket, key string, data []byte) error {
	if m.UploadErr != nil {
		return m.UploadErr
	}
	m.UploadedObjects[bucket+"/"+key] = data
	return nil
}

func (m *MockClient) UploadFileToS3(_ context.Context, bucket, key, localPath string) error {
	if m.UploadFileErr != nil {
		return m.UploadFileErr
	}
	m.UploadedFiles[bucket+"/"+key] = localPath
	return nil
}

func (m *MockClient) DeleteFromS3(_ context.Context, bucket, key string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.DeletedObjects = append(m.DeletedObjects, bucket+"/"+key)
	return nil
}
