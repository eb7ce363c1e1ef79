package helpers

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// GCSSigner issues time-boxed signed PUT URLs so clients upload document bytes
// directly to the bucket; the API never sits on the data path.
type GCSSigner struct {
	Client *storage.Client
	Bucket string
}

func NewGCSSigner(client *storage.Client, bucket string) *GCSSigner {
	return &GCSSigner{Client: client, Bucket: bucket}
}

// SignedUploadURL returns a V4 signed URL authorizing a single PUT of the
// object with the given content type, valid until expires.
func (s *GCSSigner) SignedUploadURL(objectKey, contentType string, expires time.Time) (string, error) {
	return s.Client.Bucket(s.Bucket).SignedURL(objectKey, &storage.SignedURLOptions{
		Scheme:      storage.SigningSchemeV4,
		Method:      "PUT",
		Expires:     expires,
		ContentType: contentType,
	})
}

// ObjectURL builds the access URL for an uploaded object.
func (s *GCSSigner) ObjectURL(objectKey string) string {
	return PublicURL(s.Bucket, objectKey)
}

// PublicURL builds a public URL for an object (assuming public read access or signed URLs)
func PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}
