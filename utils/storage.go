package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GetGCSClient builds a storage client from GCS_CREDENTIALS_JSON when set,
// falling back to application default credentials.
func GetGCSClient(ctx context.Context) (*storage.Client, error) {
	if creds := strings.TrimSpace(os.Getenv("GCS_CREDENTIALS_JSON")); creds != "" {
		return storage.NewClient(ctx, option.WithCredentialsJSON([]byte(creds)))
	}
	return storage.NewClient(ctx)
}

func gcsBucket() (string, error) {
	bucket := strings.TrimSpace(os.Getenv("GCS_BUCKET"))
	if bucket == "" {
		return "", errors.New("GCS_BUCKET is required")
	}
	return bucket, nil
}

func UploadBytesToGCS(ctx context.Context, objectKey string, data []byte, contentType string) error {
	bucket, err := gcsBucket()
	if err != nil {
		return err
	}
	client, err := GetGCSClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	w := client.Bucket(bucket).Object(objectKey).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// GCSObjectURL is the public access URL for an uploaded object.
func GCSObjectURL(objectKey string) string {
	bucket, err := gcsBucket()
	if err != nil {
		return ""
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectKey)
}
