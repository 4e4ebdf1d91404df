package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/Lllllllleong/financialreportflow/internal/gcp"
)

// ArtifactStore uploads a rendered report and resolves its public URL.
type ArtifactStore interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// GCSReportStore implements ArtifactStore on a publicly readable GCS bucket.
// Every upload gets a fresh UUID-based object name, so concurrent pipeline
// runs can never overwrite each other's reports.
type GCSReportStore struct {
	client *storage.Client
	bucket string
}

func NewGCSReportStore(client *storage.Client, bucket string) *GCSReportStore {
	return &GCSReportStore{client: client, bucket: bucket}
}

// Upload stores the report under pl_reports/<uuid>.pdf and returns the
// public URL. A backend that cannot confirm the stored object is an upload
// failure; no URL is ever returned for an object that is not there.
func (s *GCSReportStore) Upload(ctx context.Context, localPath string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open report %s: %w", localPath, err)
	}
	defer file.Close()

	objectName := fmt.Sprintf("pl_reports/%s.pdf", uuid.NewString())
	bucketHandle := s.client.Bucket(s.bucket)

	if err := gcp.UploadNewObject(ctx, bucketHandle, objectName, "application/pdf", file); err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}

	// Confirm the object before handing out a URL for it.
	if _, err := bucketHandle.Object(objectName).Attrs(ctx); err != nil {
		return "", fmt.Errorf("failed to resolve uploaded report %s: %w", objectName, err)
	}

	publicURL := gcp.PublicObjectURL(s.bucket, objectName)
	slog.Info("Uploaded PnL report.", "object", objectName, "url", publicURL)
	return publicURL, nil
}
