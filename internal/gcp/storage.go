package gcp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// UploadNewObject writes content to a GCS object only if no object with that
// name exists yet. Report names are freshly generated per run and never
// reused, so a precondition failure means a name collision and is a real
// error, not something to skip.
func UploadNewObject(ctx context.Context, bucket *storage.BucketHandle, objectName, contentType string, content io.Reader) error {
	writer := bucket.Object(objectName).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = contentType
	writer.CacheControl = "public, max-age=3600"

	if _, err := io.Copy(writer, content); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write to GCS: %w", err)
	}

	if err := writer.Close(); err != nil {
		if gerr, ok := err.(*googleapi.Error); ok && gerr.Code == http.StatusPreconditionFailed {
			return fmt.Errorf("object %s already exists: %w", objectName, err)
		}
		return fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return nil
}

// PublicObjectURL returns the publicly resolvable URL for an object in a
// bucket that allows public reads. Object names are generated by this
// service and contain only URL-safe characters.
func PublicObjectURL(bucket, objectName string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectName)
}
