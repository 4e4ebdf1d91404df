package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
)

// ReportCollection scopes a Firestore client to the collection holding CSE
// report records, so callers address records by id without carrying the
// collection name around.
type ReportCollection struct {
	client *firestore.Client
	name   string
}

// NewReportCollection creates a Firestore client for the given project and
// binds it to the report record collection.
func NewReportCollection(ctx context.Context, projectID, collection string) (*ReportCollection, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}
	if collection == "" {
		return nil, fmt.Errorf("collection must be provided to address report records")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return &ReportCollection{client: client, name: collection}, nil
}

// Record returns the document reference for one report record.
func (c *ReportCollection) Record(recordID string) *firestore.DocumentRef {
	return c.client.Collection(c.name).Doc(recordID)
}

func (c *ReportCollection) Close() error {
	return c.client.Close()
}
