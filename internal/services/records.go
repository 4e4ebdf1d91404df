package services

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/Lllllllleong/financialreportflow/internal/gcp"
	"github.com/Lllllllleong/financialreportflow/internal/models"
)

// RecordStore writes the terminal pipeline status back onto the record that
// triggered the webhook. Exactly one update happens per invocation.
type RecordStore interface {
	UpdateStatus(ctx context.Context, recordID, status, reportURL string) error
}

// FirestoreRecordStore implements RecordStore on the CSE report collection.
type FirestoreRecordStore struct {
	records *gcp.ReportCollection
}

func NewFirestoreRecordStore(records *gcp.ReportCollection) *FirestoreRecordStore {
	return &FirestoreRecordStore{records: records}
}

// UpdateStatus merges the terminal status and, when present, the report URL
// into the record. Fields not touched by the pipeline stay intact.
func (s *FirestoreRecordStore) UpdateStatus(ctx context.Context, recordID, status, reportURL string) error {
	if recordID == "" {
		return fmt.Errorf("recordID must not be empty")
	}

	record := models.Record{
		Status:    status,
		PLReport:  reportURL,
		UpdatedAt: time.Now(),
	}
	fields := []firestore.FieldPath{{"status"}, {"updatedAt"}}
	if reportURL != "" {
		fields = append(fields, firestore.FieldPath{"pl_report"})
	}

	_, err := s.records.Record(recordID).Set(ctx, record, firestore.Merge(fields...))
	if err != nil {
		return fmt.Errorf("failed to update record %s: %w", recordID, err)
	}
	return nil
}
