package models

import "time"

// Terminal record statuses. The datastore contract only knows success and
// error; a "not relevant" report has no PnL statement to publish, so it is
// recorded as an error.
const (
	RecordStatusSuccess = "success"
	RecordStatusError   = "error"
)

// Record mirrors the CSE report record in Firestore. The webhook payload
// carries its id and source PDF URL; the pipeline writes back the terminal
// status and, on success, the public URL of the generated PnL report.
type Record struct {
	CSEReport string    `firestore:"cse_report,omitempty"`
	Status    string    `firestore:"status,omitempty"`
	PLReport  string    `firestore:"pl_report,omitempty"`
	UpdatedAt time.Time `firestore:"updatedAt,omitempty"`
}
