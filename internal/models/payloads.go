package models

import "encoding/json"

// These structs define the JSON payloads exchanged with the webhook
// dispatcher that fires when a CSE report record is created.

// Webhook response statuses. "not_relevant" is a graceful outcome, not an
// error: the report was readable but carried no consolidated income statement.
const (
	StatusSuccess     = "success"
	StatusNotRelevant = "not_relevant"
	StatusError       = "error"
)

// WebhookRequest is the inbound webhook body. Only the record envelope is
// required; any additional event metadata is ignored.
type WebhookRequest struct {
	Record WebhookRecord `json:"record"`
}

// WebhookRecord identifies the datastore record being processed. ID is a
// json.Number because the dispatcher sends numeric ids for serial-keyed
// tables and strings for UUID-keyed ones.
type WebhookRecord struct {
	ID        json.Number `json:"id"`
	CSEReport string      `json:"cse_report"`
}

// WebhookResponse is the uniform response body for every outcome.
type WebhookResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
