package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/joho/godotenv"

	"github.com/Lllllllleong/financialreportflow/internal/gcp"
	"github.com/Lllllllleong/financialreportflow/internal/models"
	"github.com/Lllllllleong/financialreportflow/internal/services"
)

// reportPrefix is where inbound CSE reports land in the bucket. Objects are
// named cse_reports/<recordID>_<timestamp>.pdf.
const reportPrefix = "cse_reports/"

var (
	pipelineInstance *services.WebhookFunction
	once             sync.Once
	initErr          error
)

// gcsEvent is the payload of a storage finalize CloudEvent.
type gcsEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	// Register the CloudEvent function. The framework routes storage
	// finalize events here.
	functions.CloudEvent("ProcessUploadedReport", processUploadedReport)
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := funcframework.Start(port); err != nil {
		log.Fatalf("funcframework.Start: %v", err)
	}
}

// processUploadedReport runs the same pipeline as the webhook for reports
// dropped directly into the inbound bucket.
func processUploadedReport(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		pipelineInstance, initErr = services.NewWebhook(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var event gcsEvent
	if err := json.Unmarshal(e.Data(), &event); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	if !strings.HasPrefix(event.Name, reportPrefix) {
		slog.Info("Ignoring object outside the report prefix.", "object", event.Name)
		return nil
	}
	if event.Name == reportPrefix {
		// Folder placeholder object, nothing to process.
		slog.Info("Ignoring report prefix placeholder.", "object", event.Name)
		return nil
	}

	recordID := recordIDFromObjectName(event.Name)
	if recordID == "" {
		slog.Error("Could not derive a record id from the object name.", "object", event.Name)
		return fmt.Errorf("unrecognized report object name %q", event.Name)
	}

	req := &models.WebhookRequest{
		Record: models.WebhookRecord{
			ID:        json.Number(recordID),
			CSEReport: gcp.PublicObjectURL(event.Bucket, event.Name),
		},
	}

	resp, statusCode := pipelineInstance.Process(ctx, req)
	if statusCode != http.StatusOK {
		// Returning the failure marks the invocation as failed; redelivery
		// is the event source's policy, not ours.
		return fmt.Errorf("report processing for record %s failed: %s", recordID, resp.Message)
	}
	slog.Info("Report processed from bucket event.", "recordId", recordID, "status", resp.Status)
	return nil
}

// recordIDFromObjectName extracts the record id from an object named
// cse_reports/<recordID>_<timestamp>.pdf (or cse_reports/<recordID>.pdf).
// Names with nothing after the prefix yield no id.
func recordIDFromObjectName(objectName string) string {
	rest := strings.TrimPrefix(objectName, reportPrefix)
	if rest == "" {
		return ""
	}
	base := strings.TrimSuffix(path.Base(rest), path.Ext(rest))
	recordID, _, _ := strings.Cut(base, "_")
	return recordID
}
