package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/joho/godotenv"

	"github.com/Lllllllleong/financialreportflow/internal/models"
	"github.com/Lllllllleong/financialreportflow/internal/services"
)

var (
	webhookInstance *services.WebhookFunction
	once            sync.Once
	initErr         error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Local runs read configuration from a .env file; deployed functions get
	// it from the environment directly.
	_ = godotenv.Load()

	// Register the HTTP function with the framework.
	// "ProcessCSEReport" is the entry point name we'll see in GCP.
	functions.HTTP("ProcessCSEReport", handleWebhook)
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

// handleWebhook is the HTTP handler for inbound report webhooks. It must
// always answer the dispatcher: graceful outcomes (including "not relevant")
// get HTTP 200, hard failures get HTTP 500 with a uniform error body.
func handleWebhook(w http.ResponseWriter, r *http.Request) {
	// Use sync.Once for robust, one-time initialization of clients.
	once.Do(func() {
		webhookInstance, initErr = services.NewWebhook(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		writeJSON(w, http.StatusInternalServerError, &models.WebhookResponse{
			Status:  models.StatusError,
			Message: "service initialization failed",
		})
		return
	}

	var req models.WebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Could not decode webhook body", "error", err)
		writeJSON(w, http.StatusBadRequest, &models.WebhookResponse{
			Status:  models.StatusError,
			Message: "could not parse JSON body",
		})
		return
	}

	resp, statusCode := webhookInstance.Process(r.Context(), &req)
	writeJSON(w, statusCode, resp)
}

func writeJSON(w http.ResponseWriter, statusCode int, resp *models.WebhookResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
