package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"cloud.google.com/go/storage"

	"github.com/Lllllllleong/financialreportflow/internal/gcp"
	"github.com/Lllllllleong/financialreportflow/internal/models"
)

// WebhookConfig holds all configuration for the report processing pipeline.
// Required variables missing at cold start fail initialization; configuration
// is never a per-request concern.
type WebhookConfig struct {
	ProjectID       string
	VertexAIRegion  string
	GeminiModel     string
	ReportsBucket   string
	CollectionName  string
	DownloadTimeout time.Duration
	ImageDPI        float64
	ImageDumpDir    string
}

// LoadWebhookConfig loads and validates the environment configuration.
func LoadWebhookConfig() (*WebhookConfig, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	reportsBucket := gcp.GetEnv("REPORTS_BUCKET", "")
	if reportsBucket == "" {
		return nil, fmt.Errorf("REPORTS_BUCKET environment variable must be set")
	}

	timeoutSeconds, err := strconv.Atoi(gcp.GetEnv("DOWNLOAD_TIMEOUT_SECONDS", "30"))
	if err != nil || timeoutSeconds <= 0 {
		return nil, fmt.Errorf("DOWNLOAD_TIMEOUT_SECONDS must be a positive integer")
	}
	dpi, err := strconv.ParseFloat(gcp.GetEnv("IMAGE_DPI", "800"), 64)
	if err != nil || dpi <= 0 {
		return nil, fmt.Errorf("IMAGE_DPI must be a positive number")
	}

	return &WebhookConfig{
		ProjectID:       projectID,
		VertexAIRegion:  gcp.GetEnv("VERTEX_AI_REGION", "us-central1"),
		GeminiModel:     gcp.GetEnv("GEMINI_MODEL", "gemini-1.5-pro"),
		ReportsBucket:   reportsBucket,
		CollectionName:  gcp.GetEnv("FIRESTORE_COLLECTION", "cse_reports"),
		DownloadTimeout: time.Duration(timeoutSeconds) * time.Second,
		ImageDPI:        dpi,
		ImageDumpDir:    gcp.GetEnv("IMAGE_DUMP_DIR", ""),
	}, nil
}

// TextSource produces per-page text for a report PDF.
type TextSource interface {
	Extract(ctx context.Context, pdfURL string) (*models.ExtractionResult, error)
}

// WebhookFunction sequences the pipeline for one inbound event:
// text extraction, classification, page rendering, financial extraction,
// report rendering, upload, record update. The stage adapters are interfaces
// so tests can substitute deterministic fakes honoring the same contracts.
type WebhookFunction struct {
	texts      TextSource
	classifier PageClassifier
	images     ImageRenderer
	financials FinancialExtractor
	reports    ReportRenderer
	artifacts  ArtifactStore
	records    RecordStore
}

// NewWebhookPipeline wires a WebhookFunction from explicit stage
// implementations.
func NewWebhookPipeline(
	texts TextSource,
	classifier PageClassifier,
	images ImageRenderer,
	financials FinancialExtractor,
	reports ReportRenderer,
	artifacts ArtifactStore,
	records RecordStore,
) *WebhookFunction {
	return &WebhookFunction{
		texts:      texts,
		classifier: classifier,
		images:     images,
		financials: financials,
		reports:    reports,
		artifacts:  artifacts,
		records:    records,
	}
}

// NewWebhook creates a WebhookFunction with its production dependencies.
func NewWebhook(ctx context.Context) (*WebhookFunction, error) {
	config, err := LoadWebhookConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	recordCollection, err := gcp.NewReportCollection(ctx, config.ProjectID, config.CollectionName)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	vertexClient, err := gcp.NewVertexClient(ctx, config.ProjectID, config.VertexAIRegion, config.GeminiModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex client: %w", err)
	}

	downloader := NewPDFDownloader(config.DownloadTimeout)
	slog.Info("Report pipeline initialized.", "bucket", config.ReportsBucket, "collection", config.CollectionName, "model", config.GeminiModel)

	return NewWebhookPipeline(
		NewTextExtractor(downloader),
		NewVertexClassifier(vertexClient),
		NewFitzRenderer(downloader, config.ImageDPI, config.ImageDumpDir),
		NewVertexFinancialExtractor(vertexClient),
		NewPnLReportRenderer(),
		NewGCSReportStore(storageClient, config.ReportsBucket),
		NewFirestoreRecordStore(recordCollection),
	), nil
}

// Process runs the pipeline for one webhook event and returns the response
// body plus the HTTP status code. It never lets a stage failure escape: every
// hard failure becomes a best-effort error-status record update and a uniform
// error response.
func (f *WebhookFunction) Process(ctx context.Context, req *models.WebhookRequest) (*models.WebhookResponse, int) {
	recordID := req.Record.ID.String()
	reportURL := req.Record.CSEReport

	logCtx := slog.With("recordId", recordID)
	if recordID == "" || reportURL == "" {
		logCtx.Error("Webhook payload is missing record id or report URL.")
		return &models.WebhookResponse{
			Status:  models.StatusError,
			Message: "record.id and record.cse_report are required",
		}, http.StatusBadRequest
	}
	logCtx.Info("Processing CSE report.", "url", reportURL)

	extraction, err := f.texts.Extract(ctx, reportURL)
	if err != nil {
		return f.fail(ctx, logCtx, recordID, "text extraction failed", err)
	}
	if !extraction.Success {
		return f.fail(ctx, logCtx, recordID, "no text extracted", fmt.Errorf("%s", extraction.Message))
	}

	classification, err := f.classifier.Classify(ctx, extraction.Pages)
	if err != nil {
		return f.fail(ctx, logCtx, recordID, "page classification failed", err)
	}
	if !classification.Relevant() {
		// Benign outcome: a readable report without a consolidated income
		// statement. The record still ends in error because no PnL report
		// exists for it.
		logCtx.Info("No relevant pages found.")
		f.updateRecord(ctx, logCtx, recordID, models.RecordStatusError, "")
		return &models.WebhookResponse{
			Status:  models.StatusNotRelevant,
			Message: "No relevant pages found",
		}, http.StatusOK
	}

	images, err := f.images.Render(ctx, reportURL, classification.PageNumbers)
	if err != nil {
		return f.fail(ctx, logCtx, recordID, "page rendering failed", err)
	}

	statementPages := filterPages(extraction.Pages, classification.PageNumbers)
	financialDoc, err := f.financials.Extract(ctx, images, statementPages)
	if err != nil {
		return f.fail(ctx, logCtx, recordID, "financial data extraction failed", err)
	}

	tempDir, err := os.MkdirTemp("", "pnl-report-*")
	if err != nil {
		return f.fail(ctx, logCtx, recordID, "failed to create temp dir", err)
	}
	defer os.RemoveAll(tempDir)

	reportPath := filepath.Join(tempDir, "output-report.pdf")
	if err := f.reports.Render(financialDoc, reportPath, classification.CompanyName); err != nil {
		return f.fail(ctx, logCtx, recordID, "report rendering failed", err)
	}

	publicURL, err := f.artifacts.Upload(ctx, reportPath)
	if err != nil {
		return f.fail(ctx, logCtx, recordID, "report upload failed", err)
	}

	f.updateRecord(ctx, logCtx, recordID, models.RecordStatusSuccess, publicURL)
	logCtx.Info("PnL report generated.", "reportUrl", publicURL)
	return &models.WebhookResponse{
		Status:  models.StatusSuccess,
		Message: "PnL report generated successfully",
	}, http.StatusOK
}

// fail converts any stage failure into the uniform error outcome: logged,
// record marked error (best effort), HTTP 500.
func (f *WebhookFunction) fail(ctx context.Context, logCtx *slog.Logger, recordID, message string, err error) (*models.WebhookResponse, int) {
	logCtx.Error(message, "error", err)
	f.updateRecord(ctx, logCtx, recordID, models.RecordStatusError, "")
	return &models.WebhookResponse{
		Status:  models.StatusError,
		Message: "Failed to process report",
	}, http.StatusInternalServerError
}

// updateRecord performs the single terminal record update. Update failures
// are logged and swallowed; the pipeline outcome already determines the
// response.
func (f *WebhookFunction) updateRecord(ctx context.Context, logCtx *slog.Logger, recordID, status, reportURL string) {
	if err := f.records.UpdateStatus(ctx, recordID, status, reportURL); err != nil {
		logCtx.Error("Failed to update record status.", "status", status, "error", err)
	}
}

// filterPages keeps only the pages the classifier selected, preserving the
// extractor's ascending order.
func filterPages(pages []models.Page, pageNumbers []int) []models.Page {
	selected := make(map[int]bool, len(pageNumbers))
	for _, p := range pageNumbers {
		selected[p] = true
	}
	var filtered []models.Page
	for _, page := range pages {
		if selected[page.PageNumber] {
			filtered = append(filtered, page)
		}
	}
	return filtered
}
