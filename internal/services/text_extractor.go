package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Lllllllleong/financialreportflow/internal/models"
)

// TextExtractor downloads a CSE report PDF and extracts its text page by
// page. Pages whose text is empty after trimming are skipped; a document
// where every page is empty (a scanned report) yields an unsuccessful
// ExtractionResult, not an error.
type TextExtractor struct {
	downloader *PDFDownloader
}

func NewTextExtractor(downloader *PDFDownloader) *TextExtractor {
	return &TextExtractor{downloader: downloader}
}

// Extract fetches pdfURL and returns the per-page text in ascending page
// order. Network failures surface as *DownloadError and malformed documents
// as *ParseError; both are distinct, terminal conditions.
func (t *TextExtractor) Extract(ctx context.Context, pdfURL string) (*models.ExtractionResult, error) {
	content, err := t.downloader.Fetch(ctx, pdfURL)
	if err != nil {
		return nil, err
	}

	tempDir, err := os.MkdirTemp("", "cse-report-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	sourcePath := filepath.Join(tempDir, "source.pdf")
	if err := os.WriteFile(sourcePath, content, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write temp PDF: %w", err)
	}

	if err := validatePDF(sourcePath); err != nil {
		return nil, &ParseError{Err: err}
	}

	pages, err := extractPages(sourcePath)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	if len(pages) == 0 {
		slog.Info("No text content found in PDF.", "url", pdfURL)
		return &models.ExtractionResult{
			Success: false,
			Message: "No text extracted. PDF may be scanned or contain only images.",
		}, nil
	}

	return &models.ExtractionResult{
		Success: true,
		Message: fmt.Sprintf("extracted text from %d pages", len(pages)),
		Pages:   pages,
	}, nil
}

// validatePDF runs pdfcpu's relaxed validation so that malformed bytes are
// reported as a parse failure before any page-level work starts.
func validatePDF(path string) error {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return api.ValidateFile(path, cfg)
}

// extractPages reads every page's plain text, keeping 1-based page numbers
// for pages with non-empty trimmed content.
func extractPages(path string) ([]models.Page, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var pages []models.Page
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page behaves like an empty one.
			slog.Warn("Failed to extract text from page.", "page", i, "error", err)
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, models.Page{PageNumber: i, Content: text})
	}
	return pages, nil
}
