package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"github.com/Lllllllleong/financialreportflow/internal/gcp"
	"github.com/Lllllllleong/financialreportflow/internal/models"
)

// FinancialExtractor turns statement page images plus the matching extracted
// text into a normalized FinancialDocument. Both representations are sent
// together: image-only interpretation is unreliable for dense numeric tables.
type FinancialExtractor interface {
	Extract(ctx context.Context, images []models.PageImage, pages []models.Page) (*models.FinancialDocument, error)
}

// VertexFinancialExtractor implements FinancialExtractor on the multimodal
// Vertex AI financial model.
type VertexFinancialExtractor struct {
	model *genai.GenerativeModel
}

func NewVertexFinancialExtractor(client *gcp.VertexClient) *VertexFinancialExtractor {
	return &VertexFinancialExtractor{model: client.FinancialModel}
}

// Extract sends one image part per statement page plus the raw page text and
// decodes the schema-constrained PnL document.
func (e *VertexFinancialExtractor) Extract(ctx context.Context, images []models.PageImage, pages []models.Page) (*models.FinancialDocument, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("no statement page images provided")
	}

	parts := make([]genai.Part, 0, len(images)+1)
	parts = append(parts, genai.Text(gcp.FinancialUserPrompt+serializePageText(pages)))
	for _, img := range images {
		data, err := base64.StdEncoding.DecodeString(img.Base64JPEG)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image payload for page %d: %w", img.PageNumber, err)
		}
		parts = append(parts, genai.ImageData("jpeg", data))
	}

	resp, err := e.model.GenerateContent(ctx, parts...)
	if err != nil {
		slog.Error("Call to Vertex AI for financial data extraction failed", "error", err)
		return nil, fmt.Errorf("failed to extract financial data: %w", err)
	}

	doc, err := decodeFinancialDocument(responseJSON(resp))
	if err != nil {
		return nil, err
	}

	slog.Info("Financial data extracted.",
		"period", doc.Period,
		"year", doc.Year,
		"currency", doc.Currency,
		"sectionCount", len(doc.Sections),
	)
	return doc, nil
}

// serializePageText joins the selected pages' text for the prompt, keeping
// page boundaries visible to the model.
func serializePageText(pages []models.Page) string {
	var b strings.Builder
	for _, page := range pages {
		fmt.Fprintf(&b, "--- Page %d ---\n%s\n\n", page.PageNumber, page.Content)
	}
	return b.String()
}

// decodeFinancialDocument parses and validates an extractor response. Any
// deviation from the agreed schema is a *SchemaError; no partial or guessed
// document is ever substituted.
func decodeFinancialDocument(raw string) (*models.FinancialDocument, error) {
	if raw == "" {
		return nil, &SchemaError{Stage: "financial extractor", Err: fmt.Errorf("empty model response")}
	}

	var doc models.FinancialDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, &SchemaError{Stage: "financial extractor", Err: err}
	}

	if doc.Period == "" || doc.Year == "" || doc.Currency == "" {
		return nil, &SchemaError{Stage: "financial extractor", Err: fmt.Errorf("missing period, year, or currency")}
	}
	if len(doc.Sections) == 0 {
		return nil, &SchemaError{Stage: "financial extractor", Err: fmt.Errorf("document has no sections")}
	}
	for i, section := range doc.Sections {
		if section.Title == "" {
			return nil, &SchemaError{Stage: "financial extractor", Err: fmt.Errorf("section %d has no title", i+1)}
		}
		for j, field := range section.Fields {
			if field.Label == "" {
				return nil, &SchemaError{Stage: "financial extractor", Err: fmt.Errorf("section %q field %d has no label", section.Title, j+1)}
			}
		}
	}
	return &doc, nil
}
