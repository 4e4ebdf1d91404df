package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"cloud.google.com/go/vertexai/genai"

	"github.com/Lllllllleong/financialreportflow/internal/gcp"
	"github.com/Lllllllleong/financialreportflow/internal/models"
)

// PageClassifier identifies the pages of a report that hold the consolidated
// (group) income statement. A "not relevant" verdict is a normal outcome,
// not an error. Returned page numbers are trusted here; bounds are enforced
// by the image renderer.
type PageClassifier interface {
	Classify(ctx context.Context, pages []models.Page) (*models.PageClassification, error)
}

// VertexClassifier implements PageClassifier on the pre-configured Vertex AI
// classifier model.
type VertexClassifier struct {
	model *genai.GenerativeModel
}

func NewVertexClassifier(client *gcp.VertexClient) *VertexClassifier {
	return &VertexClassifier{model: client.ClassifierModel}
}

// Classify serializes the page collection, sends it to the model, and decodes
// the schema-constrained verdict.
func (c *VertexClassifier) Classify(ctx context.Context, pages []models.Page) (*models.PageClassification, error) {
	document, err := json.Marshal(pages)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize pages for classification: %w", err)
	}

	prompt := genai.Text(gcp.ClassifierUserPrompt + string(document))
	resp, err := c.model.GenerateContent(ctx, prompt)
	if err != nil {
		slog.Error("Call to Vertex AI for page classification failed", "error", err)
		return nil, fmt.Errorf("failed to classify report pages: %w", err)
	}

	classification, err := decodeClassification(responseJSON(resp))
	if err != nil {
		return nil, err
	}

	slog.Info("Report classified.",
		"status", classification.Status,
		"pageNumbers", classification.PageNumbers,
		"companyName", classification.CompanyName,
	)
	return classification, nil
}

// decodeClassification parses and validates a classifier response against the
// agreed schema. Any violation is a *SchemaError; a "not relevant" status is
// valid output and passes through untouched.
func decodeClassification(raw string) (*models.PageClassification, error) {
	if raw == "" {
		return nil, &SchemaError{Stage: "classifier", Err: fmt.Errorf("empty model response")}
	}

	var classification models.PageClassification
	if err := json.Unmarshal([]byte(raw), &classification); err != nil {
		return nil, &SchemaError{Stage: "classifier", Err: err}
	}

	switch classification.Status {
	case models.ClassificationRelevant, models.ClassificationNotRelevant:
	default:
		return nil, &SchemaError{Stage: "classifier", Err: fmt.Errorf("unknown status %q", classification.Status)}
	}

	for _, p := range classification.PageNumbers {
		if p < 1 {
			return nil, &SchemaError{Stage: "classifier", Err: fmt.Errorf("non-positive page number %d", p)}
		}
	}
	return &classification, nil
}
