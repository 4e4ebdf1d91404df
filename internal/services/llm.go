package services

import (
	"strings"

	"cloud.google.com/go/vertexai/genai"
)

// responseJSON robustly gets the raw JSON text out of a model response. The
// models are configured for application/json output, so a single text part is
// expected; markdown fences are stripped just in case.
func responseJSON(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	txt, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return ""
	}
	cleanJSON := strings.TrimSpace(string(txt))
	cleanJSON = strings.TrimPrefix(cleanJSON, "```json")
	cleanJSON = strings.TrimPrefix(cleanJSON, "```")
	cleanJSON = strings.TrimSuffix(cleanJSON, "```")
	return strings.TrimSpace(cleanJSON)
}
