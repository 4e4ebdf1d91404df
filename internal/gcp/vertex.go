package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
)

// --- Page Classifier Model Prompts ---
const ClassifierSystemPrompt = `You are an AI assistant specialized in processing financial reports.
Your task is to extract the pages that contain the consolidated income statement (i.e. the statement of profit or loss for the group) rather than the company-specific statements.
Do the following:
- Identify pages where the content includes titles such as "STATEMENT OF PROFIT OR LOSS" with group-level data (for example, if the header shows "Group" or similar indications).
- Do NOT return pages that include "Company Statement of Financial Position", "Company Income Statements", "Statements of Comprehensive Income", "Statements of Changes in Equity", "Cash Flow Statements", "Notes to the Financial Statements", "Shareholder Information", or any similar sections.
- If the consolidated data spans multiple pages, return all such pages.
If the provided content is not recognizable as a financial report, mark the document as not relevant.

Remember, your goal is to help extract only the consolidated (group) profit and loss data, not the company-only data.`

const ClassifierUserPrompt = `I have a JSON document where each item is a page from a CSE report. I need the pages that contain the consolidated income statement - specifically the "STATEMENT OF PROFIT OR LOSS" for the group (i.e. not the "Company" ones). I am interested in sections titled like "STATEMENT OF PROFIT OR LOSS" that show group data (e.g. "Group") or are labeled as "Consolidated Income Statements".

Return the company name and the page number(s) that contain the valid quarterly (3-month) data from the latest year. If the content is not related to a financial report, mark it as not relevant.

Here is the JSON document:

`

// --- Financial Data Extractor Model Prompts ---
const FinancialSystemPrompt = `You are an expert in financial data extraction and validation. Process the given financial document step by step, ensuring that only the latest quarterly data is considered:

1. Quarter Identification Phase:
   - Extract and determine the latest quarterly period.
   - Ignore annual and outdated quarterly data.

2. Validation Phase:
   - Compare extracted fields with the document.
   - Identify missing fields, incorrect labels, or inconsistencies.
   - Ensure all necessary financial metrics are accounted for, including revenue, cost of sales, gross profit, operating expenses, finance costs, tax expenses, net profit, earnings per share, and dividends per share.

3. Enhancement Phase:
   - Ensure correct categorization under respective sections.
   - Validate field attributes such as bold values, calculated sums, and subcategories.

4. Dynamic Formatting Phase:
   - Generate structured JSON output, flexible enough to handle different document layouts.
   - Maintain sections, titles, and hierarchies while allowing format changes based on document variations.

5. Final Output Phase:
   - Populate values into the structured JSON.
   - Ensure correctness in calculations and data integrity.

Proceed step by step to ensure the highest accuracy and completeness of the extracted financial data.`

const FinancialUserPrompt = `Extract the key financial metrics of the Profit and Loss Statement for the latest quarter from the attached page images. Follow these steps precisely:

1. Identify the most recent quarterly data and exclude annual figures or outdated quarterly records.
2. Cross-check every extracted value against the extracted PDF text provided below; the images alone are unreliable for dense numeric tables.
3. Duplicate field names are possible; include every occurrence, do not de-duplicate.
4. Extract the reporting currency correctly.
5. Preserve formatting attributes: section titles, bold rows, subcategories.
6. Maintain numerical accuracy and correct sign representation: negative amounts must be negative numbers in the output.

Extracted PDF text of the same pages:

`

// VertexClient holds the pre-configured generative models for the pipeline.
type VertexClient struct {
	ClassifierModel *genai.GenerativeModel
	FinancialModel  *genai.GenerativeModel
	baseClient      *genai.Client
}

// classifierSchema constrains the classifier output to
// {page_numbers, status, company_name}.
var classifierSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"page_numbers": {
			Type:        genai.TypeArray,
			Description: "1-based page numbers holding the consolidated income statement.",
			Items:       &genai.Schema{Type: genai.TypeNumber},
		},
		"status": {
			Type:        genai.TypeString,
			Description: "Indicates the relevance of the document.",
			Enum:        []string{"relevant", "not relevant"},
		},
		"company_name": {
			Type:        genai.TypeString,
			Description: "The name of the company associated with the document.",
		},
	},
	Required: []string{"page_numbers", "status", "company_name"},
}

// financialSchema constrains the extractor output to the normalized
// PnL document shape.
var financialSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"period":   {Type: genai.TypeString, Description: "The reporting period for the financial data."},
		"year":     {Type: genai.TypeString, Description: "The year of the financial report."},
		"currency": {Type: genai.TypeString, Description: "The currency used in the financial report."},
		"sections": {
			Type:        genai.TypeArray,
			Description: "The sections of the financial report, in display order.",
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title": {Type: genai.TypeString},
					"fields": {
						Type: genai.TypeArray,
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"label": {Type: genai.TypeString},
								"value": {Type: genai.TypeNumber},
								"bold":  {Type: genai.TypeBoolean},
							},
							Required: []string{"label", "value", "bold"},
						},
					},
				},
				Required: []string{"title", "fields"},
			},
		},
	},
	Required: []string{"period", "year", "currency", "sections"},
}

// NewVertexClient creates a new client holding both pipeline models.
func NewVertexClient(ctx context.Context, projectID, region, modelName string) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	classifierModel := baseClient.GenerativeModel(modelName)
	classifierModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(ClassifierSystemPrompt)},
	}
	configureJSONModel(classifierModel, classifierSchema)

	financialModel := baseClient.GenerativeModel(modelName)
	financialModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(FinancialSystemPrompt)},
	}
	configureJSONModel(financialModel, financialSchema)

	return &VertexClient{
		ClassifierModel: classifierModel,
		FinancialModel:  financialModel,
		baseClient:      baseClient,
	}, nil
}

// configureJSONModel applies the settings every schema-constrained model in
// this pipeline needs: forced JSON output, a low temperature for determinism,
// and safety thresholds that do not trip on financial statements.
func configureJSONModel(model *genai.GenerativeModel, schema *genai.Schema) {
	model.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
		Temperature:      genai.Ptr[float32](0.0),
	}
	model.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
	}
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}
