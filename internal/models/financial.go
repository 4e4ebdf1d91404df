package models

// Page is a single page of text extracted from a CSE report PDF.
// PageNumber is 1-based.
type Page struct {
	PageNumber int    `json:"page_number"`
	Content    string `json:"content"`
}

// ExtractionResult is the outcome of per-page text extraction. A PDF with no
// extractable text (e.g. a scanned report) yields Success=false with an
// explanatory Message rather than an error; callers must check the flag.
type ExtractionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Pages   []Page `json:"data"`
}

// Classification statuses returned by the page classifier model.
const (
	ClassificationRelevant    = "relevant"
	ClassificationNotRelevant = "not relevant"
)

// PageClassification is the classifier model's verdict on a report: which
// pages carry the consolidated (group) income statement, whether the document
// is a recognizable financial report at all, and the company it belongs to.
type PageClassification struct {
	PageNumbers []int  `json:"page_numbers"`
	Status      string `json:"status"`
	CompanyName string `json:"company_name"`
}

// Relevant reports whether the classifier found consolidated statement pages.
func (c *PageClassification) Relevant() bool {
	return c.Status == ClassificationRelevant && len(c.PageNumbers) > 0
}

// PageImage is a rasterized report page ready for a vision model. The payload
// is a base64-encoded JPEG; it lives only for the duration of one pipeline run.
type PageImage struct {
	PageNumber int
	Base64JPEG string
}

// FinancialDocument is the normalized PnL statement produced by the financial
// extractor model. Section and field order is display order, preserved from
// the source report's layout.
type FinancialDocument struct {
	Period   string    `json:"period"`
	Year     string    `json:"year"`
	Currency string    `json:"currency"`
	Sections []Section `json:"sections"`
}

// Section is one titled block of the statement.
type Section struct {
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// Field is a single labeled figure. Value keeps its sign; rendering negatives
// in parentheses is a presentation concern. Duplicate labels are legal and
// must be preserved.
type Field struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Bold  bool    `json:"bold"`
}
