package services

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/financialreportflow/internal/models"
)

// --- deterministic stage fakes ---

type fakeTexts struct {
	result *models.ExtractionResult
	err    error
}

func (f *fakeTexts) Extract(_ context.Context, _ string) (*models.ExtractionResult, error) {
	return f.result, f.err
}

type fakeClassifier struct {
	result   *models.PageClassification
	err      error
	gotPages []models.Page
}

func (f *fakeClassifier) Classify(_ context.Context, pages []models.Page) (*models.PageClassification, error) {
	f.gotPages = pages
	return f.result, f.err
}

type fakeImages struct {
	images   []models.PageImage
	err      error
	calls    int
	gotPages []int
}

func (f *fakeImages) Render(_ context.Context, _ string, pageNumbers []int) ([]models.PageImage, error) {
	f.calls++
	f.gotPages = pageNumbers
	return f.images, f.err
}

type fakeFinancials struct {
	doc      *models.FinancialDocument
	err      error
	gotPages []models.Page
}

func (f *fakeFinancials) Extract(_ context.Context, _ []models.PageImage, pages []models.Page) (*models.FinancialDocument, error) {
	f.gotPages = pages
	return f.doc, f.err
}

type fakeReports struct {
	err        error
	gotCompany string
}

func (f *fakeReports) Render(_ *models.FinancialDocument, outputPath, companyName string) error {
	f.gotCompany = companyName
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outputPath, []byte("%PDF-fake"), 0o600)
}

type fakeArtifacts struct {
	url   string
	err   error
	calls int
}

func (f *fakeArtifacts) Upload(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.url, f.err
}

type recordUpdate struct {
	recordID  string
	status    string
	reportURL string
}

type fakeRecords struct {
	err     error
	updates []recordUpdate
}

func (f *fakeRecords) UpdateStatus(_ context.Context, recordID, status, reportURL string) error {
	f.updates = append(f.updates, recordUpdate{recordID: recordID, status: status, reportURL: reportURL})
	return f.err
}

type pipelineFakes struct {
	texts      *fakeTexts
	classifier *fakeClassifier
	images     *fakeImages
	financials *fakeFinancials
	reports    *fakeReports
	artifacts  *fakeArtifacts
	records    *fakeRecords
}

func happyFakes() *pipelineFakes {
	return &pipelineFakes{
		texts: &fakeTexts{result: &models.ExtractionResult{
			Success: true,
			Pages: []models.Page{
				{PageNumber: 1, Content: "cover letter"},
				{PageNumber: 3, Content: "statement of profit or loss - group"},
				{PageNumber: 4, Content: "company income statements"},
				{PageNumber: 5, Content: "statement of profit or loss - group (cont.)"},
			},
		}},
		classifier: &fakeClassifier{result: &models.PageClassification{
			PageNumbers: []int{3, 5},
			Status:      models.ClassificationRelevant,
			CompanyName: "ABC Corp",
		}},
		images: &fakeImages{images: []models.PageImage{
			{PageNumber: 3, Base64JPEG: "aW1nMw=="},
			{PageNumber: 5, Base64JPEG: "aW1nNQ=="},
		}},
		financials: &fakeFinancials{doc: &models.FinancialDocument{
			Period:   "Three months ended 30 June",
			Year:     "2024",
			Currency: "LKR '000",
			Sections: []models.Section{{
				Title:  "Profit or Loss",
				Fields: []models.Field{{Label: "Revenue", Value: 980000}},
			}},
		}},
		reports:   &fakeReports{},
		artifacts: &fakeArtifacts{url: "https://storage.googleapis.com/reports/pl_reports/x.pdf"},
		records:   &fakeRecords{},
	}
}

func (p *pipelineFakes) pipeline() *WebhookFunction {
	return NewWebhookPipeline(p.texts, p.classifier, p.images, p.financials, p.reports, p.artifacts, p.records)
}

func request(id string) *models.WebhookRequest {
	return &models.WebhookRequest{Record: models.WebhookRecord{
		ID:        json.Number(id),
		CSEReport: "https://reports.example.com/670.pdf",
	}}
}

func TestProcessSuccess(t *testing.T) {
	fakes := happyFakes()
	resp, statusCode := fakes.pipeline().Process(context.Background(), request("670"))

	assert.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, models.StatusSuccess, resp.Status)

	// The classifier sees every extracted page; rendering and financial
	// extraction see only the selected ones.
	assert.Len(t, fakes.classifier.gotPages, 4)
	assert.Equal(t, []int{3, 5}, fakes.images.gotPages)
	require.Len(t, fakes.financials.gotPages, 2)
	assert.Equal(t, 3, fakes.financials.gotPages[0].PageNumber)
	assert.Equal(t, 5, fakes.financials.gotPages[1].PageNumber)

	assert.Equal(t, "ABC Corp", fakes.reports.gotCompany)

	// Exactly one terminal record update, carrying the public URL.
	require.Len(t, fakes.records.updates, 1)
	assert.Equal(t, recordUpdate{
		recordID:  "670",
		status:    models.RecordStatusSuccess,
		reportURL: fakes.artifacts.url,
	}, fakes.records.updates[0])
}

func TestProcessNotRelevant(t *testing.T) {
	fakes := happyFakes()
	fakes.classifier.result = &models.PageClassification{Status: models.ClassificationNotRelevant}

	resp, statusCode := fakes.pipeline().Process(context.Background(), request("670"))

	// Benign outcome: HTTP 200, no images rendered, record marked error.
	assert.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, models.StatusNotRelevant, resp.Status)
	assert.Zero(t, fakes.images.calls)
	assert.Zero(t, fakes.artifacts.calls)
	require.Len(t, fakes.records.updates, 1)
	assert.Equal(t, models.RecordStatusError, fakes.records.updates[0].status)
	assert.Empty(t, fakes.records.updates[0].reportURL)
}

func TestProcessDownloadFailure(t *testing.T) {
	fakes := happyFakes()
	fakes.texts.result = nil
	fakes.texts.err = &DownloadError{URL: "https://reports.example.com/670.pdf"}

	resp, statusCode := fakes.pipeline().Process(context.Background(), request("670"))

	assert.Equal(t, http.StatusInternalServerError, statusCode)
	assert.Equal(t, models.StatusError, resp.Status)
	require.Len(t, fakes.records.updates, 1)
	assert.Equal(t, models.RecordStatusError, fakes.records.updates[0].status)
}

func TestProcessNoTextExtracted(t *testing.T) {
	fakes := happyFakes()
	fakes.texts.result = &models.ExtractionResult{Success: false, Message: "No text extracted."}

	resp, statusCode := fakes.pipeline().Process(context.Background(), request("670"))

	assert.Equal(t, http.StatusInternalServerError, statusCode)
	assert.Equal(t, models.StatusError, resp.Status)
	assert.Zero(t, fakes.images.calls)
}

func TestProcessPageRangeFailure(t *testing.T) {
	fakes := happyFakes()
	fakes.images.images = nil
	fakes.images.err = &PageRangeError{Pages: []int{12}, TotalPages: 8}

	resp, statusCode := fakes.pipeline().Process(context.Background(), request("670"))

	assert.Equal(t, http.StatusInternalServerError, statusCode)
	assert.Equal(t, models.StatusError, resp.Status)
	require.Len(t, fakes.records.updates, 1)
	assert.Equal(t, models.RecordStatusError, fakes.records.updates[0].status)
}

func TestProcessUploadFailureNeverRecordsSuccess(t *testing.T) {
	fakes := happyFakes()
	fakes.artifacts.url = ""
	fakes.artifacts.err = &DownloadError{URL: "gs://reports", Err: nil}

	resp, statusCode := fakes.pipeline().Process(context.Background(), request("670"))

	assert.Equal(t, http.StatusInternalServerError, statusCode)
	assert.Equal(t, models.StatusError, resp.Status)
	require.Len(t, fakes.records.updates, 1)
	assert.Equal(t, models.RecordStatusError, fakes.records.updates[0].status)
	assert.Empty(t, fakes.records.updates[0].reportURL)
}

func TestProcessRecordUpdateFailureIsSwallowed(t *testing.T) {
	fakes := happyFakes()
	fakes.records.err = assert.AnError

	resp, statusCode := fakes.pipeline().Process(context.Background(), request("670"))

	// The datastore hiccup must not override the primary outcome.
	assert.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, models.StatusSuccess, resp.Status)
}

func TestProcessMissingRecordFields(t *testing.T) {
	fakes := happyFakes()

	resp, statusCode := fakes.pipeline().Process(context.Background(), &models.WebhookRequest{})

	assert.Equal(t, http.StatusBadRequest, statusCode)
	assert.Equal(t, models.StatusError, resp.Status)
	assert.Empty(t, fakes.records.updates)
}

func TestFilterPages(t *testing.T) {
	pages := []models.Page{
		{PageNumber: 1, Content: "a"},
		{PageNumber: 3, Content: "b"},
		{PageNumber: 5, Content: "c"},
	}

	filtered := filterPages(pages, []int{5, 3})
	require.Len(t, filtered, 2)
	assert.Equal(t, 3, filtered[0].PageNumber)
	assert.Equal(t, 5, filtered[1].PageNumber)

	assert.Empty(t, filterPages(pages, []int{2}))
}
