package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/financialreportflow/internal/models"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{name: "positive with separators", value: 980000, want: "980,000"},
		{name: "negative in parentheses", value: -1250000, want: "(1,250,000)"},
		{name: "zero", value: 0, want: "0"},
		{name: "small value", value: 42, want: "42"},
		{name: "fractional", value: 1234.56, want: "1,234.56"},
		{name: "negative fractional", value: -0.5, want: "(0.5)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(tt.value))
		})
	}
}

func testDocument() *models.FinancialDocument {
	return &models.FinancialDocument{
		Period:   "Three months ended 30 June",
		Year:     "2024",
		Currency: "LKR '000",
		Sections: []models.Section{
			{
				Title: "Profit or Loss",
				Fields: []models.Field{
					{Label: "Revenue", Value: 980000},
					{Label: "Cost of Sales", Value: -450000},
					{Label: "Net Profit", Value: -1250000, Bold: true},
				},
			},
			{
				Title: "Earnings Per Share",
				Fields: []models.Field{
					{Label: "Basic", Value: 1.25},
				},
			},
		},
	}
}

func TestRenderWritesPDF(t *testing.T) {
	renderer := NewPnLReportRenderer()
	outputPath := filepath.Join(t.TempDir(), "output-report.pdf")

	err := renderer.Render(testDocument(), outputPath, "ABC Corp")
	require.NoError(t, err)

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	require.NotEmpty(t, content)
	assert.Equal(t, "%PDF", string(content[:4]))
}

func TestRenderDefaultsCompanyName(t *testing.T) {
	renderer := NewPnLReportRenderer()
	outputPath := filepath.Join(t.TempDir(), "output-report.pdf")

	err := renderer.Render(testDocument(), outputPath, "")
	require.NoError(t, err)

	_, err = os.Stat(outputPath)
	assert.NoError(t, err)
}

func TestRenderRejectsMalformedDocument(t *testing.T) {
	renderer := NewPnLReportRenderer()
	outputPath := filepath.Join(t.TempDir(), "output-report.pdf")

	err := renderer.Render(nil, outputPath, "ABC Corp")
	assert.Error(t, err)

	missingCurrency := testDocument()
	missingCurrency.Currency = ""
	err = renderer.Render(missingCurrency, outputPath, "ABC Corp")
	assert.Error(t, err)

	noSections := testDocument()
	noSections.Sections = nil
	err = renderer.Render(noSections, outputPath, "ABC Corp")
	assert.Error(t, err)

	// Nothing half-rendered may be left behind for upload.
	_, statErr := os.Stat(outputPath)
	assert.True(t, os.IsNotExist(statErr))
}
