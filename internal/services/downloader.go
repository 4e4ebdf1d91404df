package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PDFDownloader fetches report PDFs over HTTP with a bounded timeout. The
// text extractor and the image renderer each fetch the source independently;
// the stages do not share state.
type PDFDownloader struct {
	client *http.Client
}

// NewPDFDownloader creates a downloader whose requests are cut off after
// the given timeout.
func NewPDFDownloader(timeout time.Duration) *PDFDownloader {
	return &PDFDownloader{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads the resource at pdfURL and returns its bytes. Every
// failure mode, including a non-2xx status, surfaces as a *DownloadError.
func (d *PDFDownloader) Fetch(ctx context.Context, pdfURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return nil, &DownloadError{URL: pdfURL, Err: err}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &DownloadError{URL: pdfURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &DownloadError{URL: pdfURL, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &DownloadError{URL: pdfURL, Err: err}
	}
	return content, nil
}
