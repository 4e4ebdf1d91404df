package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"
	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/financialreportflow/internal/models"
)

// jpegQuality balances payload size against the legibility the vision model
// needs for dense numeric tables.
const jpegQuality = 85

// ImageRenderer rasterizes selected report pages into base64-encoded JPEGs
// for the vision model.
type ImageRenderer interface {
	Render(ctx context.Context, pdfURL string, pageNumbers []int) ([]models.PageImage, error)
}

// FitzRenderer implements ImageRenderer on MuPDF. It re-downloads the source
// PDF rather than sharing bytes with the text extractor; the stages are
// independent and the second fetch keeps them that way.
type FitzRenderer struct {
	downloader *PDFDownloader
	dpi        float64
	dumpDir    string
}

// NewFitzRenderer creates a renderer rasterizing at the given DPI. When
// dumpDir is non-empty, a diagnostic copy of every rendered JPEG is written
// there; dump failures are logged and never fail the render.
func NewFitzRenderer(downloader *PDFDownloader, dpi float64, dumpDir string) *FitzRenderer {
	return &FitzRenderer{downloader: downloader, dpi: dpi, dumpDir: dumpDir}
}

// Render fetches the PDF and rasterizes exactly the requested 1-based pages.
// Any page outside [1, total] fails the whole call with a *PageRangeError;
// partial image sets are never returned.
func (r *FitzRenderer) Render(ctx context.Context, pdfURL string, pageNumbers []int) ([]models.PageImage, error) {
	if len(pageNumbers) == 0 {
		return nil, fmt.Errorf("no target pages provided")
	}

	content, err := r.downloader.Fetch(ctx, pdfURL)
	if err != nil {
		return nil, err
	}

	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	defer doc.Close()

	if err := validatePageNumbers(doc.NumPage(), pageNumbers); err != nil {
		return nil, err
	}

	images := make([]models.PageImage, 0, len(pageNumbers))
	raw := make([][]byte, 0, len(pageNumbers))
	for _, pageNumber := range pageNumbers {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		img, err := doc.ImageDPI(pageNumber-1, r.dpi)
		if err != nil {
			return nil, fmt.Errorf("failed to rasterize page %d: %w", pageNumber, err)
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, fmt.Errorf("failed to encode page %d as JPEG: %w", pageNumber, err)
		}

		images = append(images, models.PageImage{
			PageNumber: pageNumber,
			Base64JPEG: base64.StdEncoding.EncodeToString(buf.Bytes()),
		})
		raw = append(raw, buf.Bytes())
	}

	if r.dumpDir != "" {
		r.dumpImages(ctx, pageNumbers, raw)
	}

	slog.Info("Rendered report pages.", "pageCount", len(images), "dpi", r.dpi)
	return images, nil
}

// validatePageNumbers checks every requested page against the document's
// page count and collects all offenders into one error.
func validatePageNumbers(totalPages int, pageNumbers []int) error {
	var invalid []int
	for _, p := range pageNumbers {
		if p < 1 || p > totalPages {
			invalid = append(invalid, p)
		}
	}
	if len(invalid) > 0 {
		return &PageRangeError{Pages: invalid, TotalPages: totalPages}
	}
	return nil
}

// dumpImages writes diagnostic JPEG copies with bounded concurrency. This is
// never required for correctness, so failures only log.
func (r *FitzRenderer) dumpImages(ctx context.Context, pageNumbers []int, raw [][]byte) {
	if err := os.MkdirAll(r.dumpDir, 0o755); err != nil {
		slog.Warn("Failed to create image dump directory.", "path", r.dumpDir, "error", err)
		return
	}

	eg, _ := errgroup.WithContext(ctx)
	eg.SetLimit(4)
	for i, pageNumber := range pageNumbers {
		path := filepath.Join(r.dumpDir, fmt.Sprintf("page_%d.jpg", pageNumber))
		data := raw[i]
		eg.Go(func() error {
			return os.WriteFile(path, data, 0o644)
		})
	}
	if err := eg.Wait(); err != nil {
		slog.Warn("Failed to write one or more diagnostic images.", "path", r.dumpDir, "error", err)
	}
}
