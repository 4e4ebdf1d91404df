package services

import (
	"fmt"
)

// The pipeline's failure taxonomy. Each stage returns one of these typed
// conditions; the webhook function is the single place that converts them
// into an HTTP response and a best-effort record status update.

// DownloadError reports a failure to fetch the source PDF over the network
// (transport error, timeout, or a non-2xx response). It is distinct from
// ParseError: the bytes never arrived.
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("failed to download PDF from %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// ParseError reports that the downloaded byte stream is not a usable PDF.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid PDF document: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError reports a model response that violates the agreed output
// schema. No partial or guessed data is ever substituted for it.
type SchemaError struct {
	Stage string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s returned a schema-violating response: %v", e.Stage, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// PageRangeError reports requested page numbers outside [1, TotalPages].
// The render call fails as a whole; partial image sets would make the
// downstream financial extraction unreliable.
type PageRangeError struct {
	Pages      []int
	TotalPages int
}

func (e *PageRangeError) Error() string {
	return fmt.Sprintf("invalid page numbers %v: PDF has %d pages", e.Pages, e.TotalPages)
}
