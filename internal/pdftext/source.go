// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext opens PDF documents and returns the plain text of each
// page in document order. Backends (ledongthuc/pdf, pdfcpu) implement
// Source; the extractor depends only on the interfaces.
package pdftext

import (
	"fmt"

	"github.com/pdiddy/result-parser/pkg/types"
)

// Source opens PDF documents.
type Source interface {
	// Name returns the backend name.
	Name() string

	// Open acquires the document at path. The caller must Close it.
	Open(path string) (Document, error)
}

// Document is an open PDF whose pages are read by 1-based number.
type Document interface {
	// NumPage returns the number of pages.
	NumPage() int

	// PageText returns the plain text of page n. A page without text
	// yields "" and a nil error.
	PageText(n int) (string, error)

	// Close releases the underlying file.
	Close() error
}

// NewSource returns the Source for backend. An empty backend selects
// ledongthuc.
func NewSource(backend types.PDFBackend) (Source, error) {
	switch backend {
	case types.BackendLedongthuc, "":
		return NewLedongthuc(), nil
	case types.BackendPdfcpu:
		return NewPdfcpu(), nil
	default:
		return nil, fmt.Errorf("unsupported PDF backend %q: use %s or %s",
			backend, types.BackendLedongthuc, types.BackendPdfcpu)
	}
}

// recoverPanic turns a panic raised inside a PDF library into an error.
// Both libraries panic on some malformed object graphs.
func recoverPanic(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("malformed PDF: %v", r)
	}
}
