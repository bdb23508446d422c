// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/result-parser/pkg/types"
)

// Ledongthuc reads page text with github.com/ledongthuc/pdf, which decodes
// font-encoded glyphs into UTF-8.
type Ledongthuc struct{}

// NewLedongthuc returns the default Source.
func NewLedongthuc() *Ledongthuc { return &Ledongthuc{} }

func (*Ledongthuc) Name() string { return string(types.BackendLedongthuc) }

// Open opens path and parses the cross-reference table. The file is closed
// again if parsing fails.
func (*Ledongthuc) Open(path string) (_ Document, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			f.Close()
		}
	}()
	defer recoverPanic(&err)

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return nil, err
	}
	return &ledongthucDocument{file: f, reader: r}, nil
}

type ledongthucDocument struct {
	file   *os.File
	reader *pdf.Reader
}

func (d *ledongthucDocument) NumPage() int {
	return d.reader.NumPage()
}

func (d *ledongthucDocument) PageText(n int) (text string, err error) {
	defer recoverPanic(&err)

	page := d.reader.Page(n)
	if page.V.IsNull() {
		return "", nil
	}

	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("extracting text: %w", err)
	}
	return text, nil
}

func (d *ledongthucDocument) Close() error {
	return d.file.Close()
}
