// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pdiddy/result-parser/pkg/types"
)

var disableConfigDir sync.Once

// Pdfcpu reads page text by decoding each page's content stream with
// pdfcpu and recovering the shown strings (see StreamText).
type Pdfcpu struct {
	conf *model.Configuration
}

// NewPdfcpu returns a Source backed by pdfcpu. pdfcpu's user config
// directory is disabled so that opening a document never writes to $HOME.
func NewPdfcpu() *Pdfcpu {
	disableConfigDir.Do(api.DisableConfigDir)
	return &Pdfcpu{conf: model.NewDefaultConfiguration()}
}

func (*Pdfcpu) Name() string { return string(types.BackendPdfcpu) }

// Open reads, validates and optimizes the document at path.
func (p *Pdfcpu) Open(path string) (_ Document, err error) {
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

	ctx, err := api.ReadValidateAndOptimize(f, p.conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	return &pdfcpuDocument{file: f, ctx: ctx}, nil
}

type pdfcpuDocument struct {
	file *os.File
	ctx  *model.Context
}

func (d *pdfcpuDocument) NumPage() int {
	return d.ctx.PageCount
}

func (d *pdfcpuDocument) PageText(n int) (text string, err error) {
	defer recoverPanic(&err)

	r, err := pdfcpu.ExtractPageContent(d.ctx, n)
	if err != nil {
		return "", fmt.Errorf("extracting content stream: %w", err)
	}
	if r == nil {
		return "", nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading content stream: %w", err)
	}
	return StreamText(data), nil
}

func (d *pdfcpuDocument) Close() error {
	return d.file.Close()
}
