// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns the page text of a result document into
// StudentRecords: one record per page that carries a PRN, with the page's
// last SGPA and last status.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/result-parser/internal/logging"
	"github.com/pdiddy/result-parser/internal/pdftext"
	"github.com/pdiddy/result-parser/pkg/types"
)

// The character classes are Unicode: digits are any decimal digit (Nd),
// status words are letters, numbers and underscore, and the gap after
// "Status:" is any Unicode whitespace, including NBSP.
var (
	prnPattern    = regexp.MustCompile(`PRN No\.-(\p{Nd}+)`)
	sgpaPattern   = regexp.MustCompile(`SGPA:(\p{Nd}+\.\p{Nd}+)`)
	statusPattern = regexp.MustCompile(`Status:[\s\v\x1c-\x1f\x85\p{Z}]*([\p{L}\p{N}_]+)`)
)

// Options tunes a parse run.
type Options struct {
	// Normalize applies Unicode NFKC to page text before matching.
	Normalize bool

	// Logger receives per-page diagnostics. Nil discards them.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return logging.Discard()
	}
	return o.Logger
}

// ParsePage builds the record for one page of text. It reports false when
// the page has no PRN. SGPA and status are the last matches anywhere on
// the page; cumulative values are printed after per-subject ones.
func ParsePage(text string) (types.StudentRecord, bool, error) {
	prn := prnPattern.FindStringSubmatch(text)
	if prn == nil {
		return types.StudentRecord{}, false, nil
	}

	rec := types.StudentRecord{
		PRN:    prn[1],
		Status: types.StatusUnknown,
	}

	if m := sgpaPattern.FindAllStringSubmatch(text, -1); len(m) > 0 {
		raw := m[len(m)-1][1]
		sgpa, err := strconv.ParseFloat(asciiDigits(raw), 64)
		if err != nil {
			return types.StudentRecord{}, false, fmt.Errorf("parsing SGPA %q: %w", raw, err)
		}
		rec.SGPA = sgpa
	}

	if m := statusPattern.FindAllStringSubmatch(text, -1); len(m) > 0 {
		rec.Status = m[len(m)-1][1]
	}

	return rec, true, nil
}

// asciiDigits rewrites every Unicode decimal digit in s as its ASCII digit.
// Decimal digits are encoded in runs of ten starting at zero, so a digit's
// value is its offset from the start of its range modulo ten.
func asciiDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || !unicode.Is(unicode.Nd, r) {
			return r
		}
		for _, rg := range unicode.Nd.R16 {
			if r >= rune(rg.Lo) && r <= rune(rg.Hi) {
				return '0' + (r-rune(rg.Lo))%10
			}
		}
		for _, rg := range unicode.Nd.R32 {
			if r >= rune(rg.Lo) && r <= rune(rg.Hi) {
				return '0' + (r-rune(rg.Lo))%10
			}
		}
		return r
	}, s)
}

// Extract opens the document at path through src and parses every page in
// order. Any failure discards the records gathered so far. The document is
// closed before Extract returns.
func Extract(ctx context.Context, src pdftext.Source, path string, opts Options) (records []types.StudentRecord, err error) {
	log := opts.logger()

	defer func() {
		if r := recover(); r != nil {
			records, err = nil, fmt.Errorf("unexpected failure: %v", r)
		}
	}()

	doc, err := src.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer doc.Close()

	numPages := doc.NumPage()
	log.Debug("document opened", "path", path, "backend", src.Name(), "pages", numPages)

	records = []types.StudentRecord{}
	for n := 1; n <= numPages; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := doc.PageText(n)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", n, err)
		}
		if opts.Normalize {
			text = norm.NFKC.String(text)
		}
		if text == "" {
			log.Debug("page skipped", "page", n, "reason", "no text")
			continue
		}

		rec, ok, err := ParsePage(text)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", n, err)
		}
		if !ok {
			log.Debug("page skipped", "page", n, "reason", "no PRN")
			continue
		}

		log.Debug("record found", "page", n, "prn", rec.PRN, "sgpa", rec.SGPA, "status", rec.Status)
		records = append(records, rec)
	}

	log.Info("document parsed", "path", path, "pages", numPages, "records", len(records))
	return records, nil
}

// Outcome is the result of a parse run: the records, or the error that
// ended it. Exactly one of Records and Err is meaningful.
type Outcome struct {
	Records []types.StudentRecord
	Err     error
}

// Failed reports whether the run ended in an error.
func (o Outcome) Failed() bool { return o.Err != nil }

// Run calls Extract and folds its results into an Outcome.
func Run(ctx context.Context, src pdftext.Source, path string, opts Options) Outcome {
	records, err := Extract(ctx, src, path, opts)
	if err != nil {
		opts.logger().Warn("parse failed", "path", path, "error", err)
		return Outcome{Err: err}
	}
	return Outcome{Records: records}
}
