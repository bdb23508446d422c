// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/result-parser/internal/pdftext"
	"github.com/pdiddy/result-parser/internal/testutil"
	"github.com/pdiddy/result-parser/pkg/types"
)

// fakeSource implements pdftext.Source over canned page texts.
type fakeSource struct {
	pages   []string
	openErr error
	pageErr map[int]error
	panicOn int

	opened int
	closed int
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Open(path string) (pdftext.Document, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.opened++
	return &fakeDocument{src: f}, nil
}

type fakeDocument struct {
	src *fakeSource
}

func (d *fakeDocument) NumPage() int { return len(d.src.pages) }

func (d *fakeDocument) PageText(n int) (string, error) {
	if d.src.panicOn == n {
		panic("corrupt page tree")
	}
	if err := d.src.pageErr[n]; err != nil {
		return "", err
	}
	return d.src.pages[n-1], nil
}

func (d *fakeDocument) Close() error {
	d.src.closed++
	return nil
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   types.StudentRecord
		wantOK bool
	}{
		{
			name:   "PRN only uses defaults",
			text:   "Savitribai Phule Pune University\nPRN No.-12345\nName: A Student",
			want:   types.StudentRecord{PRN: "12345", SGPA: 0.0, Status: "UNKNOWN"},
			wantOK: true,
		},
		{
			name:   "last SGPA and status win",
			text:   "PRN No.-98765\nSGPA:7.50\nSGPA:9.20\nStatus:PASS",
			want:   types.StudentRecord{PRN: "98765", SGPA: 9.2, Status: "PASS"},
			wantOK: true,
		},
		{
			name:   "no PRN yields no record",
			text:   "SGPA:8.00 Status:PASS",
			wantOK: false,
		},
		{
			name:   "first PRN is used",
			text:   "PRN No.-111 PRN No.-222 SGPA:6.10",
			want:   types.StudentRecord{PRN: "111", SGPA: 6.1, Status: "UNKNOWN"},
			wantOK: true,
		},
		{
			name:   "leading zeros preserved",
			text:   "PRN No.-0007200 Status: FAIL",
			want:   types.StudentRecord{PRN: "0007200", Status: "FAIL"},
			wantOK: true,
		},
		{
			name:   "whitespace after status colon spans lines",
			text:   "PRN No.-5\nStatus:\n  ATKT\nStatus:   PASS",
			want:   types.StudentRecord{PRN: "5", Status: "PASS"},
			wantOK: true,
		},
		{
			name:   "integer SGPA does not match",
			text:   "PRN No.-5 SGPA:9 SGPA:8.40 SGPA:10",
			want:   types.StudentRecord{PRN: "5", SGPA: 8.4, Status: "UNKNOWN"},
			wantOK: true,
		},
		{
			name:   "status before PRN still counts",
			text:   "Status:PASS\nSGPA:9.99\nPRN No.-42",
			want:   types.StudentRecord{PRN: "42", SGPA: 9.99, Status: "PASS"},
			wantOK: true,
		},
		{
			name:   "label without dash is not a PRN",
			text:   "PRN No. 12345 SGPA:7.00",
			wantOK: false,
		},
		{
			name:   "no-break space after status colon",
			text:   "PRN No.-42 SGPA:8.10 Status:\u00a0PASS",
			want:   types.StudentRecord{PRN: "42", SGPA: 8.1, Status: "PASS"},
			wantOK: true,
		},
		{
			name:   "ideographic and line separator spaces after status colon",
			text:   "PRN No.-43 Status:\u3000\u2028ATKT",
			want:   types.StudentRecord{PRN: "43", Status: "ATKT"},
			wantOK: true,
		},
		{
			name:   "accented status kept whole",
			text:   "PRN No.-1 Status:RÉUSSI",
			want:   types.StudentRecord{PRN: "1", Status: "RÉUSSI"},
			wantOK: true,
		},
		{
			name:   "Devanagari PRN kept verbatim",
			text:   "PRN No.-१२३ SGPA:7.50",
			want:   types.StudentRecord{PRN: "१२३", SGPA: 7.5, Status: "UNKNOWN"},
			wantOK: true,
		},
		{
			name:   "Arabic-Indic SGPA digits",
			text:   "PRN No.-5 SGPA:٨.٥٠",
			want:   types.StudentRecord{PRN: "5", SGPA: 8.5, Status: "UNKNOWN"},
			wantOK: true,
		},
		{
			name:   "full-width SGPA digits",
			text:   "PRN No.-6 SGPA:９.２５ Status:PASS",
			want:   types.StudentRecord{PRN: "6", SGPA: 9.25, Status: "PASS"},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := ParsePage(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestASCIIDigits(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "8.50", want: "8.50"},
		{in: "٨.٥٠", want: "8.50"},
		{in: "१०.००", want: "10.00"},
		{in: "৯.৭", want: "9.7"},
		{in: "９.２５", want: "9.25"},
		{in: "𝟕.𝟓", want: "7.5"},
		{in: "a-b", want: "a-b"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, asciiDigits(tt.in))
		})
	}
}

func TestParsePageSGPAOutOfRange(t *testing.T) {
	text := "PRN No.-1 SGPA:" + strings.Repeat("9", 400) + ".5"
	_, _, err := ParsePage(text)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing SGPA")
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		pages []string
		want  []types.StudentRecord
	}{
		{
			name:  "no pages",
			pages: nil,
			want:  []types.StudentRecord{},
		},
		{
			name:  "all pages empty",
			pages: []string{"", "", ""},
			want:  []types.StudentRecord{},
		},
		{
			name: "records follow page order and skip pages without PRN",
			pages: []string{
				"PRN No.-300 SGPA:6.00 Status:PASS",
				"Grade legend SGPA:1.00 Status:FAIL",
				"",
				"PRN No.-100 SGPA:8.10 SGPA:8.90 Status:FAIL Status:PASS",
			},
			want: []types.StudentRecord{
				{PRN: "300", SGPA: 6.0, Status: "PASS"},
				{PRN: "100", SGPA: 8.9, Status: "PASS"},
			},
		},
		{
			name: "no state carried between pages",
			pages: []string{
				"PRN No.-1 SGPA:9.00 Status:PASS",
				"PRN No.-2",
			},
			want: []types.StudentRecord{
				{PRN: "1", SGPA: 9.0, Status: "PASS"},
				{PRN: "2", SGPA: 0.0, Status: "UNKNOWN"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{pages: tt.pages}
			got, err := Extract(context.Background(), src, "results.pdf", Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, src.closed, "document must be closed")
		})
	}
}

func TestExtractFailures(t *testing.T) {
	tests := []struct {
		name      string
		src       *fakeSource
		ctx       func() context.Context
		wantErr   string
		wantClose int
	}{
		{
			name:    "open failure",
			src:     &fakeSource{openErr: errors.New("not a PDF file: invalid header")},
			wantErr: "opening results.pdf: not a PDF file: invalid header",
		},
		{
			name: "page extraction failure discards earlier records",
			src: &fakeSource{
				pages:   []string{"PRN No.-1", "PRN No.-2"},
				pageErr: map[int]error{2: errors.New("bad font")},
			},
			wantErr:   "page 2: bad font",
			wantClose: 1,
		},
		{
			name: "SGPA conversion failure",
			src: &fakeSource{
				pages: []string{"PRN No.-1 SGPA:" + strings.Repeat("9", 400) + ".0"},
			},
			wantErr:   "page 1: parsing SGPA",
			wantClose: 1,
		},
		{
			name:      "panic inside backend",
			src:       &fakeSource{pages: []string{"PRN No.-1"}, panicOn: 1},
			wantErr:   "unexpected failure: corrupt page tree",
			wantClose: 1,
		},
		{
			name: "cancelled context",
			src:  &fakeSource{pages: []string{"PRN No.-1"}},
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			wantErr:   context.Canceled.Error(),
			wantClose: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.ctx != nil {
				ctx = tt.ctx()
			}
			got, err := Extract(ctx, tt.src, "results.pdf", Options{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Nil(t, got)
			assert.Equal(t, tt.wantClose, tt.src.closed)
		})
	}
}

func TestExtractNormalize(t *testing.T) {
	// Full-width digits and colons as produced by some CJK-capable fonts.
	// The digits match as they are; the colons only after NFKC.
	page := "PRN No.-１２３ SGPA：８.５０ Status：PASS"

	plain, err := Extract(context.Background(), &fakeSource{pages: []string{page}}, "r.pdf", Options{})
	require.NoError(t, err)
	assert.Equal(t, []types.StudentRecord{{PRN: "１２３", SGPA: 0.0, Status: "UNKNOWN"}}, plain)

	normalized, err := Extract(context.Background(), &fakeSource{pages: []string{page}}, "r.pdf", Options{Normalize: true})
	require.NoError(t, err)
	assert.Equal(t, []types.StudentRecord{{PRN: "123", SGPA: 8.5, Status: "PASS"}}, normalized)
}

func TestRun(t *testing.T) {
	ok := Run(context.Background(), &fakeSource{pages: []string{"PRN No.-7"}}, "r.pdf", Options{})
	assert.False(t, ok.Failed())
	assert.Len(t, ok.Records, 1)

	failed := Run(context.Background(), &fakeSource{openErr: errors.New("boom")}, "r.pdf", Options{})
	assert.True(t, failed.Failed())
	assert.Nil(t, failed.Records)
}

func TestExtractRealPDF(t *testing.T) {
	path := testutil.WritePDF(t, t.TempDir(), "ledger.pdf",
		"PRN No.-72019001\nSGPA:7.50\nSGPA:9.20\nStatus:PASS",
		"Instructions to candidates",
		"PRN No.-72019002",
	)
	want := []types.StudentRecord{
		{PRN: "72019001", SGPA: 9.2, Status: "PASS"},
		{PRN: "72019002", SGPA: 0.0, Status: "UNKNOWN"},
	}

	for _, src := range []pdftext.Source{pdftext.NewLedongthuc(), pdftext.NewPdfcpu()} {
		t.Run(src.Name(), func(t *testing.T) {
			first, err := Extract(context.Background(), src, path, Options{})
			require.NoError(t, err)
			assert.Equal(t, want, first)

			second, err := Extract(context.Background(), src, path, Options{})
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestOptionsLogger(t *testing.T) {
	assert.False(t, Options{}.logger().Enabled(context.Background(), slog.LevelError),
		"nil logger must discard")

	var buf strings.Builder
	log := slog.New(slog.NewTextHandler(&buf, nil))
	assert.Same(t, log, Options{Logger: log}.logger())
}
