// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package testutil holds helpers shared by tests across packages.
package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// BuildTextPDF returns a minimal, valid PDF with one page per element of
// pages. Each page shows its text with a Helvetica WinAnsi font; newlines
// in the text become separate lines (T* operator). An empty string yields
// a page with an empty text object.
func BuildTextPDF(pages ...string) []byte {
	// Objects: 1 catalog, 2 page tree, 3 font, then a page/content pair per page.
	numObjs := 3 + 2*len(pages)
	offsets := make([]int, numObjs+1)

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = strconv.Itoa(pageObj(i)) + " 0 R"
	}

	offsets[1] = b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	offsets[2] = b.Len()
	b.WriteString("2 0 obj\n<< /Type /Pages /Kids [" + strings.Join(kids, " ") +
		"] /Count " + strconv.Itoa(len(pages)) + " >>\nendobj\n")

	offsets[3] = b.Len()
	b.WriteString("3 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>\nendobj\n")

	for i, text := range pages {
		page, content := pageObj(i), pageObj(i)+1

		offsets[page] = b.Len()
		b.WriteString(strconv.Itoa(page) + " 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents " +
			strconv.Itoa(content) + " 0 R /Resources << /Font << /F1 3 0 R >> >> >>\nendobj\n")

		stream := contentStream(text)
		offsets[content] = b.Len()
		b.WriteString(strconv.Itoa(content) + " 0 obj\n<< /Length " + strconv.Itoa(len(stream)) + " >>\nstream\n")
		b.WriteString(stream)
		b.WriteString("\nendstream\nendobj\n")
	}

	xrefOffset := b.Len()
	b.WriteString("xref\n0 " + strconv.Itoa(numObjs+1) + "\n")
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i <= numObjs; i++ {
		b.WriteString(padOffset(offsets[i]))
		b.WriteString(" 00000 n \n")
	}
	b.WriteString("trailer\n<< /Size " + strconv.Itoa(numObjs+1) + " /Root 1 0 R >>\nstartxref\n")
	b.WriteString(strconv.Itoa(xrefOffset))
	b.WriteString("\n%%EOF\n")

	return []byte(b.String())
}

// WritePDF writes BuildTextPDF(pages...) to dir/name and returns the path.
func WritePDF(t *testing.T, dir, name string, pages ...string) string {
	t.Helper()
	return WriteFile(t, dir, name, BuildTextPDF(pages...))
}

// WriteFile writes data to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func pageObj(i int) int { return 4 + 2*i }

func contentStream(text string) string {
	var b strings.Builder
	b.WriteString("BT\n/F1 12 Tf\n14 TL\n72 720 Td\n")
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			b.WriteString("T*\n")
		}
		if line == "" {
			continue
		}
		b.WriteString("(" + escape(line) + ") Tj\n")
	}
	b.WriteString("ET")
	return b.String()
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "(", `\(`)
	return strings.ReplaceAll(s, ")", `\)`)
}

func padOffset(n int) string {
	s := strconv.Itoa(n)
	return strings.Repeat("0", 10-len(s)) + s
}
