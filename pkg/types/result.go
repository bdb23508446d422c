// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for result-parser: the
// records emitted by the parse command, the rows kept by the ledger, and
// the configuration of each stage.
package types

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

const (
	// StatusUnknown is reported when a page carries no status token.
	StatusUnknown = "UNKNOWN"

	// NoFileProvided is the error message emitted when no path is given.
	NoFileProvided = "No file provided"
)

// StudentRecord is one student's result as found on a single page of a
// result document.
type StudentRecord struct {
	// PRN is the Permanent Registration Number, kept verbatim as the digit
	// sequence printed on the page (leading zeros preserved).
	PRN string `json:"prn" yaml:"prn"`

	// SGPA is the last SGPA value printed on the page, or 0.0 when the page
	// shows none.
	SGPA float64 `json:"sgpa" yaml:"sgpa"`

	// Status is the last status token printed on the page (e.g. "PASS"),
	// or StatusUnknown.
	Status string `json:"status" yaml:"status"`
}

// MarshalJSON writes sgpa with a decimal point even for whole values
// ("0.0", "10.0") so consumers that type numbers by their literal always
// see a floating-point score.
func (r StudentRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		PRN    string      `json:"prn"`
		SGPA   json.Number `json:"sgpa"`
		Status string      `json:"status"`
	}{r.PRN, FormatScore(r.SGPA), r.Status})
}

// FormatScore formats f the way encoding/json does, appending ".0" when the
// result has neither a fraction nor an exponent.
func FormatScore(f float64) json.Number {
	b, err := json.Marshal(f)
	if err != nil {
		// NaN and infinities; json.Number rejects this literal when marshaled.
		return json.Number(strconv.FormatFloat(f, 'g', -1, 64))
	}
	s := string(b)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return json.Number(s)
}

// ErrorRecord is the single element of the array emitted when parsing fails.
type ErrorRecord struct {
	Error string `json:"error" yaml:"error"`
}

// ExamResult is a StudentRecord stored in the ledger for one exam session.
type ExamResult struct {
	PRN    string  `json:"prn" yaml:"prn"`
	SGPA   float64 `json:"sgpa" yaml:"sgpa"`
	Status string  `json:"status" yaml:"status"`

	// ExamSession names the examination the result belongs to (e.g. "2025-WINTER").
	ExamSession string `json:"exam_session" yaml:"exam_session"`

	// ResultDate is the date the result was declared.
	ResultDate time.Time `json:"result_date" yaml:"result_date"`

	// SourcePDF is the document the parse output was produced from, if known.
	SourcePDF string `json:"source_pdf,omitempty" yaml:"source_pdf,omitempty"`

	// BatchID identifies the ledger import that last wrote this row.
	BatchID string `json:"batch_id" yaml:"batch_id"`
}

// StudentSummary aggregates the ledger results of one student. CGPA is the
// mean of all SGPAs, rounded to two decimals.
type StudentSummary struct {
	PRN     string       `json:"prn" yaml:"prn"`
	Exams   int          `json:"exams" yaml:"exams"`
	CGPA    float64      `json:"cgpa" yaml:"cgpa"`
	Results []ExamResult `json:"results,omitempty" yaml:"results,omitempty"`
}
