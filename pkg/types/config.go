// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PDFBackend identifies the library used to read page text.
type PDFBackend string

const (
	BackendLedongthuc PDFBackend = "ledongthuc"
	BackendPdfcpu     PDFBackend = "pdfcpu"
)

// ParserConfig holds settings for the parse command.
type ParserConfig struct {
	// Backend selects the PDF text library: ledongthuc (default) or pdfcpu.
	Backend PDFBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Normalize applies Unicode NFKC to page text before matching.
	Normalize bool `json:"normalize" yaml:"normalize" mapstructure:"normalize"`
}

// LedgerConfig holds settings for the results ledger.
type LedgerConfig struct {
	// Dir is the directory holding results.db (default "ledger").
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
}

// LogConfig controls diagnostic output on stderr.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default warn).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is text (default) or json.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups the configuration of every command.
type Config struct {
	Parser ParserConfig `json:"parser" yaml:"parser" mapstructure:"parser"`
	Ledger LedgerConfig `json:"ledger" yaml:"ledger" mapstructure:"ledger"`
	Log    LogConfig    `json:"log" yaml:"log" mapstructure:"log"`
}
