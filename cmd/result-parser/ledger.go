// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/result-parser/internal/ledger"
	"github.com/pdiddy/result-parser/internal/output"
	"github.com/pdiddy/result-parser/pkg/types"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Manage the results ledger (import, show, export)",
	Long: `Ledger keeps a local SQLite database of parse output keyed by PRN and exam
session. Import stores one parse run, show reports a student's results and
CGPA, and export writes the ledger as YAML, JSON or an XLSX workbook.`,
}

// --- import subcommand ---

var ledgerImportCmd = &cobra.Command{
	Use:   "import <parse-output.json|->",
	Short: "Store parse output in the ledger under an exam session",
	Long: `Import reads a JSON array written by the parse command (use - for stdin),
validates it against the output schema and stores its records as one batch.
An error array is refused. A PRN that already has a result for the session
is replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: runLedgerImport,
}

func runLedgerImport(cmd *cobra.Command, args []string) error {
	session, _ := cmd.Flags().GetString("session")
	dateStr, _ := cmd.Flags().GetString("date")
	source, _ := cmd.Flags().GetString("source")

	var resultDate time.Time
	if dateStr != "" {
		d, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", dateStr)
		}
		resultDate = d
	}

	data, err := readInput(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}
	records, err := output.Decode(data)
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	store, err := openLedger()
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Import(cmd.Context(), ledger.ImportBatch{
		Session:    session,
		ResultDate: resultDate,
		SourcePDF:  source,
		Records:    records,
	})
	if err != nil {
		return err
	}
	ledger.WriteSummary(cmd.OutOrStdout(), session, summary)
	return nil
}

func readInput(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

// --- show subcommand ---

var ledgerShowCmd = &cobra.Command{
	Use:   "show <prn>",
	Short: "Show a student's results and CGPA",
	Args:  cobra.ExactArgs(1),
	RunE:  runLedgerShow,
}

func runLedgerShow(cmd *cobra.Command, args []string) error {
	store, err := openLedger()
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Summary(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatShowOutput(cmd.OutOrStdout(), summary, jsonOutput)
}

func formatShowOutput(w io.Writer, sum types.StudentSummary, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}

	fmt.Fprintf(w, "PRN %s\n\n", sum.PRN)
	fmt.Fprintf(w, "%-14s  %-10s  %-6s  %s\n", "Session", "Date", "SGPA", "Status")
	fmt.Fprintln(w, strings.Repeat("-", 44))
	for _, r := range sum.Results {
		fmt.Fprintf(w, "%-14s  %-10s  %6.2f  %s\n",
			r.ExamSession, r.ResultDate.Format("2006-01-02"), r.SGPA, r.Status)
	}
	fmt.Fprintf(w, "\n%d result(s), CGPA %.2f\n", sum.Exams, sum.CGPA)
	return nil
}

// --- export subcommand ---

var ledgerExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the ledger to YAML, JSON or XLSX",
	Long: `Export writes every result in the ledger, or one session's results with
--session, to stdout or to --out. The xlsx format writes a workbook with a
Results sheet and a CGPA sheet.`,
	Args: cobra.NoArgs,
	RunE: runLedgerExport,
}

func runLedgerExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	session, _ := cmd.Flags().GetString("session")
	outPath, _ := cmd.Flags().GetString("out")

	store, err := openLedger()
	if err != nil {
		return err
	}
	defer store.Close()

	w := cmd.OutOrStdout()
	if outPath != "" && outPath != "-" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outPath, err)
		}
		if err := store.Export(cmd.Context(), format, session, f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", outPath, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported ledger to %s\n", outPath)
		return nil
	}
	return store.Export(cmd.Context(), format, session, w)
}

// openLedger opens the store at the configured ledger directory.
func openLedger() (*ledger.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return ledger.NewStore(cfg.Ledger)
}

func init() {
	ledgerCmd.PersistentFlags().String("dir", "ledger", "directory holding results.db")
	_ = viper.BindPFlag("ledger.dir", ledgerCmd.PersistentFlags().Lookup("dir"))

	ledgerImportCmd.Flags().String("session", "", "exam session the results belong to, e.g. 2025-WINTER (required)")
	ledgerImportCmd.Flags().String("date", "", "result declaration date, YYYY-MM-DD (default today)")
	ledgerImportCmd.Flags().String("source", "", "PDF the parse output came from")
	_ = ledgerImportCmd.MarkFlagRequired("session")

	ledgerShowCmd.Flags().Bool("json", false, "output as JSON")

	ledgerExportCmd.Flags().String("format", ledger.FormatYAML, "export format: yaml, json or xlsx")
	ledgerExportCmd.Flags().String("session", "", "export only this exam session")
	ledgerExportCmd.Flags().String("out", "", "output file (default stdout)")

	ledgerCmd.AddCommand(ledgerImportCmd)
	ledgerCmd.AddCommand(ledgerShowCmd)
	ledgerCmd.AddCommand(ledgerExportCmd)
	rootCmd.AddCommand(ledgerCmd)
}
