// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/result-parser/internal/extract"
	"github.com/pdiddy/result-parser/internal/logging"
	"github.com/pdiddy/result-parser/internal/output"
	"github.com/pdiddy/result-parser/internal/pdftext"
	"github.com/pdiddy/result-parser/pkg/types"
)

func init() {
	rootCmd.Flags().String("backend", string(types.BackendLedongthuc), "PDF text library: ledongthuc or pdfcpu")
	rootCmd.Flags().Bool("normalize", false, "apply Unicode NFKC to page text before matching")

	_ = viper.BindPFlag("parser.backend", rootCmd.Flags().Lookup("backend"))
	_ = viper.BindPFlag("parser.normalize", rootCmd.Flags().Lookup("normalize"))
}

// runParse extracts records from the PDF named by args[0]. Every failure is
// written to stdout as an error array and the command itself succeeds.
// Arguments after the first are ignored.
func runParse(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		return output.WriteError(out, output.ErrNoInput)
	}

	cfg, err := loadConfig()
	if err != nil {
		return output.WriteError(out, err)
	}
	log := logging.New(cfg.Log, cmd.ErrOrStderr())
	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("using config file", "path", used)
	}

	src, err := pdftext.NewSource(cfg.Parser.Backend)
	if err != nil {
		return output.WriteError(out, err)
	}
	log.Debug("parsing", "path", args[0], "backend", src.Name(), "normalize", cfg.Parser.Normalize)

	outcome := extract.Run(cmd.Context(), src, args[0], extract.Options{
		Normalize: cfg.Parser.Normalize,
		Logger:    log,
	})
	return output.Write(out, outcome)
}
