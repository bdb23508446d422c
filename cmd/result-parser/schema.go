// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/result-parser/internal/output"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the parse output",
	Long: `Schema prints the JSON Schema (draft 2020-12) that every array written by
the parse command satisfies: either student records or a single error record.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := cmd.OutOrStdout().Write(output.Schema())
		return err
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
