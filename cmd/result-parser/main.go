// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the result-parser CLI.
//
// The root command parses one PDF result document and prints exactly one
// JSON array on stdout. The ledger subcommands store that output per exam
// session and report CGPA.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/result-parser/internal/output"
	"github.com/pdiddy/result-parser/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// configErr holds a failure to read the config file. It is reported by the
// command that needs the configuration rather than by cobra.
var configErr error

// rootCmd parses a result document. Subcommands are added in their own files.
var rootCmd = &cobra.Command{
	Use:   "result-parser [file.pdf]",
	Short: "Extract student results (PRN, SGPA, status) from PDF result documents",
	Long: `result-parser reads the text of every page of a PDF result document and
prints one JSON array on stdout: a record {"prn", "sgpa", "status"} for each
page that carries a PRN, or a single {"error": ...} record when the document
cannot be parsed. The output is always valid JSON and the exit status is 0.

The ledger subcommands import that output into a local SQLite ledger keyed by
exam session, report CGPA per student and export the ledger.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runParse,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./result-parser.yaml or ~/.config/result-parser/result-parser.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "diagnostic log level on stderr: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "diagnostic log format: text or json")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	configErr = nil

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("result-parser")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "result-parser"))
		}
	}

	viper.SetDefault("parser.backend", string(types.BackendLedongthuc))
	viper.SetDefault("ledger.dir", "ledger")

	viper.SetEnvPrefix("RESULT_PARSER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			configErr = fmt.Errorf("reading config file: %w", err)
		}
	}
}

// loadConfig returns the merged configuration of defaults, config file,
// environment and flags.
func loadConfig() (types.Config, error) {
	if configErr != nil {
		return types.Config{}, configErr
	}
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// run executes the CLI and returns the process exit code. A failure of the
// root command, including a flag error, is written as a JSON error array
// on stdout with exit code 0; subcommand failures go to stderr with 1.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if args == nil {
		args = []string{}
	}
	rootCmd.SetArgs(documentArgs(args))
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	cmd, err := rootCmd.ExecuteContextC(ctx)
	if err == nil {
		return 0
	}
	if cmd == rootCmd {
		if werr := output.WriteError(stdout, err); werr != nil {
			fmt.Fprintln(stderr, "Error:", werr)
			return 1
		}
		return 0
	}
	fmt.Fprintln(stderr, "Error:", err)
	return 1
}

// documentArgs keeps an existing file on the parse path when its name
// would otherwise be read as a subcommand or a flag ("version", "--help").
// Such a relative path is rewritten with a leading "./", which names the
// same file and is neither.
func documentArgs(args []string) []string {
	if len(args) == 0 || !reservedArg(args[0]) {
		return args
	}
	info, err := os.Stat(args[0])
	if err != nil || info.IsDir() {
		return args
	}
	out := make([]string, 0, len(args))
	out = append(out, "."+string(filepath.Separator)+args[0])
	return append(out, args[1:]...)
}

func reservedArg(arg string) bool {
	if strings.HasPrefix(arg, "-") {
		return true
	}
	switch arg {
	case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return true
	}
	for _, c := range rootCmd.Commands() {
		if c.Name() == arg || c.HasAlias(arg) {
			return true
		}
	}
	return false
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
