// Package cli provides the sqlfp command-line interface.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mstute/sqlfp"
	"github.com/mstute/sqlfp/internal/logging"
	"github.com/spf13/cobra"
)

var (
	dialectFlag     string
	placeholderFlag string
	jsonFlag        bool
	logLevelFlag    string
	log             *logging.Logger
)

// Execute builds and runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sqlfp [sql]",
		Short: "Fingerprint a SQL statement",
		Long: `sqlfp parses a SQL statement, strips everything that doesn't change
its meaning (literal values, whitespace, comments, redundant parentheses,
optional keyword spelling), and prints the canonical form and its SHA-256
fingerprint.

sql is read from the first positional argument, or from stdin when omitted.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			log, err = logging.New(logLevelFlag, "console")
			return err
		},
		RunE: runFingerprint,
	}

	root.PersistentFlags().StringVarP(&dialectFlag, "dialect", "d", "ansi", "SQL dialect (postgres, mysql, sqlite, ansi, mssql, oracle)")
	root.PersistentFlags().StringVarP(&placeholderFlag, "placeholder", "p", "?", "placeholder text substituted for literals")
	root.PersistentFlags().BoolVar(&jsonFlag, "json", false, "emit the full result as JSON")
	root.PersistentFlags().StringVar(&logLevelFlag, "log-level", "error", "log level (debug, info, warn, error)")

	return root
}

func runFingerprint(cmd *cobra.Command, args []string) error {
	sql, err := readSQL(cmd, args)
	if err != nil {
		return err
	}

	result, err := sqlfp.Normalize(sql, dialectFlag, placeholderFlag)
	paramCount := len(result.Params)
	log.LogNormalize(dialectFlag, sql, result.Hash, paramCount, err)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
		return err
	}

	if jsonFlag {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "normalized: %s\n", result.Normalized)
	fmt.Fprintf(out, "hash:       %s\n", result.Hash)
	if len(result.Params) > 0 {
		fmt.Fprintf(out, "params:     %s\n", strings.Join(result.Params, ", "))
	}
	return nil
}

func readSQL(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	sql := strings.TrimSpace(string(data))
	if sql == "" {
		return "", fmt.Errorf("no SQL provided: pass it as an argument or pipe it on stdin")
	}
	return sql, nil
}
