package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/OxfordRSE/lint-md-codeblocks/internal/logger"
)

var (
	flagConfig  string
	flagVerbose bool
	flagNoColor bool
)

// errFindings signals a completed run that produced diagnostics. The
// diagnostics were already printed, so main exits 1 without a second
// error line.
var errFindings = errors.New("diagnostics reported")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errFindings) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "mdlint",
	Short:         "Lint code blocks embedded in markdown documents",
	Long:          "mdlint extracts fenced code blocks from markdown, rebuilds them into line-number-preserving buffers, and runs a code analyzer over the result, reporting findings at their original document positions.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(flagVerbose)
		if flagNoColor {
			color.NoColor = true
		}
	},
	// No Run so bare invocation prints help.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "TOML config file (default: built-in defaults)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging and per-document markers")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
}
