package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	mdlint "github.com/OxfordRSE/lint-md-codeblocks"
	"github.com/OxfordRSE/lint-md-codeblocks/internal/analyzer"
	"github.com/OxfordRSE/lint-md-codeblocks/internal/config"
	"github.com/OxfordRSE/lint-md-codeblocks/internal/lang"
)

var (
	flagLanguage string
	flagHistory  string
	flagParallel bool
)

var lintCmd = &cobra.Command{
	Use:   "lint [path]",
	Short: "Lint markdown documents under a directory",
	Long:  "Scans the given directory (default: base_dir from config, or the current directory) for markdown files, lints the fenced code blocks for the target language, and exits non-zero when any document fails.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLint,
}

func init() {
	lintCmd.Flags().StringVarP(&flagLanguage, "language", "l", "", "target content language (overrides config)")
	lintCmd.Flags().StringVar(&flagHistory, "history", "", "SQLite database for run history (overrides config)")
	lintCmd.Flags().BoolVar(&flagParallel, "parallel", true, "lint documents concurrently")
}

// loadConfig layers CLI flags over the config file. Only flags the user
// actually set override file values; the boolean parallel flag needs the
// Changed check because its default is indistinguishable from a real value.
func loadConfig(cmd *cobra.Command, args []string) (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagLanguage != "" {
		cfg.Language = flagLanguage
	}
	if flagHistory != "" {
		cfg.HistoryDB = flagHistory
	}
	if cmd.Flags().Changed("parallel") {
		cfg.Parallel = flagParallel
	}
	if len(args) > 0 {
		cfg.BaseDir = args[0]
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// buildAnalyzer constructs the configured analyzer collaborator. The empty
// family falls back to the language's default exec analyzer.
func buildAnalyzer(cfg config.Config) (mdlint.Analyzer, error) {
	l, ok := lang.Lookup(cfg.Language)
	if !ok {
		return nil, fmt.Errorf("unsupported language %q", cfg.Language)
	}

	family := lang.Family(cfg.Analyzer.Family)
	if family == "" {
		family = l.DefaultFamily
	}

	switch family {
	case lang.FamilySyntax:
		return analyzer.NewSyntax(), nil
	case lang.FamilyScript:
		a := analyzer.NewScript(cfg.Analyzer.Script)
		if cfg.Analyzer.Timeout > 0 {
			a.Timeout = time.Duration(cfg.Analyzer.Timeout)
		}
		return a, nil
	case lang.FamilyFlake8, lang.FamilyGCC:
		command := cfg.Analyzer.Command
		if command == "" {
			command = l.DefaultCommand
		}
		if command == "" {
			return nil, fmt.Errorf("language %q has no default %s command; set analyzer.command", cfg.Language, family)
		}
		args := append([]string(nil), cfg.Analyzer.Args...)
		if cfg.Analyzer.Config != "" && family == lang.FamilyFlake8 {
			args = append(args, "--config="+cfg.Analyzer.Config)
		}
		a := analyzer.NewExec(command, family, args...)
		a.UseStdin = cfg.Analyzer.UseStdin
		if cfg.Analyzer.Timeout > 0 {
			a.Timeout = time.Duration(cfg.Analyzer.Timeout)
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown analyzer family %q", family)
	}
}

// newEngine builds an Engine from a validated config.
func newEngine(cfg config.Config) (*mdlint.Engine, error) {
	a, err := buildAnalyzer(cfg)
	if err != nil {
		return nil, err
	}

	opts := []mdlint.Option{
		mdlint.WithParallel(cfg.Parallel),
		mdlint.WithExcludes(cfg.Exclude...),
	}
	if cfg.HistoryDB != "" {
		opts = append(opts, mdlint.WithHistory(cfg.HistoryDB))
	}
	return mdlint.New(cfg.Language, a, opts...)
}

func runLint(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	run, err := engine.LintDirectory(context.Background(), cfg.BaseDir)
	if err != nil {
		return err
	}

	reporter := mdlint.NewReporter(os.Stdout)
	reporter.SetVerbose(flagVerbose)
	for _, doc := range run.Documents {
		reporter.Document(doc)
	}
	reporter.Summary(run)

	if run.Failed() {
		return errFindings
	}
	return nil
}
