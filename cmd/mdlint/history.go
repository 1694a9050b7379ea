package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/OxfordRSE/lint-md-codeblocks/internal/config"
	"github.com/OxfordRSE/lint-md-codeblocks/internal/store"
)

var (
	flagLimit int
	flagKeep  time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded lint runs",
	Long:  "Lists runs recorded in the history database (newest first). Use a run ID as argument to show that run's documents and diagnostics.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old runs from the history database",
	Args:  cobra.NoArgs,
	RunE:  runPrune,
}

func init() {
	historyCmd.PersistentFlags().StringVar(&flagHistory, "db", "", "history database path (overrides config)")
	historyCmd.Flags().IntVar(&flagLimit, "limit", 20, "maximum number of runs to list")
	pruneCmd.Flags().DurationVar(&flagKeep, "keep", 30*24*time.Hour, "retention window; older runs are deleted")
	historyCmd.AddCommand(pruneCmd)
}

// openHistory resolves the database path from flag or config and opens it.
func openHistory() (*store.Store, error) {
	dbPath := flagHistory
	if dbPath == "" {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return nil, err
		}
		dbPath = cfg.HistoryDB
	}
	if dbPath == "" {
		return nil, fmt.Errorf("no history database configured (use --db or history_db in config)")
	}
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("history database: %w", err)
	}
	return store.NewStore(dbPath)
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, err := openHistory()
	if err != nil {
		return err
	}
	defer s.Close()

	if len(args) == 1 {
		runID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run ID %q", args[0])
		}
		return showRun(s, runID)
	}
	return listRuns(s)
}

func listRuns(s *store.Store) error {
	runs, err := s.RecentRuns(flagLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tLANGUAGE\tANALYZER\tDOCS\tDIAGS\tRESULT")
	for _, r := range runs {
		result := "pass"
		if r.Failed {
			result = "FAIL"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%s\n",
			r.ID, r.StartedAt.Format(time.RFC3339), r.Language, r.Analyzer,
			r.DocumentCount, r.DiagnosticCount, result)
	}
	return w.Flush()
}

func showRun(s *store.Store, runID int64) error {
	docs, err := s.RunDocuments(runID)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Printf("No documents recorded for run %d.\n", runID)
		return nil
	}

	for _, doc := range docs {
		fmt.Printf("%s  [%s]\n", doc.Path, doc.Status)
		diags, err := s.DocumentDiagnostics(doc.ID)
		if err != nil {
			return err
		}
		for _, d := range diags {
			if d.Line == 0 {
				fmt.Printf("  %s\n", d.Message)
				continue
			}
			if d.Code != "" {
				fmt.Printf("  %d:%d %s %s %s\n", d.Line, d.Col, d.Severity, d.Code, d.Message)
			} else {
				fmt.Printf("  %d:%d %s %s\n", d.Line, d.Col, d.Severity, d.Message)
			}
		}
	}
	return nil
}

func runPrune(cmd *cobra.Command, args []string) error {
	s, err := openHistory()
	if err != nil {
		return err
	}
	defer s.Close()

	cutoff := time.Now().Add(-flagKeep)
	n, err := s.Prune(cutoff)
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d run(s) older than %s.\n", n, cutoff.Format(time.RFC3339))
	return nil
}
