package main

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	mdlint "github.com/OxfordRSE/lint-md-codeblocks"
	"github.com/OxfordRSE/lint-md-codeblocks/internal/logger"
)

var flagDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Re-lint markdown documents as they change",
	Long:  "Performs an initial full lint, then watches the directory tree and re-lints a document whenever it is written or created. Runs until interrupted.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&flagLanguage, "language", "l", "", "target content language (overrides config)")
	watchCmd.Flags().StringVar(&flagHistory, "history", "", "SQLite database for run history (overrides config)")
	watchCmd.Flags().BoolVar(&flagParallel, "parallel", true, "lint documents concurrently")
	watchCmd.Flags().DurationVar(&flagDebounce, "debounce", 300*time.Millisecond, "delay before re-linting after a change")
}

// addWatchTree registers w on dir and every non-hidden subdirectory.
func addWatchTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	reporter := mdlint.NewReporter(os.Stdout)
	reporter.SetVerbose(flagVerbose)

	lintAndReport := func(paths []string) {
		run, err := engine.LintFiles(context.Background(), paths)
		if err != nil {
			logger.Warn("lint: %v", err)
			return
		}
		for _, doc := range run.Documents {
			reporter.Document(doc)
		}
		reporter.Summary(run)
	}

	// Initial full pass.
	initial, err := engine.DiscoverDocuments(cfg.BaseDir)
	if err != nil {
		return err
	}
	lintAndReport(initial)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := addWatchTree(watcher, cfg.BaseDir); err != nil {
		return err
	}
	logger.Info("watching %s for changes", cfg.BaseDir)

	// Changed paths accumulate until the debounce timer fires, so an
	// editor's save-then-rename burst triggers one re-lint.
	pending := map[string]struct{}{}
	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if watchErr := addWatchTree(watcher, ev.Name); watchErr != nil {
						logger.Warn("watch %s: %v", ev.Name, watchErr)
					}
					continue
				}
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if !strings.EqualFold(filepath.Ext(ev.Name), ".md") {
				continue
			}
			pending[ev.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(flagDebounce)
			} else {
				timer.Reset(flagDebounce)
			}
			timerCh = timer.C

		case <-timerCh:
			timerCh = nil
			var paths []string
			for p := range pending {
				if _, statErr := os.Stat(p); statErr == nil {
					paths = append(paths, p)
				}
			}
			pending = map[string]struct{}{}
			paths = engine.FilterDocuments(cfg.BaseDir, paths)
			if len(paths) == 0 {
				continue
			}
			sort.Strings(paths)
			logger.Debug("re-linting %d changed document(s)", len(paths))
			lintAndReport(paths)

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: %v", werr)
		}
	}
}
