package cmd

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"golang-ledger-validator/internal/notify"
	"golang-ledger-validator/pkg/errors"
	"golang-ledger-validator/pkg/logger"
)

// Editors often save a file in several steps.
const watchDebounce = 100 * time.Millisecond

func newWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Validate a ledger again every time it is saved",
		Long: `Watch validates the ledger once and then again after every save, until
interrupted. Notices never wait for confirmation in watch mode.

Examples:
  ledgerval watch ledger.xlsx
  ledgerval watch ledger.csv --report-format none`,
		Args: cobra.ExactArgs(1),
		RunE: a.runWatch,
	}

	addRunFlags(cmd.Flags())
	return cmd
}

func (a *app) runWatch(cmd *cobra.Command, args []string) error {
	settings, err := a.setup(cmd, runFlagKeys)
	if err != nil {
		return err
	}
	if err := validateReportFile(settings.ReportFile); err != nil {
		return err
	}

	input, err := filepath.Abs(args[0])
	if err != nil {
		return errors.SourceUnavailable(args[0], err)
	}

	runner, err := newRunner(settings, notify.NewConsole(cmd.OutOrStdout(), false), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	log := logger.WithComponent("watch").WithField("file_path", input)

	var failures failedRuns
	validate := func() {
		outcome, err := runner.Run(ctx, input)
		if err != nil {
			log.WithError(err).Warn("Validation run failed")
			failures.add(err)
		}
		if outcome != nil && outcome.Result != nil {
			if err := writeReport(settings, outcome, cmd.OutOrStdout()); err != nil {
				log.WithError(err).Warn("Could not write report")
			}
		}
	}

	validate()

	fw, err := watchFile(input, watchDebounce, validate, log)
	if err != nil {
		return err
	}
	log.Info("Watching for changes")
	err = fw.Run(ctx)

	if summary := failures.summary(); summary.Total > 0 {
		log.WithField("failed_runs", summary.Total).Warn(summary.Error())
	}
	return err
}

// failedRuns collects the errors of failed runs during a watch session.
type failedRuns struct {
	mu   sync.Mutex
	errs []*errors.ValidatorError
}

func (f *failedRuns) add(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = append(f.errs, errors.WrapIfNeeded(err, errors.CategoryInternal, errors.CodeUnexpectedError, "validation run failed"))
}

func (f *failedRuns) summary() *errors.ErrorSummary {
	f.mu.Lock()
	defer f.mu.Unlock()
	return errors.NewErrorSummary(append([]*errors.ValidatorError(nil), f.errs...))
}

// fileWatcher calls onChange once a burst of changes to one file settles.
type fileWatcher struct {
	path     string
	debounce time.Duration
	onChange func()
	watcher  *fsnotify.Watcher
	log      logger.Logger

	runMu sync.Mutex
}

// watchFile starts watching the directory of path. Watching the directory
// keeps the watch alive when an editor replaces the file on save.
func watchFile(path string, debounce time.Duration, onChange func(), log logger.Logger) (*fileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.InternalError(errors.CodeUnexpectedError, "create file watcher", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, errors.SourceUnavailable(path, err)
	}

	return &fileWatcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		onChange: onChange,
		watcher:  watcher,
		log:      log,
	}, nil
}

// Run processes file system events until ctx is done.
func (fw *fileWatcher) Run(ctx context.Context) error {
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		_ = fw.watcher.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != fw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(fw.debounce, fw.fire)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			fw.log.WithError(err).Warn("File watcher error")
		}
	}
}

func (fw *fileWatcher) fire() {
	fw.runMu.Lock()
	defer fw.runMu.Unlock()
	fw.log.Debug("File changed")
	fw.onChange()
}
