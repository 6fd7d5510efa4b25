package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"golang-ledger-validator/internal/annotate"
	"golang-ledger-validator/internal/models"
	"golang-ledger-validator/internal/notify"
	"golang-ledger-validator/internal/reporter"
	"golang-ledger-validator/internal/tableio"
	"golang-ledger-validator/pkg/errors"
	"golang-ledger-validator/pkg/logger"
)

// TableSource loads the input table.
type TableSource interface {
	Load(ctx context.Context, path string) (*models.Table, error)
}

// TableSink persists the output table.
type TableSink interface {
	Save(ctx context.Context, table *models.Table, path string) error
}

// AnnotatorFactory opens an annotator on a written output file.
type AnnotatorFactory func(path string) (annotate.Annotator, error)

// DestinationCheck makes sure an output path can be written.
type DestinationCheck func(path string) error

// RunnerConfig controls the outer run.
type RunnerConfig struct {
	OutputSuffix string
	FailOnIssues bool
}

// DefaultRunnerConfig returns the default run settings
func DefaultRunnerConfig() *RunnerConfig {
	return &RunnerConfig{OutputSuffix: "_validated"}
}

// Validate validates the run configuration
func (c *RunnerConfig) Validate() error {
	if c.OutputSuffix == "" {
		return fmt.Errorf("output suffix cannot be empty")
	}
	return nil
}

// Runner wires a pipeline to its input, output, highlighter and notifier.
type Runner struct {
	config    *RunnerConfig
	pipeline  *Pipeline
	source    TableSource
	sink      TableSink
	annotator AnnotatorFactory
	notifier  notify.Notifier
	prepare   DestinationCheck
	logger    logger.Logger
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithSource replaces the table loader.
func WithSource(s TableSource) RunnerOption {
	return func(r *Runner) { r.source = s }
}

// WithSink replaces the table writer.
func WithSink(s TableSink) RunnerOption {
	return func(r *Runner) { r.sink = s }
}

// WithAnnotator replaces the highlighter factory.
func WithAnnotator(f AnnotatorFactory) RunnerOption {
	return func(r *Runner) { r.annotator = f }
}

// WithNotifier replaces the notifier.
func WithNotifier(n notify.Notifier) RunnerOption {
	return func(r *Runner) { r.notifier = n }
}

// WithDestinationCheck replaces the output lock check.
func WithDestinationCheck(f DestinationCheck) RunnerOption {
	return func(r *Runner) { r.prepare = f }
}

// NewRunner creates a runner around p. By default it reads and writes files
// with tableio, highlights workbooks with excelize and logs notices to
// stdout.
func NewRunner(config *RunnerConfig, p *Pipeline, opts ...RunnerOption) (*Runner, error) {
	if config == nil {
		config = DefaultRunnerConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "output_suffix", config.OutputSuffix, err)
	}
	if p == nil {
		var err error
		if p, err = New(nil); err != nil {
			return nil, err
		}
	}

	r := &Runner{
		config:    config,
		pipeline:  p,
		source:    tableio.NewReader(nil),
		sink:      tableio.NewWriter(nil),
		annotator: annotate.ForPath,
		notifier:  notify.NewConsole(os.Stdout, false),
		prepare:   tableio.PrepareDestination,
		logger:    logger.WithComponent("runner"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Outcome describes a finished run.
type Outcome struct {
	RunID     string
	Input     string
	Output    string
	Result    *Result
	StartedAt time.Time
	Duration  time.Duration
}

// Report converts the outcome for the report generator.
func (o *Outcome) Report() *reporter.Report {
	rep := &reporter.Report{
		RunID:       o.RunID,
		Input:       o.Input,
		Output:      o.Output,
		GeneratedAt: o.StartedAt.Add(o.Duration),
		Duration:    o.Duration,
		Summary:     &models.Summary{},
	}
	if o.Result != nil {
		rep.RowsIn = o.Result.RowsIn
		rep.RowsOut = o.Result.Table.Len()
		rep.Sequence = o.Result.Sequence
		rep.Classification = o.Result.Classification
		rep.Pruned = o.Result.Pruned
		rep.Summary = o.Result.Summary
	}
	return rep
}

// Run validates the file at input and writes the annotated result next to
// it. An empty input means the user selected nothing.
//
// Fatal problems, such as no input, a locked destination or an unreadable
// file, end the run before anything is written. Data problems never fail
// the run unless FailOnIssues is set, and even then the output is written
// first.
func (r *Runner) Run(ctx context.Context, input string) (*Outcome, error) {
	outcome := &Outcome{
		RunID:     uuid.NewString(),
		Input:     input,
		StartedAt: time.Now(),
	}
	log := r.logger.WithField("run_id", outcome.RunID)

	if input == "" {
		r.notify(log, notify.LevelError, "No file selected", "No file was selected. Exiting the program.")
		return outcome, errors.SourceUnavailable("", nil)
	}
	log = log.WithField("file_path", input)

	output := tableio.OutputPath(input, r.config.OutputSuffix)
	outcome.Output = output
	if err := r.prepare(output); err != nil {
		r.notify(log, notify.LevelError, "File Error", fmt.Sprintf("Please close the file:\n%s\nThen try again.", output))
		return outcome, err
	}

	table, err := r.source.Load(ctx, input)
	if err != nil {
		r.notify(log, notify.LevelError, "Validation Failed", err.Error())
		return outcome, err
	}
	log.WithFields(logger.Fields{"rows": table.Len(), "columns": table.ColumnCount()}).Info("Loaded input table")

	result, err := r.pipeline.WithRunID(outcome.RunID).Run(ctx, table)
	if err != nil {
		r.notify(log, notify.LevelError, "Validation Failed", err.Error())
		return outcome, err
	}
	outcome.Result = result

	level := notify.LevelInfo
	if result.Sequence.Resequenced {
		level = notify.LevelWarning
	}
	title, body := r.pipeline.SequenceNotice(result.Sequence)
	r.notify(log, level, title, body)

	if err := r.sink.Save(ctx, result.Table, output); err != nil {
		r.notify(log, notify.LevelError, "File Error", err.Error())
		return outcome, err
	}

	if err := r.annotate(log, result, output); err != nil {
		r.notify(log, notify.LevelError, "File Error", err.Error())
		return outcome, err
	}

	outcome.Duration = time.Since(outcome.StartedAt)
	log.WithFields(logger.Fields{
		"output":   output,
		"errors":   result.Summary.Total(),
		"duration": outcome.Duration.String(),
	}).Info("Validation run finished")

	title, body = reporter.SummaryText(result.Summary)
	if result.Summary.Clean() {
		r.notify(log, notify.LevelInfo, title, body)
		return outcome, nil
	}

	r.notify(log, notify.LevelError, title, body)
	if r.config.FailOnIssues {
		return outcome, errors.ValidationError(errors.CodeIssuesFound, output, result.Summary.Total(), nil)
	}
	return outcome, nil
}

func (r *Runner) annotate(log logger.Logger, result *Result, output string) error {
	plan, err := annotate.BuildPlan(result.Table.Columns(), result.Summary)
	if err != nil {
		return errors.InternalError(errors.CodeAnnotationFailed, "annotation plan", err)
	}

	a, err := r.annotator(output)
	if err != nil {
		return err
	}
	if err := plan.Apply(a); err != nil {
		if discardErr := a.Discard(); discardErr != nil {
			log.WithError(discardErr).Warn("Could not release output after failed highlighting")
		}
		return err
	}
	return a.Close()
}

func (r *Runner) notify(log logger.Logger, level notify.Level, title, body string) {
	if err := r.notifier.Notify(notify.Notice{Level: level, Title: title, Body: body}); err != nil {
		log.WithError(err).Warn("Could not show notice")
	}
}
