// Package pipeline runs the validation stages over a table and the
// surrounding run: loading the input, saving and highlighting the output,
// and telling the user what happened.
//
// The stages run in a fixed order, each taking a table and returning a new
// one:
//
//	normalize -> sequence -> classify -> prune -> validate -> aggregate
//
// Column classification happens once, after normalization, and every later
// stage uses that result.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang-ledger-validator/internal/matcher"
	"golang-ledger-validator/internal/models"
	"golang-ledger-validator/internal/preprocess"
	"golang-ledger-validator/internal/validator"
	"golang-ledger-validator/pkg/errors"
	"golang-ledger-validator/pkg/logger"
)

// Stage names a pipeline step.
type Stage string

const (
	StageNormalize Stage = "normalize"
	StageSequence  Stage = "sequence"
	StageClassify  Stage = "classify"
	StagePrune     Stage = "prune"
	StageValidate  Stage = "validate"
	StageAggregate Stage = "aggregate"
)

// Stages lists every stage in execution order.
var Stages = []Stage{StageNormalize, StageSequence, StageClassify, StagePrune, StageValidate, StageAggregate}

// Progress reports one finished stage.
type Progress struct {
	Stage   Stage
	Step    int
	Steps   int
	RowsIn  int
	RowsOut int
	Elapsed time.Duration
}

// ProgressFunc receives progress updates.
type ProgressFunc func(Progress)

// Config holds the settings of every stage.
type Config struct {
	Sequence  *preprocess.SequenceConfig
	Matching  *matcher.MatchingConfig
	Validator *validator.Config
	Progress  ProgressFunc
}

// DefaultConfig returns the default pipeline settings
func DefaultConfig() *Config {
	return &Config{
		Sequence:  preprocess.DefaultSequenceConfig(),
		Matching:  matcher.DefaultMatchingConfig(),
		Validator: validator.DefaultConfig(),
	}
}

// Result is the outcome of one pipeline run.
type Result struct {
	Table          *models.Table
	Sequence       *preprocess.SequenceReport
	Classification *matcher.Classification
	Pruned         []preprocess.PruneResult
	Pairs          []*validator.PairResult
	Summary        *models.Summary
	RowsIn         int
	Duration       time.Duration
}

// Pipeline runs the validation stages.
type Pipeline struct {
	config    *Config
	sequencer *preprocess.Sequencer
	matcher   *matcher.ColumnMatcher
	validator *validator.Validator
	logger    logger.Logger
}

// New creates a pipeline. Nil sub-configurations fall back to their
// defaults.
func New(config *Config) (*Pipeline, error) {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config
	if cfg.Sequence == nil {
		cfg.Sequence = preprocess.DefaultSequenceConfig()
	}
	if cfg.Matching == nil {
		cfg.Matching = matcher.DefaultMatchingConfig()
	}
	if cfg.Validator == nil {
		cfg.Validator = validator.DefaultConfig()
	}
	config = &cfg

	sequencer, err := preprocess.NewSequencer(config.Sequence)
	if err != nil {
		return nil, err
	}
	columnMatcher, err := matcher.NewColumnMatcher(config.Matching)
	if err != nil {
		return nil, err
	}
	v, err := validator.NewValidator(config.Validator)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		config:    config,
		sequencer: sequencer,
		matcher:   columnMatcher,
		validator: v,
		logger:    logger.WithComponent("pipeline"),
	}, nil
}

// WithRunID returns a pipeline that tags its log entries with id.
func (p *Pipeline) WithRunID(id string) *Pipeline {
	clone := *p
	clone.logger = p.logger.WithField("run_id", id)
	return &clone
}

// SequenceNotice returns the notice for an identifier report.
func (p *Pipeline) SequenceNotice(report *preprocess.SequenceReport) (title, body string) {
	return p.sequencer.Notice(report)
}

// ErrorColumnPolicy returns the policy used for shared error columns.
func (p *Pipeline) ErrorColumnPolicy() validator.ErrorColumnPolicy {
	return p.config.Validator.ErrorColumns
}

// Run executes every stage on table. The input table is not modified.
func (p *Pipeline) Run(ctx context.Context, table *models.Table) (*Result, error) {
	start := time.Now()
	result := &Result{RowsIn: table.Len()}
	current := table
	step := 0

	run := func(stage Stage, fn func(in *models.Table) (*models.Table, error)) error {
		if err := ctx.Err(); err != nil {
			return errors.InternalError(errors.CodeUnexpectedError, string(stage), err).
				WithSuggestion("The run was cancelled before it finished")
		}

		step++
		rowsIn := current.Len()
		timer := logger.StartStage(p.logger, string(stage), rowsIn)
		out, err := fn(current)
		if err != nil {
			timer.CompleteWithError(err)
			return err
		}
		elapsed := timer.Complete(out.Len())
		current = out

		if p.config.Progress != nil {
			p.config.Progress(Progress{
				Stage:   stage,
				Step:    step,
				Steps:   len(Stages),
				RowsIn:  rowsIn,
				RowsOut: out.Len(),
				Elapsed: elapsed,
			})
		}
		return nil
	}

	stages := []struct {
		stage Stage
		fn    func(in *models.Table) (*models.Table, error)
	}{
		{StageNormalize, preprocess.Normalize},
		{StageSequence, func(in *models.Table) (*models.Table, error) {
			out, report, err := p.sequencer.Resequence(in)
			result.Sequence = report
			return out, err
		}},
		{StageClassify, func(in *models.Table) (*models.Table, error) {
			result.Classification = p.matcher.Classify(in.Columns())
			return in, nil
		}},
		{StagePrune, func(in *models.Table) (*models.Table, error) {
			out, pruned := preprocess.Prune(in, result.Classification.PrunePairs)
			result.Pruned = pruned
			return out, nil
		}},
		{StageValidate, func(in *models.Table) (*models.Table, error) {
			out, pairs, err := p.validator.ValidateAll(in, result.Classification.ValidationPairs)
			result.Pairs = pairs
			return out, err
		}},
		{StageAggregate, func(in *models.Table) (*models.Table, error) {
			result.Summary = Aggregate(result.Pairs, p.ErrorColumnPolicy())
			return in, nil
		}},
	}

	for _, s := range stages {
		if err := run(s.stage, s.fn); err != nil {
			return nil, err
		}
	}

	result.Table = current
	result.Duration = time.Since(start)

	p.logger.WithFields(logger.Fields{
		"rows_in":  result.RowsIn,
		"rows_out": current.Len(),
		"pairs":    len(result.Pairs),
		"errors":   result.Summary.Total(),
		"duration": result.Duration.String(),
	}).Info("Validation pipeline completed")

	return result, nil
}

// String describes the pipeline configuration for logs.
func (p *Pipeline) String() string {
	return fmt.Sprintf("Pipeline{identifier=%q, policy=%s}", p.config.Sequence.Column, p.ErrorColumnPolicy())
}
