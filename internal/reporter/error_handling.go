package reporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang-ledger-validator/pkg/errors"
	"golang-ledger-validator/pkg/logger"
)

// SafeReportGenerator wraps ReportGenerator with enhanced error handling
type SafeReportGenerator struct {
	*ReportGenerator
	logger logger.Logger
}

// NewSafeReportGenerator creates a new safe report generator with error handling
func NewSafeReportGenerator(config *ReportConfig, log logger.Logger) (*SafeReportGenerator, error) {
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	generator, err := NewReportGenerator(config)
	if err != nil {
		return nil, errors.ConfigurationError(
			errors.CodeInvalidConfig,
			"report_format",
			config,
			err,
		).WithSuggestion("Use one of: console, text, json, yaml")
	}

	return &SafeReportGenerator{
		ReportGenerator: generator,
		logger:          log.WithComponent("reporter"),
	}, nil
}

// GenerateReportSafely writes the report, falling back to the text format
// when the configured format fails.
func (srg *SafeReportGenerator) GenerateReportSafely(report *Report, writer io.Writer) error {
	srg.logger.WithFields(logger.Fields{
		"format": srg.config.Format,
		"output": getWriterDescription(writer),
	}).Debug("Starting report generation")

	if err := srg.validateInputs(report, writer); err != nil {
		srg.logger.WithError(err).Error("Report generation failed: input validation")
		return err
	}

	err := srg.GenerateReport(report, writer)
	if err == nil {
		return nil
	}
	srg.logger.WithError(err).Warn("Primary report generation failed, attempting fallback")

	if srg.config.Format == FormatText {
		return srg.wrapGenerationError(err)
	}
	return srg.generateWithFormatFallback(report, writer, err)
}

// WriteReport writes the report to path, or to stdout when path is empty.
// A destination that cannot be created falls back to a backup file beside
// it.
func (srg *SafeReportGenerator) WriteReport(report *Report, path string) error {
	if path == "" {
		return srg.GenerateReportSafely(report, os.Stdout)
	}

	file, err := os.Create(path)
	if err != nil {
		backup := generateBackupPath(path)
		srg.logger.WithFields(logger.Fields{
			"original_file": path,
			"backup_file":   backup,
		}).WithError(err).Warn("Cannot create report file, attempting backup location")

		file, err = os.Create(backup)
		if err != nil {
			return errors.FileError(errors.CodeWriteFailed, path, err).
				WithSuggestion("Check that the report directory exists and is writable")
		}
		path = backup
	}

	genErr := srg.GenerateReportSafely(report, file)
	if closeErr := file.Close(); genErr == nil && closeErr != nil {
		return errors.FileError(errors.CodeWriteFailed, path, closeErr)
	}
	if genErr == nil {
		srg.logger.WithField("report_file", path).Info("Report written")
	}
	return genErr
}

func (srg *SafeReportGenerator) validateInputs(report *Report, writer io.Writer) error {
	if report == nil || report.Summary == nil {
		return errors.ValidationError(
			errors.CodeMissingField,
			"report",
			nil,
			nil,
		).WithSuggestion("Provide the result of a completed run")
	}

	if writer == nil {
		return errors.ValidationError(
			errors.CodeMissingField,
			"writer",
			nil,
			nil,
		).WithSuggestion("Provide a valid output writer")
	}

	return nil
}

func (srg *SafeReportGenerator) generateWithFormatFallback(report *Report, writer io.Writer, originalErr error) error {
	fallbackConfig := *srg.config
	fallbackConfig.Format = FormatText

	srg.logger.WithField("fallback_format", FormatText).Info("Attempting format fallback")

	fallback, err := NewReportGenerator(&fallbackConfig)
	if err != nil {
		return srg.wrapGenerationError(originalErr)
	}

	if err := fallback.GenerateReport(report, writer); err != nil {
		return errors.InternalError(
			errors.CodeUnexpectedError,
			"report_fallback",
			fmt.Errorf("both primary and fallback generation failed: primary=%v, fallback=%v", originalErr, err),
		)
	}

	srg.logger.Info("Report generated using format fallback")
	return nil
}

func (srg *SafeReportGenerator) wrapGenerationError(err error) error {
	if validatorErr, ok := errors.AsValidatorError(err); ok {
		return validatorErr
	}

	return errors.InternalError(
		errors.CodeUnexpectedError,
		"report_generation",
		err,
	).WithSuggestion("Check the output destination and report format settings")
}

func generateBackupPath(originalPath string) string {
	base := filepath.Base(originalPath)
	ext := filepath.Ext(base)
	name := base[:len(base)-len(ext)]

	return filepath.Join(os.TempDir(), fmt.Sprintf("%s_backup%s", name, ext))
}

func getWriterDescription(writer io.Writer) string {
	switch w := writer.(type) {
	case *os.File:
		if w.Name() != "" {
			return fmt.Sprintf("file:%s", w.Name())
		}
		return "file:unnamed"
	default:
		return fmt.Sprintf("writer:%T", writer)
	}
}
