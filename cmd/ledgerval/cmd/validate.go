package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"golang-ledger-validator/cmd/ledgerval/config"
	"golang-ledger-validator/internal/notify"
	"golang-ledger-validator/internal/pipeline"
	"golang-ledger-validator/internal/preprocess"
	"golang-ledger-validator/internal/reporter"
	"golang-ledger-validator/internal/tableio"
	"golang-ledger-validator/internal/validator"
	"golang-ledger-validator/pkg/errors"
	"golang-ledger-validator/pkg/logger"
)

// runFlagKeys maps setting keys to the flags shared by validate and watch.
var runFlagKeys = map[string]string{
	"output_suffix":         "suffix",
	"identifier_column":     "identifier-column",
	"current_year":          "current-year",
	"error_columns":         "error-columns",
	"accept_trailing_year":  "accept-trailing-year",
	"list_id_mismatches":    "list-id-mismatches",
	"max_listed_mismatches": "max-listed-mismatches",
	"sheet":                 "sheet",
	"skip_empty_rows":       "skip-empty-rows",
	"report_format":         "report-format",
	"report_file":           "report-file",
	"fail_on_issues":        "fail-on-issues",
	"progress":              "progress",
}

func addRunFlags(flags *pflag.FlagSet) {
	// Output flags
	flags.String("suffix", pipeline.DefaultRunnerConfig().OutputSuffix, "suffix added to the output file name")
	flags.StringP("report-format", "f", string(reporter.FormatConsole), "report format: console, text, json, yaml, none")
	flags.StringP("report-file", "o", "", "report file path (default: stdout)")

	// Table flags
	flags.String("identifier-column", preprocess.DefaultIdentifierColumn, "name of the member identifier column")
	flags.String("sheet", "", "worksheet to read (default: first sheet)")
	flags.Bool("skip-empty-rows", false, "drop fully blank rows before the identifier check")
	flags.Bool("list-id-mismatches", true, "list renumbered identifiers in the alert")
	flags.Int("max-listed-mismatches", 10, "maximum number of renumbered identifiers listed")

	// Validation flags
	flags.Int("current-year", 0, "latest accepted BS year (default: current BS year)")
	flags.String("error-columns", string(validator.PolicyOverwrite), "repeated error column policy: overwrite, merge")
	flags.Bool("accept-trailing-year", true, "read MM-DD-YYYY dash or dot dates as YYYY/MM/DD")

	// Run flags
	flags.Bool("fail-on-issues", false, "exit with status 3 when any error is recorded")
	flags.Bool("progress", false, "show progress indicators")
}

func newValidateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate the date and balance columns of a ledger",
		Long: `Validate reads a ledger workbook (.xlsx, .xlsm) or CSV file, checks the
identifier column and every date and balance column pair, and writes
<name>_validated.<ext> next to the input with error columns added.
Cells with errors are highlighted in workbook output.

Without a file argument an interactive file picker is shown when the
terminal allows it.

Examples:
  # Validate a workbook
  ledgerval validate ledger.xlsx

  # Merge messages when pairs share a date column
  ledgerval validate ledger.xlsx --error-columns merge

  # Machine readable report, failing when issues are found
  ledgerval validate ledger.csv --report-format json --report-file report.json --fail-on-issues

  # Pin the latest accepted year
  ledgerval validate ledger.xlsx --current-year 2081`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.runValidate,
	}

	addRunFlags(cmd.Flags())
	cmd.Flags().Bool("interactive", notify.IsInteractive(), "pick the input file and confirm notices interactively")
	return cmd
}

func (a *app) runValidate(cmd *cobra.Command, args []string) error {
	keys := map[string]string{"interactive": "interactive"}
	for k, v := range runFlagKeys {
		keys[k] = v
	}
	settings, err := a.setup(cmd, keys)
	if err != nil {
		return err
	}
	if err := validateReportFile(settings.ReportFile); err != nil {
		return err
	}

	input, err := selectInput(args, settings.Interactive)
	if err != nil {
		return err
	}

	notifier := notify.NewConsole(cmd.OutOrStdout(), settings.Interactive)
	runner, err := newRunner(settings, notifier, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	outcome, runErr := runner.Run(cmd.Context(), input)
	if outcome != nil && outcome.Result != nil {
		if err := writeReport(settings, outcome, cmd.OutOrStdout()); err != nil && runErr == nil {
			return err
		}
	}
	return runErr
}

func selectInput(args []string, interactive bool) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if !interactive {
		return "", nil
	}

	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	path, err := notify.SelectInput(wd)
	if err != nil {
		return "", errors.InternalError(errors.CodeUnexpectedError, "file selection", err)
	}
	return path, nil
}

func newRunner(settings *config.Settings, notifier notify.Notifier, progressOut io.Writer) (*pipeline.Runner, error) {
	pipelineConfig := settings.PipelineConfig()
	if settings.Progress {
		pipelineConfig.Progress = progressPrinter(progressOut)
	}

	p, err := pipeline.New(pipelineConfig)
	if err != nil {
		return nil, err
	}

	tableConfig := settings.TableConfig()
	return pipeline.NewRunner(settings.RunnerConfig(), p,
		pipeline.WithNotifier(notifier),
		pipeline.WithSource(tableio.NewReader(tableConfig)),
		pipeline.WithSink(tableio.NewWriter(tableConfig)),
	)
}

func progressPrinter(w io.Writer) pipeline.ProgressFunc {
	return func(p pipeline.Progress) {
		percent := float64(p.Step) / float64(p.Steps) * 100
		fmt.Fprintf(w, "\r[%d/%d] %-9s (%.1f%% complete)", p.Step, p.Steps, p.Stage, percent)
		if p.Step == p.Steps {
			fmt.Fprintln(w)
		}
	}
}

// writeReport renders the run report to the report file, or to out when no
// file is configured.
func writeReport(settings *config.Settings, outcome *pipeline.Outcome, out io.Writer) error {
	reportConfig := settings.ReportConfig()
	if reportConfig == nil {
		return nil
	}

	generator, err := reporter.NewSafeReportGenerator(reportConfig, logger.WithComponent("report"))
	if err != nil {
		return err
	}

	report := outcome.Report()
	if settings.ReportFile == "" {
		return generator.GenerateReportSafely(report, out)
	}
	return generator.WriteReport(report, settings.ReportFile)
}

func validateReportFile(path string) error {
	if path == "" {
		return nil
	}

	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "report_file", path, err).
			WithSuggestion("create the report directory first")
	}
	if !info.IsDir() {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "report_file", path,
			fmt.Errorf("%s is not a directory", dir))
	}
	return nil
}
