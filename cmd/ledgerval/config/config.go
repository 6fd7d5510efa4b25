// Package config turns viper settings into the configuration of every
// component.
//
// Settings come from, in increasing priority: built-in defaults, the
// optional --config file, LEDGERVAL_* environment variables and command
// line flags.
package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"golang-ledger-validator/internal/calendar"
	"golang-ledger-validator/internal/matcher"
	"golang-ledger-validator/internal/notify"
	"golang-ledger-validator/internal/pipeline"
	"golang-ledger-validator/internal/preprocess"
	"golang-ledger-validator/internal/reporter"
	"golang-ledger-validator/internal/tableio"
	ledgervalidator "golang-ledger-validator/internal/validator"
	"golang-ledger-validator/pkg/errors"
	"golang-ledger-validator/pkg/logger"
)

// ReportNone disables the end-of-run report.
const ReportNone = "none"

// Settings is the flat view of every user-facing option.
type Settings struct {
	IdentifierColumn    string   `mapstructure:"identifier_column" validate:"required"`
	OutputSuffix        string   `mapstructure:"output_suffix" validate:"required"`
	CurrentYear         int      `mapstructure:"current_year" validate:"omitempty,min=1900,max=3000"`
	ErrorColumns        string   `mapstructure:"error_columns" validate:"oneof=overwrite merge"`
	ListIDMismatches    bool     `mapstructure:"list_id_mismatches"`
	MaxListedMismatches int      `mapstructure:"max_listed_mismatches" validate:"min=0"`
	AcceptTrailingYear  bool     `mapstructure:"accept_trailing_year"`
	DateKeywords        []string `mapstructure:"date_keywords" validate:"min=1,dive,required"`
	BalanceKeywords     []string `mapstructure:"balance_keywords" validate:"min=1,dive,required"`
	Sheet               string   `mapstructure:"sheet" validate:"max=31"`
	SkipEmptyRows       bool     `mapstructure:"skip_empty_rows"`
	ReportFormat        string   `mapstructure:"report_format" validate:"oneof=console text json yaml none"`
	ReportFile          string   `mapstructure:"report_file"`
	FailOnIssues        bool     `mapstructure:"fail_on_issues"`
	Interactive         bool     `mapstructure:"interactive"`
	Progress            bool     `mapstructure:"progress"`
	LogLevel            string   `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat           string   `mapstructure:"log_format" validate:"oneof=text json"`
	Verbose             bool     `mapstructure:"verbose"`
}

// SetDefaults registers the default value of every setting on v.
func SetDefaults(v *viper.Viper) {
	matching := matcher.DefaultMatchingConfig()

	v.SetDefault("identifier_column", preprocess.DefaultIdentifierColumn)
	v.SetDefault("output_suffix", pipeline.DefaultRunnerConfig().OutputSuffix)
	v.SetDefault("current_year", 0)
	v.SetDefault("error_columns", string(ledgervalidator.PolicyOverwrite))
	v.SetDefault("list_id_mismatches", true)
	v.SetDefault("max_listed_mismatches", 10)
	v.SetDefault("accept_trailing_year", true)
	v.SetDefault("date_keywords", matching.DateKeywords)
	v.SetDefault("balance_keywords", matching.BalanceKeywords)
	v.SetDefault("sheet", "")
	v.SetDefault("skip_empty_rows", false)
	v.SetDefault("report_format", string(reporter.FormatConsole))
	v.SetDefault("report_file", "")
	v.SetDefault("fail_on_issues", false)
	v.SetDefault("interactive", notify.IsInteractive())
	v.SetDefault("progress", false)
	v.SetDefault("log_level", string(logger.WarnLevel))
	v.SetDefault("log_format", string(logger.TextFormat))
}

// Load reads and validates the settings held by v.
func Load(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "settings", nil, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every setting and reports the first invalid one.
func (s *Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrs) == 0 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "settings", nil, err)
	}

	first := fieldErrs[0]
	cause := fmt.Errorf("failed the '%s' rule", ruleDescription(first))
	return errors.ConfigurationError(errors.CodeInvalidConfig, first.Field(), first.Value(), cause)
}

func ruleDescription(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// CalendarReference returns the calendar used for the year upper bound.
func (s *Settings) CalendarReference() calendar.Reference {
	if s.CurrentYear > 0 {
		return calendar.Fixed(s.CurrentYear)
	}
	return calendar.NewBS()
}

// PipelineConfig builds the configuration of every pipeline stage.
func (s *Settings) PipelineConfig() *pipeline.Config {
	matching := matcher.DefaultMatchingConfig()
	matching.DateKeywords = append([]string(nil), s.DateKeywords...)
	matching.BalanceKeywords = append([]string(nil), s.BalanceKeywords...)

	return &pipeline.Config{
		Sequence: &preprocess.SequenceConfig{
			Column:         s.IdentifierColumn,
			ListMismatches: s.ListIDMismatches,
			MaxListed:      s.MaxListedMismatches,
		},
		Matching: matching,
		Validator: &ledgervalidator.Config{
			Calendar:           s.CalendarReference(),
			MinYear:            ledgervalidator.MinYear,
			AcceptTrailingYear: s.AcceptTrailingYear,
			ErrorColumns:       ledgervalidator.ErrorColumnPolicy(s.ErrorColumns),
		},
	}
}

// RunnerConfig builds the outer run configuration.
func (s *Settings) RunnerConfig() *pipeline.RunnerConfig {
	return &pipeline.RunnerConfig{
		OutputSuffix: s.OutputSuffix,
		FailOnIssues: s.FailOnIssues,
	}
}

// TableConfig builds the reader and writer configuration.
func (s *Settings) TableConfig() *tableio.Config {
	config := tableio.DefaultConfig()
	config.Sheet = s.Sheet
	config.SkipEmptyRows = s.SkipEmptyRows
	return config
}

// ReportConfig builds the report configuration. It returns nil when reports
// are disabled.
func (s *Settings) ReportConfig() *reporter.ReportConfig {
	if s.ReportFormat == ReportNone {
		return nil
	}

	config := reporter.DefaultReportConfig()
	config.Format = reporter.OutputFormat(s.ReportFormat)

	switch config.Format {
	case reporter.FormatConsole:
		config.UseColors = s.ReportFile == ""
	case reporter.FormatJSON, reporter.FormatYAML:
		config.UseColors = false
		config.MaxRecords = 0
	default:
		config.UseColors = false
	}
	return config
}

// LoggerConfig builds the logger configuration. Verbose forces debug level.
func (s *Settings) LoggerConfig() *logger.Config {
	config := logger.DefaultConfig()
	config.Level = logger.Level(s.LogLevel)
	if s.Verbose {
		config = logger.VerboseConfig()
	}
	config.Format = logger.Format(s.LogFormat)
	return config
}
