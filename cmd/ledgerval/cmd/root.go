package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"golang-ledger-validator/cmd/ledgerval/config"
	"golang-ledger-validator/pkg/errors"
	"golang-ledger-validator/pkg/logger"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = NewRootCommand(viper.GetViper())

// app holds the state shared by every subcommand.
type app struct {
	v       *viper.Viper
	cfgFile string
}

// NewRootCommand builds the command tree around v.
func NewRootCommand(v *viper.Viper) *cobra.Command {
	a := &app{v: v}

	root := &cobra.Command{
		Use:   "ledgerval",
		Short: "Ledger date and balance validation tool",
		Long: `Ledgerval checks spreadsheet ledgers kept in the Bikram Sambat calendar.
It renumbers the member identifier column, removes empty rows, validates
every date and balance column pair and writes an annotated copy of the
ledger with error columns and highlighted cells.

Examples:
  ledgerval validate ledger.xlsx
  ledgerval validate ledger.csv --report-format json --report-file report.json
  ledgerval watch ledger.xlsx
  ledgerval version`,
		Version:       getVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (optional)")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.String("log-level", string(logger.WarnLevel), "log level: debug, info, warn, error")
	flags.String("log-format", string(logger.TextFormat), "log format: text, json")

	root.AddCommand(newValidateCmd(a), newWatchCmd(a))
	return root
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// setup binds the flags of the running command, reads the optional config
// file and environment, and configures the global logger.
func (a *app) setup(cmd *cobra.Command, keys map[string]string) (*config.Settings, error) {
	all := map[string]string{
		"verbose":    "verbose",
		"log_level":  "log-level",
		"log_format": "log-format",
	}
	for key, name := range keys {
		all[key] = name
	}
	if err := bindFlags(a.v, cmd.Flags(), all); err != nil {
		return nil, err
	}

	config.SetDefaults(a.v)
	a.v.SetEnvPrefix("LEDGERVAL")
	a.v.AutomaticEnv()

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "config", a.cfgFile, err).
				WithSuggestion("check the path and the syntax of the config file")
		}
	}

	settings, err := config.Load(a.v)
	if err != nil {
		return nil, err
	}

	log, err := logger.NewLogger(settings.LoggerConfig())
	if err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "log_level", settings.LogLevel, err)
	}
	logger.SetGlobalLogger(log)

	if a.cfgFile != "" {
		log.WithField("config_file", a.v.ConfigFileUsed()).Debug("Using config file")
	}
	return settings, nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return errors.InternalError(errors.CodeUnexpectedError, "bind flag "+name, err)
		}
	}
	return nil
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	}
	return version
}
