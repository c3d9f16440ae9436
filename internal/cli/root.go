// Package cli wires the command-line interface.
package cli

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/insightdelivered/statement-extractor/internal/config"
	"github.com/insightdelivered/statement-extractor/internal/convert"
	"github.com/insightdelivered/statement-extractor/internal/logging"
)

// Version is the release printed by --version and the version command.
var Version = "2.0.0"

// app is the state shared by every command once flags are parsed.
type app struct {
	configPath  string
	writeConfig string
	logLevel    string
	logFormat   string

	cfg *config.Config
	log *logrus.Logger

	// source replaces the PDF extractor in tests.
	source convert.TokenSource
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{})
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "statement-extractor",
		Short: "Extract transactions from bank statement PDFs",
		Long: `Extracts transactions from bank statement PDFs.

Statements from HDFC, IDFC FIRST and ICICI are read with their own layouts;
any other statement goes through header detection and column bands, with a
row-scoring fallback when no table header can be found.`,
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if done, err := a.dumpConfig(cmd.OutOrStdout()); done {
				return err
			}
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file")
	flags.StringVar(&a.writeConfig, "write-config", "", `write the effective config as YAML to this path ("-" for stdout) and exit`)
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: text or json")

	rootCmd.AddCommand(
		newConvertCommand(a),
		newServeCommand(a),
		newResolveCommand(),
		newVersionCommand(),
	)
	return rootCmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		return 1
	}
	return 0
}

// setup loads .env, the config file and environment overrides, then
// builds the logger. Flags win over all of them.
func (a *app) setup(stderr io.Writer) error {
	if err := config.LoadDotenv(); err != nil {
		return err
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	log, err := logging.NewWithOutput(cfg.Log, stderr)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log
	return nil
}

// dumpConfig handles --write-config. It reports whether the command
// should stop.
func (a *app) dumpConfig(stdout io.Writer) (bool, error) {
	if a.writeConfig == "" {
		return false, nil
	}
	if a.writeConfig == "-" {
		data, err := yaml.Marshal(a.cfg)
		if err != nil {
			return true, fmt.Errorf("marshaling config: %w", err)
		}
		_, err = stdout.Write(data)
		return true, err
	}
	if err := config.Save(a.writeConfig, a.cfg); err != nil {
		return true, err
	}
	a.log.WithField("path", a.writeConfig).Info("config written")
	return true, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "statement-extractor v%s\n", Version)
		},
	}
}
