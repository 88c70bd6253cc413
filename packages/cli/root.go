package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vogtb/go-spreadsheet/packages/config"
)

// app carries what the persistent flags resolve to between commands
type app struct {
	configPath string
	logLevel   string

	cfg *config.Config
	log *logrus.Logger
}

// NewRootCommand builds the spreadsheet command tree
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "spreadsheet",
		Short: "Evaluate spreadsheet cells from a command script",
		Long: `A spreadsheet engine driven by line commands.

Cells hold text or formulas ('=' followed by + - * / over numbers and
cell references such as A1). Formula results are recomputed lazily when
the cells they read change.

Examples:
  spreadsheet run script.txt
  echo "set A1 =1+2" | spreadsheet run`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	root.AddCommand(newRunCommand(a))
	return root
}

// load resolves config and builds the logger before any subcommand runs
func (a *app) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	log, err := NewLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	return nil
}
