// Command structtensor inspects record layouts and dataset stores.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/born-ml/structtensor/internal/config"
	"github.com/born-ml/structtensor/internal/layout"
)

// version can be overridden at build time via -ldflags.
var version = "v0.1.0-dev"

type app struct {
	configPath string
	verbose    bool
	colorMode  string

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "structtensor",
		Short:         "Inspect record tensor layouts and dataset stores",
		Long:          `structtensor compiles record schemas into flat tensor layouts and reports on stored datasets.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "configuration file (default ./"+config.FileName+" if present)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")
	root.PersistentFlags().StringVar(&a.colorMode, "color", "auto", "colorize output (auto|on|off)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInspectCmd(a))
	root.AddCommand(newStoreCmd(a))
	return root
}

func (a *app) setup() error {
	switch a.colorMode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
	default:
		return fmt.Errorf("--color must be auto, on or off, got %q", a.colorMode)
	}

	var err error
	if a.configPath != "" {
		a.cfg, err = config.Load(a.configPath, false)
	} else {
		a.cfg, err = config.Load(config.FileName, true)
	}
	if err != nil {
		return err
	}

	if a.logger, err = a.cfg.Logger(a.verbose); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	layout.SetLogger(a.logger.Named("layout"))
	a.logger.Debug("configuration loaded",
		zap.String("dtype", a.cfg.DefaultDType),
		zap.String("store", a.cfg.Store.Path))
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}
