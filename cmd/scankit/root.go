package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wudi/scankit/config"
	"github.com/wudi/scankit/observability"
	"github.com/wudi/scankit/textprobe"
)

// app carries the state shared by every subcommand: the loaded
// configuration, the logger and the OCR probe.
type app struct {
	configPath string
	verbose    bool
	languages  []string

	cfg   config.File
	log   observability.Logger
	probe textprobe.Probe
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "scankit",
		Short: "Preprocess scanned documents for OCR",
		Long: `Scankit cleans up scanned documents before OCR: border masking,
orientation and perspective correction, deskewing, denoising, security
feature handling and binarization, assembled into per-use-case profiles.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env if present (ignore errors).
			_ = godotenv.Load()
			return a.setup()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	pf.StringSliceVar(&a.languages, "lang", []string{"eng"}, "tesseract language codes")

	cmd.AddCommand(
		newProcessCmd(a),
		newBatchCmd(a),
		newClassifyCmd(a),
		newServeCmd(a),
		newHarnessCmd(a),
	)
	return cmd
}

func (a *app) setup() error {
	level := zerolog.InfoLevel
	if a.verbose {
		level = zerolog.DebugLevel
	}
	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
	a.log = observability.NewZerolog(zl)

	a.cfg = config.Defaults()
	if a.configPath != "" {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	a.cfg.FromEnv()

	if probe, err := textprobe.NewExec(textprobe.WithLanguages(a.languages...)); err == nil {
		a.probe = probe
	} else {
		a.log.Warn("tesseract not found, OCR-dependent modules will degrade",
			observability.Error("error", err))
		a.probe = textprobe.Noop{}
	}
	textprobe.SetDefault(a.probe)
	return nil
}
