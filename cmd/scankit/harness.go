package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wudi/scankit/harness"
	"github.com/wudi/scankit/pipeline"
	"github.com/wudi/scankit/profile"
)

func newHarnessCmd(a *app) *cobra.Command {
	var (
		profileFlag string
		output      string
		htmlOut     string
	)

	cmd := &cobra.Command{
		Use:   "harness <input>",
		Short: "Measure OCR improvement from preprocessing",
		Long: `Runs OCR on each raw page and on its processed counterpart, scores
the text similarity and writes a report. Requires a working tesseract.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := profile.ParseName(profileFlag)
			if err != nil {
				return err
			}
			pages, err := a.loadPages(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			mods, err := profile.Build(name, a.cfg, a.probe)
			if err != nil {
				return err
			}

			runner := harness.NewRunner(
				profile.NewProcessor(mods, pipeline.WithLogger(a.log)), a.probe)
			report, err := runner.Run(cmd.Context(), pages)
			if err != nil {
				return err
			}

			if htmlOut != "" {
				f, err := os.Create(htmlOut)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := report.WriteHTML(f); err != nil {
					return err
				}
			}

			if output == "" {
				return report.WriteJSON(os.Stdout)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("report: %w", err)
			}
			defer f.Close()
			return report.WriteJSON(f)
		},
	}

	cmd.Flags().StringVarP(&profileFlag, "profile", "p", string(profile.NameStandard),
		"processing profile: standard, security or ocr")
	cmd.Flags().StringVarP(&output, "output", "o", "", "JSON report file (default stdout)")
	cmd.Flags().StringVar(&htmlOut, "html", "", "also render an HTML report to this file")
	return cmd
}
