package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wudi/scankit/imageio"
	"github.com/wudi/scankit/observability"
	"github.com/wudi/scankit/pipeline"
	"github.com/wudi/scankit/profile"
)

func newProcessCmd(a *app) *cobra.Command {
	var (
		profileFlag string
		moduleFlag  []string
		output      string
		stepsOut    string
	)

	cmd := &cobra.Command{
		Use:   "process <input>",
		Short: "Process a single image or PDF",
		Example: `  # Standard profile, PNG out
  scankit process scan.png -o clean.png

  # OCR-optimized profile with a module subset, step log to JSON
  scankit process passport.jpg --profile ocr --modules edge_mask,deskew,binarize --steps steps.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := profile.ParseName(profileFlag)
			if err != nil {
				return err
			}
			if output == "" {
				output = defaultOutput(args[0])
			}

			pages, err := a.loadPages(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			mods, err := profile.Build(name, a.cfg, a.probe)
			if err != nil {
				return err
			}
			mods = profile.Filter(mods, moduleFlag)
			proc := profile.NewProcessor(mods,
				pipeline.WithLogger(a.log),
				pipeline.WithWorkers(a.cfg.Server.Workers),
			)

			doc := proc.ProcessDocument(cmd.Context(), pages)
			for i := range doc.Pages {
				page := &doc.Pages[i]
				if page.Failed() {
					return fmt.Errorf("page %d: %w", i, page.Err)
				}
				dest := outputPath(output, i, len(doc.Pages))
				if err := imageio.EncodeFile(dest, page.Final); err != nil {
					return err
				}
				a.log.Info("page written",
					observability.Int("page", i),
					observability.String("output", dest))
			}

			if stepsOut != "" {
				if err := writeStepLog(stepsOut, doc); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&profileFlag, "profile", "p", string(profile.NameStandard),
		"processing profile: standard, security or ocr")
	cmd.Flags().StringSliceVarP(&moduleFlag, "modules", "m", nil,
		"restrict the pipeline to these modules")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <input>_processed.png)")
	cmd.Flags().StringVar(&stepsOut, "steps", "", "write the step log as JSON to this file")
	return cmd
}

func defaultOutput(input string) string {
	ext := ".png"
	base := input
	if i := strings.LastIndex(input, "."); i > 0 {
		base = input[:i]
	}
	return base + "_processed" + ext
}

func writeStepLog(path string, doc *pipeline.DocumentResult) error {
	type pageLog struct {
		PageIndex int                   `json:"page_index"`
		Failed    bool                  `json:"failed"`
		Error     string                `json:"error,omitempty"`
		Steps     []pipeline.StepRecord `json:"steps"`
	}
	logs := make([]pageLog, len(doc.Pages))
	for i := range doc.Pages {
		p := &doc.Pages[i]
		logs[i] = pageLog{PageIndex: i, Steps: p.Steps}
		if p.Failed() {
			logs[i].Failed = true
			logs[i].Error = p.Err.Error()
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("step log: %w", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(logs)
}
