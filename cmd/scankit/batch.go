package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/wudi/scankit/imageio"
	"github.com/wudi/scankit/observability"
	"github.com/wudi/scankit/pipeline"
	"github.com/wudi/scankit/profile"
)

var batchExtensions = map[string]bool{
	".pdf": true, ".tif": true, ".tiff": true,
	".png": true, ".jpg": true, ".jpeg": true, ".bmp": true,
}

func newBatchCmd(a *app) *cobra.Command {
	var (
		profileFlag string
		outputDir   string
		workers     int
	)

	cmd := &cobra.Command{
		Use:   "batch <input-dir>",
		Short: "Process every supported file in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := profile.ParseName(profileFlag)
			if err != nil {
				return err
			}
			mods, err := profile.Build(name, a.cfg, a.probe)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return err
			}

			entries, err := os.ReadDir(args[0])
			if err != nil {
				return err
			}
			var files []string
			for _, e := range entries {
				if e.IsDir() {
					continue
				}
				if batchExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
					files = append(files, filepath.Join(args[0], e.Name()))
				}
			}
			if len(files) == 0 {
				return fmt.Errorf("no supported files in %s", args[0])
			}
			a.log.Info("batch starting",
				observability.Int("files", len(files)),
				observability.Int("workers", workers))

			jobs := make(chan string)
			var wg sync.WaitGroup
			var mu sync.Mutex
			failed := 0

			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for file := range jobs {
						if err := a.processBatchFile(cmd, mods, file, outputDir); err != nil {
							a.log.Error("file failed",
								observability.String("file", file),
								observability.Error("error", err))
							mu.Lock()
							failed++
							mu.Unlock()
						}
					}
				}()
			}
			for _, f := range files {
				jobs <- f
			}
			close(jobs)
			wg.Wait()

			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(files))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&profileFlag, "profile", "p", string(profile.NameStandard),
		"processing profile: standard, security or ocr")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "processed", "output directory")
	cmd.Flags().IntVarP(&workers, "workers", "w", runtime.GOMAXPROCS(0), "concurrent files")
	return cmd
}

func (a *app) processBatchFile(cmd *cobra.Command, mods []pipeline.Module, file, outputDir string) error {
	pages, err := a.loadPages(cmd.Context(), file)
	if err != nil {
		return err
	}

	// Pages of one file run sequentially; parallelism lives at the
	// file level here.
	proc := profile.NewProcessor(mods, pipeline.WithLogger(a.log), pipeline.WithWorkers(1))
	doc := proc.ProcessDocument(cmd.Context(), pages)

	stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	base := filepath.Join(outputDir, stem+"_processed.png")
	for i := range doc.Pages {
		page := &doc.Pages[i]
		if page.Failed() {
			return fmt.Errorf("page %d: %w", i, page.Err)
		}
		if err := imageio.EncodeFile(outputPath(base, i, len(doc.Pages)), page.Final); err != nil {
			return err
		}
	}
	a.log.Info("file processed",
		observability.String("file", file),
		observability.Int("pages", len(doc.Pages)))
	return nil
}
