package pipeline

import (
	"fmt"
	"image"
	"runtime"
	"sync"
	"time"

	"context"

	"github.com/segmentio/ksuid"

	"github.com/wudi/scankit/observability"
	"github.com/wudi/scankit/raster"
)

// BinarizeModuleName is the module whose pre-correction working image
// the orchestrator snapshots by default.
const BinarizeModuleName = "binarize"

// Orchestrator runs a fixed, ordered module chain over pages. It is
// immutable after construction and safe for concurrent use; every page
// run owns its working image and step log.
type Orchestrator struct {
	modules      []Module
	snapshotName string
	logger       observability.Logger
	metrics      observability.Metrics
	workers      int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger injects the logger; the default discards everything.
func WithLogger(l observability.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics injects the metrics sink; the default discards everything.
func WithMetrics(m observability.Metrics) Option {
	return func(o *Orchestrator) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithWorkers bounds document-level parallelism. Zero or negative means
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) { o.workers = n }
}

// WithSnapshotModule overrides the module name whose pre-correction
// image is captured as PageResult.PreBinarize.
func WithSnapshotModule(name string) Option {
	return func(o *Orchestrator) { o.snapshotName = name }
}

// New builds an orchestrator over the given module chain. The slice is
// copied; callers cannot alter the chain afterwards.
func New(modules []Module, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		modules:      append([]Module(nil), modules...),
		snapshotName: BinarizeModuleName,
		logger:       observability.NopLogger{},
		metrics:      observability.NopMetrics{},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.workers <= 0 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// ModuleNames returns the chain's module names in pipeline order.
func (o *Orchestrator) ModuleNames() []string {
	names := make([]string, len(o.modules))
	for i, m := range o.modules {
		names[i] = m.Name()
	}
	return names
}

// RunPage processes one page through the full chain. The input image is
// never mutated. A module error aborts the page: the returned result
// carries the partial step log and the error, which is also returned.
func (o *Orchestrator) RunPage(ctx context.Context, img image.Image) (*PageResult, error) {
	start := time.Now()
	result := &PageResult{
		Original: img,
		Steps:    make([]StepRecord, 0, len(o.modules)),
	}
	working := raster.Clone(img)

	for _, mod := range o.modules {
		if err := ctx.Err(); err != nil {
			result.Err = err
			break
		}
		rec, next, err := o.runStep(ctx, mod, working)
		result.Steps = append(result.Steps, rec)
		if err != nil {
			result.Err = fmt.Errorf("pipeline: module %s: %w", mod.Name(), err)
			break
		}
		if mod.Name() == o.snapshotName && rec.Detected {
			result.PreBinarize = raster.Clone(working)
		}
		if next != nil {
			working = next
		}
	}

	result.Final = working
	status := observability.StatusOK
	if result.Err != nil {
		status = observability.StatusFailed
	}
	o.metrics.PageProcessed(status, time.Since(start).Seconds())
	o.logger.Debug("page processed",
		observability.Int("steps", len(result.Steps)),
		observability.String("status", status),
		observability.Duration("elapsed", time.Since(start)))
	if result.Err != nil {
		return result, result.Err
	}
	return result, nil
}

// runStep times one module's Detect and conditional Correct against the
// working image, returning the step record and the next working image
// (nil when unchanged).
func (o *Orchestrator) runStep(ctx context.Context, mod Module, working image.Image) (StepRecord, image.Image, error) {
	rec := StepRecord{Module: mod.Name()}

	t0 := time.Now()
	det, err := mod.Detect(ctx, working)
	detectElapsed := time.Since(t0)
	rec.Timing.DetectMS = toMS(detectElapsed)
	rec.Timing.TotalMS = rec.Timing.DetectMS
	o.metrics.ModuleTimed(mod.Name(), "detect", detectElapsed.Seconds())
	if err != nil {
		return rec, nil, err
	}
	rec.Detected = det.ShouldCorrect
	rec.DetectMeta = det.Meta
	if !det.ShouldCorrect {
		return rec, nil, nil
	}

	t1 := time.Now()
	corr, err := mod.Correct(ctx, working, det.Meta)
	processElapsed := time.Since(t1)
	rec.Timing.ProcessMS = toMS(processElapsed)
	rec.Timing.TotalMS = toMS(detectElapsed + processElapsed)
	o.metrics.ModuleTimed(mod.Name(), "process", processElapsed.Seconds())
	if err != nil {
		return rec, nil, err
	}
	rec.ProcessMeta = corr.Meta
	rec.Applied = corr.Mutated
	if corr.Mutated {
		o.metrics.ModuleApplied(mod.Name())
	}
	o.logger.Debug("module step",
		observability.String("module", mod.Name()),
		observability.Bool("detected", rec.Detected),
		observability.Bool("applied", rec.Applied),
		observability.Float64("detect_ms", rec.Timing.DetectMS),
		observability.Float64("process_ms", rec.Timing.ProcessMS))
	return rec, corr.Image, nil
}

// RunDocument processes the pages of one document with a bounded worker
// pool. Pages are independent: each worker owns its page's working copy
// and step log, and a failed page is recorded in place while the rest
// of the document continues. Results keep page order.
func (o *Orchestrator) RunDocument(ctx context.Context, pages []image.Image) *DocumentResult {
	doc := &DocumentResult{Pages: make([]PageResult, len(pages))}
	if len(pages) == 0 {
		return doc
	}
	runID := ksuid.New().String()
	logger := o.logger.With(observability.String("run_id", runID))
	logger.Info("document run started",
		observability.Int("pages", len(pages)),
		observability.Int("modules", len(o.modules)))

	workers := o.workers
	if workers > len(pages) {
		workers = len(pages)
	}
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				res, err := o.RunPage(ctx, pages[idx])
				res.PageIndex = idx
				if err != nil {
					logger.Error("page failed",
						observability.Int("page", idx),
						observability.Error("error", err))
				}
				doc.Pages[idx] = *res
			}
		}()
	}
	for idx := range pages {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	logger.Info("document run finished",
		observability.Int("pages", len(pages)),
		observability.Int("failed", len(doc.FailedPages())))
	return doc
}

func toMS(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}
