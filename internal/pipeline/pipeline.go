// Package pipeline runs many conversions concurrently.  Each worker
// owns its buffers end to end — the core stages share no state — so the
// only coordination is the bounded worker semaphore and the final
// collect step.
package pipeline

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/AnyUserName/epdimg/internal/report"
	"github.com/AnyUserName/epdimg/internal/style"
)

// Config holds all parameters for a batch run.
type Config struct {
	InputDir  string
	OutputDir string
	// Width and Height are the device geometry every output is fitted to.
	Width  int
	Height int
	Style  style.Spec
	// Despeckle enables the morphological cleanup pass on each result.
	Despeckle bool
	Workers   int
	Verbose   bool
}

// Pipeline orchestrates batch image conversion.
type Pipeline struct {
	cfg Config
}

// New creates a configured pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Pipeline{cfg: cfg}
}

// Run converts every image under InputDir and returns the aggregate
// report.  Individual failures are reported but do not abort the batch
// unless every source fails.
func (p *Pipeline) Run() (*report.Batch, error) {
	sources, err := ScanImages(p.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no images found in %s", p.cfg.InputDir)
	}

	if p.cfg.Verbose {
		fmt.Fprintf(os.Stderr, "[epdimg] found %d images\n", len(sources))
	}

	warnf := func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, "[epdimg] warn: "+format+"\n", args...)
	}

	results := make([]processResult, len(sources))
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.cfg.Workers)

	for i, src := range sources {
		wg.Add(1)
		go func(idx int, s Source) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if p.cfg.Verbose {
				fmt.Fprintf(os.Stderr, "[epdimg] processing: %s\n", s.Key)
			}

			results[idx] = processImage(s, p.cfg, warnf)

			if p.cfg.Verbose && results[idx].err == nil {
				fmt.Fprintf(os.Stderr, "[epdimg] done: %s (style %s, black %.3f)\n",
					s.Key, results[idx].report.Style, results[idx].report.BlackRatio)
			}
		}(i, src)
	}
	wg.Wait()

	b := report.NewBatch(p.cfg.Style.Name)

	var errs []error
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		b.Add(r.report)
	}
	b.Stats.Failed = len(errs)

	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "[epdimg] error: %v\n", e)
		}
		if len(errs) == len(sources) {
			return nil, fmt.Errorf("all %d images failed to convert", len(errs))
		}
		fmt.Fprintf(os.Stderr, "[epdimg] warning: %d of %d images had errors\n",
			len(errs), len(sources))
	}

	return b, nil
}
