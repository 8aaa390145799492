package batch

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/gnolang/tagscan/fetch"
	"github.com/gnolang/tagscan/rules"
	"github.com/gnolang/tagscan/scanner"
	"github.com/gnolang/tagscan/scrape"
)

// Processor produces the results for one file.
type Processor func(path string) ([]rules.Result, error)

// Config controls a batch run.
type Config struct {
	// Workers bounds the number of files processed at once. Zero means
	// runtime.NumCPU().
	Workers int
	// Extensions selects the files taken from directories. Empty means
	// scanner.DefaultExtensions.
	Extensions []string
	// IgnorePaths excludes files and whole directories from the run.
	IgnorePaths []string
	// Progress receives the progress bar. Nil disables it.
	Progress io.Writer
}

// ProcessFiles runs processor over every path in turn. Results are sorted
// by file and position. Errors of single files are logged and returned
// joined, after the results of the files that succeeded.
func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	cfg Config,
	paths []string,
	processor Processor,
) ([]rules.Result, error) {
	var (
		all  []rules.Result
		errs []error
	)
	for _, path := range paths {
		results, err := ProcessPath(ctx, logger, cfg, path, processor)
		all = append(all, results...)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return all, ctxErr
			}
			errs = append(errs, err)
		}
	}
	return all, errors.Join(errs...)
}

// ProcessPath runs processor on path, or on every matching file below it if
// path is a directory. Directory entries are processed concurrently.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	cfg Config,
	path string,
	processor Processor,
) ([]rules.Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ignored := newIgnoreSet(cfg.IgnorePaths)
	if ignored.covers(path) {
		logger.Debug("path ignored", zap.String("path", path))
		return nil, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		results, err := processor(path)
		if err != nil {
			logger.Error("Error processing file", zap.String("file", path), zap.Error(err))
			return nil, err
		}
		sortResults(results)
		return results, nil
	}

	files, err := scanner.New(path, cfg.Extensions...).Scan()
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", path, err)
	}
	files = slices.DeleteFunc(files, func(f scanner.FileInfo) bool {
		return ignored.covers(f.Path)
	})

	type outcome struct {
		results []rules.Result
		err     error
	}

	// limit the number of workers
	maxWorkers := cfg.Workers
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	sem := make(chan struct{}, maxWorkers)
	outcomes := make(chan outcome, len(files))
	bar := newBar(cfg.Progress, len(files), path)

	var wg sync.WaitGroup
	canceled := false
dispatch:
	for _, file := range files {
		if ctx.Err() != nil {
			canceled = true
			break
		}
		select {
		case <-ctx.Done():
			canceled = true
			break dispatch
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(fp string) {
			defer wg.Done()
			defer func() { <-sem }()

			results, err := processor(fp)
			if err != nil {
				logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
			}
			outcomes <- outcome{results: results, err: err}
			_ = bar.Add(1)
		}(file.Path)
	}
	wg.Wait()
	close(outcomes)
	_ = bar.Finish()

	var (
		all  []rules.Result
		errs []error
	)
	for o := range outcomes {
		if o.err != nil {
			errs = append(errs, o.err)
			continue
		}
		all = append(all, o.results...)
	}
	sortResults(all)

	if canceled {
		return all, ctx.Err()
	}
	return all, errors.Join(errs...)
}

func newBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	if w == nil {
		w = io.Discard
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

func sortResults(results []rules.Result) {
	slices.SortStableFunc(results, func(a, b rules.Result) int {
		return cmp.Or(
			strings.Compare(a.Source, b.Source),
			cmp.Compare(a.Span.Start, b.Span.Start),
		)
	})
}

// ScanFile lexes the file at path, decoding it to UTF-8 first, and applies
// compiled to it.
func ScanFile(path string, compiled []rules.Compiled, logger *zap.Logger) ([]rules.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text, _, err := fetch.Decode(data, "")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s, err := scrape.FromString(text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	results := rules.Apply(s, compiled, logger)
	for i := range results {
		results[i].Source = path
	}
	return results, nil
}

// FileProcessor returns a Processor running ScanFile with compiled.
func FileProcessor(compiled []rules.Compiled, logger *zap.Logger) Processor {
	return func(path string) ([]rules.Result, error) {
		return ScanFile(path, compiled, logger)
	}
}
