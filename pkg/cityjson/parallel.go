package cityjson

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// OutputIndent is the indentation used when writing processed documents.
const OutputIndent = "  "

// FileJob names one document to process and where to write the result.
// An empty Output overwrites Input.
type FileJob struct {
	Input  string
	Output string
}

// FileResult is the outcome of one FileJob.
type FileResult struct {
	Job      FileJob
	Document *Document
	Report   *Report
	Err      error
}

// ProcessFiles reads, processes and writes several documents.
//
// Documents are processed by a pool of LoadOptions.Workers goroutines. Each
// document is independent: one failing document does not affect the others
// when SkipErrors is set. Results are returned in input order, including
// failed jobs (with Err set); the second return value collects the errors.
//
// Example:
//
//	parser := cityjson.NewParser()
//	defer parser.Close()
//
//	jobs := []cityjson.FileJob{{Input: "a.city.json"}, {Input: "b.city.json"}}
//	results, errs := cityjson.ProcessFiles(ctx, jobs, parser,
//	    cityjson.ProcessOptions{Workers: 2},
//	    cityjson.LoadOptions{
//	        Parallel:   true,
//	        SkipErrors: true,
//	        Progress: func(done, total int) {
//	            fmt.Printf("\rProcessing: %d/%d", done, total)
//	        },
//	        ErrorLog: os.Stderr,
//	    })
func ProcessFiles(ctx context.Context, jobs []FileJob, parser Parser, popts ProcessOptions, lopts LoadOptions) ([]FileResult, []error) {
	// Handle empty input
	if len(jobs) == 0 {
		return []FileResult{}, nil
	}

	// If parallel processing disabled, fall back to serial
	if !lopts.Parallel {
		return processFilesSerial(ctx, jobs, parser, popts, lopts)
	}

	// Determine worker count
	workers := lopts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// Don't create more workers than documents
	if workers > len(jobs) {
		workers = len(jobs)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type fileOutcome struct {
		index  int
		result FileResult
	}

	queue := make(chan int, len(jobs))
	outcomes := make(chan fileOutcome, len(jobs))

	// Start worker pool
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range queue {
				outcomes <- fileOutcome{
					index:  index,
					result: processFile(ctx, jobs[index], parser, popts),
				}
			}
		}()
	}

	// Send jobs to workers
	for i := range jobs {
		queue <- i
	}
	close(queue)

	// Wait for workers to finish in a separate goroutine
	go func() {
		wg.Wait()
		close(outcomes)
	}()

	// Collect results
	results := make([]FileResult, len(jobs))
	var errs []error
	var firstErr error
	done := 0

	for outcome := range outcomes {
		done++
		results[outcome.index] = outcome.result

		// Call progress callback
		if lopts.Progress != nil {
			lopts.Progress(done, len(jobs))
		}

		if outcome.result.Err == nil {
			continue
		}
		err := fmt.Errorf("%s: %w", jobs[outcome.index].Input, outcome.result.Err)

		// Log error if writer provided
		if lopts.ErrorLog != nil {
			fmt.Fprintf(lopts.ErrorLog, "Error processing document: %v\n", err)
		}

		if lopts.SkipErrors {
			errs = append(errs, err)
			continue
		}
		// Stop on first error; remaining jobs see a cancelled context
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	if firstErr != nil {
		return results, []error{firstErr}
	}
	return results, errs
}

// processFilesSerial processes documents one at a time (fallback when Parallel=false).
func processFilesSerial(ctx context.Context, jobs []FileJob, parser Parser, popts ProcessOptions, lopts LoadOptions) ([]FileResult, []error) {
	results := make([]FileResult, 0, len(jobs))
	var errs []error

	for i, job := range jobs {
		// Call progress callback
		if lopts.Progress != nil {
			lopts.Progress(i, len(jobs))
		}

		result := processFile(ctx, job, parser, popts)
		results = append(results, result)
		if result.Err != nil {
			err := fmt.Errorf("%s: %w", job.Input, result.Err)

			// Log error if writer provided
			if lopts.ErrorLog != nil {
				fmt.Fprintf(lopts.ErrorLog, "Error processing document: %v\n", err)
			}

			if lopts.SkipErrors {
				errs = append(errs, err)
				continue
			}
			return results, []error{err}
		}
	}

	// Final progress callback
	if lopts.Progress != nil {
		lopts.Progress(len(jobs), len(jobs))
	}

	return results, errs
}

// processFile runs parse, process and write for one job.
func processFile(ctx context.Context, job FileJob, parser Parser, popts ProcessOptions) FileResult {
	result := FileResult{Job: job}
	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	output := job.Output
	if output == "" {
		output = job.Input
	}

	doc, err := parser.Parse(ctx, job.Input)
	if err != nil {
		result.Err = err
		return result
	}
	result.Document = doc

	report, err := Process(ctx, doc, popts)
	if err != nil {
		result.Err = err
		return result
	}
	result.Report = report

	if err := parser.Write(ctx, doc, output, OutputIndent); err != nil {
		result.Err = err
	}
	return result
}
