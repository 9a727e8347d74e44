// Command mrtools processes CityJSON files.
//
// Usage:
//
//	mrtools roofarea INPUT [INPUT...] [-o OUTPUT] [-v] [--workers N] [--lod LOD]
//	                 [--holes] [--bbox minx,miny,maxx,maxy]
//	                 [--metrics-file PATH] [--env-file PATH]
//	mrtools --version
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/tudelft3d/mrtools/internal/config"
	"github.com/tudelft3d/mrtools/internal/logger"
	"github.com/tudelft3d/mrtools/internal/metrics"
	"github.com/tudelft3d/mrtools/internal/source"
	"github.com/tudelft3d/mrtools/pkg/cityjson"
)

const version = "0.1.0"

// verboseSample is the number of objects listed in verbose mode
const verboseSample = 3

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 1
	}

	switch args[0] {
	case "--version", "-version", "-V":
		fmt.Fprintf(stdout, "mrtools version %s\n", version)
		return 0
	case "--help", "-help", "-h", "help":
		usage(stdout)
		return 0
	case "roofarea":
		return runRoofArea(ctx, args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "Error: unknown command %q\n", args[0])
		usage(stderr)
		return 1
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Tools for processing CityJSON files.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  mrtools roofarea INPUT [INPUT...] [-o OUTPUT] [flags]")
	fmt.Fprintln(w, "  mrtools --version")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  roofarea   Calculate total roof area for all Buildings and BuildingParts")
}

// roofAreaFlags holds the parsed roofarea command line
type roofAreaFlags struct {
	output      string
	verbose     bool
	workers     int
	lod         string
	holes       bool
	bbox        string
	metricsFile string
	envFile     string
	inputs      []string
}

func parseRoofAreaFlags(args []string, stderr io.Writer) (*roofAreaFlags, error) {
	f := &roofAreaFlags{}
	fs := flag.NewFlagSet("roofarea", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.output, "o", "", "Output file (one input) or directory (several inputs); default: overwrite input")
	fs.StringVar(&f.output, "output", "", "Same as -o")
	fs.BoolVar(&f.verbose, "v", false, "Enable verbose output")
	fs.BoolVar(&f.verbose, "verbose", false, "Same as -v")
	fs.IntVar(&f.workers, "workers", 0, "Number of worker goroutines (default: NumCPU)")
	fs.StringVar(&f.lod, "lod", "", "Only use geometry of this LoD, e.g. 2.2 (default: all)")
	fs.BoolVar(&f.holes, "holes", false, "Subtract inner rings from roof faces")
	fs.StringVar(&f.bbox, "bbox", "", "Only process objects intersecting minx,miny,maxx,maxy")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	fs.StringVar(&f.envFile, "env-file", "", "Load settings from this .env file (default: .env if present)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: mrtools roofarea INPUT [INPUT...] [-o OUTPUT] [flags]")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Calculate the total area of all RoofSurface faces of every Building and")
		fmt.Fprintln(stderr, "BuildingPart and store it as the 'total_area_roof' attribute.")
		fmt.Fprintln(stderr)
		fs.PrintDefaults()
	}

	// Allow flags after positional arguments
	rest := args
	for len(rest) > 0 {
		if err := fs.Parse(rest); err != nil {
			return nil, err
		}
		rest = fs.Args()
		if len(rest) == 0 {
			break
		}
		f.inputs = append(f.inputs, rest[0])
		rest = rest[1:]
	}

	if len(f.inputs) == 0 {
		fs.Usage()
		return nil, errors.New("missing INPUT")
	}
	return f, nil
}

func runRoofArea(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	f, err := parseRoofAreaFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	cfg, err := config.Load(f.envFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}
	// CLI flags override env
	cfg = cfg.Resolve(config.Flags{
		Workers:       f.workers,
		LoD:           f.lod,
		SubtractHoles: f.holes,
		MetricsFile:   f.metricsFile,
	})

	log := logger.Setup(f.verbose)

	var bounds *cityjson.Bounds
	if f.bbox != "" {
		b, err := cityjson.ParseBounds(f.bbox)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		bounds = &b
	}

	jobs, err := planJobs(f.inputs, f.output)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	recorder := metrics.New()
	parser := cityjson.NewParser()
	defer parser.Close()

	if f.verbose {
		for _, job := range jobs {
			fmt.Fprintf(stdout, "Processing: %s\n", job.Input)
		}
	}

	results, _ := cityjson.ProcessFiles(ctx, jobs, parser,
		cityjson.ProcessOptions{
			Workers:       cfg.Workers,
			LoD:           cfg.LoD,
			SubtractHoles: cfg.SubtractHoles,
			Bounds:        bounds,
			Logger:        log,
			Observer:      recorder,
		},
		cityjson.LoadOptions{
			Parallel:   len(jobs) > 1,
			Workers:    cfg.Workers,
			SkipErrors: true,
		})

	code := 0
	for _, r := range results {
		if r.Err != nil {
			code = 1
			reportError(stderr, r)
			continue
		}
		recorder.ObserveDocument(r.Report.Duration)
		if f.verbose {
			printSummary(stdout, r)
		}
		out := r.Job.Output
		if out == "" {
			out = r.Job.Input
		}
		fmt.Fprintf(stdout, "✓ Output written to: %s\n", out)
		log.Debug("document processed",
			"input", r.Job.Input,
			"objects", len(r.Report.Objects),
			"roof_faces", r.Report.Faces,
			"skipped_records", r.Report.Skipped,
			"duration", r.Report.Duration)
	}

	if cfg.MetricsFile != "" {
		if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
			fmt.Fprintf(stderr, "Error writing metrics: %v\n", err)
			code = 1
		} else {
			log.Debug("metrics written", "path", cfg.MetricsFile)
		}
	}
	return code
}

// planJobs maps inputs to output locations. One input: output is the
// target document. Several inputs: output is a directory (or gs:// prefix)
// receiving each input's base name. Two jobs may not share an output.
func planJobs(inputs []string, output string) ([]cityjson.FileJob, error) {
	jobs := make([]cityjson.FileJob, 0, len(inputs))
	writers := make(map[string]string, len(inputs))

	var outDir source.Location
	if output != "" {
		loc, err := source.Parse(output)
		if err != nil {
			return nil, err
		}
		if !loc.Writable() {
			return nil, fmt.Errorf("cannot write to %s: zip archives are read only", output)
		}
		outDir = loc
	}

	for _, in := range inputs {
		loc, err := source.Parse(in)
		if err != nil {
			return nil, err
		}
		job := cityjson.FileJob{Input: in}
		switch {
		case output == "" && !loc.Writable():
			return nil, fmt.Errorf("%s is read only; use -o to choose an output", in)
		case output == "":
			// overwrite input
		case len(inputs) == 1:
			job.Output = output
		default:
			job.Output = outDir.Join(loc.Base()).String()
		}

		target := job.Output
		if target == "" {
			target = in
		}
		if prev, ok := writers[target]; ok {
			return nil, fmt.Errorf("%s and %s would both be written to %s", prev, in, target)
		}
		writers[target] = in
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func reportError(w io.Writer, r cityjson.FileResult) {
	var parseErr *cityjson.ErrDocumentParse
	switch {
	case errors.Is(r.Err, os.ErrNotExist):
		fmt.Fprintf(w, "Error: File not found: %s\n", r.Job.Input)
	case errors.As(r.Err, &parseErr):
		fmt.Fprintf(w, "Error: Invalid CityJSON file %s: %v\n", r.Job.Input, parseErr)
	default:
		fmt.Fprintf(w, "Error: %s: %v\n", r.Job.Input, r.Err)
	}
}

func printSummary(w io.Writer, r cityjson.FileResult) {
	objects := r.Document.Objects()
	fmt.Fprintf(w, "✓ Processed %d CityObjects\n", len(objects))
	for i, obj := range objects {
		if i >= verboseSample {
			break
		}
		area, _ := obj.RoofArea()
		fmt.Fprintf(w, "  %s (%s): %.2f m²\n", obj.ID(), obj.Type(), area)
	}
	if len(objects) > verboseSample {
		fmt.Fprintf(w, "  ... and %d more objects\n", len(objects)-verboseSample)
	}
	if r.Report.Filtered > 0 {
		fmt.Fprintf(w, "  %d objects outside --bbox left unchanged\n", r.Report.Filtered)
	}
	if !r.Report.Complete() {
		fmt.Fprintf(w, "  %d geometry records skipped (see warnings)\n", r.Report.Skipped)
	}
}

var _ cityjson.Observer = (*metrics.Recorder)(nil)
