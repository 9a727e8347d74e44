package cityjson

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tudelft3d/mrtools/internal/logger"
	"github.com/tudelft3d/mrtools/internal/mathutil"
	"github.com/tudelft3d/mrtools/internal/parser"
)

// ObjectResult is the roof-area outcome for one Building or BuildingPart.
type ObjectResult struct {
	ID          string
	Type        string
	Area        float64
	Faces       int     // roof faces that contributed
	Records     int     // Solid/MultiSurface records evaluated
	Unsupported int     // records of other geometry types
	Skipped     int     // records dropped because of a data error
	Errors      []error // one *GeometryError per skipped record
	Validation  []error // ValidateGeometry findings, if enabled
}

// Complete reports whether every evaluated record contributed.
func (r ObjectResult) Complete() bool {
	return r.Skipped == 0
}

// Report summarises a Process run.
type Report struct {
	Objects     []ObjectResult // sorted by ID
	Filtered    int            // candidates outside ProcessOptions.Bounds
	Faces       int
	Skipped     int
	Unsupported int
	Duration    time.Duration
}

// Complete reports whether no record was skipped because of a data error.
func (r *Report) Complete() bool {
	return r.Skipped == 0
}

// Process computes total_area_roof for every Building and BuildingPart of
// doc and writes it as an attribute, overwriting any previous value. Other
// objects are never modified.
//
// Objects are evaluated concurrently (bounded by opts.Workers); attribute
// writes happen sequentially after every evaluation finished, so the result
// does not depend on the worker count. A geometry record with a data error
// contributes nothing; the object still receives the sum of its other
// records and a warning is logged.
//
// If ctx is cancelled, Process returns ctx.Err() and doc is left unchanged.
//
// Example:
//
//	report, err := cityjson.Process(ctx, doc, cityjson.ProcessOptions{Workers: 4})
//	if err != nil {
//	    return err
//	}
//	for _, obj := range report.Objects {
//	    fmt.Printf("%s: %.2f m²\n", obj.ID, obj.Area)
//	}
func Process(ctx context.Context, doc *Document, opts ProcessOptions) (*Report, error) {
	start := time.Now()

	log := opts.Logger
	if log == nil {
		log = logger.L()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	areaOpts := parser.AreaOptions{LoD: opts.LoD, SubtractHoles: opts.SubtractHoles}

	report := &Report{}
	candidates := selectCandidates(doc, opts.Bounds, report)

	results := make([]ObjectResult, len(candidates))
	vertices := doc.internal.Vertices

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, obj := range candidates {
		if gctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = evaluate(obj.internal, vertices, areaOpts, opts.ValidateGeometry)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Merge sequentially: the document is never written concurrently
	for i, obj := range candidates {
		res := results[i]
		if err := obj.internal.SetFloatAttribute(RoofAreaAttribute, res.Area); err != nil {
			return nil, fmt.Errorf("CityObject %q: %w", res.ID, err)
		}
		report.Faces += res.Faces
		report.Skipped += res.Skipped
		report.Unsupported += res.Unsupported
		logResult(log, res)
		notify(opts.Observer, res)
	}

	report.Objects = results
	report.Duration = time.Since(start)
	return report, nil
}

// selectCandidates returns the roof-area candidates in ID order, restricted
// to bounds when given.
func selectCandidates(doc *Document, bounds *Bounds, report *Report) []*CityObject {
	pool := doc.objects
	if bounds != nil {
		pool = doc.ObjectsInBounds(*bounds)
	}

	var candidates []*CityObject
	for _, obj := range pool {
		if parser.IsRoofAreaCandidate(obj.Type()) {
			candidates = append(candidates, obj)
		}
	}

	if bounds != nil {
		total := 0
		for _, obj := range doc.objects {
			if parser.IsRoofAreaCandidate(obj.Type()) {
				total++
			}
		}
		report.Filtered = total - len(candidates)
	}
	return candidates
}

func evaluate(obj *parser.CityObject, vertices []mathutil.Vec3, opts parser.AreaOptions, validate bool) ObjectResult {
	r := parser.ComputeRoofArea(obj, vertices, opts)
	res := ObjectResult{
		ID:          obj.ID,
		Type:        obj.Type,
		Area:        r.Area,
		Faces:       r.Faces,
		Records:     r.Records,
		Unsupported: r.Unsupported,
		Skipped:     r.Skipped,
		Errors:      r.Errors,
	}
	if validate {
		res.Validation = parser.ValidateCityObject(obj, len(vertices))
	}
	return res
}

func logResult(log *slog.Logger, res ObjectResult) {
	for _, err := range res.Errors {
		log.Warn("geometry record skipped",
			"object", res.ID,
			"reason", SkipReason(err),
			"error", err)
	}
	if !res.Complete() {
		log.Warn("roof area is partial",
			"object", res.ID,
			"area", res.Area,
			"skipped_records", res.Skipped,
			"records", res.Records)
	}
	for _, err := range res.Validation {
		log.Warn("geometry validation failed", "object", res.ID, "error", err)
	}
	if res.Unsupported > 0 {
		log.Debug("unsupported geometry records ignored",
			"object", res.ID,
			"count", res.Unsupported)
	}
}

func notify(obs Observer, res ObjectResult) {
	if obs == nil {
		return
	}
	obs.ObjectProcessed(res.Type, res.Faces)
	for _, err := range res.Errors {
		obs.RecordSkipped(SkipReason(err))
	}
	for i := 0; i < res.Unsupported; i++ {
		obs.RecordSkipped(SkipReason(ErrUnsupportedGeometryType))
	}
}
