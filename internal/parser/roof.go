package parser

import (
	"fmt"

	"github.com/tudelft3d/mrtools/internal/mathutil"
)

// RoofAreaAttribute is the attribute that receives the total roof area
const RoofAreaAttribute = "total_area_roof"

// IsRoofAreaCandidate reports whether objects of this type get a roof area
func IsRoofAreaCandidate(objectType string) bool {
	return objectType == "Building" || objectType == "BuildingPart"
}

// AreaOptions configures roof-area aggregation
type AreaOptions struct {
	// LoD restricts the computation to geometry records of this level of
	// detail (e.g. "2.2"). Empty means every record participates.
	LoD string

	// SubtractHoles subtracts inner-ring area from each roof face.
	// Default false: only the outer ring of a face is measured.
	SubtractHoles bool
}

// RoofAreaResult is the outcome of aggregating one CityObject
type RoofAreaResult struct {
	Area        float64
	Faces       int // roof faces that contributed
	Records     int // Solid/MultiSurface records evaluated
	Unsupported int // records of other geometry types
	Skipped     int // records dropped because of a data error
	Errors      []error
}

// Complete reports whether every evaluated record contributed
func (r RoofAreaResult) Complete() bool {
	return r.Skipped == 0
}

// GeometryError attaches the owning object and record position to a
// per-record data error
type GeometryError struct {
	Object   string
	Geometry int
	Err      error
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("CityObject %q geometry %d: %v", e.Object, e.Geometry, e.Err)
}

func (e *GeometryError) Unwrap() error {
	return e.Err
}

// ComputeRoofArea sums the area of every RoofSurface face over all geometry
// records of obj.
//
// The result is 0 when the object has no geometry, no semantics, or no roof
// faces. A record that fails with a data error contributes nothing: its
// partial sum is discarded and the error is recorded, while the other records
// still count.
func ComputeRoofArea(obj *CityObject, vertices []mathutil.Vec3, opts AreaOptions) RoofAreaResult {
	var result RoofAreaResult

	for i := range obj.Geometry {
		g := &obj.Geometry[i]
		if !g.Type.Supported() {
			result.Unsupported++
			continue
		}
		if opts.LoD != "" && g.LoD != opts.LoD {
			continue
		}
		result.Records++

		var recordArea float64
		var recordFaces int
		var recordErr error
		for face, err := range RoofFaces(g, vertices, opts.SubtractHoles) {
			if err != nil {
				recordErr = err
				break
			}
			if opts.SubtractHoles {
				recordArea += SurfaceArea(face.Outer, face.Holes)
			} else {
				recordArea += PolygonArea(face.Outer)
			}
			recordFaces++
		}

		if recordErr != nil {
			result.Skipped++
			result.Errors = append(result.Errors, &GeometryError{Object: obj.ID, Geometry: i, Err: recordErr})
			continue
		}
		result.Area += recordArea
		result.Faces += recordFaces
	}

	return result
}
