package parser

import (
	"errors"
	"fmt"
)

// ErrUnsupportedGeometryType marks a geometry record whose type is neither
// Solid nor MultiSurface. Such records contribute nothing and are skipped.
var ErrUnsupportedGeometryType = errors.New("unsupported geometry type")

// ErrDocumentParse indicates the top-level document cannot be used at all
type ErrDocumentParse struct {
	Reason string
	Err    error
}

func (e *ErrDocumentParse) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid CityJSON document: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid CityJSON document: %s", e.Reason)
}

func (e *ErrDocumentParse) Unwrap() error {
	return e.Err
}

// ErrInvalidGeometry indicates a geometry record whose boundaries do not
// match the nesting depth of its declared type
type ErrInvalidGeometry struct {
	Type   GeometryType
	Reason string
}

func (e *ErrInvalidGeometry) Error() string {
	if e.Type != GeometryTypeUnknown {
		return fmt.Sprintf("invalid geometry (%v): %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("invalid geometry: %s", e.Reason)
}

// ErrSemanticsShapeMismatch indicates the semantics values do not mirror the
// boundaries, or reference a surface that does not exist
type ErrSemanticsShapeMismatch struct {
	Level      string // "shells" or "faces"
	Shell      int    // shell of a face-level mismatch in a Solid, -1 otherwise
	Boundaries int
	Values     int
	Reason     string
}

func (e *ErrSemanticsShapeMismatch) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("semantics shape mismatch: %s", e.Reason)
	}
	if e.Shell >= 0 {
		return fmt.Sprintf("semantics shape mismatch in shell %d: %d %s in boundaries, %d in values",
			e.Shell, e.Boundaries, e.Level, e.Values)
	}
	return fmt.Sprintf("semantics shape mismatch: %d %s in boundaries, %d in values",
		e.Boundaries, e.Level, e.Values)
}

// ErrGeometryIndex indicates a boundary references a vertex outside the vertex table
type ErrGeometryIndex struct {
	Shell       int
	Face        int
	Ring        int
	Index       int
	VertexCount int
}

func (e *ErrGeometryIndex) Error() string {
	return fmt.Sprintf("vertex index %d out of range [0, %d) at shell %d, face %d, ring %d",
		e.Index, e.VertexCount, e.Shell, e.Face, e.Ring)
}
