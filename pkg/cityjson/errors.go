package cityjson

import (
	"errors"

	"github.com/tudelft3d/mrtools/internal/parser"
)

// Error types returned by parsing and processing. Match them with errors.As.
type (
	ErrDocumentParse          = parser.ErrDocumentParse
	ErrInvalidGeometry        = parser.ErrInvalidGeometry
	ErrSemanticsShapeMismatch = parser.ErrSemanticsShapeMismatch
	ErrGeometryIndex          = parser.ErrGeometryIndex
	GeometryError             = parser.GeometryError
)

// ErrUnsupportedGeometryType marks records of types other than Solid and
// MultiSurface. It is used for reporting only; such records never fail.
var ErrUnsupportedGeometryType = parser.ErrUnsupportedGeometryType

// Skip reasons reported to observers and in metrics labels.
const (
	ReasonShapeMismatch   = "semantics_shape_mismatch"
	ReasonVertexIndex     = "vertex_index"
	ReasonInvalidGeometry = "invalid_geometry"
	ReasonUnsupported     = "unsupported_type"
	ReasonOther           = "other"
)

// SkipReason classifies a per-record error.
func SkipReason(err error) string {
	var mismatch *ErrSemanticsShapeMismatch
	var index *ErrGeometryIndex
	var invalid *ErrInvalidGeometry
	switch {
	case errors.As(err, &mismatch):
		return ReasonShapeMismatch
	case errors.As(err, &index):
		return ReasonVertexIndex
	case errors.As(err, &invalid):
		return ReasonInvalidGeometry
	case errors.Is(err, ErrUnsupportedGeometryType):
		return ReasonUnsupported
	default:
		return ReasonOther
	}
}
