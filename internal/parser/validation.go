package parser

import (
	"fmt"
)

// ValidateGeometry checks a whole geometry record: that it decoded at the
// depth of its declared type, that its semantics mirror its boundaries and
// that every ring of every face (roof or not) references existing vertices.
//
// Unsupported geometry types are not checked and return nil.
func ValidateGeometry(g *Geometry, vertexCount int) error {
	if g == nil {
		return &ErrInvalidGeometry{Reason: "geometry is nil"}
	}
	if !g.Type.Supported() {
		return nil
	}
	if g.decodeErr != nil {
		return g.decodeErr
	}

	// Shape only matters when there is something to zip
	if g.Semantics.hasValues(g.Type) {
		if _, err := zipSurfaces(g); err != nil {
			return err
		}
	}

	check := func(shell, face int, rings [][]int) error {
		for r, ring := range rings {
			for _, idx := range ring {
				if idx < 0 || idx >= vertexCount {
					return &ErrGeometryIndex{Shell: shell, Face: face, Ring: r, Index: idx, VertexCount: vertexCount}
				}
			}
		}
		return nil
	}

	switch g.Type {
	case GeometryTypeMultiSurface:
		for f, rings := range g.MultiSurface {
			if err := check(0, f, rings); err != nil {
				return err
			}
		}
	case GeometryTypeSolid:
		for s, shell := range g.Solid {
			for f, rings := range shell {
				if err := check(s, f, rings); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// ValidateCityObject validates every geometry record of obj
func ValidateCityObject(obj *CityObject, vertexCount int) []error {
	if obj == nil {
		return []error{fmt.Errorf("CityObject is nil")}
	}
	var errs []error
	for i := range obj.Geometry {
		if err := ValidateGeometry(&obj.Geometry[i], vertexCount); err != nil {
			errs = append(errs, &GeometryError{Object: obj.ID, Geometry: i, Err: err})
		}
	}
	return errs
}
