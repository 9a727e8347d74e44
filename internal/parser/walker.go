package parser

import (
	"errors"
	"fmt"
	"iter"

	"github.com/tudelft3d/mrtools/internal/mathutil"
)

// RoofFace is one face of a geometry record classified as RoofSurface,
// with its rings resolved against the vertex table.
type RoofFace struct {
	Shell int // always 0 for MultiSurface
	Face  int
	Outer []mathutil.Vec3
	Holes [][]mathutil.Vec3
}

// surface is a face zipped with its semantic index. Solid and MultiSurface
// records are both normalised to a flat list of these.
type surface struct {
	shell    int
	face     int
	rings    [][]int
	semantic *int
}

// RoofFaces walks a geometry record and yields every face whose semantic
// surface is a RoofSurface.
//
// The sequence is empty for unsupported geometry types and for records
// without semantics or without any RoofSurface entry. A record whose
// semantics do not mirror its boundaries yields a single
// *ErrSemanticsShapeMismatch. A vertex index outside the vertex table yields
// *ErrGeometryIndex and ends the sequence.
//
// Inner rings are resolved only when withHoles is set; otherwise
// RoofFace.Holes is nil and hole indexes are not checked.
//
// Malformed boundaries always yield their error. Malformed semantics values
// are only reported when the surfaces table has a RoofSurface entry, the
// same as a values array of the wrong length.
func RoofFaces(g *Geometry, vertices []mathutil.Vec3, withHoles bool) iter.Seq2[RoofFace, error] {
	return func(yield func(RoofFace, error) bool) {
		if g == nil || !g.Type.Supported() {
			return
		}
		var mismatch *ErrSemanticsShapeMismatch
		if g.decodeErr != nil && !errors.As(g.decodeErr, &mismatch) {
			yield(RoofFace{}, g.decodeErr)
			return
		}
		roofs := g.Semantics.roofSurfaces()
		if len(roofs) == 0 {
			return
		}
		if g.decodeErr != nil {
			yield(RoofFace{}, g.decodeErr)
			return
		}
		if !g.Semantics.hasValues(g.Type) {
			return
		}

		surfaces, err := zipSurfaces(g)
		if err != nil {
			yield(RoofFace{}, err)
			return
		}

		for _, s := range surfaces {
			if s.semantic == nil || !roofs[*s.semantic] || len(s.rings) == 0 {
				continue
			}
			face, err := resolveFace(s, vertices, withHoles)
			if err != nil {
				yield(RoofFace{}, err)
				return
			}
			if !yield(face, nil) {
				return
			}
		}
	}
}

// ExtractRoofRings collects the outer ring of every roof face of a record
func ExtractRoofRings(g *Geometry, vertices []mathutil.Vec3) ([][]mathutil.Vec3, error) {
	var rings [][]mathutil.Vec3
	for face, err := range RoofFaces(g, vertices, false) {
		if err != nil {
			return nil, err
		}
		rings = append(rings, face.Outer)
	}
	return rings, nil
}

// zipSurfaces pairs every face of the boundaries with its semantic index,
// validating once that values mirrors boundaries.
func zipSurfaces(g *Geometry) ([]surface, error) {
	sem := g.Semantics
	var surfaces []surface

	switch g.Type {
	case GeometryTypeMultiSurface:
		if err := checkFaces(-1, len(g.MultiSurface), len(sem.Values)); err != nil {
			return nil, err
		}
		surfaces = make([]surface, 0, len(g.MultiSurface))
		for i, rings := range g.MultiSurface {
			surfaces = append(surfaces, surface{shell: 0, face: i, rings: rings, semantic: sem.Values[i]})
		}

	case GeometryTypeSolid:
		if len(sem.SolidValues) != len(g.Solid) {
			return nil, &ErrSemanticsShapeMismatch{
				Level:      "shells",
				Shell:      -1,
				Boundaries: len(g.Solid),
				Values:     len(sem.SolidValues),
			}
		}
		for s, shell := range g.Solid {
			if err := checkFaces(s, len(shell), len(sem.SolidValues[s])); err != nil {
				return nil, err
			}
			for i, rings := range shell {
				surfaces = append(surfaces, surface{shell: s, face: i, rings: rings, semantic: sem.SolidValues[s][i]})
			}
		}
	}

	for _, s := range surfaces {
		if s.semantic != nil && (*s.semantic < 0 || *s.semantic >= len(sem.Surfaces)) {
			return nil, &ErrSemanticsShapeMismatch{
				Shell: -1,
				Reason: fmt.Sprintf("shell %d face %d references surface %d, table has %d",
					s.shell, s.face, *s.semantic, len(sem.Surfaces)),
			}
		}
	}

	return surfaces, nil
}

func checkFaces(shell, boundaries, values int) error {
	if boundaries == values {
		return nil
	}
	return &ErrSemanticsShapeMismatch{
		Level:      "faces",
		Shell:      shell,
		Boundaries: boundaries,
		Values:     values,
	}
}

// resolveFace turns the vertex indexes of the outer ring, and of the inner
// rings when withHoles is set, into points
func resolveFace(s surface, vertices []mathutil.Vec3, withHoles bool) (RoofFace, error) {
	face := RoofFace{Shell: s.shell, Face: s.face}
	rings := s.rings
	if !withHoles {
		rings = rings[:1]
	}
	for r, ring := range rings {
		points, err := resolveRing(ring, vertices)
		if err != nil {
			err.Shell, err.Face, err.Ring = s.shell, s.face, r
			return RoofFace{}, err
		}
		if r == 0 {
			face.Outer = points
		} else {
			face.Holes = append(face.Holes, points)
		}
	}
	return face, nil
}

func resolveRing(ring []int, vertices []mathutil.Vec3) ([]mathutil.Vec3, *ErrGeometryIndex) {
	points := make([]mathutil.Vec3, len(ring))
	for i, idx := range ring {
		if idx < 0 || idx >= len(vertices) {
			return nil, &ErrGeometryIndex{Index: idx, VertexCount: len(vertices)}
		}
		points[i] = vertices[idx]
	}
	return points, nil
}
