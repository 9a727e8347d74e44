package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// GeometryType represents the declared type of a CityJSON geometry record
type GeometryType int

const (
	GeometryTypeUnknown GeometryType = iota
	GeometryTypeMultiSurface
	GeometryTypeSolid
	// GeometryTypeOther covers every declared type this package does not walk
	// (MultiPoint, CompositeSolid, GeometryInstance, ...).
	GeometryTypeOther
)

// String returns the CityJSON name of the geometry type
func (t GeometryType) String() string {
	switch t {
	case GeometryTypeMultiSurface:
		return "MultiSurface"
	case GeometryTypeSolid:
		return "Solid"
	case GeometryTypeOther:
		return "Other"
	default:
		return "Unknown"
	}
}

// Supported reports whether roof faces can be extracted from this type
func (t GeometryType) Supported() bool {
	return t == GeometryTypeMultiSurface || t == GeometryTypeSolid
}

func geometryTypeFromName(name string) GeometryType {
	switch name {
	case "MultiSurface":
		return GeometryTypeMultiSurface
	case "Solid":
		return GeometryTypeSolid
	case "":
		return GeometryTypeUnknown
	default:
		return GeometryTypeOther
	}
}

// Geometry is one geometry record of a CityObject.
//
// Exactly one of MultiSurface or Solid carries the boundaries, chosen by Type:
//
//	MultiSurface: face -> ring -> vertex index
//	Solid:        shell -> face -> ring -> vertex index
type Geometry struct {
	Type     GeometryType
	TypeName string // type as declared in the document
	LoD      string

	MultiSurface [][][]int
	Solid        [][][][]int

	Semantics *Semantics

	// decodeErr is set when the record could not be decoded at the depth of
	// its declared type. The record is kept so the rest of the object survives.
	decodeErr error
}

// Err returns the decoding error of the record, if any
func (g *Geometry) Err() error {
	return g.decodeErr
}

// Semantics holds the semantic surfaces of a geometry record and the
// per-face index into them. Values mirrors the boundaries one level above
// the rings; a nil entry means the face has no semantic surface.
type Semantics struct {
	Surfaces []SemanticSurface

	Values      []*int   // MultiSurface
	SolidValues [][]*int // Solid
}

// SemanticSurface is one entry of the semantics surfaces table
type SemanticSurface struct {
	Type string `json:"type"`
}

// RoofSurface is the semantic surface type that contributes to roof area
const RoofSurface = "RoofSurface"

// hasValues reports whether a values array was present for the given type
func (s *Semantics) hasValues(t GeometryType) bool {
	if s == nil {
		return false
	}
	if t == GeometryTypeSolid {
		return s.SolidValues != nil
	}
	return s.Values != nil
}

// roofSurfaces returns the set of surface indexes whose type is RoofSurface,
// or nil when there are none.
func (s *Semantics) roofSurfaces() map[int]bool {
	if s == nil {
		return nil
	}
	var roofs map[int]bool
	for i, surface := range s.Surfaces {
		if surface.Type != RoofSurface {
			continue
		}
		if roofs == nil {
			roofs = make(map[int]bool)
		}
		roofs[i] = true
	}
	return roofs
}

type rawGeometry struct {
	Type       string          `json:"type"`
	LoD        json.RawMessage `json:"lod"`
	Boundaries json.RawMessage `json:"boundaries"`
	Semantics  *rawSemantics   `json:"semantics"`
}

type rawSemantics struct {
	Surfaces []SemanticSurface `json:"surfaces"`
	Values   json.RawMessage   `json:"values"`
}

// UnmarshalJSON decodes a geometry record. Malformed records never fail the
// enclosing document: the problem is stored and reported when the record is
// walked.
func (g *Geometry) UnmarshalJSON(data []byte) error {
	*g = Geometry{}

	var raw rawGeometry
	if err := json.Unmarshal(data, &raw); err != nil {
		g.decodeErr = &ErrInvalidGeometry{Reason: fmt.Sprintf("malformed geometry record: %v", err)}
		return nil
	}

	g.TypeName = raw.Type
	g.Type = geometryTypeFromName(raw.Type)
	g.LoD = decodeLoD(raw.LoD)

	if !g.Type.Supported() {
		return nil
	}

	var err error
	switch g.Type {
	case GeometryTypeMultiSurface:
		err = decodeOptional(raw.Boundaries, &g.MultiSurface)
	case GeometryTypeSolid:
		err = decodeOptional(raw.Boundaries, &g.Solid)
	}
	if err != nil {
		g.decodeErr = &ErrInvalidGeometry{
			Type:   g.Type,
			Reason: fmt.Sprintf("boundaries do not match %s nesting: %v", g.Type, err),
		}
		return nil
	}

	if raw.Semantics == nil {
		return nil
	}

	g.Semantics = &Semantics{Surfaces: raw.Semantics.Surfaces}
	switch g.Type {
	case GeometryTypeMultiSurface:
		err = decodeOptional(raw.Semantics.Values, &g.Semantics.Values)
	case GeometryTypeSolid:
		err = decodeOptional(raw.Semantics.Values, &g.Semantics.SolidValues)
	}
	if err != nil {
		g.decodeErr = &ErrSemanticsShapeMismatch{
			Shell:  -1,
			Reason: fmt.Sprintf("values do not match %s nesting: %v", g.Type, err),
		}
	}

	return nil
}

// decodeOptional leaves dst untouched for an absent or null member
func decodeOptional(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// decodeLoD normalises "lod" to a string. CityJSON 1.0 allowed a number,
// later versions require a string.
func decodeLoD(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(raw), `"`)
}
