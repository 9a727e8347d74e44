package parser

import (
	"encoding/json"
	"testing"
)

// TestGeometryTypeSupported tests which record types are walked
func TestGeometryTypeSupported(t *testing.T) {
	tests := []struct {
		name     string
		expected GeometryType
		walked   bool
	}{
		{"MultiSurface", GeometryTypeMultiSurface, true},
		{"Solid", GeometryTypeSolid, true},
		{"CompositeSurface", GeometryTypeOther, false},
		{"GeometryInstance", GeometryTypeOther, false},
		{"", GeometryTypeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := geometryTypeFromName(tt.name)
			if got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
			if got.Supported() != tt.walked {
				t.Errorf("Expected Supported() = %v for %q", tt.walked, tt.name)
			}
		})
	}
}

// TestDecodeLoD tests string and numeric lod members
func TestDecodeLoD(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{`"2.2"`, "2.2"},
		{`2`, "2"},
		{`1.3`, "1.3"},
		{`null`, ""},
		{``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := decodeLoD(json.RawMessage(tt.raw)); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

// TestRoofSurfaceTable tests lookup of RoofSurface entries
func TestRoofSurfaceTable(t *testing.T) {
	s := &Semantics{Surfaces: []SemanticSurface{
		{Type: "GroundSurface"},
		{Type: RoofSurface},
		{Type: "WallSurface"},
		{Type: RoofSurface},
	}}

	roofs := s.roofSurfaces()
	if len(roofs) != 2 || !roofs[1] || !roofs[3] {
		t.Errorf("Expected roof surfaces {1, 3}, got %v", roofs)
	}

	noRoof := &Semantics{Surfaces: []SemanticSurface{{Type: "WallSurface"}}}
	if got := noRoof.roofSurfaces(); got != nil {
		t.Errorf("Expected nil without roof surfaces, got %v", got)
	}

	var absent *Semantics
	if absent.roofSurfaces() != nil || absent.hasValues(GeometryTypeSolid) {
		t.Error("Expected nil semantics to have no roofs and no values")
	}
}

// TestGeometryNullMembers tests that null boundaries and values decode as absent
func TestGeometryNullMembers(t *testing.T) {
	var g Geometry
	data := `{"type": "MultiSurface", "lod": "2", "boundaries": null,
		"semantics": {"surfaces": [{"type": "RoofSurface"}], "values": null}}`
	if err := json.Unmarshal([]byte(data), &g); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if g.Err() != nil {
		t.Errorf("Expected no decode error, got %v", g.Err())
	}
	if g.MultiSurface != nil {
		t.Errorf("Expected nil boundaries, got %v", g.MultiSurface)
	}
	if g.Semantics == nil || g.Semantics.hasValues(GeometryTypeMultiSurface) {
		t.Error("Expected semantics without values")
	}
}
