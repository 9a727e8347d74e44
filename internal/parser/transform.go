package parser

import (
	"encoding/json"
	"fmt"

	"github.com/tudelft3d/mrtools/internal/mathutil"
)

// Transform decompresses stored integer vertices into real-world coordinates:
// real = stored*Scale + Translate, per axis.
type Transform struct {
	Scale     mathutil.Vec3
	Translate mathutil.Vec3
}

// IdentityTransform leaves vertices unchanged
func IdentityTransform() Transform {
	return Transform{Scale: mathutil.Vec3{1, 1, 1}}
}

// Apply transforms a single stored vertex
func (t Transform) Apply(v mathutil.Vec3) mathutil.Vec3 {
	return v.Mul(t.Scale).Add(t.Translate)
}

type rawTransform struct {
	Scale     []float64 `json:"scale"`
	Translate []float64 `json:"translate"`
}

func parseTransform(raw json.RawMessage) (*Transform, error) {
	var rt rawTransform
	if err := json.Unmarshal(raw, &rt); err != nil {
		return nil, &ErrDocumentParse{Reason: "malformed transform", Err: err}
	}
	if len(rt.Scale) != 3 {
		return nil, &ErrDocumentParse{Reason: fmt.Sprintf("transform scale must have 3 values, got %d", len(rt.Scale))}
	}
	if len(rt.Translate) != 3 {
		return nil, &ErrDocumentParse{Reason: fmt.Sprintf("transform translate must have 3 values, got %d", len(rt.Translate))}
	}
	return &Transform{
		Scale:     mathutil.Vec3{rt.Scale[0], rt.Scale[1], rt.Scale[2]},
		Translate: mathutil.Vec3{rt.Translate[0], rt.Translate[1], rt.Translate[2]},
	}, nil
}
