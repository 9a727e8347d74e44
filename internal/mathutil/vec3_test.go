package mathutil

import (
	"math"
	"testing"
)

func TestVec3Ops(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	if got := a.Add(b); got != (Vec3{5, 7, 9}) {
		t.Errorf("Add = %v", got)
	}
	if got := b.Sub(a); got != (Vec3{3, 3, 3}) {
		t.Errorf("Sub = %v", got)
	}
	if got := a.Mul(b); got != (Vec3{4, 10, 18}) {
		t.Errorf("Mul = %v", got)
	}
	// x cross y = z
	if got := (Vec3{1, 0, 0}).Cross(Vec3{0, 1, 0}); got != (Vec3{0, 0, 1}) {
		t.Errorf("Cross = %v", got)
	}
	if got := (Vec3{3, 4, 0}).Len(); math.Abs(got-5) > 1e-12 {
		t.Errorf("Len = %v", got)
	}
	if !a.Equal(Vec3{1, 2, 3}) || a.Equal(b) {
		t.Error("Equal mismatch")
	}
}
