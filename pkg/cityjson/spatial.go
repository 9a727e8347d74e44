package cityjson

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dhconnelly/rtreego"

	"github.com/tudelft3d/mrtools/internal/mathutil"
	"github.com/tudelft3d/mrtools/internal/parser"
)

// Bounds represents a 2D bounding box in the document's coordinate
// reference system (after the transform is applied).
type Bounds struct {
	MinX float64 // Western edge
	MinY float64 // Southern edge
	MaxX float64 // Eastern edge
	MaxY float64 // Northern edge
}

// Intersects returns true if the given bounds intersects with this bounds.
func (b Bounds) Intersects(other Bounds) bool {
	return !(other.MaxX < b.MinX ||
		other.MinX > b.MaxX ||
		other.MaxY < b.MinY ||
		other.MinY > b.MaxY)
}

// Expand returns a new Bounds expanded by the given margin in all directions.
func (b Bounds) Expand(margin float64) Bounds {
	return Bounds{
		MinX: b.MinX - margin,
		MinY: b.MinY - margin,
		MaxX: b.MaxX + margin,
		MaxY: b.MaxY + margin,
	}
}

// Union returns the smallest bounds containing both b and other.
func (b Bounds) Union(other Bounds) Bounds {
	return Bounds{
		MinX: min(b.MinX, other.MinX),
		MinY: min(b.MinY, other.MinY),
		MaxX: max(b.MaxX, other.MaxX),
		MaxY: max(b.MaxY, other.MaxY),
	}
}

// ParseBounds parses "minx,miny,maxx,maxy".
func ParseBounds(s string) (Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Bounds{}, fmt.Errorf("invalid bounds %q (expected minx,miny,maxx,maxy)", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Bounds{}, fmt.Errorf("invalid bounds %q: %w", s, err)
		}
		v[i] = f
	}
	b := Bounds{MinX: v[0], MinY: v[1], MaxX: v[2], MaxY: v[3]}
	if b.MinX > b.MaxX || b.MinY > b.MaxY {
		return Bounds{}, fmt.Errorf("invalid bounds %q: min exceeds max", s)
	}
	return b, nil
}

// objectBounds calculates the 2D footprint of every vertex referenced by the
// object's Solid and MultiSurface records. Indices outside the vertex table
// are ignored. ok is false when no vertex is referenced.
func objectBounds(obj *parser.CityObject, vertices []mathutil.Vec3) (bounds Bounds, ok bool) {
	add := func(i int) {
		if i < 0 || i >= len(vertices) {
			return
		}
		v := vertices[i]
		if !ok {
			bounds = Bounds{MinX: v[0], MinY: v[1], MaxX: v[0], MaxY: v[1]}
			ok = true
			return
		}
		bounds.MinX = min(bounds.MinX, v[0])
		bounds.MinY = min(bounds.MinY, v[1])
		bounds.MaxX = max(bounds.MaxX, v[0])
		bounds.MaxY = max(bounds.MaxY, v[1])
	}
	addFace := func(rings [][]int) {
		for _, ring := range rings {
			for _, i := range ring {
				add(i)
			}
		}
	}

	for _, g := range obj.Geometry {
		switch g.Type {
		case parser.GeometryTypeMultiSurface:
			for _, face := range g.MultiSurface {
				addFace(face)
			}
		case parser.GeometryTypeSolid:
			for _, shell := range g.Solid {
				for _, face := range shell {
					addFace(face)
				}
			}
		}
	}
	return bounds, ok
}

// footprintEpsilon keeps R-tree rectangles non-degenerate for vertical or
// single-point footprints (1 mm in metric reference systems).
const footprintEpsilon = 0.001

func toRect(b Bounds) rtreego.Rect {
	point := rtreego.Point{b.MinX, b.MinY}

	// R-tree requires non-zero dimensions
	width := max(b.MaxX-b.MinX, footprintEpsilon)
	height := max(b.MaxY-b.MinY, footprintEpsilon)

	rect, _ := rtreego.NewRect(point, []float64{width, height})
	return rect
}

// indexedObject wraps a CityObject for R-tree storage.
type indexedObject struct {
	object *CityObject
	bounds Bounds
}

// Bounds implements rtreego.Spatial interface.
func (o *indexedObject) Bounds() rtreego.Rect {
	return toRect(o.bounds)
}

// buildSpatialIndex creates an R-tree over the object footprints and
// computes the document bounds.
func (d *Document) buildSpatialIndex() {
	// Create R-tree (2D, min=25 children, max=50 children)
	rtree := rtreego.NewTree(2, 25, 50)

	var docBounds *Bounds
	for _, obj := range d.objects {
		if !obj.hasBounds {
			continue
		}
		rtree.Insert(&indexedObject{object: obj, bounds: obj.bounds})

		if docBounds == nil {
			b := obj.bounds
			docBounds = &b
		} else {
			*docBounds = docBounds.Union(obj.bounds)
		}
	}

	d.rtree = rtree
	if docBounds != nil {
		d.bounds = *docBounds
	}
}

// Bounds returns the union of all object footprints.
//
// Objects without Solid or MultiSurface geometry do not contribute. A
// document with no such geometry has zero bounds.
func (d *Document) Bounds() Bounds {
	return d.bounds
}

// ObjectsInBounds returns the objects whose footprint intersects bounds,
// sorted by ID.
//
// Example:
//
//	tile := cityjson.Bounds{MinX: 85000, MinY: 446000, MaxX: 85500, MaxY: 446500}
//	for _, obj := range doc.ObjectsInBounds(tile) {
//	    fmt.Println(obj.ID())
//	}
func (d *Document) ObjectsInBounds(bounds Bounds) []*CityObject {
	if d.rtree == nil {
		return d.objectsInBoundsLinear(bounds)
	}

	// Pad the query so rectangles touching its edges are found too
	spatials := d.rtree.SearchIntersect(toRect(bounds.Expand(footprintEpsilon)))

	result := make([]*CityObject, 0, len(spatials))
	for _, spatial := range spatials {
		indexed := spatial.(*indexedObject)
		// Rectangles are padded; confirm against the real footprint
		if bounds.Intersects(indexed.bounds) {
			result = append(result, indexed.object)
		}
	}
	sortObjects(result)
	return result
}

// objectsInBoundsLinear performs linear search when no spatial index exists.
func (d *Document) objectsInBoundsLinear(bounds Bounds) []*CityObject {
	var result []*CityObject
	for _, obj := range d.objects {
		if obj.hasBounds && bounds.Intersects(obj.bounds) {
			result = append(result, obj)
		}
	}
	return result
}
