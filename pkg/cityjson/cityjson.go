package cityjson

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/tudelft3d/mrtools/internal/parser"
	"github.com/tudelft3d/mrtools/internal/source"
)

// RoofAreaAttribute is the attribute written by Process.
const RoofAreaAttribute = parser.RoofAreaAttribute

// Parser reads and writes CityJSON documents.
//
// Locations are local paths, zip://archive!entry (read only) or
// gs://bucket/object.
type Parser interface {
	// Parse reads and decodes the document at location.
	//
	// Returns *ErrDocumentParse if the document is structurally unusable.
	Parse(ctx context.Context, location string) (*Document, error)

	// Write encodes doc and writes it to location, replacing any existing
	// document. An empty indent produces compact output.
	Write(ctx context.Context, doc *Document, location string, indent string) error

	// Close releases remote storage clients.
	Close() error
}

// NewParser creates a new CityJSON parser.
//
// Example:
//
//	parser := cityjson.NewParser()
//	defer parser.Close()
//	doc, err := parser.Parse(ctx, "delft.city.json")
func NewParser() Parser {
	return &parserWrapper{
		store: source.NewStore(),
	}
}

// parserWrapper binds document decoding to a location store
type parserWrapper struct {
	store *source.Store
}

func (p *parserWrapper) Parse(ctx context.Context, location string) (*Document, error) {
	loc, err := source.Parse(location)
	if err != nil {
		return nil, err
	}
	data, err := p.store.ReadAll(ctx, loc)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func (p *parserWrapper) Write(ctx context.Context, doc *Document, location string, indent string) error {
	loc, err := source.Parse(location)
	if err != nil {
		return err
	}
	if !loc.Writable() {
		return fmt.Errorf("cannot write to %s: location is read only", location)
	}
	data, err := doc.Marshal(indent)
	if err != nil {
		return err
	}
	return p.store.WriteAll(ctx, loc, data)
}

func (p *parserWrapper) Close() error {
	return p.store.Close()
}

// Parse decodes a CityJSON document held in memory.
func Parse(data []byte) (*Document, error) {
	internal, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	return convertDocument(internal), nil
}

// Decode reads a whole CityJSON document from r.
func Decode(r io.Reader) (*Document, error) {
	internal, err := parser.Decode(r)
	if err != nil {
		return nil, err
	}
	return convertDocument(internal), nil
}

// Document is a parsed CityJSON document.
//
// Objects are available sorted by ID via Objects(), by key via Object(), or
// spatially via ObjectsInBounds(). The document is mutated only by Process.
type Document struct {
	internal *parser.Document
	objects  []*CityObject // sorted by ID
	byID     map[string]*CityObject
	rtree    *rtreego.Rtree
	bounds   Bounds
}

// CityObject is one city object of a document.
type CityObject struct {
	internal  *parser.CityObject
	bounds    Bounds
	hasBounds bool
}

func convertDocument(internal *parser.Document) *Document {
	doc := &Document{
		internal: internal,
		objects:  make([]*CityObject, 0, len(internal.Objects)),
		byID:     make(map[string]*CityObject, len(internal.Objects)),
	}
	for _, obj := range internal.Objects {
		wrapped := &CityObject{internal: obj}
		wrapped.bounds, wrapped.hasBounds = objectBounds(obj, internal.Vertices)
		doc.objects = append(doc.objects, wrapped)
		doc.byID[obj.ID] = wrapped
	}
	sortObjects(doc.objects)
	doc.buildSpatialIndex()
	return doc
}

func sortObjects(objects []*CityObject) {
	sort.Slice(objects, func(i, j int) bool {
		return objects[i].internal.ID < objects[j].internal.ID
	})
}

// Objects returns all city objects sorted by ID.
func (d *Document) Objects() []*CityObject {
	return d.objects
}

// ObjectCount returns the number of city objects.
func (d *Document) ObjectCount() int {
	return len(d.objects)
}

// Object returns the city object with the given key.
func (d *Document) Object(id string) (*CityObject, bool) {
	obj, ok := d.byID[id]
	return obj, ok
}

// VertexCount returns the size of the vertex table.
func (d *Document) VertexCount() int {
	return len(d.internal.Vertices)
}

// Marshal encodes the document. Members the engine does not interpret are
// written back unchanged.
func (d *Document) Marshal(indent string) ([]byte, error) {
	return parser.Marshal(d.internal, indent)
}

// Encode writes the encoded document to w.
func (d *Document) Encode(w io.Writer, indent string) error {
	return parser.Encode(w, d.internal, indent)
}

// ID returns the object's key in the CityObjects mapping.
func (o *CityObject) ID() string { return o.internal.ID }

// Type returns the CityJSON object type, e.g. "Building".
func (o *CityObject) Type() string { return o.internal.Type }

// GeometryCount returns the number of geometry records.
func (o *CityObject) GeometryCount() int { return len(o.internal.Geometry) }

// Footprint returns the 2D bounding box of the object's Solid and
// MultiSurface vertices. ok is false when the object has none.
func (o *CityObject) Footprint() (Bounds, bool) { return o.bounds, o.hasBounds }

// RoofArea returns the total_area_roof attribute, if set.
func (o *CityObject) RoofArea() (float64, bool) {
	return o.internal.FloatAttribute(RoofAreaAttribute)
}

// HasAttribute reports whether the object carries the attribute key.
func (o *CityObject) HasAttribute(key string) bool {
	return o.internal.HasAttribute(key)
}
