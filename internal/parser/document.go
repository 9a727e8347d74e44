package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/tudelft3d/mrtools/internal/mathutil"
)

// Document is a CityJSON document held in memory.
//
// Only the members needed for roof-area computation are decoded. Everything
// else (metadata, extensions, appearance, object members other than type,
// geometry and attributes) is kept as raw JSON and written back unchanged.
type Document struct {
	// Vertices holds the vertex table with the transform already applied
	Vertices []mathutil.Vec3
	// Transform is nil when the document carries none
	Transform *Transform
	// Objects maps CityObject keys to objects
	Objects map[string]*CityObject

	members map[string]json.RawMessage
}

// CityObject is one entry of the CityObjects mapping
type CityObject struct {
	ID         string
	Type       string
	Geometry   []Geometry
	Attributes map[string]json.RawMessage

	members map[string]json.RawMessage
}

// SetFloatAttribute sets (or overwrites) a numeric attribute
func (o *CityObject) SetFloatAttribute(key string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("attribute %s: value %v is not representable in JSON", key, value)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("attribute %s: %w", key, err)
	}
	if o.Attributes == nil {
		o.Attributes = make(map[string]json.RawMessage)
	}
	o.Attributes[key] = data
	return nil
}

// FloatAttribute returns a numeric attribute
func (o *CityObject) FloatAttribute(key string) (float64, bool) {
	raw, ok := o.Attributes[key]
	if !ok {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}

// HasAttribute reports whether the attribute key is present
func (o *CityObject) HasAttribute(key string) bool {
	_, ok := o.Attributes[key]
	return ok
}

// Decode reads a whole CityJSON document from r
func Decode(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return Parse(data)
}

// Parse decodes a CityJSON document.
//
// Structural problems that leave nothing correct to compute (malformed JSON,
// missing CityObjects or vertices, a bad transform, a vertex that is not an
// [x, y, z] triple) return *ErrDocumentParse. Problems inside a single
// geometry record are kept on the record instead.
func Parse(data []byte) (*Document, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, &ErrDocumentParse{Reason: "malformed JSON", Err: err}
	}
	if members == nil {
		return nil, &ErrDocumentParse{Reason: "document is not a JSON object"}
	}

	if rawType, ok := members["type"]; ok {
		var docType string
		if err := json.Unmarshal(rawType, &docType); err != nil || docType != "CityJSON" {
			return nil, &ErrDocumentParse{Reason: fmt.Sprintf("type must be \"CityJSON\", got %s", bytes.TrimSpace(rawType))}
		}
	}

	rawObjects, ok := members["CityObjects"]
	if !ok {
		return nil, &ErrDocumentParse{Reason: "missing 'CityObjects'"}
	}
	rawVertices, ok := members["vertices"]
	if !ok {
		return nil, &ErrDocumentParse{Reason: "missing 'vertices'"}
	}

	doc := &Document{members: members}

	transform := IdentityTransform()
	if rawTransform, ok := members["transform"]; ok {
		t, err := parseTransform(rawTransform)
		if err != nil {
			return nil, err
		}
		doc.Transform = t
		transform = *t
	}

	vertices, err := parseVertices(rawVertices, transform)
	if err != nil {
		return nil, err
	}
	doc.Vertices = vertices

	objects, err := parseCityObjects(rawObjects)
	if err != nil {
		return nil, err
	}
	doc.Objects = objects

	return doc, nil
}

func parseVertices(raw json.RawMessage, transform Transform) ([]mathutil.Vec3, error) {
	var stored [][]float64
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, &ErrDocumentParse{Reason: "malformed 'vertices'", Err: err}
	}
	vertices := make([]mathutil.Vec3, len(stored))
	for i, v := range stored {
		if len(v) != 3 {
			return nil, &ErrDocumentParse{Reason: fmt.Sprintf("vertex %d must have 3 coordinates, got %d", i, len(v))}
		}
		vertices[i] = transform.Apply(mathutil.Vec3{v[0], v[1], v[2]})
	}
	return vertices, nil
}

func parseCityObjects(raw json.RawMessage) (map[string]*CityObject, error) {
	var rawObjects map[string]json.RawMessage
	if err := json.Unmarshal(raw, &rawObjects); err != nil {
		return nil, &ErrDocumentParse{Reason: "malformed 'CityObjects'", Err: err}
	}

	objects := make(map[string]*CityObject, len(rawObjects))
	for id, rawObject := range rawObjects {
		obj, err := parseCityObject(id, rawObject)
		if err != nil {
			return nil, err
		}
		objects[id] = obj
	}
	return objects, nil
}

func parseCityObject(id string, raw json.RawMessage) (*CityObject, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil || members == nil {
		return nil, &ErrDocumentParse{Reason: fmt.Sprintf("CityObject %q is not a JSON object", id), Err: err}
	}

	obj := &CityObject{ID: id, members: members}

	if rawType, ok := members["type"]; ok {
		if err := json.Unmarshal(rawType, &obj.Type); err != nil {
			return nil, &ErrDocumentParse{Reason: fmt.Sprintf("CityObject %q: type must be a string", id), Err: err}
		}
	}
	if rawGeometry, ok := members["geometry"]; ok {
		if err := decodeOptional(rawGeometry, &obj.Geometry); err != nil {
			return nil, &ErrDocumentParse{Reason: fmt.Sprintf("CityObject %q: geometry must be an array", id), Err: err}
		}
	}
	if rawAttributes, ok := members["attributes"]; ok {
		if err := decodeOptional(rawAttributes, &obj.Attributes); err != nil {
			return nil, &ErrDocumentParse{Reason: fmt.Sprintf("CityObject %q: attributes must be an object", id), Err: err}
		}
	}

	return obj, nil
}

// Marshal encodes the document, writing back every object's attributes.
// An empty indent produces compact output.
func Marshal(doc *Document, indent string) ([]byte, error) {
	objects := make(map[string]map[string]json.RawMessage, len(doc.Objects))
	for id, obj := range doc.Objects {
		members := make(map[string]json.RawMessage, len(obj.members)+1)
		for k, v := range obj.members {
			members[k] = v
		}
		if obj.Attributes != nil {
			attrs, err := json.Marshal(obj.Attributes)
			if err != nil {
				return nil, fmt.Errorf("CityObject %q: encode attributes: %w", id, err)
			}
			members["attributes"] = attrs
		}
		objects[id] = members
	}

	rawObjects, err := json.Marshal(objects)
	if err != nil {
		return nil, fmt.Errorf("encode CityObjects: %w", err)
	}

	top := make(map[string]json.RawMessage, len(doc.members))
	for k, v := range doc.members {
		top[k] = v
	}
	top["CityObjects"] = rawObjects

	if indent == "" {
		return json.Marshal(top)
	}
	return json.MarshalIndent(top, "", indent)
}

// Encode writes the document to w
func Encode(w io.Writer, doc *Document, indent string) error {
	data, err := Marshal(doc, indent)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}
