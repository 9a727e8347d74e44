// Package source reads and writes documents at local, zip:// and gs://
// locations.
package source

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Scheme identifies where a document lives.
type Scheme int

const (
	SchemeFile Scheme = iota
	SchemeZip
	SchemeGCS
)

func (s Scheme) String() string {
	switch s {
	case SchemeFile:
		return "file"
	case SchemeZip:
		return "zip"
	case SchemeGCS:
		return "gs"
	default:
		return "unknown"
	}
}

// Location is a parsed document location.
//
// Formats:
//
//	path/to/file.city.json
//	zip://path/to/archive.zip!entry.city.json
//	gs://bucket/path/to/object.city.json
type Location struct {
	Scheme Scheme
	Path   string // local file or zip archive
	Entry  string // entry within a zip archive
	Bucket string
	Object string
}

// Parse parses a location string.
func Parse(s string) (Location, error) {
	switch {
	case s == "":
		return Location{}, fmt.Errorf("empty location")

	case strings.HasPrefix(s, "zip://"):
		parts := strings.SplitN(strings.TrimPrefix(s, "zip://"), "!", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return Location{}, fmt.Errorf("invalid zip URL format: %s (expected zip://path!entry)", s)
		}
		return Location{Scheme: SchemeZip, Path: parts[0], Entry: parts[1]}, nil

	case strings.HasPrefix(s, "gs://"):
		parts := strings.SplitN(strings.TrimPrefix(s, "gs://"), "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return Location{}, fmt.Errorf("invalid GCS URL format: %s (expected gs://bucket/object)", s)
		}
		return Location{Scheme: SchemeGCS, Bucket: parts[0], Object: parts[1]}, nil

	default:
		return Location{Scheme: SchemeFile, Path: s}, nil
	}
}

// String formats the location back to its URL form.
func (l Location) String() string {
	switch l.Scheme {
	case SchemeZip:
		return "zip://" + l.Path + "!" + l.Entry
	case SchemeGCS:
		return "gs://" + l.Bucket + "/" + l.Object
	default:
		return l.Path
	}
}

// Writable reports whether documents can be written to this location.
// Zip archives are read only.
func (l Location) Writable() bool {
	return l.Scheme != SchemeZip
}

// Base returns the final element of the document name.
func (l Location) Base() string {
	switch l.Scheme {
	case SchemeZip:
		return path.Base(l.Entry)
	case SchemeGCS:
		return path.Base(l.Object)
	default:
		return filepath.Base(l.Path)
	}
}

// Join treats l as a directory (or object prefix) and appends name.
func (l Location) Join(name string) Location {
	switch l.Scheme {
	case SchemeGCS:
		l.Object = path.Join(l.Object, name)
	case SchemeZip:
		l.Entry = path.Join(l.Entry, name)
	default:
		l.Path = filepath.Join(l.Path, name)
	}
	return l
}
