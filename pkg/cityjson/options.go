package cityjson

import (
	"io"
	"log/slog"
	"runtime"
)

// ProcessOptions configures roof-area processing of a document.
type ProcessOptions struct {
	// Workers bounds the number of objects evaluated concurrently.
	// If 0, defaults to runtime.NumCPU(). 1 is fully sequential.
	Workers int

	// LoD restricts evaluation to geometry records of this level of detail.
	// Empty evaluates every record.
	LoD string

	// SubtractHoles subtracts inner rings from each roof face.
	// Default false: only outer rings are measured.
	SubtractHoles bool

	// Bounds, when set, restricts processing to objects whose footprint
	// intersects it. Other objects are left untouched.
	Bounds *Bounds

	// ValidateGeometry checks every face of every record, including
	// non-roof faces, and reports problems as warnings.
	ValidateGeometry bool

	// Logger receives per-record warnings. If nil, the process logger
	// configured by LOG_LEVEL and LOG_FORMAT is used.
	Logger *slog.Logger

	// Observer is notified of every evaluated object. Optional.
	Observer Observer
}

// DefaultProcessOptions returns process options with sensible defaults.
func DefaultProcessOptions() ProcessOptions {
	return ProcessOptions{
		Workers:          runtime.NumCPU(),
		ValidateGeometry: false,
	}
}

// LoadOptions controls batch processing of several documents.
type LoadOptions struct {
	// Parallel enables concurrent document processing.
	Parallel bool

	// Workers specifies the number of documents processed at once.
	// If 0, defaults to runtime.NumCPU().
	// Only used when Parallel is true.
	Workers int

	// SkipErrors causes the batch to continue when individual documents fail.
	// When false, the first error stops the batch.
	SkipErrors bool

	// Progress is an optional callback called after each document.
	// Parameters: (done, total).
	Progress func(done, total int)

	// ErrorLog is an optional writer for per-document error details.
	ErrorLog io.Writer
}

// DefaultLoadOptions returns load options with sensible defaults.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Parallel:   true,
		Workers:    runtime.NumCPU(),
		SkipErrors: true,
		Progress:   nil,
		ErrorLog:   nil,
	}
}

// Observer receives processing events. Implementations must be safe for
// concurrent use when documents are processed in parallel.
type Observer interface {
	// ObjectProcessed is called once per object that received a roof area.
	ObjectProcessed(objectType string, faces int)

	// RecordSkipped is called once per geometry record that contributed
	// nothing, with a reason from SkipReason.
	RecordSkipped(reason string)
}
