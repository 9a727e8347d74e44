package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	r := New()

	r.ObjectProcessed("Building", 3)
	r.ObjectProcessed("Building", 0)
	r.ObjectProcessed("BuildingPart", 2)
	r.RecordSkipped("vertex_index")
	r.RecordSkipped("vertex_index")
	r.RecordSkipped("unsupported_type")

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"buildings", testutil.ToFloat64(r.ObjectsProcessed.WithLabelValues("Building")), 2},
		{"parts", testutil.ToFloat64(r.ObjectsProcessed.WithLabelValues("BuildingPart")), 1},
		{"faces", testutil.ToFloat64(r.RoofFaces), 5},
		{"vertex index", testutil.ToFloat64(r.RecordsSkipped.WithLabelValues("vertex_index")), 2},
		{"unsupported", testutil.ToFloat64(r.RecordsSkipped.WithLabelValues("unsupported_type")), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, tt.got)
		}
	}
}

// TestRecordersAreIndependent checks each run gets its own registry
func TestRecordersAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.RecordSkipped("other")
	if got := testutil.ToFloat64(b.RecordsSkipped.WithLabelValues("other")); got != 0 {
		t.Errorf("Expected independent registries, got %v", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.ObjectProcessed("Building", 1)
	r.ObserveDocument(250 * time.Millisecond)

	path := filepath.Join(t.TempDir(), "mrtools.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		`mrtools_objects_processed_total{type="Building"} 1`,
		`mrtools_roof_faces_total 1`,
		`mrtools_document_duration_seconds_count 1`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Expected %q in textfile:\n%s", want, data)
		}
	}
}
