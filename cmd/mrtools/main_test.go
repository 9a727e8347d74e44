package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// roofDocument has two buildings with flat MultiSurface roofs of 6 and 20 m²
// and a TINRelief.
const roofDocument = `{
  "type": "CityJSON",
  "version": "2.0",
  "CityObjects": {
    "b1": {"type": "Building", "geometry": [{"type": "MultiSurface", "lod": "2.2",
      "boundaries": [[[0, 1, 2, 3]]],
      "semantics": {"surfaces": [{"type": "RoofSurface"}], "values": [0]}}]},
    "b2": {"type": "Building", "geometry": [{"type": "MultiSurface", "lod": "2.2",
      "boundaries": [[[4, 5, 6, 7]]],
      "semantics": {"surfaces": [{"type": "RoofSurface"}], "values": [0]}}]},
    "b3": {"type": "BuildingPart"},
    "b4": {"type": "TINRelief"}
  },
  "vertices": [
    [0, 0, 5], [2, 0, 5], [2, 3, 5], [0, 3, 5],
    [100, 100, 8], [104, 100, 8], [104, 105, 8], [100, 105, 8]
  ]
}`

func writeDocument(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(roofDocument), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func roofAreas(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var doc struct {
		CityObjects map[string]struct {
			Attributes map[string]any `json:"attributes"`
		} `json:"CityObjects"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	areas := map[string]any{}
	for id, obj := range doc.CityObjects {
		if v, ok := obj.Attributes["total_area_roof"]; ok {
			areas[id] = v
		}
	}
	return areas
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	for _, arg := range []string{"--version", "-V"} {
		code, out, _ := runCLI(t, arg)
		if code != 0 || out != "mrtools version "+version+"\n" {
			t.Errorf("%s: code=%d out=%q", arg, code, out)
		}
	}
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"volume"}},
		{"no input", []string{"roofarea"}},
		{"bad flag", []string{"roofarea", "--nope", "x.json"}},
		{"bad bbox", []string{"roofarea", "--bbox", "1,2", "x.json"}},
		{"zip without output", []string{"roofarea", "zip://tiles.zip!a.json"}},
		{"zip output", []string{"roofarea", "a.json", "-o", "zip://out.zip!a.json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, _, _ := runCLI(t, tt.args...); code != 1 {
				t.Errorf("Expected exit 1, got %d", code)
			}
		})
	}
}

func TestRoofAreaSingleFile(t *testing.T) {
	dir := t.TempDir()
	in := writeDocument(t, dir, "in.city.json")
	out := filepath.Join(dir, "out.city.json")

	code, stdout, stderr := runCLI(t, "roofarea", in, "-o", out, "-v")
	if code != 0 {
		t.Fatalf("Expected exit 0, got %d: %s", code, stderr)
	}

	areas := roofAreas(t, out)
	want := map[string]float64{"b1": 6, "b2": 20, "b3": 0}
	if len(areas) != len(want) {
		t.Errorf("Expected %d roof areas, got %v", len(want), areas)
	}
	for id, w := range want {
		if got, _ := areas[id].(float64); got != w {
			t.Errorf("%s: expected %v, got %v", id, w, areas[id])
		}
	}
	if len(roofAreas(t, in)) != 0 {
		t.Error("Input must not be modified when -o is given")
	}

	for _, line := range []string{
		"Processing: " + in,
		"✓ Processed 4 CityObjects",
		"  b1 (Building): 6.00 m²",
		"  b2 (Building): 20.00 m²",
		"  b3 (BuildingPart): 0.00 m²",
		"  ... and 1 more objects",
		"✓ Output written to: " + out,
	} {
		if !strings.Contains(stdout, line+"\n") {
			t.Errorf("Expected line %q in output:\n%s", line, stdout)
		}
	}
}

func TestRoofAreaOverwritesInput(t *testing.T) {
	dir := t.TempDir()
	in := writeDocument(t, dir, "in.city.json")

	code, stdout, stderr := runCLI(t, "roofarea", in)
	if code != 0 {
		t.Fatalf("Expected exit 0, got %d: %s", code, stderr)
	}
	if strings.Contains(stdout, "Processed") {
		t.Error("Summary should only be printed in verbose mode")
	}
	if got := roofAreas(t, in)["b2"]; got != float64(20) {
		t.Errorf("Expected b2 = 20 in overwritten input, got %v", got)
	}
}

func TestRoofAreaBatch(t *testing.T) {
	dir := t.TempDir()
	a := writeDocument(t, dir, "a.city.json")
	b := writeDocument(t, dir, "b.city.json")
	missing := filepath.Join(dir, "missing.city.json")
	outDir := filepath.Join(dir, "out")
	metricsFile := filepath.Join(dir, "mrtools.prom")

	code, _, stderr := runCLI(t, "roofarea", a, missing, b,
		"-o", outDir, "--workers", "2", "--bbox", "-1,-1,10,10", "--metrics-file", metricsFile)
	if code != 1 {
		t.Errorf("Expected exit 1 because of the missing input, got %d", code)
	}
	if !strings.Contains(stderr, "File not found: "+missing) {
		t.Errorf("Expected missing-file error, got %q", stderr)
	}

	for _, name := range []string{"a.city.json", "b.city.json"} {
		areas := roofAreas(t, filepath.Join(outDir, name))
		if areas["b1"] != float64(6) {
			t.Errorf("%s: expected b1 = 6, got %v", name, areas["b1"])
		}
		if _, ok := areas["b2"]; ok {
			t.Errorf("%s: b2 lies outside --bbox and must be unchanged", name)
		}
	}

	data, err := os.ReadFile(metricsFile)
	if err != nil {
		t.Fatalf("metrics file: %v", err)
	}
	if !strings.Contains(string(data), `mrtools_objects_processed_total{type="Building"} 2`) {
		t.Errorf("Unexpected metrics:\n%s", data)
	}
}

func TestRoofAreaInvalidDocument(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bad.city.json")
	os.WriteFile(in, []byte(`{"type": "CityJSON", "CityObjects": {}}`), 0o644)

	code, _, stderr := runCLI(t, "roofarea", in)
	if code != 1 {
		t.Errorf("Expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr, "Invalid CityJSON file") {
		t.Errorf("Expected invalid-document error, got %q", stderr)
	}
}

func TestPlanJobs(t *testing.T) {
	jobs, err := planJobs([]string{"a.json", "gs://bucket/tiles/b.json", "zip://t.zip!c/d.json"}, "gs://bucket/out")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"gs://bucket/out/a.json", "gs://bucket/out/b.json", "gs://bucket/out/d.json"}
	for i, job := range jobs {
		if job.Output != want[i] {
			t.Errorf("job %d: expected %s, got %s", i, want[i], job.Output)
		}
	}

	jobs, err = planJobs([]string{"a.json"}, "")
	if err != nil || jobs[0].Output != "" {
		t.Errorf("Expected overwrite job, got %+v (%v)", jobs, err)
	}

	collisions := []struct {
		name   string
		inputs []string
		output string
	}{
		{"same base name", []string{"a/x.city.json", "b/x.city.json"}, "out"},
		{"same base name across schemes", []string{"x.city.json", "gs://bucket/tiles/x.city.json"}, "gs://bucket/out"},
		{"input given twice", []string{"a.json", "a.json"}, ""},
	}
	for _, tt := range collisions {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := planJobs(tt.inputs, tt.output); err == nil {
				t.Error("Expected error for colliding outputs")
			}
		})
	}
}

func TestRoofAreaOutputCollision(t *testing.T) {
	dir := t.TempDir()
	for _, sub := range []string{"a", "b"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatal(err)
		}
		writeDocument(t, filepath.Join(dir, sub), "x.city.json")
	}
	outDir := filepath.Join(dir, "out")

	code, stdout, stderr := runCLI(t, "roofarea",
		filepath.Join(dir, "a", "x.city.json"), filepath.Join(dir, "b", "x.city.json"), "-o", outDir)
	if code != 1 {
		t.Errorf("Expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr, "would both be written to") {
		t.Errorf("Expected collision error, got %q", stderr)
	}
	if strings.Contains(stdout, "Output written") {
		t.Errorf("Nothing should be written, got %q", stdout)
	}
	if _, err := os.Stat(outDir); !os.IsNotExist(err) {
		t.Errorf("Expected no output directory, got %v", err)
	}
}
