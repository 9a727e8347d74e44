package source

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cloud.google.com/go/storage"
)

// gcsWriteTimeout bounds a single object upload.
const gcsWriteTimeout = 50 * time.Second

// Store reads and writes whole documents. The GCS client is created on
// first use of a gs:// location and shared afterwards.
//
// A Store is safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	gcs       *storage.Client
	newClient func(ctx context.Context) (*storage.Client, error)
}

// NewStore creates a store using application default credentials for GCS.
func NewStore() *Store {
	return &Store{
		newClient: func(ctx context.Context) (*storage.Client, error) {
			return storage.NewClient(ctx)
		},
	}
}

// Close releases the GCS client, if one was created.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gcs == nil {
		return nil
	}
	err := s.gcs.Close()
	s.gcs = nil
	return err
}

func (s *Store) client(ctx context.Context) (*storage.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gcs != nil {
		return s.gcs, nil
	}
	c, err := s.newClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	s.gcs = c
	return c, nil
}

// ReadAll reads the whole document at loc.
func (s *Store) ReadAll(ctx context.Context, loc Location) ([]byte, error) {
	switch loc.Scheme {
	case SchemeZip:
		return readZipEntry(loc.Path, loc.Entry)
	case SchemeGCS:
		return s.readGCS(ctx, loc.Bucket, loc.Object)
	default:
		data, err := os.ReadFile(loc.Path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", loc.Path, err)
		}
		return data, nil
	}
}

// WriteAll replaces the document at loc with data.
func (s *Store) WriteAll(ctx context.Context, loc Location, data []byte) error {
	switch loc.Scheme {
	case SchemeZip:
		return fmt.Errorf("cannot write to %s: zip archives are read only", loc)
	case SchemeGCS:
		return s.writeGCS(ctx, loc.Bucket, loc.Object, data)
	default:
		return writeFileAtomic(loc.Path, data)
	}
}

// readZipEntry reads a single entry from a zip archive without extracting to disk.
func readZipEntry(zipPath, entryPath string) ([]byte, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var entry *zip.File
	for _, f := range r.File {
		if f.Name == entryPath {
			entry = f
			break
		}
	}
	if entry == nil {
		return nil, fmt.Errorf("file not found in zip: %s", entryPath)
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("open zip entry: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read zip entry %s: %w", entryPath, err)
	}
	return data, nil
}

// writeFileAtomic writes through a temp file in the target directory and
// renames it into place, so a failed write never truncates the original.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".mrtools-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func (s *Store) readGCS(ctx context.Context, bucket, object string) ([]byte, error) {
	c, err := s.client(ctx)
	if err != nil {
		return nil, err
	}
	r, err := c.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", bucket, object, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read gs://%s/%s: %w", bucket, object, err)
	}
	return data, nil
}

func (s *Store) writeGCS(ctx context.Context, bucket, object string, data []byte) error {
	c, err := s.client(ctx)
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, gcsWriteTimeout)
	defer cancel()

	w := c.Bucket(bucket).Object(object).NewWriter(writeCtx)
	w.ContentType = "application/city+json"

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return fmt.Errorf("io.Copy to GCS failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer (finalize upload): %w", err)
	}
	return nil
}
