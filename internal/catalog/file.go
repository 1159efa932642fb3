package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

const manifestExt = ".json"

// FileCatalog stores one JSON manifest per day under a directory. It lets
// a separate serve process see days written by correlate without any
// external service.
type FileCatalog struct {
	mu  sync.Mutex
	dir string
}

// NewFileCatalog creates dir if needed
func NewFileCatalog(dir string) (*FileCatalog, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}
	return &FileCatalog{dir: dir}, nil
}

func (c *FileCatalog) path(day int) string {
	return filepath.Join(c.dir, strconv.Itoa(day)+manifestExt)
}

// Put writes the manifest to a temp file and renames it into place
func (c *FileCatalog) Put(_ context.Context, m *Manifest) error {
	if err := validate(m); err != nil {
		return err
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	dst := c.path(m.Day)
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to commit manifest: %w", err)
	}
	return nil
}

func (c *FileCatalog) Get(_ context.Context, day int) (*Manifest, error) {
	return c.read(c.path(day), day)
}

func (c *FileCatalog) read(path string, day int) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(day)
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest %s: %w", path, err)
	}
	return &m, nil
}

// List skips files that are not day manifests
func (c *FileCatalog) List(_ context.Context) ([]*Manifest, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}

	out := make([]*Manifest, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, manifestExt) {
			continue
		}
		day, err := strconv.Atoi(strings.TrimSuffix(name, manifestExt))
		if err != nil {
			continue
		}

		m, err := c.read(filepath.Join(c.dir, name), day)
		if err != nil {
			continue
		}
		out = append(out, m)
	}

	sortByDay(out)
	return out, nil
}

func (c *FileCatalog) Delete(_ context.Context, day int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(c.path(day)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return notFound(day)
		}
		return fmt.Errorf("failed to delete manifest: %w", err)
	}
	return nil
}

func (c *FileCatalog) Close() error { return nil }
