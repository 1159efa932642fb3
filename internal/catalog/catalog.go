// Package catalog records which days have a computed correlation matrix
// and how each matrix was written.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/soltixdb/correlator/internal/config"
)

// ErrNotFound is returned when a day has no manifest
var ErrNotFound = errors.New("day not found in catalog")

// Supported catalog.type values
const (
	TypeFile   = "file"
	TypeMemory = "memory"
	TypeEtcd   = "etcd"
)

// Manifest describes one computed day. Format and Compression record the
// codec options the matrix was written with so readers never guess.
type Manifest struct {
	Day         int       `json:"day"`
	Date        string    `json:"date"`
	Series      int       `json:"series"`
	Cells       int       `json:"cells"`
	Short       int       `json:"short_window"`
	Long        int       `json:"long_window"`
	Path        string    `json:"path"`
	SymbolsPath string    `json:"symbols_path"`
	Format      string    `json:"format"`
	Compression string    `json:"compression"`
	RunID       string    `json:"run_id"`
	ComputedAt  time.Time `json:"computed_at"`
	DurationMs  int64     `json:"duration_ms"`
}

// Catalog stores day manifests
type Catalog interface {
	// Put creates or replaces the manifest for m.Day
	Put(ctx context.Context, m *Manifest) error

	// Get returns the manifest for day, or an error wrapping ErrNotFound
	Get(ctx context.Context, day int) (*Manifest, error)

	// List returns every manifest ordered by day
	List(ctx context.Context) ([]*Manifest, error)

	// Delete removes the manifest for day
	Delete(ctx context.Context, day int) error

	// Close releases backend resources
	Close() error
}

// New creates the catalog selected by catalog.type
func New(cfg *config.Config) (Catalog, error) {
	switch strings.ToLower(cfg.Catalog.Type) {
	case "", TypeFile:
		return NewFileCatalog(cfg.CatalogDir())
	case TypeMemory:
		return NewMemoryCatalog(), nil
	case TypeEtcd:
		return NewEtcdCatalog(EtcdConfig{
			Endpoints:   cfg.Catalog.Endpoints,
			DialTimeout: cfg.Catalog.DialTimeout,
			Username:    cfg.Catalog.Username,
			Password:    cfg.Catalog.Password,
			Prefix:      cfg.Catalog.Prefix,
		})
	default:
		return nil, fmt.Errorf("unsupported catalog type: %s (supported: file, memory, etcd)", cfg.Catalog.Type)
	}
}

func validate(m *Manifest) error {
	if m == nil {
		return fmt.Errorf("manifest is nil")
	}
	if m.Day < 0 {
		return fmt.Errorf("invalid day: %d", m.Day)
	}
	return nil
}

func notFound(day int) error {
	return fmt.Errorf("day %d: %w", day, ErrNotFound)
}

func sortByDay(ms []*Manifest) {
	sort.Slice(ms, func(i, j int) bool { return ms[i].Day < ms[j].Day })
}
