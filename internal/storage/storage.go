package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/xolak-dev/xolak-cli/internal/domain"
)

// Store keeps a local, expiring history of answered queries.
type Store interface {
	Close() error
	Record(entry domain.HistoryEntry) error
	Recent(limit int) ([]domain.HistoryEntry, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	HistoryTTL      time.Duration
	CleanupInterval time.Duration
}

const (
	defaultHistoryTTL      = 30 * 24 * time.Hour
	defaultCleanupInterval = time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.HistoryTTL <= 0 {
		opts.HistoryTTL = defaultHistoryTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                              { return nil }
func (noopStore) Record(domain.HistoryEntry) error          { return nil }
func (noopStore) Recent(int) ([]domain.HistoryEntry, error) { return nil, nil }
