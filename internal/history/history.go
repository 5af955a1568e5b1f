// Package history records evaluation runs so successive systems can be compared.
package history

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ricesearch/term-eval/internal/config"
	"github.com/ricesearch/term-eval/internal/evaluation"
	"github.com/ricesearch/term-eval/internal/pkg/errors"
)

// Run is one recorded evaluation.
type Run struct {
	ID         string             `json:"id"`
	Label      string             `json:"label,omitempty"`
	GoldPath   string             `json:"gold_path"`
	ResultPath string             `json:"result_path"`
	Timestamp  time.Time          `json:"timestamp"`
	TotalTerms int                `json:"total_terms"`
	Metrics    map[string]float64 `json:"metrics"`
}

// NewRun builds a Run from a finished report.
func NewRun(label, goldPath, resultPath string, report *evaluation.Report) Run {
	return Run{
		ID:         uuid.NewString(),
		Label:      label,
		GoldPath:   goldPath,
		ResultPath: resultPath,
		Timestamp:  time.Now().UTC(),
		TotalTerms: report.TotalTerms,
		Metrics:    report.Metrics(),
	}
}

// Store persists runs.
type Store interface {
	// Save records a run, evicting the oldest runs beyond the retention limit.
	Save(ctx context.Context, run Run) error
	// List returns up to limit runs, newest first. limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]Run, error)
	Close() error
}

// New creates a Store based on the configuration.
func New(cfg config.HistoryConfig) (Store, error) {
	switch strings.ToLower(cfg.Type) {
	case "memory":
		return NewMemoryStore(cfg.MaxRuns), nil

	case "redis":
		store, err := NewRedisStore(cfg.RedisURL)
		if err != nil {
			return nil, errors.HistoryError("opening redis history", err)
		}
		store.SetMaxRuns(cfg.MaxRuns)
		return store, nil

	case "none", "":
		return nil, errors.New(errors.CodeConfig, "run history is disabled")

	default:
		return nil, errors.New(errors.CodeConfig, fmt.Sprintf("unknown history type: %s", cfg.Type))
	}
}

// MemoryStore keeps runs in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	runs    []Run
	maxRuns int
}

// NewMemoryStore creates a store retaining at most maxRuns runs.
func NewMemoryStore(maxRuns int) *MemoryStore {
	if maxRuns < 1 {
		maxRuns = 1
	}
	return &MemoryStore{
		runs:    make([]Run, 0, maxRuns),
		maxRuns: maxRuns,
	}
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = append(s.runs, run)
	sort.SliceStable(s.runs, func(i, j int) bool {
		return s.runs[i].Timestamp.Before(s.runs[j].Timestamp)
	})

	// Trim to max runs
	if len(s.runs) > s.maxRuns {
		s.runs = s.runs[len(s.runs)-s.maxRuns:]
	}
	return nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.runs)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Run, 0, n)
	for i := len(s.runs) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.runs[i])
	}
	return out, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}
