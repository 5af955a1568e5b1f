// Package gold holds the reference mapping from source terms to their
// acceptable translations.
package gold

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	apperrors "github.com/ricesearch/term-eval/internal/pkg/errors"
	"github.com/ricesearch/term-eval/internal/pkg/logger"
)

// Record is one entry of the gold standard file.
type Record struct {
	Source  string   `json:"source"`
	Targets []string `json:"targets"`
}

// Index maps each source term to its set of acceptable target terms.
// It is built once and read-only afterwards.
type Index struct {
	terms     map[string]map[string]struct{}
	normalize func(string) string
}

// Option configures an Index.
type Option func(*Index)

// WithNormalizer applies fn to every source and target term on insert and lookup.
func WithNormalizer(fn func(string) string) Option {
	return func(idx *Index) {
		if fn != nil {
			idx.normalize = fn
		}
	}
}

// Build creates an Index from records. Target terms are deduplicated.
// A repeated source term replaces the earlier record and is logged.
func Build(records []Record, log *logger.Logger, opts ...Option) *Index {
	idx := &Index{
		terms:     make(map[string]map[string]struct{}, len(records)),
		normalize: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(idx)
	}

	for _, r := range records {
		source := idx.normalize(r.Source)
		if _, dup := idx.terms[source]; dup && log != nil {
			log.WithTerm(source).Warn("duplicate source term in gold standard, keeping last record")
		}
		targets := make(map[string]struct{}, len(r.Targets))
		for _, t := range r.Targets {
			targets[idx.normalize(t)] = struct{}{}
		}
		idx.terms[source] = targets
	}

	return idx
}

// Len returns the number of source terms (total_terms).
func (idx *Index) Len() int {
	return len(idx.terms)
}

// Contains reports whether source is a gold term.
func (idx *Index) Contains(source string) bool {
	_, ok := idx.terms[idx.normalize(source)]
	return ok
}

// IsCorrect reports whether target is an acceptable translation of source.
func (idx *Index) IsCorrect(source, target string) bool {
	targets, ok := idx.terms[idx.normalize(source)]
	if !ok {
		return false
	}
	_, ok = targets[idx.normalize(target)]
	return ok
}

// Targets returns the sorted acceptable translations of source.
func (idx *Index) Targets(source string) []string {
	targets := idx.terms[idx.normalize(source)]
	out := make([]string, 0, len(targets))
	for t := range targets {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Normalize applies the index's term normalization.
func (idx *Index) Normalize(term string) string {
	return idx.normalize(term)
}

// Sources returns all source terms in sorted order.
func (idx *Index) Sources() []string {
	out := make([]string, 0, len(idx.terms))
	for s := range idx.terms {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// file mirrors the on-disk layout. Pointer fields distinguish missing keys.
type file struct {
	Terms *[]fileRecord `json:"terms"`
}

type fileRecord struct {
	Source  *string   `json:"source"`
	Targets *[]string `json:"targets"`
}

// Decode parses a gold standard document and validates its structure.
func Decode(r io.Reader) ([]Record, error) {
	var f file
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, apperrors.ParseError("malformed gold standard", err)
	}
	if f.Terms == nil {
		return nil, apperrors.ParseError("gold standard has no \"terms\" collection", nil)
	}

	records := make([]Record, 0, len(*f.Terms))
	for i, fr := range *f.Terms {
		pos := fmt.Sprintf("%d", i)
		if fr.Source == nil || *fr.Source == "" {
			return nil, apperrors.ParseError("gold term is missing \"source\"", nil).WithDetail("index", pos)
		}
		if fr.Targets == nil || len(*fr.Targets) == 0 {
			return nil, apperrors.ParseError("gold term has no \"targets\"", nil).
				WithDetail("index", pos).
				WithDetail("source", *fr.Source)
		}
		records = append(records, Record{Source: *fr.Source, Targets: *fr.Targets})
	}

	return records, nil
}

// LoadFile reads and indexes the gold standard at path.
func LoadFile(path string, log *logger.Logger, opts ...Option) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.InputError(path, err)
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		if appErr, ok := apperrors.As(err); ok {
			appErr.WithDetail("path", path)
		}
		return nil, err
	}

	idx := Build(records, log, opts...)
	if log != nil {
		log.WithFile(path).Debug("gold standard loaded", "terms", idx.Len())
	}
	return idx, nil
}
