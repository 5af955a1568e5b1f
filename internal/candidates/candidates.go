// Package candidates collects the scored translation candidates emitted by
// a system under evaluation, restricted to gold standard terms.
package candidates

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/ricesearch/term-eval/internal/pkg/errors"
	"github.com/ricesearch/term-eval/internal/pkg/logger"
)

// Entry is a proposed translation and its score. Higher scores are better.
type Entry struct {
	Target string
	Score  float64
}

// Scope decides which source terms are in evaluation scope.
// *gold.Index satisfies it.
type Scope interface {
	Contains(source string) bool
	Normalize(term string) string
}

// Index maps source terms to their candidates in arrival order.
type Index struct {
	entries map[string][]Entry
}

// NewIndex creates an empty Index.
func NewIndex() *Index {
	return &Index{entries: make(map[string][]Entry)}
}

// Add appends a candidate for source.
func (idx *Index) Add(source, target string, score float64) {
	idx.entries[source] = append(idx.entries[source], Entry{Target: target, Score: score})
}

// Candidates returns the candidates for source in arrival order.
func (idx *Index) Candidates(source string) []Entry {
	return idx.entries[source]
}

// Len returns the number of source terms with at least one candidate.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Sources returns the source terms with candidates in sorted order.
func (idx *Index) Sources() []string {
	out := make([]string, 0, len(idx.entries))
	for s := range idx.entries {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Stats summarizes a Read.
type Stats struct {
	Rows    int
	Kept    int
	Skipped int
}

// Read consumes tab-separated (source, target, score) rows. Rows whose source
// is outside scope are skipped with a warning. A short row or an unparsable
// score aborts the read.
func Read(r io.Reader, scope Scope, log *logger.Logger) (*Index, Stats, error) {
	if log == nil {
		log = logger.Discard()
	}

	rr := newRowReader(r)
	idx := NewIndex()
	var stats Stats

	for {
		row, line, err := rr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, apperrors.ParseError("reading result rows", err).
				WithDetail("line", strconv.Itoa(rr.line+1))
		}
		stats.Rows++

		if len(row) < 3 {
			return nil, stats, apperrors.ParseError(
				fmt.Sprintf("result row has %d fields, want source, target and score", len(row)), nil).
				WithDetail("line", strconv.Itoa(line))
		}

		score, err := ParseScore(row[2])
		if err != nil {
			return nil, stats, apperrors.ParseError("unparsable score", err).
				WithDetail("line", strconv.Itoa(line)).
				WithDetail("score", row[2])
		}

		source := scope.Normalize(row[0])
		if !scope.Contains(source) {
			stats.Skipped++
			log.WithTerm(source).Warn("source term not found in the gold standard", "line", line)
			continue
		}

		idx.Add(source, scope.Normalize(row[1]), score)
		stats.Kept++
	}

	return idx, stats, nil
}

// ReadFile reads the result file at path.
func ReadFile(path string, scope Scope, log *logger.Logger) (*Index, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, apperrors.InputError(path, err)
	}
	defer f.Close()

	if log == nil {
		log = logger.Discard()
	}
	log = log.WithFile(path)

	idx, stats, err := Read(f, scope, log)
	if err != nil {
		if appErr, ok := apperrors.As(err); ok {
			appErr.WithDetail("path", path)
		}
		return nil, stats, err
	}

	log.Debug("results loaded",
		"rows", stats.Rows,
		"kept", stats.Kept,
		"skipped", stats.Skipped,
		"terms", idx.Len(),
	)
	return idx, stats, nil
}

// ParseScore parses a decimal score. Surrounding whitespace is ignored, as
// are underscores between digits. Hexadecimal literals are rejected, NaN is
// rejected since it cannot be ordered, and values beyond float64 range
// saturate to ±Inf.
func ParseScore(s string) (float64, error) {
	t := strings.TrimSpace(s)
	if isHex(t) {
		return 0, fmt.Errorf("score %q is not a decimal number", s)
	}
	if strings.Contains(t, "_") {
		if !digitUnderscores(t) {
			return 0, fmt.Errorf("score %q has a misplaced underscore", s)
		}
		t = strings.ReplaceAll(t, "_", "")
	}

	v, err := strconv.ParseFloat(t, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	if math.IsNaN(v) {
		return 0, fmt.Errorf("score %q is not a number", s)
	}
	return v, nil
}

func isHex(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// digitUnderscores reports whether every underscore in s sits between two
// decimal digits.
func digitUnderscores(s string) bool {
	isDigit := func(b byte) bool { return b >= '0' && b <= '9' }
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			continue
		}
		if i == 0 || i == len(s)-1 || !isDigit(s[i-1]) || !isDigit(s[i+1]) {
			return false
		}
	}
	return true
}
