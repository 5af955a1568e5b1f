package evaluation

import (
	"github.com/ricesearch/term-eval/internal/candidates"
	"github.com/ricesearch/term-eval/internal/gold"
	"github.com/ricesearch/term-eval/internal/pkg/logger"
	"github.com/ricesearch/term-eval/internal/pkg/textnorm"
)

// Options configures an Evaluator.
type Options struct {
	Cutoffs   []int
	Normalize textnorm.Mode
}

// Evaluator runs the gold -> results -> ranks -> report pipeline.
type Evaluator struct {
	cutoffs   []int
	normalize textnorm.Mode
	log       *logger.Logger
}

// NewEvaluator creates a new evaluator. Empty cutoffs select DefaultCutoffs.
func NewEvaluator(opts Options, log *logger.Logger) (*Evaluator, error) {
	cutoffs := opts.Cutoffs
	if len(cutoffs) == 0 {
		cutoffs = DefaultCutoffs
	}
	if err := ValidateCutoffs(cutoffs); err != nil {
		return nil, err
	}
	if opts.Normalize == "" {
		opts.Normalize = textnorm.ModeNone
	}
	if log == nil {
		log = logger.Discard()
	}

	return &Evaluator{
		cutoffs:   append([]int(nil), cutoffs...),
		normalize: opts.Normalize,
		log:       log,
	}, nil
}

// Cutoffs returns the configured precision cutoffs.
func (e *Evaluator) Cutoffs() []int {
	return append([]int(nil), e.cutoffs...)
}

// Evaluate ranks results against the gold standard and aggregates the metrics.
func (e *Evaluator) Evaluate(judge Judge, results CandidateSet) (*Report, error) {
	ranks := Rank(results, judge)
	e.log.Debug("candidates ranked",
		"terms_with_candidates", results.Len(),
		"terms_found", len(ranks),
	)
	return Aggregate(ranks, judge.Len(), results.Len(), e.cutoffs)
}

// EvaluateFiles loads the gold standard and result files and evaluates them.
// Nothing is computed until both files are fully read and validated.
func (e *Evaluator) EvaluateFiles(goldPath, resultPath string) (*Report, error) {
	g, err := gold.LoadFile(goldPath, e.log, gold.WithNormalizer(e.normalize.Func()))
	if err != nil {
		return nil, err
	}

	results, stats, err := candidates.ReadFile(resultPath, g, e.log)
	if err != nil {
		return nil, err
	}
	if stats.Skipped > 0 {
		e.log.Info("result rows outside the gold standard were skipped", "skipped", stats.Skipped)
	}

	return e.Evaluate(g, results)
}
