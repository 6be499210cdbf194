// Package search finds the minimum supported toolchain version over a
// release catalog.
//
// Two algorithms are available. Bisection, the default, assumes
// compatibility is monotonic in version: once a version passes, every higher
// version passes too, so the passing versions form a contiguous suffix of
// the ascending candidate list and the boundary can be found in O(log n)
// checks. That assumption is not verified; when a project is suspected of
// regressing on newer toolchains, the exhaustive linear scan is the escape
// hatch. Each check is an expensive install-and-build cycle, which is why
// the distinction matters.
package search

import (
	"context"
	"fmt"

	"github.com/harrison/gomsv/internal/check"
	"github.com/harrison/gomsv/internal/logger"
	"github.com/harrison/gomsv/internal/release"
	"github.com/harrison/gomsv/internal/report"
	"github.com/harrison/gomsv/internal/version"
)

// CheckRunner runs one check against a concrete release. Implemented by
// check.Checker; tests substitute scripted fakes.
type CheckRunner interface {
	Check(ctx context.Context, rel release.Release) (check.Outcome, error)
}

// Method selects the search algorithm.
type Method int

const (
	// Bisect halves the candidate window under the monotonicity assumption.
	Bisect Method = iota
	// Linear scans ascending from the lowest candidate.
	Linear
)

// ResultKind classifies the terminal result of a run.
type ResultKind int

const (
	// MinimumFound means the search located the lowest passing version.
	MinimumFound ResultKind = iota
	// VerifiedOK means the declared version passed its check.
	VerifiedOK
	// VerifiedFailed means the declared version failed its check.
	VerifiedFailed
	// NoneSatisfies means no candidate passed.
	NoneSatisfies
	// CatalogListed means the run only listed the catalog.
	CatalogListed
)

// Result is the terminal value of a run, owned by the caller.
type Result struct {
	// Kind classifies the result.
	Kind ResultKind

	// Release is the found or verified version, when Kind carries one.
	Release *release.Release

	// Catalog holds the filtered releases for CatalogListed results.
	Catalog []release.Release
}

// Engine orchestrates checks over a catalog. It owns all in-progress search
// state; checks run strictly sequentially, in the exact order the algorithm
// selects candidates, and reporter events follow that same order.
type Engine struct {
	checker  CheckRunner
	reporter report.Reporter
	command  string
	log      *logger.Logger
}

// New creates an engine. The command string is only used in terminal failure
// events. A nil log discards engine logging.
func New(checker CheckRunner, reporter report.Reporter, command string, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		checker:  checker,
		reporter: reporter,
		command:  command,
		log:      log,
	}
}

// FindMinimum searches the catalog for the lowest passing version. A check
// failure is ordinary search data; only infrastructure errors are returned.
func (e *Engine) FindMinimum(ctx context.Context, cat *release.Catalog, method Method) (Result, error) {
	candidates := cat.Ascending()
	if len(candidates) == 0 {
		return Result{}, release.ErrNoCandidatesInRange
	}

	e.reporter.Mode(report.FindMinimum)
	e.reporter.SetSteps(len(candidates))

	run := newMemoizedRun(e, candidates)

	var (
		found int
		ok    bool
		err   error
	)
	switch method {
	case Linear:
		found, ok, err = e.linear(ctx, run)
	default:
		found, ok, err = e.bisect(ctx, run)
	}
	if err != nil {
		return Result{}, err
	}

	if !ok {
		e.log.Infof("no candidate satisfied the check command")
		e.reporter.FinishFailure(report.FindMinimum, e.command)
		return Result{Kind: NoneSatisfies}, nil
	}

	minimum := candidates[found]
	e.log.Infof("minimum supported toolchain version: %s", minimum)
	e.reporter.FinishSuccess(report.FindMinimum, minimum)
	return Result{Kind: MinimumFound, Release: &minimum}, nil
}

// bisect narrows a [low, high] window over the ascending candidates. On a
// pass the window's top drops to the midpoint (the minimum may be lower
// still); on a fail the bottom moves one past it. The index where the window
// closes is the candidate minimum; it still has to pass itself, since an
// all-failing catalog closes the window on its highest candidate.
func (e *Engine) bisect(ctx context.Context, run *memoizedRun) (int, bool, error) {
	low, high := 0, run.len()-1

	for low < high {
		mid := (low + high) / 2

		passed, err := run.passes(ctx, mid)
		if err != nil {
			return 0, false, err
		}

		if passed {
			high = mid
		} else {
			low = mid + 1
		}
	}

	passed, err := run.passes(ctx, low)
	if err != nil {
		return 0, false, err
	}
	return low, passed, nil
}

// linear scans ascending from the lowest candidate and stops at the first
// pass. Unlike bisection it assumes nothing about versions above the answer.
func (e *Engine) linear(ctx context.Context, run *memoizedRun) (int, bool, error) {
	for i := 0; i < run.len(); i++ {
		passed, err := run.passes(ctx, i)
		if err != nil {
			return 0, false, err
		}
		if passed {
			return i, true, nil
		}
	}
	return 0, false, nil
}

// Verify resolves the declared version against the catalog and runs exactly
// one check against it. A declared version absent from the catalog is a
// resolution error, not a failed check.
func (e *Engine) Verify(ctx context.Context, cat *release.Catalog, declared version.Bare) (Result, error) {
	if cat.Len() == 0 {
		return Result{}, release.ErrNoCandidatesInRange
	}

	e.reporter.Mode(report.Verify)

	rel, err := cat.Resolve(declared)
	if err != nil {
		return Result{}, fmt.Errorf("verify %s: %w", declared, err)
	}

	e.reporter.SetSteps(1)

	outcome, err := e.checker.Check(ctx, rel)
	if err != nil {
		return Result{}, err
	}

	e.reporter.CompleteStep(rel, outcome.Passed)
	e.log.Infof("verify %s against %s: passed=%v", declared, rel, outcome.Passed)

	if !outcome.Passed {
		e.reporter.FinishFailure(report.Verify, e.command)
		return Result{Kind: VerifiedFailed, Release: &rel}, nil
	}

	e.reporter.FinishSuccess(report.Verify, rel)
	return Result{Kind: VerifiedOK, Release: &rel}, nil
}

// List hands the filtered catalog back for display. No checks run; the cmd
// layer renders the releases.
func (e *Engine) List(cat *release.Catalog) (Result, error) {
	if cat.Len() == 0 {
		return Result{}, release.ErrNoCandidatesInRange
	}

	e.reporter.Mode(report.List)

	return Result{Kind: CatalogListed, Catalog: cat.Releases()}, nil
}

// memoizedRun executes checks by ascending candidate index, remembering
// outcomes so bisection's final probe never re-runs an install-and-check
// cycle it already paid for. Exactly one CompleteStep event is emitted per
// executed check.
type memoizedRun struct {
	engine     *Engine
	candidates []release.Release
	outcomes   map[int]bool
}

func newMemoizedRun(engine *Engine, candidates []release.Release) *memoizedRun {
	return &memoizedRun{
		engine:     engine,
		candidates: candidates,
		outcomes:   make(map[int]bool),
	}
}

func (r *memoizedRun) len() int {
	return len(r.candidates)
}

func (r *memoizedRun) passes(ctx context.Context, i int) (bool, error) {
	if passed, ok := r.outcomes[i]; ok {
		return passed, nil
	}

	rel := r.candidates[i]

	outcome, err := r.engine.checker.Check(ctx, rel)
	if err != nil {
		return false, err
	}

	r.outcomes[i] = outcome.Passed
	r.engine.reporter.CompleteStep(rel, outcome.Passed)
	r.engine.log.Debugf("checked %s: passed=%v", rel, outcome.Passed)

	return outcome.Passed, nil
}
