// Package report defines the event protocol by which the search engine
// announces progress, plus the reporter implementations that render it.
//
// Reporters are passive observers: they are consulted only for side effects
// and never influence control flow. The engine emits exactly one Mode event,
// one SetSteps event once the candidate count is known, one Progress /
// CompleteStep pair per executed check, and exactly one terminal
// FinishSuccess or FinishFailure event per completed run.
package report

import (
	"github.com/harrison/gomsv/internal/release"
)

// Intent identifies what a run is trying to accomplish.
type Intent int

const (
	// FindMinimum searches for the lowest passing toolchain version.
	FindMinimum Intent = iota
	// Verify confirms the manifest-declared version passes.
	Verify
	// List displays the filtered catalog without running checks.
	List
)

// String returns a short lowercase name for the intent.
func (i Intent) String() string {
	switch i {
	case FindMinimum:
		return "find"
	case Verify:
		return "verify"
	case List:
		return "list"
	default:
		return "unknown"
	}
}

// ProgressKind identifies the activity a Progress event describes.
type ProgressKind int

const (
	// KindInstalling means a toolchain is being installed.
	KindInstalling ProgressKind = iota
	// KindChecking means the validation command is running under a toolchain.
	KindChecking
	// KindFetchingIndex means the release index is being retrieved.
	KindFetchingIndex
)

// Progress describes one in-flight activity. Release is set for Installing
// and Checking, nil for FetchingIndex.
type Progress struct {
	Kind    ProgressKind
	Release *release.Release
}

// Installing returns a Progress event for a toolchain installation.
func Installing(rel release.Release) Progress {
	return Progress{Kind: KindInstalling, Release: &rel}
}

// Checking returns a Progress event for a running check.
func Checking(rel release.Release) Progress {
	return Progress{Kind: KindChecking, Release: &rel}
}

// FetchingIndex returns a Progress event for the release index fetch.
func FetchingIndex() Progress {
	return Progress{Kind: KindFetchingIndex}
}

// Reporter is the sink for the fixed progress/result event vocabulary.
type Reporter interface {
	// Mode announces the run intent. Emitted once, first.
	Mode(intent Intent)

	// SetSteps announces the number of search candidates once known.
	SetSteps(n int)

	// Progress announces an in-flight activity.
	Progress(p Progress)

	// CompleteStep announces the outcome of one executed check.
	CompleteStep(rel release.Release, passed bool)

	// FinishSuccess announces a successful terminal result.
	FinishSuccess(intent Intent, rel release.Release)

	// FinishFailure announces a failed terminal result for the given
	// validation command.
	FinishFailure(intent Intent, command string)
}

// Nop is a Reporter that discards every event.
type Nop struct{}

func (Nop) Mode(Intent)                        {}
func (Nop) SetSteps(int)                       {}
func (Nop) Progress(Progress)                  {}
func (Nop) CompleteStep(release.Release, bool) {}
func (Nop) FinishSuccess(Intent, release.Release) {
}
func (Nop) FinishFailure(Intent, string) {}

// Multi fans events out to several reporters in order.
type Multi struct {
	reporters []Reporter
}

// NewMulti creates a reporter that forwards every event to each of the given
// reporters, in the order given. Nil entries are skipped.
func NewMulti(reporters ...Reporter) *Multi {
	kept := make([]Reporter, 0, len(reporters))
	for _, r := range reporters {
		if r != nil {
			kept = append(kept, r)
		}
	}
	return &Multi{reporters: kept}
}

func (m *Multi) Mode(intent Intent) {
	for _, r := range m.reporters {
		r.Mode(intent)
	}
}

func (m *Multi) SetSteps(n int) {
	for _, r := range m.reporters {
		r.SetSteps(n)
	}
}

func (m *Multi) Progress(p Progress) {
	for _, r := range m.reporters {
		r.Progress(p)
	}
}

func (m *Multi) CompleteStep(rel release.Release, passed bool) {
	for _, r := range m.reporters {
		r.CompleteStep(rel, passed)
	}
}

func (m *Multi) FinishSuccess(intent Intent, rel release.Release) {
	for _, r := range m.reporters {
		r.FinishSuccess(intent, rel)
	}
}

func (m *Multi) FinishFailure(intent Intent, command string) {
	for _, r := range m.reporters {
		r.FinishFailure(intent, command)
	}
}
