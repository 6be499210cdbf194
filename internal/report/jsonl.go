package report

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/harrison/gomsv/internal/release"
)

// JSONReporter writes one JSON object per event, suitable for machine
// consumption (--output json). Encoding errors are silently dropped; a
// reporter never influences the run.
type JSONReporter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONReporter creates a reporter emitting JSON lines to w.
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{enc: json.NewEncoder(w)}
}

type jsonEvent struct {
	Event   string `json:"event"`
	Intent  string `json:"intent,omitempty"`
	Steps   int    `json:"steps,omitempty"`
	Action  string `json:"action,omitempty"`
	Version string `json:"version,omitempty"`
	Passed  *bool  `json:"passed,omitempty"`
	Command string `json:"command,omitempty"`
}

func (r *JSONReporter) emit(ev jsonEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_ = r.enc.Encode(ev)
}

func (r *JSONReporter) Mode(intent Intent) {
	r.emit(jsonEvent{Event: "mode", Intent: intent.String()})
}

func (r *JSONReporter) SetSteps(n int) {
	r.emit(jsonEvent{Event: "steps", Steps: n})
}

func (r *JSONReporter) Progress(p Progress) {
	ev := jsonEvent{Event: "progress"}
	switch p.Kind {
	case KindInstalling:
		ev.Action = "installing"
	case KindChecking:
		ev.Action = "checking"
	case KindFetchingIndex:
		ev.Action = "fetching-index"
	}
	if p.Release != nil {
		ev.Version = p.Release.Version.String()
	}
	r.emit(ev)
}

func (r *JSONReporter) CompleteStep(rel release.Release, passed bool) {
	r.emit(jsonEvent{Event: "check-complete", Version: rel.Version.String(), Passed: &passed})
}

func (r *JSONReporter) FinishSuccess(intent Intent, rel release.Release) {
	r.emit(jsonEvent{Event: "finished", Intent: intent.String(), Version: rel.Version.String()})
}

func (r *JSONReporter) FinishFailure(intent Intent, command string) {
	r.emit(jsonEvent{Event: "failed", Intent: intent.String(), Command: command})
}
