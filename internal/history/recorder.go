package history

import (
	"github.com/harrison/gomsv/internal/logger"
	"github.com/harrison/gomsv/internal/release"
	"github.com/harrison/gomsv/internal/report"
)

// Recorder mirrors the reporter event stream into the history store. It is
// best effort: a storage error degrades to a log line and never disturbs the
// run producing the events.
type Recorder struct {
	store      *Store
	log        *logger.Logger
	projectDir string
	command    string

	runID string
}

// NewRecorder creates a recorder for one run against projectDir. A nil log
// discards storage errors.
func NewRecorder(store *Store, log *logger.Logger, projectDir, command string) *Recorder {
	if log == nil {
		log = logger.Nop()
	}
	return &Recorder{
		store:      store,
		log:        log,
		projectDir: projectDir,
		command:    command,
	}
}

// Mode opens the stored run.
func (r *Recorder) Mode(intent report.Intent) {
	id, err := r.store.BeginRun(intent.String(), r.projectDir, r.command)
	if err != nil {
		r.log.Warnf("history: %v", err)
		return
	}
	r.runID = id
}

// SetSteps is ignored; the stored checks carry the step information.
func (r *Recorder) SetSteps(int) {}

// Progress is ignored; only completed checks are stored.
func (r *Recorder) Progress(report.Progress) {}

// CompleteStep stores one check outcome.
func (r *Recorder) CompleteStep(rel release.Release, passed bool) {
	if r.runID == "" {
		return
	}
	if err := r.store.RecordCheck(r.runID, rel.Version.String(), passed); err != nil {
		r.log.Warnf("history: %v", err)
	}
}

// FinishSuccess closes the stored run with its result version.
func (r *Recorder) FinishSuccess(intent report.Intent, rel release.Release) {
	if r.runID == "" {
		return
	}
	if err := r.store.FinishRun(r.runID, OutcomeSuccess, rel.Version.String()); err != nil {
		r.log.Warnf("history: %v", err)
	}
}

// FinishFailure closes the stored run without a result version.
func (r *Recorder) FinishFailure(intent report.Intent, command string) {
	if r.runID == "" {
		return
	}
	if err := r.store.FinishRun(r.runID, OutcomeFailure, ""); err != nil {
		r.log.Warnf("history: %v", err)
	}
}
