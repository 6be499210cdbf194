package check

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/gomsv/internal/release"
	"github.com/harrison/gomsv/internal/report"
	"github.com/harrison/gomsv/internal/toolchain"
)

// fakeManager scripts toolchain behaviour per version string.
type fakeManager struct {
	installErr map[string]error
	runErr     map[string]error
	output     map[string]string

	installs []string
	runs     []string
}

func (m *fakeManager) EnsureInstalled(ctx context.Context, rel release.Release) error {
	v := rel.Version.String()
	m.installs = append(m.installs, v)
	return m.installErr[v]
}

func (m *fakeManager) Run(ctx context.Context, rel release.Release, dir string, argv []string) (string, error) {
	v := rel.Version.String()
	m.runs = append(m.runs, v)
	return m.output[v], m.runErr[v]
}

func rel(t *testing.T, v string) release.Release {
	t.Helper()
	return release.Release{Version: semver.MustParse(v), Channel: release.Stable}
}

func TestCheckPasses(t *testing.T) {
	manager := &fakeManager{output: map[string]string{"1.21.0": "ok"}}
	checker := NewChecker(manager, report.Nop{}, ".", []string{"go", "build", "./..."})

	outcome, err := checker.Check(context.Background(), rel(t, "1.21.0"))
	require.NoError(t, err)

	assert.True(t, outcome.Passed)
	assert.Equal(t, "1.21.0", outcome.Release.Version.String())
	assert.Equal(t, "ok", outcome.Output)
	assert.Equal(t, []string{"1.21.0"}, manager.installs)
	assert.Equal(t, []string{"1.21.0"}, manager.runs)
}

func TestCheckCommandFailureIsOutcomeNotError(t *testing.T) {
	manager := &fakeManager{
		runErr: map[string]error{"1.20.0": fmt.Errorf("exit status 2")},
		output: map[string]string{"1.20.0": "compile error: ..."},
	}
	checker := NewChecker(manager, report.Nop{}, ".", []string{"go", "build", "./..."})

	outcome, err := checker.Check(context.Background(), rel(t, "1.20.0"))
	require.NoError(t, err)

	assert.False(t, outcome.Passed)
	assert.Equal(t, "compile error: ...", outcome.Output)
}

func TestCheckInstallFailureIsFatal(t *testing.T) {
	installErr := fmt.Errorf("%w: network down", toolchain.ErrInstallFailed)
	manager := &fakeManager{installErr: map[string]error{"1.20.0": installErr}}
	checker := NewChecker(manager, report.Nop{}, ".", []string{"go", "build", "./..."})

	_, err := checker.Check(context.Background(), rel(t, "1.20.0"))

	require.ErrorIs(t, err, toolchain.ErrInstallFailed)
	assert.Empty(t, manager.runs, "a failed install must not run the command")
}

func TestCheckCanceledContextAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	manager := &fakeManager{runErr: map[string]error{"1.21.0": errors.New("signal: killed")}}
	checker := NewChecker(manager, report.Nop{}, ".", []string{"go", "build", "./..."})

	_, err := checker.Check(ctx, rel(t, "1.21.0"))

	require.ErrorIs(t, err, context.Canceled)
}

// progressRecorder records progress events in order.
type progressRecorder struct {
	report.Nop
	events []string
}

func (r *progressRecorder) Progress(p report.Progress) {
	switch p.Kind {
	case report.KindInstalling:
		r.events = append(r.events, "installing:"+p.Release.Version.String())
	case report.KindChecking:
		r.events = append(r.events, "checking:"+p.Release.Version.String())
	}
}

func TestCheckEmitsProgressInOrder(t *testing.T) {
	recorder := &progressRecorder{}
	manager := &fakeManager{}
	checker := NewChecker(manager, recorder, ".", []string{"go", "build", "./..."})

	_, err := checker.Check(context.Background(), rel(t, "1.21.0"))
	require.NoError(t, err)

	assert.Equal(t, []string{"installing:1.21.0", "checking:1.21.0"}, recorder.events)
}
