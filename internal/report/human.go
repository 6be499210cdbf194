package report

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/gomsv/internal/release"
)

// HumanReporter renders events as colored terminal output. Color is enabled
// only when the writer is a TTY (and NO_COLOR is unset); otherwise plain
// text is written so output stays readable in pipes and logs.
type HumanReporter struct {
	writer  io.Writer
	command string

	mu    sync.Mutex
	step  int
	steps int

	green  *color.Color
	red    *color.Color
	cyan   *color.Color
	bold   *color.Color
	italic *color.Color
}

// NewHumanReporter creates a reporter writing to w. The command string is
// shown in the welcome banner and failure message.
func NewHumanReporter(w io.Writer, command string) *HumanReporter {
	useColor := writerIsTerminal(w)

	r := &HumanReporter{
		writer:  w,
		command: command,
		green:   color.New(color.FgGreen, color.Bold),
		red:     color.New(color.FgRed, color.Bold),
		cyan:    color.New(color.FgCyan),
		bold:    color.New(color.Bold),
		italic:  color.New(color.Italic),
	}

	if !useColor {
		for _, c := range []*color.Color{r.green, r.red, r.cyan, r.bold, r.italic} {
			c.DisableColor()
		}
	}

	return r
}

// writerIsTerminal reports whether w is a TTY that should receive color.
func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Mode prints the welcome banner for the run intent.
func (r *HumanReporter) Mode(intent Intent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch intent {
	case FindMinimum:
		fmt.Fprintf(r.writer, "Determining the minimum supported Go toolchain version\n")
	case Verify:
		fmt.Fprintf(r.writer, "Verifying the declared minimum supported Go toolchain version\n")
	case List:
		fmt.Fprintf(r.writer, "Listing released Go toolchain versions\n")
		return
	}

	fmt.Fprintf(r.writer, "Using %s command %s\n", r.bold.Sprint("check"), r.italic.Sprint(r.command))
}

// SetSteps records the total number of candidates for step counters.
func (r *HumanReporter) SetSteps(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.steps = n
}

// Progress prints the activity currently underway.
func (r *HumanReporter) Progress(p Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch p.Kind {
	case KindFetchingIndex:
		fmt.Fprintf(r.writer, "Fetching release index\n")
	case KindInstalling:
		fmt.Fprintf(r.writer, "%s %s\n", r.green.Sprint("Installing"), r.cyan.Sprint(p.Release))
	case KindChecking:
		fmt.Fprintf(r.writer, "%s %s\n", r.green.Sprint("Checking"), r.cyan.Sprint(p.Release))
	}
}

// CompleteStep prints the pass/fail outcome of one check with a step counter.
func (r *HumanReporter) CompleteStep(rel release.Release, passed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.step++

	verdict := r.green.Sprint("good")
	if !passed {
		verdict = r.red.Sprint("bad")
	}

	fmt.Fprintf(r.writer, "[%d/%d] %s check for %s\n", r.step, r.steps, verdict, r.cyan.Sprint(rel))
}

// FinishSuccess prints the terminal success line for the intent.
func (r *HumanReporter) FinishSuccess(intent Intent, rel release.Release) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch intent {
	case FindMinimum:
		fmt.Fprintf(r.writer, "%s The minimum supported toolchain version is %s\n",
			r.green.Sprint("Finished"), r.cyan.Sprint(rel))
	case Verify:
		fmt.Fprintf(r.writer, "%s Satisfied minimum toolchain version check: %s\n",
			r.green.Sprint("Finished"), r.cyan.Sprint(rel))
	case List:
	}
}

// FinishFailure prints the terminal failure line.
func (r *HumanReporter) FinishFailure(intent Intent, command string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.writer, "%s %s command %s did not succeed on any candidate\n",
		r.red.Sprint("Failed"), r.bold.Sprint("check"), r.italic.Sprint(command))
}
