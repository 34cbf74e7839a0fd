// Package progress renders background task progress for interactive
// command-line runs.
package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/Maxservais/chat/internal/tasks"
)

// Reporter provides progress feedback for a profile-analysis run.
type Reporter interface {
	Start(subject string)
	Update(p tasks.Progress)
	Finish()
}

// NewReporter returns a TerminalReporter if running in an interactive
// terminal, or a CIReporter if the CI environment variable is set.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{}
	}
	return &TerminalReporter{}
}

// TerminalReporter displays a progress bar in the terminal.
type TerminalReporter struct {
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(subject string) {
	r.bar = progressbar.NewOptions(100,
		progressbar.OptionSetDescription("Analyzing @"+subject),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Update(p tasks.Progress) {
	if r.bar != nil {
		r.bar.Describe(p.Message)
		_ = r.bar.Set(int(p.Percent * 100))
	}
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints line-by-line progress suitable for CI logs.
type CIReporter struct{}

func (r *CIReporter) Start(subject string) {
	fmt.Fprintf(os.Stderr, "Starting profile analysis for @%s\n", subject)
}

func (r *CIReporter) Update(p tasks.Progress) {
	fmt.Fprintf(os.Stderr, "[%s/%s] %s\n", p.Step, p.Status, p.Message)
}

func (r *CIReporter) Finish() {
	fmt.Fprintln(os.Stderr, "Profile analysis complete")
}
