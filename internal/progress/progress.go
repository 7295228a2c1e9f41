// Package progress renders job progress on stderr. The job's own
// progress field stays in internal/job; this is display only.
package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Tracker wraps a progress bar driven by job progress updates.
type Tracker struct {
	bar   *progressbar.ProgressBar
	label string
}

// NewJobTracker creates a 0-100 bar for one analysis job.
func NewJobTracker(label string) *Tracker {
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Tracker{bar: bar, label: label}
}

// SetPercent moves the bar to an absolute 0-100 position and updates
// the stage description. Lower values are ignored, matching the job's
// monotonic progress.
func (t *Tracker) SetPercent(p int, stage string) {
	if stage != "" {
		t.bar.Describe(fmt.Sprintf("%s [%s]", t.label, stage))
	}
	if p > int(t.bar.State().CurrentBytes) {
		t.bar.Set(p)
	}
}

// FinishSuccess clears the bar completely (no output).
func (t *Tracker) FinishSuccess() {
	t.bar.Finish()
	t.bar.Clear()
}

// FinishError clears the bar and prints an error message to stderr.
func (t *Tracker) FinishError(err error) {
	t.bar.Finish()
	t.bar.Clear()
	fmt.Fprintf(os.Stderr, "  %s error: %v\n", t.label, err)
}
