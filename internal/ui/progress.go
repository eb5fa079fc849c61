package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// ProgressBar counts the libraries a batch operation has processed
type ProgressBar struct {
	bar    *progressbar.ProgressBar
	verb   string
	failed int
}

// NewProgressBar creates a progress bar on stderr for total libraries.
// verb prefixes the description, e.g. "Removing".
func NewProgressBar(total int, verb string) *ProgressBar {
	return NewProgressBarTo(os.Stderr, total, verb)
}

// NewProgressBarTo creates a progress bar that renders to w
func NewProgressBarTo(w io.Writer, total int, verb string) *ProgressBar {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(verb),
		progressbar.OptionSetWidth(20),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)

	return &ProgressBar{bar: bar, verb: verb}
}

// Done marks library as processed; a non-nil err counts it as failed
func (p *ProgressBar) Done(library string, err error) {
	if err != nil {
		p.failed++
	}
	desc := fmt.Sprintf("%s %s", p.verb, library)
	if p.failed > 0 {
		desc += fmt.Sprintf(" (%d failed)", p.failed)
	}
	p.bar.Describe(desc)
	_ = p.bar.Add(1)
}

// Failed returns how many libraries were reported with an error
func (p *ProgressBar) Failed() int {
	return p.failed
}

// Finish completes the bar if libraries are still outstanding
func (p *ProgressBar) Finish() {
	if !p.bar.IsFinished() {
		_ = p.bar.Finish()
	}
}

// IsFinished returns true if the progress bar is finished
func (p *ProgressBar) IsFinished() bool {
	return p.bar.IsFinished()
}
