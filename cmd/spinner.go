package cmd

import (
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

const spinnerTick = 100 * time.Millisecond

// spinner shows activity on stderr while a network step runs.
type spinner struct {
	bar  *progressbar.ProgressBar
	done chan struct{}
}

// startSpinner returns nil when disabled; all methods accept a nil receiver.
func startSpinner(w io.Writer, enabled bool, description string) *spinner {
	if !enabled {
		return nil
	}

	s := &spinner{
		bar: progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(color.CyanString(description)),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetWidth(20),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetRenderBlankState(true),
		),
		done: make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(spinnerTick)
		defer ticker.Stop()

		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				_ = s.bar.Add(1)
			}
		}
	}()

	return s
}

func (s *spinner) Describe(description string) {
	if s == nil {
		return
	}

	s.bar.Describe(color.CyanString(description))
}

func (s *spinner) Stop() {
	if s == nil {
		return
	}

	close(s.done)
	_ = s.bar.Finish()
	_ = s.bar.Clear()
}
