package converter

import (
	"io"
	"os"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// ProgressConfig selects whether bars are drawn and where
type ProgressConfig struct {
	Enabled bool
	Writer  io.Writer
}

// Progress draws batch bars on a terminal. The zero value draws nothing.
type Progress struct {
	p *mpb.Progress
}

// Bar counts finished (session, kind) merges. A nil bar is a no-op.
type Bar struct {
	bar *mpb.Bar
}

func NewProgress(config ProgressConfig) *Progress {
	if !config.Enabled {
		return &Progress{}
	}
	out := config.Writer
	if out == nil {
		out = os.Stderr
	}
	return &Progress{p: mpb.New(mpb.WithOutput(out), mpb.WithRefreshRate(150*time.Millisecond))}
}

// Track adds a bar of total steps
func (p *Progress) Track(total int, label string) *Bar {
	if p.p == nil {
		return nil
	}
	return &Bar{bar: p.p.New(int64(total),
		mpb.BarStyle().Lbound("[").Filler("=").Tip(">").Padding(" ").Rbound("]"),
		mpb.PrependDecorators(
			decor.Name(label, decor.WCSyncSpaceR),
			decor.CountersNoUnit("%d/%d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.EwmaETA(decor.ET_STYLE_GO, 30), "done"),
		),
	)}
}

// Step records one finished merge that started at started
func (b *Bar) Step(started time.Time) {
	if b != nil {
		b.bar.EwmaIncrement(time.Since(started))
	}
}

// Finish completes the bar at its current count, so a cancelled batch does not hang Wait
func (b *Bar) Finish() {
	if b != nil {
		b.bar.SetTotal(-1, true)
	}
}

// Wait blocks until every bar has been drawn to completion
func (p *Progress) Wait() {
	if p.p != nil {
		p.p.Wait()
	}
}

// Interactive reports whether bars should be drawn: forced, or stderr/stdout is a terminal
func Interactive(forced bool) bool {
	return forced || isTerminal(os.Stderr) || isTerminal(os.Stdout)
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	st, err := f.Stat()
	return err == nil && st.Mode()&os.ModeCharDevice != 0
}
