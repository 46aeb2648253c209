package ui

import (
	"fmt"

	"github.com/bamsammich/flacman/internal/event"
	"github.com/bamsammich/flacman/internal/stats"
)

// reportPresenter writes one line per outcome and a final summary.
type reportPresenter struct {
	cfg Config
}

func (p *reportPresenter) Run(events <-chan event.Event) error {
	for ev := range events {
		if err := p.handleEvent(ev); err != nil {
			// Drain so the sender never blocks.
			for range events {
			}
			return err
		}
	}
	return nil
}

func (p *reportPresenter) handleEvent(ev event.Event) error {
	th := p.cfg.Theme
	dst := StripRoot(p.cfg.Repository, ev.Dst)

	var err error
	switch ev.Type {
	case event.FileTransferred:
		_, err = fmt.Fprintf(p.cfg.Writer, "%s %s  %s  %s\n",
			th.OK(ev.Mode), ev.Src, dst, th.Muted(FormatBytes(ev.Size)))
	case event.FileSkipped:
		if !p.cfg.ShowSkipped {
			return nil
		}
		_, err = fmt.Fprintf(p.cfg.Writer, "%s %s  %s\n",
			th.Muted("skip"), ev.Src, th.Muted(ev.Reason))
	case event.FileFailed:
		_, err = fmt.Fprintf(p.cfg.ErrWriter, "%s %s  %s\n",
			p.cfg.ErrTheme.Failed("error"), ev.Src, errText(ev.Error))
	case event.VerifyFailed:
		_, err = fmt.Fprintf(p.cfg.ErrWriter, "%s %s  %s\n",
			p.cfg.ErrTheme.Failed("MISMATCH"), dst, errText(ev.Error))
	}
	return err
}

func (p *reportPresenter) Summary() string {
	if p.cfg.Stats == nil {
		return ""
	}
	return CompletionSummary(p.cfg.Stats.Snapshot(), p.cfg.ErrTheme)
}

func errText(err error) string {
	if err == nil {
		return "error"
	}
	return err.Error()
}

// CompletionSummary builds a final summary line from a snapshot.
// Format: done ✓  files 1,204  size 8.1 GiB  avg 412 MB/s  time 21s  skipped 3  errors 0
func CompletionSummary(snap stats.Snapshot, th Theme) string {
	avgSpeed := 0.0
	if snap.Elapsed.Seconds() > 0 {
		avgSpeed = float64(snap.BytesTransferred) / snap.Elapsed.Seconds()
	}

	icon := th.OK("✓")
	if snap.Failed() > 0 {
		icon = th.Failed("✗")
	}

	line := fmt.Sprintf("done %s  files %s  size %s  avg %s  time %s",
		icon,
		FormatCount(snap.FilesTransferred),
		FormatBytes(snap.BytesTransferred),
		FormatRate(avgSpeed),
		FormatDuration(snap.Elapsed),
	)

	if snap.FilesSkipped > 0 {
		line += "  skipped " + th.Warn(FormatCount(snap.FilesSkipped))
	}
	if snap.FilesVerified > 0 || snap.FilesVerifyFailed > 0 {
		line += "  verified " + FormatCount(snap.FilesVerified)
	}

	errs := fmt.Sprintf("%d", snap.Failed())
	if snap.Failed() > 0 {
		errs = th.Failed(errs)
	}
	return line + "  errors " + errs
}
