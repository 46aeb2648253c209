// Package ui reports import outcomes on the terminal.
package ui

import (
	"io"

	"github.com/bamsammich/flacman/internal/event"
	"github.com/bamsammich/flacman/internal/stats"
)

// Presenter consumes events and reports them.
type Presenter interface {
	// Run consumes events until the channel closes. Blocks until done.
	Run(events <-chan event.Event) error
	// Summary returns the final summary line.
	Summary() string
}

// Config configures a Presenter.
type Config struct {
	Writer      io.Writer // per-file lines
	ErrWriter   io.Writer // failures
	Stats       *stats.Collector
	Repository  string // stripped from destination paths
	Theme       Theme // styles lines on Writer
	ErrTheme    Theme // styles failures and the summary, which go to stderr
	Quiet       bool
	ShowSkipped bool
}

// NewPresenter creates the appropriate presenter based on configuration.
//
//nolint:ireturn // picks the presenter implementation
func NewPresenter(cfg Config) Presenter {
	if cfg.Quiet {
		return &quietPresenter{}
	}
	return &reportPresenter{cfg: cfg}
}

// quietPresenter drains events and produces no output.
type quietPresenter struct{}

func (*quietPresenter) Run(events <-chan event.Event) error {
	for range events {
	}
	return nil
}

func (*quietPresenter) Summary() string { return "" }
