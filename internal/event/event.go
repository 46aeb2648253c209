// Package event carries per-file import outcomes from the library importer
// to whoever is reporting them.
package event

import (
	"context"
	"time"
)

// Type identifies the kind of event.
type Type int

const (
	FileTransferred Type = iota + 1
	FileSkipped
	FileFailed
	VerifyFailed
)

var typeNames = [...]string{
	FileTransferred: "FileTransferred",
	FileSkipped:     "FileSkipped",
	FileFailed:      "FileFailed",
	VerifyFailed:    "VerifyFailed",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event is the outcome for one discovered file.
type Event struct {
	Type      Type
	Timestamp time.Time
	Src       string
	Dst       string // empty when no destination was computed
	Mode      string // transfer mode name
	Size      int64
	Reason    string // why a file was skipped
	Error     error
}

// Emit sends e on ch, stamping the time. A nil channel drops e.
// Emit blocks until the receiver takes the event or ctx is done.
func Emit(ctx context.Context, ch chan<- Event, e Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case ch <- e:
	case <-ctx.Done():
	}
}
