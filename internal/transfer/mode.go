package transfer

import (
	"fmt"
	"strings"
)

// Mode selects how a file is placed at its destination.
type Mode int

const (
	Copy     Mode = iota // duplicate content, source untouched
	Move                 // rename, or copy then delete across filesystems
	Symlink              // symbolic link pointing at the source path
	Hardlink             // second directory entry for the source inode
)

var modeNames = [...]string{
	Copy:     "copy",
	Move:     "move",
	Symlink:  "symlink",
	Hardlink: "hardlink",
}

func (m Mode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	return m >= Copy && m <= Hardlink
}

// KeepsSource reports whether the source entry survives the transfer.
func (m Mode) KeepsSource() bool {
	return m != Move
}

// ParseMode parses a mode name, ignoring case.
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range modeNames {
		if n == name {
			return Mode(m), nil
		}
	}
	return 0, fmt.Errorf("unknown transfer mode %q (use copy, move, symlink or hardlink)", s)
}
