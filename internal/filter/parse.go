package filter

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadFile reads filter rules from a file and appends them to the chain.
// Format, one rule per line:
//
//	pattern     exclude (rsync default)
//	- pattern   exclude
//	+ pattern   include
//	# comment   skipped, as are blank lines
func (c *Chain) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open filter file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		pattern, include, ok := parseRule(scanner.Text())
		if !ok {
			continue
		}
		if err := c.add(pattern, include); err != nil {
			return fmt.Errorf("filter file %s line %d: %w", path, lineNum, err)
		}
	}
	return scanner.Err()
}

func parseRule(line string) (pattern string, include, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", false, false
	}
	if rest, found := strings.CutPrefix(line, "+ "); found {
		return strings.TrimSpace(rest), true, true
	}
	if rest, found := strings.CutPrefix(line, "- "); found {
		return strings.TrimSpace(rest), false, true
	}
	return line, false, true
}
