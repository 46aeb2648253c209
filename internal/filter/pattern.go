package filter

import (
	"regexp"
	"strings"
)

// compiledPattern is a compiled glob pattern that can match paths.
type compiledPattern struct {
	re       *regexp.Regexp
	original string
	anchored bool // matches from the import root only
	dirOnly  bool // pattern ends with /
}

// compilePattern converts a rsync-style glob pattern into a compiled matcher.
// A leading or embedded / anchors the pattern to the import root; otherwise
// it may match the final components of any path.
func compilePattern(pattern string) (*compiledPattern, error) {
	cp := &compiledPattern{original: pattern}

	if trimmed, ok := strings.CutSuffix(pattern, "/"); ok {
		cp.dirOnly = true
		pattern = trimmed
	}
	if trimmed, ok := strings.CutPrefix(pattern, "/"); ok {
		cp.anchored = true
		pattern = trimmed
	} else if strings.Contains(pattern, "/") {
		cp.anchored = true
	}

	prefix := "(^|/)"
	if cp.anchored {
		prefix = "^"
	}

	re, err := regexp.Compile(prefix + globToRegex(pattern) + "$")
	if err != nil {
		return nil, err
	}
	cp.re = re
	return cp, nil
}

// match tests whether a relative path matches this pattern.
func (cp *compiledPattern) match(relPath string, isDir bool) bool {
	if cp.dirOnly && !isDir {
		return false
	}
	return cp.re.MatchString(relPath)
}

func (cp *compiledPattern) String() string {
	return cp.original
}

// globToRegex converts a glob pattern to a regex string.
// * and ? stop at /, ** crosses it, [...] and [!...] are character classes.
func globToRegex(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); {
		switch c := pattern[i]; c {
		case '*':
			switch {
			case strings.HasPrefix(pattern[i:], "**/"):
				b.WriteString("(.*/)?")
				i += 3
			case strings.HasPrefix(pattern[i:], "**"):
				b.WriteString(".*")
				i += 2
			default:
				b.WriteString("[^/]*")
				i++
			}
		case '?':
			b.WriteString("[^/]")
			i++
		case '[':
			cls, n := charClass(pattern[i:])
			b.WriteString(cls)
			i += n
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
			i++
		}
	}
	return b.String()
}

// charClass translates the bracket expression at the start of s and
// returns it with the number of bytes consumed. An unterminated bracket
// is taken literally.
func charClass(s string) (string, int) {
	j := 1
	if j < len(s) && s[j] == '!' {
		j++
	}
	if j < len(s) && s[j] == ']' {
		j++
	}
	end := strings.IndexByte(s[j:], ']')
	if end < 0 {
		return regexp.QuoteMeta("["), 1
	}
	end += j

	body := s[1:end]
	if rest, ok := strings.CutPrefix(body, "!"); ok {
		body = "^" + rest
	}
	return "[" + body + "]", end + 1
}
