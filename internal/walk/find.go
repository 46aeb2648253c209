package walk

import (
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"
)

var audioExtensions = []string{"flac", "mp3", "m4a", "ogg", "opus", "wav", "aac", "wma"}

// AudioExtensions returns the extensions recognised as audio, lower case
// and without the leading dot.
func AudioExtensions() []string {
	return slices.Clone(audioExtensions)
}

// IsAudio reports whether path has one of the audio extensions.
func IsAudio(path string) bool {
	ext, ok := Extension(path)
	if !ok {
		return false
	}
	return slices.Contains(audioExtensions, strings.ToLower(ext))
}

// Extension returns the text after the last dot of path's base name.
// A name whose only dot is its first character (".flac") has no extension.
func Extension(path string) (string, bool) {
	name := filepath.Base(path)
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return "", false
	}
	return name[i+1:], true
}

// FindByName returns the first file below root whose name and extension
// equal those of target. Only the base of target is compared.
func FindByName(root, target string) (string, bool, error) {
	seq, err := Walk(root)
	if err != nil {
		return "", false, err
	}
	for path, err := range seq {
		if err != nil {
			return "", false, err
		}
		if sameName(path, target) {
			return path, true, nil
		}
	}
	return "", false, nil
}

// FindAllByName returns every file below root matching target as
// FindByName does, in traversal order.
func FindAllByName(root, target string) ([]string, error) {
	return collect(root, func(path string) bool {
		return sameName(path, target)
	})
}

// FindByExtension returns files whose extension equals ext, ignoring case.
// A leading dot on ext is ignored.
func FindByExtension(root, ext string) ([]string, error) {
	want := strings.TrimPrefix(ext, ".")
	return collect(root, func(path string) bool {
		got, ok := Extension(path)
		return ok && strings.EqualFold(got, want)
	})
}

// FindBySubstring returns files whose full path contains pattern. Paths
// that are not valid UTF-8 are skipped.
func FindBySubstring(root, pattern string) ([]string, error) {
	return collect(root, func(path string) bool {
		return utf8.ValidString(path) && strings.Contains(path, pattern)
	})
}

// FindAudioFiles returns the audio files below root. Unreadable entries
// are skipped.
func FindAudioFiles(root string) ([]string, error) {
	seq, err := WalkLenient(root)
	if err != nil {
		return nil, err
	}
	var matches []string
	for path := range seq {
		if IsAudio(path) {
			matches = append(matches, path)
		}
	}
	return matches, nil
}

// collect walks root strictly and keeps paths accepted by keep. The first
// traversal error aborts the search.
func collect(root string, keep func(string) bool) ([]string, error) {
	seq, err := Walk(root)
	if err != nil {
		return nil, err
	}
	var matches []string
	for path, err := range seq {
		if err != nil {
			return nil, err
		}
		if keep(path) {
			matches = append(matches, path)
		}
	}
	return matches, nil
}

func sameName(path, target string) bool {
	if filepath.Base(path) != filepath.Base(target) {
		return false
	}
	a, aok := Extension(path)
	b, bok := Extension(target)
	return aok == bok && a == b
}
