package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

// NormalizeName reduces a title to lowercase letters and digits so folder
// names survive the batch tool's own sanitization (spaces, punctuation, and
// case all get mangled on the way through).
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// LocateOutputDir finds the batch tool's output folder for the expected
// title. Exact normalized matches win; ties break to the lexicographically
// smallest folder name so the choice is deterministic. When nothing matches,
// the most recently modified folder is assumed to be the fresh run. Returns
// "" when the root holds no folders at all.
func LocateOutputDir(root, expectedTitle string) (string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", fmt.Errorf("read output root: %w", err)
	}

	type candidate struct {
		name    string
		modTime int64
	}
	var dirs []candidate
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dirs = append(dirs, candidate{name: entry.Name(), modTime: info.ModTime().UnixNano()})
	}
	if len(dirs) == 0 {
		return "", nil
	}

	want := NormalizeName(expectedTitle)
	if want != "" {
		var matches []string
		for _, dir := range dirs {
			if NormalizeName(dir.name) == want {
				matches = append(matches, dir.name)
			}
		}
		if len(matches) > 0 {
			sort.Strings(matches)
			return filepath.Join(root, matches[0]), nil
		}
	}

	sort.Slice(dirs, func(i, j int) bool {
		if dirs[i].modTime != dirs[j].modTime {
			return dirs[i].modTime > dirs[j].modTime
		}
		return dirs[i].name < dirs[j].name
	})
	return filepath.Join(root, dirs[0].name), nil
}
