package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Enumerate lists the regular files in dir whose extension matches one of
// exts, compared case-insensitively. Subdirectories are not descended.
// The result is sorted by name.
func Enumerate(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}

	want := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" && !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		want[e] = true
	}

	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if want[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// OutputPath maps an input file to its PNG in outDir.
func OutputPath(outDir, input string) string {
	base := filepath.Base(input)
	return filepath.Join(outDir, strings.TrimSuffix(base, filepath.Ext(base))+".png")
}
