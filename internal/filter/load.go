package filter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

// LoadPatterns reads a JSONC array of file name globs, e.g.
//
//	[
//	  // office documents
//	  "*.docx",
//	  "*.xlsx",
//	]
//
// Blank entries are dropped. A malformed glob is reported with its position in the file.
func LoadPatterns(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is from user-supplied config
	if err != nil {
		return nil, fmt.Errorf("reading patterns file %q: %w", path, err)
	}

	var raw []string
	if err := json.Unmarshal(jsonc.ToJSONInPlace(data), &raw); err != nil {
		return nil, fmt.Errorf("parsing patterns file %q: %w", path, err)
	}

	patterns := make([]string, 0, len(raw))

	for idx, p := range raw {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if _, err := filepath.Match(p, ""); err != nil {
			return nil, fmt.Errorf("patterns file %q: entry %d %q: %w", path, idx, p, err)
		}

		patterns = append(patterns, p)
	}

	return patterns, nil
}

// Merge returns inline followed by the patterns loaded from each non-empty file.
func Merge(inline []string, files ...string) ([]string, error) {
	patterns := append([]string{}, inline...)

	for _, file := range files {
		if file == "" {
			continue
		}

		loaded, err := LoadPatterns(file)
		if err != nil {
			return nil, err
		}

		patterns = append(patterns, loaded...)
	}

	return patterns, nil
}
