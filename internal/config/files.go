package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// GetAllFiles expands Files against rootPath (supporting a leading "**"
// walk) and drops anything matching IgnorePatterns or lacking a Verilog
// extension, returning a sorted, de-duplicated path list (paths are
// absolute when rootPath or the pattern is absolute).
func (c *Config) GetAllFiles(rootPath string) ([]string, error) {
	fileSet := make(map[string]bool)

	for _, pattern := range c.Files {
		abs := pattern
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(rootPath, abs)
		}
		matches, err := expandGlob(abs)
		if err != nil {
			continue // invalid pattern, skip rather than fail the whole run
		}
		for _, m := range matches {
			if !isVerilogFile(m) {
				continue
			}
			if c.ShouldIgnoreFile(m) {
				continue
			}
			fileSet[m] = true
		}
	}

	result := make([]string, 0, len(fileSet))
	for f := range fileSet {
		result = append(result, f)
	}
	sort.Strings(result)
	return result, nil
}

func expandGlob(pattern string) ([]string, error) {
	if strings.Contains(pattern, "**") {
		return expandDoubleStarGlob(pattern)
	}
	return filepath.Glob(pattern)
}

// expandDoubleStarGlob handles "**" patterns by walking the directory tree
// rooted at the portion of the pattern before "**" and matching the
// remainder against each file's path relative to that root.
func expandDoubleStarGlob(pattern string) ([]string, error) {
	parts := strings.SplitN(pattern, "**", 2)
	if len(parts) != 2 {
		return filepath.Glob(pattern)
	}

	baseDir := filepath.Clean(parts[0])
	if baseDir == "" {
		baseDir = "."
	}
	suffix := strings.TrimPrefix(parts[1], string(filepath.Separator))

	var results []string
	err := filepath.Walk(baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries, keep walking
		}
		if info.IsDir() {
			return nil
		}
		if suffix == "" {
			results = append(results, path)
			return nil
		}
		relPath, err := filepath.Rel(baseDir, path)
		if err != nil {
			return nil
		}
		if matchSuffix(relPath, suffix) {
			results = append(results, path)
		}
		return nil
	})
	return results, err
}

func matchSuffix(path, pattern string) bool {
	pattern = strings.TrimPrefix(pattern, string(filepath.Separator))

	if !strings.Contains(pattern, string(filepath.Separator)) {
		matched, _ := filepath.Match(pattern, filepath.Base(path))
		return matched
	}

	if matched, _ := filepath.Match(pattern, path); matched {
		return true
	}
	if len(path) > len(pattern) {
		if matched, _ := filepath.Match(pattern, path[len(path)-len(pattern):]); matched {
			return true
		}
	}
	return false
}

func isVerilogFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".v", ".va", ".sv":
		return true
	default:
		return false
	}
}
