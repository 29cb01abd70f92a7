// Copyright © 2024 The symref authors

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// expandArgs expands arguments into concrete file paths. Arguments ending
// with "/..." resolve to all Lisp source files found recursively under the
// given directory, glob patterns (including **) resolve through doublestar,
// and anything else passes through unchanged. Paths matching an exclude
// pattern are dropped.
func expandArgs(args []string, excludes []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		var files []string
		switch {
		case strings.HasSuffix(arg, "/..."):
			dir := strings.TrimSuffix(arg, "/...")
			if dir == "" {
				dir = "."
			}
			found, err := findLispFiles(dir)
			if err != nil {
				return nil, fmt.Errorf("expanding %s: %w", arg, err)
			}
			files = found
		case strings.ContainsAny(arg, "*?[{"):
			found, err := doublestar.FilepathGlob(arg)
			if err != nil {
				return nil, fmt.Errorf("expanding %s: %w", arg, err)
			}
			files = found
		default:
			files = []string{arg}
		}
		for _, f := range files {
			if excluded(f, excludes) {
				continue
			}
			out = append(out, f)
		}
	}
	return out, nil
}

// lispExts lists the file extensions collected by recursive expansion.
var lispExts = map[string]bool{
	".lisp": true,
	".el":   true,
}

func findLispFiles(root string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if shouldSkipDir(info.Name(), path, root) {
				return filepath.SkipDir
			}
			return nil
		}
		if lispExts[filepath.Ext(path)] {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// shouldSkipDir hides VCS and dependency directories from recursive
// expansion. The root itself is never skipped even when hidden, so
// "symref function f ./..." works from inside a dot-directory.
func shouldSkipDir(name, path, root string) bool {
	if path == root {
		return false
	}
	if strings.HasPrefix(name, ".") && name != "." {
		return true
	}
	return name == "node_modules" || name == "vendor"
}

// excluded reports whether path matches any exclude pattern. A pattern
// matches the path itself, its base name, or any single path segment, so
// --exclude=generated.el and --exclude=build both work.
func excluded(path string, excludes []string) bool {
	for _, pattern := range excludes {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, filepath.Base(path)); ok {
			return true
		}
		for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
			if ok, _ := doublestar.Match(pattern, seg); ok {
				return true
			}
		}
	}
	return false
}
