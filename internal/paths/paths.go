// Package paths shortens file paths for display relative to a root.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// CanonicalizePath converts an absolute path to a root-relative canonical path
// - Resolves symlinks to real paths
// - Makes path relative to root
// - Returns the relative path with forward slashes
func CanonicalizePath(absolutePath string, root string) (string, error) {
	resolved, err := filepath.EvalSymlinks(absolutePath)
	if err != nil {
		// If the file doesn't exist, use the path as-is
		if os.IsNotExist(err) {
			resolved = absolutePath
		} else {
			return "", err
		}
	}

	rootResolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		if os.IsNotExist(err) {
			rootResolved = root
		} else {
			return "", err
		}
	}

	relativePath, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}

	return filepath.ToSlash(relativePath), nil
}

// IsWithinRoot checks if a path is inside root
func IsWithinRoot(path string, root string) bool {
	canonical, err := CanonicalizePath(path, root)
	if err != nil {
		return false
	}
	return canonical != ".." && !strings.HasPrefix(canonical, "../")
}

// Display returns path relative to root when it lies inside root, and
// path unchanged otherwise. An empty root disables shortening.
func Display(path string, root string) string {
	if root == "" || path == "" || !filepath.IsAbs(path) {
		return path
	}
	if !IsWithinRoot(path, root) {
		return path
	}
	canonical, err := CanonicalizePath(path, root)
	if err != nil {
		return path
	}
	return canonical
}

// DisplayAll applies Display to every entry of list.
func DisplayAll(list []string, root string) []string {
	out := make([]string, len(list))
	for i, p := range list {
		out[i] = Display(p, root)
	}
	return out
}
