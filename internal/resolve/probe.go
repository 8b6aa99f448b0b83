package resolve

import (
	"fmt"
	"os"
	"path/filepath"
)

// canonicalize mirrors source.Registry's cache-key derivation so a
// file-id computed here always matches the one the registry assigns,
// without requiring a parse first.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve: resolve path %q: %w", path, err)
	}
	return filepath.ToSlash(filepath.Clean(abs)), nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// exists reports whether path names a file the resolver can load: one
// already registered (covers virtual, in-memory documents used by
// tests) or one present on disk.
func (r *resolver) exists(path string) bool {
	if _, ok := r.reg.Get(path); ok {
		return true
	}
	return fileExists(path)
}
