// Package fsutil provides file system helpers for locating configuration
// documents inside a config directory.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// yamlExtensions lists the accepted config file extensions, in lookup order.
var yamlExtensions = []string{".yaml", ".yml"}

// FindConfigFile resolves a config reference like "experiment" or
// "engine/basic" to an existing file under dir, trying each accepted
// extension. It returns the full path, or an error listing the sibling
// options when the file does not exist.
func FindConfigFile(dir, ref string) (string, error) {
	for _, ext := range yamlExtensions {
		path := filepath.Join(dir, ref+ext)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
	}

	options, _ := ListGroupOptions(dir, filepath.Dir(ref))
	if len(options) > 0 {
		return "", fmt.Errorf("config %q not found in %s (available: %s)",
			ref, dir, strings.Join(options, ", "))
	}
	return "", fmt.Errorf("config %q not found in %s", ref, dir)
}

// ListGroupOptions returns the names (without extension) of the config files
// directly inside the group subdirectory, sorted. group "." means the config
// dir itself.
func ListGroupOptions(dir, group string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(dir, group))
	if err != nil {
		return nil, err
	}

	var options []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		for _, ext := range yamlExtensions {
			if strings.HasSuffix(name, ext) {
				options = append(options, strings.TrimSuffix(name, ext))
				break
			}
		}
	}
	sort.Strings(options)
	return options, nil
}
