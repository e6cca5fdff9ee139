// Package source provides the collaborators that supply the post manifest
// and the raw content of each post.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v2"
)

// ManifestSource lists the filenames of every post.
type ManifestSource interface {
	Manifest(ctx context.Context) ([]string, error)
}

// ContentSource returns the raw content of a single post.
type ContentSource interface {
	Content(ctx context.Context, filename string) (string, error)
}

// Source is both a manifest and a content source.
type Source interface {
	ManifestSource
	ContentSource
}

// ErrOutsideRoot is returned for filenames that would resolve outside the
// posts directory.
var ErrOutsideRoot = errors.New("filename escapes the posts directory")

// checkLocal rejects empty, absolute and parent-relative filenames.
func checkLocal(filename string) error {
	if filename == "" || strings.HasPrefix(filename, "/") || strings.Contains(filename, "\\") {
		return fmt.Errorf("%q: %w", filename, ErrOutsideRoot)
	}
	cleaned := path.Clean(filename)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("%q: %w", filename, ErrOutsideRoot)
	}
	return nil
}

// decodeManifest parses a manifest body. YAML is used for .yaml and .yml
// manifests, JSON for everything else. Both hold a flat list of filenames.
func decodeManifest(name string, data []byte) ([]string, error) {
	var files []string
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &files); err != nil {
			return nil, fmt.Errorf("error decoding manifest %s: %w", name, err)
		}
	default:
		if err := json.Unmarshal(data, &files); err != nil {
			return nil, fmt.Errorf("error decoding manifest %s: %w", name, err)
		}
	}
	return files, nil
}
