package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Dir reads the manifest and posts from a content directory on disk.
type Dir struct {
	Root         string
	ManifestName string
	PostsDir     string
}

// NewDir returns a Dir rooted at root with the given manifest file name and
// posts subdirectory.
func NewDir(root, manifestName, postsDir string) *Dir {
	return &Dir{Root: root, ManifestName: manifestName, PostsDir: postsDir}
}

// Manifest reads and decodes the manifest file.
func (d *Dir) Manifest(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := filepath.Join(d.Root, d.ManifestName)
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("error reading manifest %s: %w", p, err)
	}
	return decodeManifest(d.ManifestName, data)
}

// Content reads a post file from the posts directory.
func (d *Dir) Content(ctx context.Context, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkLocal(filename); err != nil {
		return "", err
	}
	p := filepath.Join(d.Root, d.PostsDir, filepath.FromSlash(filename))
	data, err := os.ReadFile(p)
	if err != nil {
		return "", fmt.Errorf("error reading post %s: %w", p, err)
	}
	return string(data), nil
}

// PostsPath is the directory holding post files.
func (d *Dir) PostsPath() string {
	return filepath.Join(d.Root, d.PostsDir)
}
