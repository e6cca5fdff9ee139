package site

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"os"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// About is the author section shown in the sidebar.
type About struct {
	Name    string
	Tagline string
	Bio     template.HTML
}

type aboutMeta struct {
	Name    string `yaml:"name"`
	Tagline string `yaml:"tagline"`
}

var bioMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

// LoadAbout reads a Markdown author bio with optional frontmatter. A missing
// file is not an error; it returns nil.
func LoadAbout(path string) (*About, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read about file %s: %w", path, err)
	}
	return parseAbout(data)
}

func parseAbout(data []byte) (*About, error) {
	var meta aboutMeta
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		return nil, fmt.Errorf("failed to parse about frontmatter: %w", err)
	}

	var buf bytes.Buffer
	if err := bioMarkdown.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("failed to convert about markdown: %w", err)
	}

	return &About{
		Name:    meta.Name,
		Tagline: meta.Tagline,
		Bio:     template.HTML(buf.String()),
	}, nil
}
