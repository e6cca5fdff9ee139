package cmd

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/icybits-lab/Blog/internal/config"
	"github.com/icybits-lab/Blog/internal/ingest"
	"github.com/icybits-lab/Blog/internal/source"
)

// newSource reads from the remote site when remoteURL is set and from the
// content directory otherwise.
func newSource(cfg config.Config) source.Source {
	if cfg.RemoteURL != "" {
		return source.NewHTTP(cfg.RemoteURL, cfg.Manifest, cfg.PostsDir, cfg.FetchTimeout)
	}
	return source.NewDir(cfg.ContentDir, cfg.Manifest, cfg.PostsDir)
}

func newPipeline(cfg config.Config, log *zap.Logger) (*ingest.Pipeline, error) {
	tb, err := ingest.ParseTieBreak(cfg.TieBreak)
	if err != nil {
		return nil, err
	}
	src := newSource(cfg)
	return ingest.New(src, src,
		ingest.WithTieBreak(tb),
		ingest.WithConcurrency(cfg.Concurrency),
		ingest.WithLogger(log.Named("ingest")),
	), nil
}

func aboutPath(cfg config.Config) string {
	if cfg.AboutFile == "" {
		return ""
	}
	return filepath.Join(cfg.ContentDir, cfg.AboutFile)
}
