// Package ingest loads every post named in the manifest and turns them into
// an ordered, read-only collection.
package ingest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/icybits-lab/Blog/internal/model"
	"github.com/icybits-lab/Blog/internal/postname"
	"github.com/icybits-lab/Blog/internal/source"
)

// TieBreak orders posts that share the same date.
type TieBreak string

const (
	// TieBreakArrival keeps posts with equal dates in the order their content
	// finished loading, which varies between runs.
	TieBreakArrival TieBreak = "arrival"
	// TieBreakFilename orders posts with equal dates by filename.
	TieBreakFilename TieBreak = "filename"
)

// ParseTieBreak validates a tie-break name from configuration.
func ParseTieBreak(s string) (TieBreak, error) {
	switch TieBreak(s) {
	case TieBreakArrival, TieBreakFilename:
		return TieBreak(s), nil
	default:
		return "", fmt.Errorf("unknown tie-break %q (want %q or %q)", s, TieBreakArrival, TieBreakFilename)
	}
}

// Clock supplies the date given to posts whose filename carries none.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Pipeline loads posts from a manifest and content source.
type Pipeline struct {
	manifest    source.ManifestSource
	content     source.ContentSource
	clock       Clock
	tieBreak    TieBreak
	concurrency int
	logger      *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// WithTieBreak sets how posts with equal dates are ordered.
func WithTieBreak(tb TieBreak) Option {
	return func(p *Pipeline) { p.tieBreak = tb }
}

// WithConcurrency caps the number of posts fetched at once. Zero or less
// fetches every post at the same time.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) { p.concurrency = n }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// New returns a Pipeline reading from the given sources. By default posts
// with equal dates keep their arrival order.
func New(manifest source.ManifestSource, content source.ContentSource, opts ...Option) *Pipeline {
	p := &Pipeline{
		manifest: manifest,
		content:  content,
		clock:    realClock{},
		tieBreak: TieBreakArrival,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ingest reads the manifest, loads every post concurrently and returns them
// sorted newest first. If the manifest or any post cannot be loaded no
// collection is returned.
func (p *Pipeline) Ingest(ctx context.Context) (*model.Collection, error) {
	start := time.Now()

	files, err := p.manifest.Manifest(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifestUnavailable, err)
	}
	files = p.dedupe(files)
	p.logger.Debug("manifest loaded", zap.Int("files", len(files)))

	now := p.clock.Now()
	var (
		mu    sync.Mutex
		posts = make([]model.Post, 0, len(files))
	)

	g, gctx := errgroup.WithContext(ctx)
	if p.concurrency > 0 {
		g.SetLimit(p.concurrency)
	}
	for _, filename := range files {
		filename := filename
		g.Go(func() error {
			content, err := p.content.Content(gctx, filename)
			if err != nil {
				return &PostUnavailableError{Filename: filename, Err: err}
			}
			post := buildPost(filename, content, now)

			mu.Lock()
			posts = append(posts, post)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortPosts(posts, p.tieBreak)
	p.logger.Info("posts ingested",
		zap.Int("posts", len(posts)),
		zap.String("tie_break", string(p.tieBreak)),
		zap.Duration("took", time.Since(start)))

	return model.NewCollection(posts), nil
}

// dedupe drops repeated filenames, keeping the first occurrence.
func (p *Pipeline) dedupe(files []string) []string {
	seen := make(map[string]struct{}, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		if _, ok := seen[f]; ok {
			p.logger.Warn("duplicate manifest entry ignored", zap.String("filename", f))
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func buildPost(filename, content string, now time.Time) model.Post {
	meta := postname.Parse(filename, now)
	return model.Post{
		Filename:      filename,
		Title:         meta.Title,
		Date:          meta.Date,
		DateValid:     meta.DateValid,
		FormattedDate: postname.FormatDate(meta.Date, meta.DateValid),
		Content:       content,
		Type:          model.TypeFor(postname.Extension(filename)),
	}
}

// sortPosts orders posts newest first. Posts with an invalid date go last.
func sortPosts(posts []model.Post, tb TieBreak) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		if a.DateValid != b.DateValid {
			return a.DateValid
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if tb == TieBreakFilename {
			return a.Filename < b.Filename
		}
		return false
	})
}
