package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/icybits-lab/Blog/internal/model"
	"github.com/icybits-lab/Blog/internal/source"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var errNotFound = errors.New("not found")

type fakeSource struct {
	files       []string
	manifestErr error
	content     map[string]string
	calls       atomic.Int32
}

func (f *fakeSource) Manifest(context.Context) ([]string, error) {
	if f.manifestErr != nil {
		return nil, f.manifestErr
	}
	return f.files, nil
}

func (f *fakeSource) Content(ctx context.Context, filename string) (string, error) {
	f.calls.Add(1)
	body, ok := f.content[filename]
	if !ok {
		return "", errNotFound
	}
	return body, nil
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

var now = time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)

func names(posts []model.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Filename)
	}
	return out
}

func TestIngestOrdersNewestFirst(t *testing.T) {
	src := &fakeSource{
		files: []string{"2024-01-01-a.txt", "2024-06-01-b.txt"},
		content: map[string]string{
			"2024-01-01-a.txt": "first",
			"2024-06-01-b.txt": "second",
		},
	}

	col, err := New(src, src, WithClock(fixedClock(now))).Ingest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-06-01-b.txt", "2024-01-01-a.txt"}, names(col.Posts()))
	cur, ok := col.Current()
	require.True(t, ok)
	assert.Equal(t, "b", cur.Title)
	assert.Equal(t, "June 1, 2024", cur.FormattedDate)
	assert.Equal(t, "second", cur.Content)
	assert.Equal(t, []string{"2024-01-01-a.txt"}, names(col.Archive()))
}

func TestIngestDerivesPostFields(t *testing.T) {
	src := &fakeSource{
		files: []string{"2024-03-15-hello-world.HTML", "notes.txt", "bad-date-here-x.txt"},
		content: map[string]string{
			"2024-03-15-hello-world.HTML": "<p>hi</p>",
			"notes.txt":                   "undated",
			"bad-date-here-x.txt":         "broken",
		},
	}

	col, err := New(src, src, WithClock(fixedClock(now))).Ingest(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, col.Len())

	// Undated posts take the ingestion time, so they sort first; invalid
	// dates sort last.
	assert.Equal(t, []string{"notes.txt", "2024-03-15-hello-world.HTML", "bad-date-here-x.txt"}, names(col.Posts()))

	html, ok := col.Lookup("2024-03-15-hello-world.HTML")
	require.True(t, ok)
	assert.Equal(t, model.Structured, html.Type)
	assert.Equal(t, "hello world", html.Title)
	assert.Equal(t, "March 15, 2024", html.FormattedDate)

	notes, _ := col.Lookup("notes.txt")
	assert.Equal(t, model.Plain, notes.Type)
	assert.True(t, notes.Date.Equal(now))
	assert.Equal(t, "October 16, 2026", notes.FormattedDate)

	bad, _ := col.Lookup("bad-date-here-x.txt")
	assert.False(t, bad.DateValid)
	assert.Equal(t, "Invalid Date", bad.FormattedDate)
	assert.Equal(t, "x", bad.Title)
}

func TestIngestManifestUnavailable(t *testing.T) {
	src := &fakeSource{manifestErr: errors.New("404")}

	col, err := New(src, src).Ingest(context.Background())
	assert.Nil(t, col)
	assert.ErrorIs(t, err, ErrManifestUnavailable)
	assert.Zero(t, src.calls.Load())
}

func TestIngestPostUnavailableIsAllOrNothing(t *testing.T) {
	src := &fakeSource{
		files: []string{"2024-01-01-a.txt", "2024-02-01-missing.txt", "2024-03-01-c.txt"},
		content: map[string]string{
			"2024-01-01-a.txt": "a",
			"2024-03-01-c.txt": "c",
		},
	}

	col, err := New(src, src).Ingest(context.Background())
	assert.Nil(t, col)

	var postErr *PostUnavailableError
	require.True(t, errors.As(err, &postErr))
	assert.Equal(t, "2024-02-01-missing.txt", postErr.Filename)
	assert.ErrorIs(t, err, errNotFound)
	assert.Contains(t, err.Error(), "failed to load post: 2024-02-01-missing.txt")
}

// blockingSource never answers for "slow" until its context is cancelled.
type blockingSource struct{}

func (blockingSource) Manifest(context.Context) ([]string, error) {
	return []string{"2024-01-01-slow.txt", "2024-01-02-bad.txt"}, nil
}

func (blockingSource) Content(ctx context.Context, filename string) (string, error) {
	if filename == "2024-01-02-bad.txt" {
		return "", errNotFound
	}
	<-ctx.Done()
	return "", ctx.Err()
}

func TestIngestFailureCancelsOutstandingFetches(t *testing.T) {
	done := make(chan error, 1)
	go func() {
		_, err := New(blockingSource{}, blockingSource{}).Ingest(context.Background())
		done <- err
	}()

	select {
	case err := <-done:
		var postErr *PostUnavailableError
		require.True(t, errors.As(err, &postErr))
		assert.Equal(t, "2024-01-02-bad.txt", postErr.Filename)
	case <-time.After(5 * time.Second):
		t.Fatal("ingestion did not stop after a failed fetch")
	}
}

func TestIngestTieBreak(t *testing.T) {
	files := []string{"2024-01-01-zeta.txt", "2024-01-01-alpha.txt", "2024-02-01-new.txt"}
	src := &fakeSource{
		files: files,
		content: map[string]string{
			"2024-01-01-zeta.txt":  "z",
			"2024-01-01-alpha.txt": "a",
			"2024-02-01-new.txt":   "n",
		},
	}

	// One fetch at a time makes arrival order equal manifest order.
	col, err := New(src, src, WithConcurrency(1), WithTieBreak(TieBreakArrival)).Ingest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02-01-new.txt", "2024-01-01-zeta.txt", "2024-01-01-alpha.txt"}, names(col.Posts()))

	col, err = New(src, src, WithTieBreak(TieBreakFilename)).Ingest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02-01-new.txt", "2024-01-01-alpha.txt", "2024-01-01-zeta.txt"}, names(col.Posts()))
}

func TestIngestDropsDuplicateFilenames(t *testing.T) {
	src := &fakeSource{
		files:   []string{"2024-01-01-a.txt", "2024-01-01-a.txt"},
		content: map[string]string{"2024-01-01-a.txt": "a"},
	}

	col, err := New(src, src).Ingest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, col.Len())
	assert.EqualValues(t, 1, src.calls.Load())
}

func TestIngestEmptyManifest(t *testing.T) {
	src := &fakeSource{files: []string{}}

	col, err := New(src, src).Ingest(context.Background())
	require.NoError(t, err)
	_, ok := col.Current()
	assert.False(t, ok)
	assert.Empty(t, col.Archive())
}

func TestIngestFromDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "post"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "posts.json"),
		[]byte(`["2024-01-01-a.txt","2024-06-01-b.html"]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "post", "2024-01-01-a.txt"), []byte("plain"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "post", "2024-06-01-b.html"), []byte("<em>rich</em>"), 0o644))

	dir := source.NewDir(root, "posts.json", "post")
	col, err := New(dir, dir).Ingest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-06-01-b.html", "2024-01-01-a.txt"}, names(col.Posts()))
	assert.Equal(t, []string{"2024-06-01-b.html", "2024-01-01-a.txt"}, names(col.Recent(5)))
}

func TestParseTieBreak(t *testing.T) {
	tb, err := ParseTieBreak("filename")
	require.NoError(t, err)
	assert.Equal(t, TieBreakFilename, tb)

	_, err = ParseTieBreak("random")
	assert.Error(t, err)
}
