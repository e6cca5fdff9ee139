// Package site renders an ingested post collection into a static website:
// the latest post on the home page, one page per post and an archive view.
package site

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/icybits-lab/Blog/internal/model"
	"github.com/icybits-lab/Blog/internal/postname"
	"github.com/icybits-lab/Blog/internal/textfmt"
)

//go:embed templates/*.html
var defaultLayouts embed.FS

const (
	homeLayout    = "home.html"
	singleLayout  = "single.html"
	archiveLayout = "archive.html"
	errorLayout   = "error.html"
)

// Options controls where and how the site is written.
type Options struct {
	Site SiteInfo
	// OutputDir is wiped and recreated on every build.
	OutputDir string
	// LayoutsDir may hold .html files overriding the built-in layouts by
	// name. It is optional.
	LayoutsDir string
	// StaticDir is copied into OutputDir when it exists.
	StaticDir   string
	RecentLimit int
	// EscapeText escapes HTML in plain-text posts.
	EscapeText bool
	// SanitizeHTML filters structured posts through a UGC policy instead
	// of passing them through untouched.
	SanitizeHTML bool
	About        *About
}

// Builder writes the site.
type Builder struct {
	opts      Options
	templates *template.Template
	text      textfmt.Renderer
	policy    *bluemonday.Policy
	caser     cases.Caser
	logger    *zap.Logger
}

// New parses the layouts and returns a Builder.
func New(opts Options, logger *zap.Logger) (*Builder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.Site.BaseURL = strings.TrimSuffix(opts.Site.BaseURL, "/")
	tmpl, err := loadLayouts(opts.LayoutsDir, logger)
	if err != nil {
		return nil, err
	}
	b := &Builder{
		opts:      opts,
		templates: tmpl,
		text:      textfmt.Renderer{Escape: opts.EscapeText},
		caser:     cases.Title(language.English),
		logger:    logger,
	}
	if opts.SanitizeHTML {
		b.policy = bluemonday.UGCPolicy()
	}
	return b, nil
}

func loadLayouts(layoutsDir string, logger *zap.Logger) (*template.Template, error) {
	tmpl, err := template.ParseFS(defaultLayouts, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse built-in layouts: %w", err)
	}
	if layoutsDir == "" {
		return tmpl, nil
	}
	if _, err := os.Stat(layoutsDir); os.IsNotExist(err) {
		return tmpl, nil
	}

	var overrides []string
	err = filepath.WalkDir(layoutsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			overrides = append(overrides, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find layout files in '%s': %w", layoutsDir, err)
	}
	if len(overrides) == 0 {
		return tmpl, nil
	}
	tmpl, err = tmpl.ParseFiles(overrides...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout overrides: %w", err)
	}
	logger.Info("layout overrides loaded", zap.Int("files", len(overrides)), zap.String("dir", layoutsDir))
	return tmpl, nil
}

// Body returns the HTML body of a post.
func (b *Builder) Body(p model.Post) template.HTML {
	if p.Type == model.Structured {
		if b.policy != nil {
			return template.HTML(b.policy.Sanitize(p.Content))
		}
		return template.HTML(p.Content)
	}
	return template.HTML(b.text.Render(p.Content))
}

// Slug is the preferred directory name for a post's page. Posts whose slugs
// collide within one collection are separated by assignSlugs.
func Slug(filename string) string {
	return strings.ReplaceAll(postname.Stem(filename), "/", "-")
}

// assignSlugs gives every post a distinct slug. The first post to claim a
// stem keeps it; later ones get the extension appended, then a counter.
func assignSlugs(posts []model.Post) map[string]string {
	slugs := make(map[string]string, len(posts))
	taken := make(map[string]bool, len(posts))
	for _, p := range posts {
		slug := Slug(p.Filename)
		if taken[slug] {
			if ext := postname.Extension(p.Filename); ext != strings.ToLower(p.Filename) {
				slug += "-" + ext
			}
		}
		for base, n := slug, 2; taken[slug]; n++ {
			slug = fmt.Sprintf("%s-%d", base, n)
		}
		taken[slug] = true
		slugs[p.Filename] = slug
	}
	return slugs
}

// Build writes the whole site for col.
func (b *Builder) Build(col *model.Collection) error {
	if err := b.prepareOutput(); err != nil {
		return err
	}

	slugs := assignSlugs(col.Posts())
	views := b.views(col, slugs)
	all := make([]PostView, 0, len(views))
	for _, p := range col.Posts() {
		all = append(all, views[p.Filename])
	}
	pick := func(posts []model.Post) []PostView {
		out := make([]PostView, 0, len(posts))
		for _, p := range posts {
			out = append(out, views[p.Filename])
		}
		return out
	}

	base := PageData{
		Site:      b.opts.Site,
		Recent:    pick(col.Recent(b.opts.RecentLimit)),
		About:     b.opts.About,
		PostCount: col.Len(),
	}

	home := base
	home.Active = "home"
	home.Archive = pick(col.Archive())
	if cur, ok := col.Current(); ok {
		v := views[cur.Filename]
		home.Post = &v
		home.IsCurrent = true
	}
	if err := b.render(homeLayout, filepath.Join(b.opts.OutputDir, "index.html"), home); err != nil {
		return err
	}

	archive := base
	archive.Active = "archive"
	archive.PageTitle = "All Posts"
	archive.All = all
	if err := b.render(archiveLayout, filepath.Join(b.opts.OutputDir, "archive", "index.html"), archive); err != nil {
		return err
	}

	for _, p := range col.Posts() {
		v := views[p.Filename]
		page := base
		page.Post = &v
		page.PageTitle = b.caser.String(p.Title)
		page.IsCurrent = col.IsCurrent(p.Filename)
		page.Active = "archive"
		if page.IsCurrent {
			page.Active = "home"
		}
		out := filepath.Join(b.opts.OutputDir, "posts", slugs[p.Filename], "index.html")
		if err := b.render(singleLayout, out, page); err != nil {
			return err
		}
	}

	b.logger.Info("site built",
		zap.String("output_dir", b.opts.OutputDir),
		zap.Int("posts", col.Len()))
	return nil
}

// BuildError writes a home page that reports cause instead of any posts.
func (b *Builder) BuildError(cause error) error {
	if err := b.prepareOutput(); err != nil {
		return err
	}
	page := PageData{
		Site:      b.opts.Site,
		PageTitle: "Error",
		Active:    "home",
		Error:     cause.Error(),
	}
	return b.render(errorLayout, filepath.Join(b.opts.OutputDir, "index.html"), page)
}

func (b *Builder) views(col *model.Collection, slugs map[string]string) map[string]PostView {
	views := make(map[string]PostView, col.Len())
	for _, p := range col.Posts() {
		url := b.opts.Site.BaseURL + "/posts/" + slugs[p.Filename] + "/"
		if col.IsCurrent(p.Filename) {
			url = b.opts.Site.BaseURL + "/"
		}
		views[p.Filename] = PostView{
			Filename:      p.Filename,
			Title:         p.Title,
			FormattedDate: p.FormattedDate,
			Badge:         p.Type.Badge(),
			Structured:    p.Type == model.Structured,
			URL:           url,
			Body:          b.Body(p),
		}
	}
	return views
}

func (b *Builder) prepareOutput() error {
	outputDir := b.opts.OutputDir
	if err := os.RemoveAll(outputDir); err != nil {
		return fmt.Errorf("failed to remove output directory '%s': %w", outputDir, err)
	}
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output directory '%s': %w", outputDir, err)
	}

	staticDir := b.opts.StaticDir
	if staticDir == "" {
		return nil
	}
	if _, err := os.Stat(staticDir); os.IsNotExist(err) {
		b.logger.Debug("static directory not found, skipping copy", zap.String("dir", staticDir))
		return nil
	}
	if err := copyDirContents(staticDir, outputDir, b.logger); err != nil {
		return fmt.Errorf("failed to copy static assets: %w", err)
	}
	return nil
}

func (b *Builder) render(layout, outputPath string, data PageData) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", outputPath, err)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file '%s': %w", outputPath, err)
	}
	defer f.Close()

	if err := b.templates.ExecuteTemplate(f, layout, data); err != nil {
		return fmt.Errorf("failed to execute template '%s' (outputting to '%s'): %w", layout, outputPath, err)
	}
	b.logger.Debug("page generated", zap.String("path", outputPath), zap.String("layout", layout))
	return nil
}
