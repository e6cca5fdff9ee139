// cmd/build.go
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/icybits-lab/Blog/internal/config"
	"github.com/icybits-lab/Blog/internal/site"
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds the static blog from the post manifest",
	Long: `The build command reads the manifest (default 'content/posts.json'), loads
every post listed in it from 'content/post/', and writes the latest post, one
page per post and an archive page to the configured output directory
(default './public/'). If any post fails to load, an error page is written
instead and the command fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuildProcess(cmd.Context(), appConfig, logger)
	},
}

func runBuildProcess(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log.Info("starting build",
		zap.String("output_dir", cfg.OutputDir),
		zap.String("content_dir", cfg.ContentDir),
		zap.String("remote_url", cfg.RemoteURL))

	about, err := site.LoadAbout(aboutPath(cfg))
	if err != nil {
		log.Warn("author section skipped", zap.Error(err))
		about = nil
	}

	builder, err := site.New(site.Options{
		Site: site.SiteInfo{
			Title:    cfg.SiteTitle,
			BaseURL:  cfg.BaseURL,
			Manifest: cfg.Manifest,
			PostsDir: cfg.PostsDir,
		},
		OutputDir:    cfg.OutputDir,
		LayoutsDir:   cfg.LayoutsDir,
		StaticDir:    cfg.StaticDir,
		RecentLimit:  cfg.RecentLimit,
		EscapeText:   cfg.EscapeText,
		SanitizeHTML: cfg.SanitizeHTML,
		About:        about,
	}, log.Named("site"))
	if err != nil {
		return err
	}

	pipeline, err := newPipeline(cfg, log)
	if err != nil {
		return err
	}

	col, ingestErr := pipeline.Ingest(ctx)
	if ingestErr != nil {
		log.Error("error loading blog posts", zap.Error(ingestErr))
		if err := builder.BuildError(ingestErr); err != nil {
			return fmt.Errorf("failed to write error page: %w", err)
		}
		return fmt.Errorf("error loading blog posts: %w", ingestErr)
	}

	if err := builder.Build(col); err != nil {
		return err
	}
	log.Info("build completed", zap.Int("posts", col.Len()))
	return nil
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
