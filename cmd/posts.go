package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/icybits-lab/Blog/internal/config"
	"github.com/icybits-lab/Blog/internal/model"
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Lists the posts in display order",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listPosts(cmd.Context(), cmd.OutOrStdout(), appConfig, logger)
	},
}

func listPosts(ctx context.Context, w io.Writer, cfg config.Config, log *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	pipeline, err := newPipeline(cfg, log)
	if err != nil {
		return err
	}
	col, err := pipeline.Ingest(ctx)
	if err != nil {
		return fmt.Errorf("error loading blog posts: %w", err)
	}
	return writePostTable(w, col, cfg.RecentLimit)
}

func writePostTable(w io.Writer, col *model.Collection, recentLimit int) error {
	recent := make(map[string]bool)
	for _, p := range col.Recent(recentLimit) {
		recent[p.Filename] = true
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tDATE\tTYPE\tTITLE\tFILENAME")
	for _, p := range col.Posts() {
		mark := ""
		switch {
		case col.IsCurrent(p.Filename):
			mark = "current"
		case recent[p.Filename]:
			mark = "recent"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", mark, p.FormattedDate, p.Type.Badge(), p.Title, p.Filename)
	}
	return tw.Flush()
}

func init() {
	rootCmd.AddCommand(postsCmd)
}
