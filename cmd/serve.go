// cmd/serve.go
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/icybits-lab/Blog/internal/config"
)

const debounceDuration = 500 * time.Millisecond

var serverPort int

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the blog locally and rebuilds it on changes",
	Long: `The serve command builds the blog, serves the output directory on a local
port and watches the content, layouts and static directories. Any change
reloads every post and rebuilds the whole site.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		logger.Info("performing initial build")
		if err := runBuildProcess(ctx, appConfig, logger); err != nil {
			// The error page is already in place; keep serving so the fix can be watched for.
			logger.Error("initial build failed", zap.Error(err))
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		defer watcher.Close()

		go watchAndRebuild(ctx, watcher, appConfig)

		for _, root := range watchRoots(appConfig) {
			addWatchTree(watcher, root)
		}

		serverAddr := fmt.Sprintf(":%d", serverPort)
		logger.Info("serving site",
			zap.String("dir", appConfig.OutputDir),
			zap.String("url", "http://localhost"+serverAddr))

		if err := http.ListenAndServe(serverAddr, noCacheHandler(appConfig.OutputDir)); err != nil {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	},
}

func watchRoots(cfg config.Config) []string {
	roots := []string{cfg.LayoutsDir, cfg.StaticDir}
	if cfg.RemoteURL == "" {
		roots = append(roots, cfg.ContentDir)
	}
	return roots
}

func addWatchTree(watcher *fsnotify.Watcher, root string) {
	if root == "" {
		return
	}
	if _, err := os.Stat(root); os.IsNotExist(err) {
		logger.Debug("directory not found, not watching", zap.String("dir", root))
		return
	}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			logger.Warn("error walking directory", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			if watchErr := watcher.Add(path); watchErr != nil {
				logger.Warn("failed to watch directory", zap.String("path", path), zap.Error(watchErr))
			}
		}
		return nil
	})
	if err != nil {
		logger.Warn("error setting up watch", zap.String("dir", root), zap.Error(err))
	}
}

// rebuilder runs one build at a time. A debounce timer can fire while the
// previous build is still writing the output directory.
type rebuilder struct {
	mu    sync.Mutex
	build func() error
}

func (r *rebuilder) run() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.build()
}

// watchAndRebuild runs a full rebuild after a quiet period following any
// change under the watched directories.
func watchAndRebuild(ctx context.Context, watcher *fsnotify.Watcher, cfg config.Config) {
	rb := &rebuilder{build: func() error { return runBuildProcess(ctx, cfg, logger) }}
	var buildTimer *time.Timer
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("change detected", zap.String("path", event.Name), zap.String("op", event.Op.String()))

			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := watcher.Add(event.Name); err != nil {
					logger.Warn("failed to watch new directory", zap.String("path", event.Name), zap.Error(err))
				}
			}

			if buildTimer != nil {
				buildTimer.Stop()
			}
			buildTimer = time.AfterFunc(debounceDuration, func() {
				logger.Info("rebuilding site due to changes")
				if err := rb.run(); err != nil {
					logger.Error("rebuild failed", zap.Error(err))
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error", zap.Error(err))
		case <-ctx.Done():
			return
		}
	}
}

// noCacheHandler serves dir without directory listings and with caching
// disabled, so a browser refresh always shows the latest build.
func noCacheHandler(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") && r.URL.Path != "/" {
			if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(r.URL.Path), "index.html")); os.IsNotExist(err) {
				http.NotFound(w, r)
				return
			}
		}
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		fs.ServeHTTP(w, r)
	})
}

func isDir(path string) bool {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fileInfo.IsDir()
}

func init() {
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 1313, "Port to serve the site on")
	rootCmd.AddCommand(serveCmd)
}
