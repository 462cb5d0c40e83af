package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gallery-gen/internal/build"
	"gallery-gen/internal/config"
	"gallery-gen/internal/i18n"
	"gallery-gen/internal/logging"
	"gallery-gen/internal/media"
	"gallery-gen/internal/server"
	"gallery-gen/internal/startup"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to settings.yaml (defaults to ./settings.yaml)")
		watch      = flag.Bool("watch", false, "rebuild when content or manifest files change")
		serve      = flag.Bool("serve", false, "serve the built gallery for local preview")
	)
	flag.Parse()

	log := logging.Default()

	startup.PrintBanner(log)
	startup.LogSystemInfo(log)

	cfg, err := config.Load(*configPath)
	if err != nil {
		startup.LogFatal(log, "configuration error: %v", err)
	}
	startup.LogConfig(cfg, log)

	tr, err := i18n.New(cfg.Locale, cfg.LocaleDir, log)
	if err != nil {
		startup.LogFatal(log, "i18n error: %v", err)
	}

	if *serve {
		*watch = true
	}

	if cfg.Thumbnails.Enabled {
		if err := media.InitVips(log); err != nil {
			// A broken libvips install should not block a metadata-only
			// build; the page just links the originals directly.
			log.Warn("image engine unavailable, building without thumbnails: %v", err)
			cfg.Thumbnails.Enabled = false
		} else {
			defer media.ShutdownVips(log)
		}
	}

	builder := build.New(cfg, tr, log)

	runBuild := func() bool {
		start := time.Now()
		sum, err := builder.Run()
		if err != nil {
			log.Error("build failed: %v", err)
			return false
		}
		startup.LogBuildSummary(sum.Images, sum.Failed, sum.IndexPath, time.Since(start), log)
		return true
	}

	if ok := runBuild(); !ok && !*watch && !*serve {
		os.Exit(1)
	}

	if !*watch && !*serve {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *watch {
		w, err := server.NewWatcher(500*time.Millisecond, log, func() {
			log.Info("content changed, rebuilding")
			runBuild()
		})
		if err != nil {
			startup.LogFatal(log, "watcher error: %v", err)
		}
		defer w.Close()

		for _, p := range watchPaths(cfg) {
			if err := w.Add(p); err != nil {
				log.Warn("%v", err)
			}
		}
		go func() {
			if err := w.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error("watcher stopped: %v", err)
			}
		}()
		log.Info("watching %s for changes", cfg.ContentDir)
	}

	if *serve {
		srv := server.New(cfg.Server, cfg.OutputDir, log)
		if err := srv.ListenAndServe(ctx); err != nil {
			startup.LogFatal(log, "%v", err)
		}
		return
	}

	<-ctx.Done()
	log.Info("shutting down")
}

// watchPaths lists the directories whose changes should trigger a
// rebuild: the content tree and the manifest's directory.
func watchPaths(cfg *config.Config) []string {
	paths := []string{cfg.ContentDir}
	if dir := manifestDir(cfg.GalleryYAMLPath); dir != "" && dir != cfg.ContentDir {
		paths = append(paths, dir)
	}
	return paths
}

// manifestDir returns the directory holding the manifest. The directory
// is watched rather than the file itself because editors replace files
// on save, which drops a file-level watch.
func manifestDir(path string) string {
	if path == "" {
		return ""
	}
	dir := filepath.Dir(path)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return ""
	}
	return dir
}
