package startup

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"gallery-gen/internal/config"
	"gallery-gen/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information.
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// PrintBanner prints the startup banner with build information.
func PrintBanner(log *logging.Logger) {
	banner := `
------------------------------------------------------------
             _ _
  __ _  __ _| | | ___ _ __ _   _        __ _  ___ _ __
 / _' |/ _' | | |/ _ \ '__| | | |____  / _' |/ _ \ '_ \
| (_| | (_| | | |  __/ |  | |_| |____|| (_| |  __/ | | |
 \__, |\__,_|_|_|\___|_|   \__, |      \__, |\___|_| |_|
 |___/                     |___/       |___/
------------------------------------------------------------`
	fmt.Println(banner)
	log.Info("  Version:    %s", Version)
	log.Info("  Commit:     %s", Commit)
	log.Info("  Build Time: %s", BuildTime)
	log.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	log.Info("")
}

// LogSystemInfo logs runtime details useful when triaging build reports.
func LogSystemInfo(log *logging.Logger) {
	log.Info("------------------------------------------------------------")
	log.Info("SYSTEM INFORMATION")
	log.Info("------------------------------------------------------------")
	log.Info("  Go version:      %s", runtime.Version())
	log.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	log.Info("  CPUs available:  %d", runtime.NumCPU())
	log.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if log.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			log.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			log.Debug("  Hostname:        %s", hostname)
		}
	}

	log.Info("")
}

// LogConfig logs the effective generator configuration.
func LogConfig(cfg *config.Config, log *logging.Logger) {
	log.Info("------------------------------------------------------------")
	log.Info("CONFIGURATION")
	log.Info("------------------------------------------------------------")
	log.Info("  Content dir:       %s", cfg.ContentDir)
	log.Info("  Output dir:        %s", cfg.OutputDir)
	log.Info("  Gallery manifest:  %s", cfg.GalleryYAMLPath)
	log.Info("  Default category:  %s", cfg.DefaultCategory)
	log.Info("  Locale:            %s", cfg.Locale)
	log.Info("  Thumbnails:        %s (max %dpx, webp q%d, jpeg q%d)",
		enabledString(cfg.Thumbnails.Enabled), cfg.Thumbnails.MaxDimension,
		cfg.Thumbnails.WebPQuality, cfg.Thumbnails.JPEGQuality)
	log.Info("  Placeholders:      %s", enabledString(cfg.Placeholder.Enabled))
	log.Info("  Layout:            target %gpx, max %gpx, spacing %gpx",
		cfg.Layout.TargetRowHeight, cfg.Layout.MaxRowHeight, cfg.Layout.Spacing)
	log.Info("")
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// LogBuildSummary logs the outcome of a completed build.
func LogBuildSummary(images, failed int, indexPath string, duration time.Duration, log *logging.Logger) {
	log.Info("------------------------------------------------------------")
	log.Info("  Build complete in %s", duration.Round(time.Millisecond))
	log.Info("  Images:   %d processed, %d failed", images, failed)
	log.Info("  Output:   %s", indexPath)
	log.Info("------------------------------------------------------------")
}

// LogFatal logs an error message and exits with status 1.
func LogFatal(log *logging.Logger, format string, args ...interface{}) {
	log.Error(format, args...)
	os.Exit(1)
}
