package main

import (
	"embed"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chazu/loopview/pkg/config"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

//go:embed all:frontend/dist
var assets embed.FS

// defaultConfigPath returns settings.toml under the user config directory.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "settings.toml"
	}
	return filepath.Join(dir, "loopview", "settings.toml")
}

func main() {
	configPath := flag.String("config", defaultConfigPath(), "path to settings.toml")
	debug := flag.Bool("debug", false, "log subdivision stages")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	settings, err := config.Load(*configPath)
	if err != nil {
		logger.Error("loading settings", "path", *configPath, "err", err)
		os.Exit(1)
	}
	app, err := NewAppWithSettings(settings, logger)
	if err != nil {
		logger.Error("creating app", "err", err)
		os.Exit(1)
	}

	err = wails.Run(&options.App{
		Title:  "loopview",
		Width:  1280,
		Height: 800,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup: app.startup,
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		logger.Error("running app", "err", err)
		os.Exit(1)
	}
}
