// tiledconv converts Tiled JSON documents to TSX/TMX and mota tower maps to
// Tiled JSON maps.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/tiledconv/internal/batch"
	"github.com/Faultbox/tiledconv/internal/config"
	"github.com/Faultbox/tiledconv/internal/logger"
	"github.com/Faultbox/tiledconv/pkg/mota"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "tmx":
		os.Exit(cmdTMX(args))
	case "mota":
		os.Exit(cmdMota(args))
	case "watch":
		os.Exit(cmdWatch(args))
	case "config":
		os.Exit(cmdConfig(args))
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tiledconv - Tiled and mota map converter

Usage:
  tiledconv <command> [options] <path>...

Commands:
  tmx <path>...        Convert Tiled JSON tilesets to .tsx and maps to .tmx
  mota <path>...       Convert mota tower maps to Tiled JSON maps
  watch <dir>...       Re-run the tmx conversion whenever JSON files change
  config [file]        Write the effective configuration (default: user config dir)

Directories are searched recursively.

Options:`)
	config.PrintDefaults()
	fmt.Println(`
Examples:
  tiledconv tmx maps/
  tiledconv mota -idmap idmap.json -out converted/ project/floors
  tiledconv watch -debug maps/`)
}

// setup parses flags, loads config and starts logging.
func setup(args []string) (*config.Config, bool) {
	if err := config.ParseFlags(args); err != nil {
		return nil, false
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, false
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, false
	}
	return cfg, true
}

func requirePaths(usage string) ([]string, bool) {
	paths := config.Args()
	if len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: tiledconv %s\n", usage)
		return nil, false
	}
	return paths, true
}

func exitCode(r *batch.Report) int {
	r.Log()
	if r.Err() != nil {
		return 1
	}
	return 0
}

func cmdTMX(args []string) int {
	if _, ok := setup(args); !ok {
		return 1
	}
	defer logger.Sync()

	paths, ok := requirePaths("tmx [options] <path>...")
	if !ok {
		return 1
	}
	return exitCode(batch.RunTMX(batch.Collect(paths, batch.TMXExtensions...)))
}

func cmdMota(args []string) int {
	cfg, ok := setup(args)
	if !ok {
		return 1
	}
	defer logger.Sync()

	paths, ok := requirePaths("mota [options] <path>...")
	if !ok {
		return 1
	}

	idmapPath := cfg.IDMapPath()
	idmap, err := mota.LoadIDMap(idmapPath)
	if err != nil {
		logger.Error("failed to load id map", zap.String("path", idmapPath), zap.Error(err))
		return 1
	}
	logger.Debug("id map loaded", zap.String("path", idmapPath), zap.Int("codes", idmap.Len()))

	conv := mota.NewConverter(idmap, cfg.MotaOptions())
	return exitCode(batch.RunMota(conv, batch.Collect(paths, batch.JSONExtensions...)))
}

func cmdWatch(args []string) int {
	cfg, ok := setup(args)
	if !ok {
		return 1
	}
	defer logger.Sync()

	dirs, ok := requirePaths("watch [options] <dir>...")
	if !ok {
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Convert what is already there before waiting for changes.
	batch.RunTMX(batch.Collect(dirs, batch.TMXExtensions...)).Log()

	if err := batch.Watch(ctx, cfg.Watch.Debounce, batch.JSONExtensions, dirs, batch.RunTMX); err != nil {
		logger.Error("watch failed", zap.Error(err))
		return 1
	}
	return 0
}

func cmdConfig(args []string) int {
	if err := config.ParseFlags(args); err != nil {
		return 1
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	var path string
	if rest := config.Args(); len(rest) > 0 {
		path = rest[0]
		err = cfg.SaveTo(path)
	} else {
		path, err = cfg.Save()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("Config written to %s\n", path)
	return 0
}
