package batch

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Faultbox/tiledconv/internal/logger"
	"github.com/Faultbox/tiledconv/pkg/tiled"
)

// RunTMX converts Tiled JSON documents to TSX and TMX. Every file is first
// tried as a tileset; only files that turn out to have no tiles are then tried
// as maps. Files that are not JSON were produced by an earlier run and are
// skipped.
func RunTMX(paths []string) *Report {
	r := &Report{}

	var maps []string
	for _, path := range paths {
		if !hasExt(path, JSONExtensions) {
			logger.Debug("skipping converted file", zap.String("path", path))
			r.Skipped++
			continue
		}

		status, err := tiled.ConvertTilesetFile(path)
		switch status {
		case tiled.StatusConverted:
			logger.Info("tileset converted", zap.String("src", path), zap.String("dst", tiled.TSXPath(path)))
			r.Converted++
		case tiled.StatusNoTiles:
			maps = append(maps, path)
		default:
			logger.Error("tileset conversion failed", zap.String("path", path), zap.Stringer("status", status), zap.Error(err))
			r.Fail(err)
		}
	}

	for _, path := range maps {
		out, m, err := tiled.ConvertMapFile(path)
		if errors.Is(err, tiled.ErrNotMap) {
			logger.Debug("not a map", zap.String("path", path))
			r.Skipped++
			continue
		}
		if err != nil {
			logger.Error("map conversion failed", zap.String("path", path), zap.Error(err))
			r.Fail(err)
			continue
		}

		if err := m.Validate(); err != nil {
			logger.Warn("map violates id invariants", zap.String("path", path), zap.Error(err))
			r.Warnings++
		}
		logger.Info("map converted", zap.String("src", path), zap.String("dst", out))
		r.Converted++
	}
	return r
}
