// Package batch runs the converters over files and directories named on the
// command line, isolating per-file failures.
package batch

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/tiledconv/internal/logger"
)

// Extensions queued by each pipeline.
var (
	TMXExtensions  = []string{".json", ".tsx", ".tmx"}
	JSONExtensions = []string{".json"}
)

func hasExt(path string, exts []string) bool {
	ext := filepath.Ext(path)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// Collect expands args into the files to convert. Directories are walked
// recursively in lexical order. Files, named or found, are kept only when
// their extension is one of exts. Paths that do not exist are kept so the
// conversion reports them.
func Collect(args []string, exts ...string) []string {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if errors.Is(err, fs.ErrNotExist) {
			paths = append(paths, arg)
			continue
		}
		if err != nil {
			logger.Warn("cannot stat input", zap.String("path", arg), zap.Error(err))
			continue
		}
		if !info.IsDir() {
			if hasExt(arg, exts) {
				paths = append(paths, arg)
			}
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Warn("cannot read directory entry", zap.String("path", path), zap.Error(err))
				return nil
			}
			if !d.IsDir() && hasExt(path, exts) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			logger.Warn("walk failed", zap.String("dir", arg), zap.Error(err))
		}
	}
	return paths
}
