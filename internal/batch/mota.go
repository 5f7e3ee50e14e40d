package batch

import (
	"go.uber.org/zap"

	"github.com/Faultbox/tiledconv/internal/logger"
	"github.com/Faultbox/tiledconv/pkg/mota"
)

// RunMota converts mota tower maps to Tiled JSON maps. Each document gets its
// own conversion session; a failing file does not stop the run.
func RunMota(conv *mota.Converter, paths []string) *Report {
	r := &Report{}

	for _, path := range paths {
		out, res, err := conv.ConvertFile(path)
		if err != nil {
			logger.Error("mota conversion failed", zap.String("path", path), zap.Error(err))
			r.Fail(err)
			continue
		}

		for _, d := range res.Diagnostics {
			logger.Warn("unresolved tile code",
				zap.String("path", path),
				zap.String("layer", d.Layer),
				zap.Int("col", d.Col),
				zap.Int("row", d.Row),
				zap.Int("code", d.Code))
		}
		r.Warnings += len(res.Diagnostics)

		if err := res.Map.Validate(); err != nil {
			logger.Warn("map violates id invariants", zap.String("path", path), zap.Error(err))
			r.Warnings++
		}
		logger.Info("mota map converted", zap.String("src", path), zap.String("dst", out),
			zap.Int("layers", len(res.Map.Layers)))
		r.Converted++
	}
	return r
}
