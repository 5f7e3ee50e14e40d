package batch

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/tiledconv/internal/logger"
)

// Report summarises a batch run.
type Report struct {
	Converted int // output files written
	Skipped   int // inputs that are not documents of the pipeline's kind
	Warnings  int // unresolved codes and invariant violations
	err       error
}

// Fail records a per-file failure.
func (r *Report) Fail(err error) {
	r.err = multierr.Append(r.err, err)
}

// Failed returns the number of files that failed.
func (r *Report) Failed() int {
	return len(multierr.Errors(r.err))
}

// Err returns every recorded failure combined, or nil.
func (r *Report) Err() error {
	return r.err
}

// Log writes the summary line.
func (r *Report) Log() {
	fields := []zap.Field{
		zap.Int("converted", r.Converted),
		zap.Int("skipped", r.Skipped),
		zap.Int("warnings", r.Warnings),
		zap.Int("failed", r.Failed()),
	}
	if r.err != nil {
		logger.Error("conversion finished with failures", fields...)
		return
	}
	logger.Info("conversion finished", fields...)
}
