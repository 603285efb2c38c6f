package report

import (
	"context"

	"go.uber.org/zap"
)

// ErrorReporter is the observability sink for recovered failures: skipped
// file fetches, provider errors, ledger finalization problems. Report must
// never panic or return into the caller path.
type ErrorReporter interface {
	Report(ctx context.Context, err error)
}

type zapReporter struct {
	log *zap.Logger
}

func NewZapReporter(log *zap.Logger) ErrorReporter {
	return &zapReporter{log: log}
}

func (r *zapReporter) Report(ctx context.Context, err error) {
	if err == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	r.log.Error("reported error", zap.Error(err))
}
