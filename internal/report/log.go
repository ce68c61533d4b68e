package report

import (
	"context"

	"github.com/rs/zerolog"
)

// LogEmitter writes bundles to a zerolog logger.
type LogEmitter struct {
	Log zerolog.Logger
}

func (e LogEmitter) Emit(_ context.Context, b Bundle) error {
	var ev *zerolog.Event
	switch b.Status {
	case StatusWarning:
		ev = e.Log.Warn()
	default:
		ev = e.Log.Info()
	}
	ev = ev.Str("run_id", b.RunID).Str("source", b.Source).Str("status", b.Status)
	if len(b.Entries) > 0 {
		ev = ev.Interface("entries", b.Entries)
	}
	if b.Counts != nil {
		ev = ev.Int("bills", b.Counts.Bills).Int("versions", b.Counts.Versions)
	}
	ev.Msg(b.Message)
	return nil
}
