// Package worker runs queued bill indexing tasks.
package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/dharsanguruparan/BillIndex/internal/config"
	"github.com/dharsanguruparan/BillIndex/internal/pipeline"
	"github.com/dharsanguruparan/BillIndex/internal/queue"
)

// Runner is the part of the pipeline the worker drives.
type Runner interface {
	Run(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error)
}

// Processor is plugged into the asynq worker loop.
type Processor struct {
	runner Runner
	log    zerolog.Logger
}

// NewProcessor constructs a worker processor.
func NewProcessor(runner Runner, log zerolog.Logger) *Processor {
	return &Processor{runner: runner, log: log.With().Str("component", "worker").Logger()}
}

// Handler registers the index job handler.
func (p *Processor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.IndexBillTask, p.handleIndex)
	return mux
}

func (p *Processor) handleIndex(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.ParseIndexPayload(task)
	if err != nil {
		// A malformed payload will never succeed.
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	log := p.log.With().Str("bill_id", payload.BillID).Logger()

	res, err := p.runner.Run(ctx, pipeline.Options{
		BillID:    payload.BillID,
		Session:   payload.Session,
		Debug:     payload.Debug,
		Isolation: config.IsolateBatch,
	})
	if err != nil {
		log.Error().Err(err).Msg("index task failed")
		return err
	}
	log.Info().
		Str("run_id", res.RunID).
		Int("versions", res.Counts.Versions).
		Msg("index task finished")
	return nil
}
