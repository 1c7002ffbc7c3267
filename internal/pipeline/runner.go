package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/standardbeagle/perfguard/internal/model"
	"github.com/standardbeagle/perfguard/internal/regenerator"
)

// Runner sequences the five stages per tick (§4.6). A stage error
// abandons the rest of the tick; the caller (the scheduler) is
// expected to move on to the next tick regardless.
type Runner struct {
	logger *zap.Logger

	endpointSource     EndpointSource
	faultLineExtractor *FaultLineExtractor
	slowFilter         SlowFilter
	regenerator        *RegeneratorStage
	publisher          Publisher
}

// New builds a Runner. A nil logger falls back to zap.NewNop, the
// same default the rest of the codebase uses for an optional logger
// dependency. parallel enables the optional per-stage concurrency
// permitted (not required) by §5. modelName is checked against
// rc.ModelConn.Available at the start of the Regenerator stage, per
// §4.4's ModelUnavailable failure mode; an empty modelName skips the
// check.
func New(regen *regenerator.Regenerator, modelName string, parallel bool, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		logger:             logger,
		faultLineExtractor: &FaultLineExtractor{Parallel: parallel},
		regenerator:        &RegeneratorStage{Regen: regen, ModelName: modelName, Parallel: parallel},
	}
}

// Tick runs one pass of the pipeline against rc, logging and
// swallowing any stage error so the scheduler can proceed to the next
// tick (§4.6, §7). The scratch fields are always reset afterward —
// §5's "ctx.reset() is mandatory at the end of every tick" is treated
// as binding regardless of whether the tick succeeded, which is a
// deliberate broadening of the pseudocode's reset-only-on-success
// placement (see DESIGN.md).
func (r *Runner) Tick(ctx context.Context, rc *model.RunContext) {
	defer rc.Reset()

	if err := r.run(ctx, rc); err != nil {
		r.logger.Error("tick aborted", zap.Error(err))
	}
}

func (r *Runner) run(ctx context.Context, rc *model.RunContext) error {
	if err := r.endpointSource.populate(ctx, rc); err != nil {
		return err
	}
	if err := r.faultLineExtractor.populate(ctx, rc); err != nil {
		return err
	}
	if err := r.slowFilter.populate(ctx, rc); err != nil {
		return err
	}
	if err := r.regenerator.populate(ctx, rc); err != nil {
		return err
	}
	if err := r.publisher.publish(ctx, rc); err != nil {
		return err
	}
	return nil
}
