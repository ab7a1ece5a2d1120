package phases

import (
	"context"

	"github.com/posterforge/extractioncore/internal/domain/models"
)

// Phase is the small interface every pipeline stage implements. The
// processor holds phases in an explicit ordered slice (Type, Artist,
// Venue, Event, Assembly, Enrichment) rather than a dynamic registry,
// since the pipeline's order is fixed — there is nothing to register at
// runtime.
type Phase interface {
	Name() models.PhaseName
	Execute(ctx context.Context, pctx *models.ProcessingContext, opts models.ProcessingOptions) models.PhaseResult
}

// HardDependency reports whether a failure of this phase should
// short-circuit the orchestrator into a failed result. Only Type is hard;
// every other phase is soft and lets the pipeline degrade instead of
// aborting.
func HardDependency(phase models.PhaseName) bool {
	return phase == models.PhaseType
}
