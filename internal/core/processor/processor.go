// Package processor implements the Iterative Processor: the top-level
// orchestrator that runs one image through Type → Artist → Venue → Event
// → Assembly → Enrichment, or a whole batch sequentially.
package processor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	sessionctx "github.com/posterforge/extractioncore/internal/core/context"
	"github.com/posterforge/extractioncore/internal/core/phases"
	"github.com/posterforge/extractioncore/internal/domain/models"
	"github.com/posterforge/extractioncore/internal/imaging"
	"github.com/posterforge/extractioncore/internal/services"
)

// IterativeProcessingResult is what process() returns for one image. The
// orchestrator never raises from process(); every image yields one of
// these.
type IterativeProcessingResult struct {
	Success             bool
	PosterID            string
	Poster              *models.PosterEntity
	PhaseResults        []models.PhaseResult
	OverallConfidence   float64
	FieldsNeedingReview []string
	FailureReason       string
}

// BatchItemResult pairs one path from a processBatch() call with its
// outcome.
type BatchItemResult struct {
	ImagePath string
	Result    IterativeProcessingResult
}

// BatchSummary aggregates counts across a processed batch.
type BatchSummary struct {
	Total        int
	Successful   int
	Failed       int
	ByPosterType map[models.PosterType]int
}

// BatchResult is what processBatch() returns.
type BatchResult struct {
	Items   []BatchItemResult
	Summary BatchSummary
}

// HealthStatus is what healthCheck() returns.
type HealthStatus struct {
	Vision     bool
	Validators map[string]bool
}

// ProgressFunc is the optional per-item progress callback for
// processBatch.
type ProgressFunc func(index int, total int, imagePath string)

// IterativeProcessor is the public orchestrator contract.
type IterativeProcessor struct {
	contextManager *sessionctx.Manager
	vision         services.VisionProvider
	phaseList      []phases.Phase
	validators     map[string]HealthChecker
	logger         *zap.Logger
	newPhaseList   func(vision services.VisionProvider) []phases.Phase
}

// HealthChecker is satisfied by any validator this processor reports on in
// HealthCheck(); every authoritative validator client in internal/services
// implements it directly.
type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// New builds a processor from an already-wired phase list and vision
// provider. newPhaseList lets switchVisionModel rebuild the phase list
// against a different provider while reusing every other collaborator.
// recovery is optional; a nil recovery keeps every session purely
// in-memory.
func New(logger *zap.Logger, vision services.VisionProvider, newPhaseList func(services.VisionProvider) []phases.Phase, validators map[string]HealthChecker, recovery sessionctx.Recovery) *IterativeProcessor {
	return &IterativeProcessor{
		contextManager: sessionctx.NewManager(recovery, logger),
		vision:         vision,
		phaseList:      newPhaseList(vision),
		validators:     validators,
		logger:         phases.Logger(logger),
		newPhaseList:   newPhaseList,
	}
}

// Process orchestrates one image through every phase, removing its
// context on every exit path, and never raises.
func (p *IterativeProcessor) Process(ctx context.Context, imagePath string, opts models.ProcessingOptions) IterativeProcessingResult {
	start := time.Now()

	info, err := imaging.Inspect(imagePath)
	if err != nil {
		return IterativeProcessingResult{Success: false, FailureReason: err.Error()}
	}

	posterID := "poster:" + info.SourceHash
	pctx := p.contextManager.Create(imagePath, posterID)
	defer p.contextManager.Remove(context.Background(), pctx.SessionID)

	for _, phase := range p.phaseList {
		select {
		case <-ctx.Done():
			return p.finalize(pctx, start, false, "cancelled: "+ctx.Err().Error())
		default:
		}

		phaseCtx, cancel := context.WithTimeout(ctx, opts.PhaseTimeout)
		result := phase.Execute(phaseCtx, pctx, opts)
		cancel()

		p.contextManager.SetResult(ctx, pctx.SessionID, result)

		if result.Status == models.StatusFailed && phases.HardDependency(phase.Name()) {
			return p.finalize(pctx, start, false, fmt.Sprintf("%s phase failed: %s", phase.Name(), firstOrEmpty(result.Errors)))
		}
	}

	return p.finalize(pctx, start, true, "")
}

func (p *IterativeProcessor) finalize(pctx *models.ProcessingContext, start time.Time, success bool, reason string) IterativeProcessingResult {
	result := IterativeProcessingResult{
		Success:             success,
		PosterID:            pctx.PosterID,
		PhaseResults:        pctx.OrderedResults(),
		OverallConfidence:   pctx.OverallConfidence(),
		FieldsNeedingReview: pctx.FieldsNeedingReview(),
		FailureReason:       reason,
	}
	if assembly, ok := pctx.Result(models.PhaseAssembly); ok && assembly.Assembly != nil {
		result.Poster = assembly.Assembly.Poster
		if result.Poster != nil {
			result.Poster.Metadata.ProcessingTimeMs = time.Since(start).Milliseconds()
			result.Poster.Metadata.CreatedAt = start.UTC()
			result.Poster.Metadata.UpdatedAt = time.Now().UTC()
			if p.vision != nil {
				result.Poster.Metadata.VisionModel = p.vision.Info().Name
			}
		}
	}
	return result
}

// ProcessBatch runs every path through Process sequentially, pausing
// briefly between items, and never aborts the batch on a single failure.
// The pause is a fixed sleep, not a rate limiter.
func (p *IterativeProcessor) ProcessBatch(ctx context.Context, imagePaths []string, opts models.ProcessingOptions, onProgress ProgressFunc) BatchResult {
	summary := BatchSummary{Total: len(imagePaths), ByPosterType: make(map[models.PosterType]int)}
	items := make([]BatchItemResult, 0, len(imagePaths))

	for i, path := range imagePaths {
		if onProgress != nil {
			onProgress(i, len(imagePaths), path)
		}

		result := p.Process(ctx, path, opts)
		items = append(items, BatchItemResult{ImagePath: path, Result: result})

		if result.Success {
			summary.Successful++
			if result.Poster != nil {
				summary.ByPosterType[result.Poster.PosterType]++
			}
		} else {
			summary.Failed++
		}

		if i < len(imagePaths)-1 && opts.BatchItemPause > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(opts.BatchItemPause):
			}
		}
	}

	return BatchResult{Items: items, Summary: summary}
}

// SwitchVisionModel reinstantiates every phase executor against a new
// vision provider, preserving every other collaborator.
func (p *IterativeProcessor) SwitchVisionModel(vision services.VisionProvider) {
	p.vision = vision
	p.phaseList = p.newPhaseList(vision)
}

// HealthCheck reports the vision provider's and every validator's health.
func (p *IterativeProcessor) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{Validators: make(map[string]bool, len(p.validators))}
	if p.vision != nil {
		status.Vision = p.vision.HealthCheck(ctx)
	}
	for name, v := range p.validators {
		status.Validators[name] = v.HealthCheck(ctx)
	}
	return status
}

func firstOrEmpty(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}
