package phases

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/posterforge/extractioncore/internal/core/prompts"
	"github.com/posterforge/extractioncore/internal/domain/models"
	"github.com/posterforge/extractioncore/internal/services"
)

// VenuePhase extracts the venue and locality, optionally deduplicating
// against existing graph vertices.
type VenuePhase struct {
	Vision services.VisionProvider
	Entity services.EntityService // optional
	Logger *zap.Logger
}

func (p *VenuePhase) Name() models.PhaseName { return models.PhaseVenue }

func (p *VenuePhase) Execute(ctx context.Context, pctx *models.ProcessingContext, opts models.ProcessingOptions) models.PhaseResult {
	start := time.Now()
	logger := Logger(p.Logger)
	posterType := pctx.Hints.PrimaryPosterType

	return Envelope(models.PhaseVenue, pctx.PosterID, pctx.ImagePath, start, func() models.PhaseResult {
		prompt := prompts.GetPhasePrompt(models.PhaseVenue, posterType)
		vr, err := p.Vision.Extract(ctx, pctx.ImagePath, prompt)
		if err != nil {
			logger.Error("venue phase: vision call failed", zap.Error(err))
			return Failed(models.PhaseVenue, pctx.PosterID, pctx.ImagePath, start, err.Error())
		}
		pctx.AppendExtractedText(vr.ExtractedText)

		fields, warnings := ParseVisionResponse(vr.ExtractedText)

		venueName, _ := NormalizeString(fields["venue"])
		city, _ := NormalizeString(fields["city"])
		state, _ := NormalizeString(fields["state"])
		country, _ := NormalizeString(fields["country"])
		address, _ := NormalizeString(fields["address"])
		district, _ := NormalizeString(fields["district"])
		theaterName, _ := NormalizeString(fields["theater_name"])
		streamingOnly := asBool(fields["streaming_only"])

		payload := models.VenuePayload{
			Venue:         models.Match{Extracted: venueName},
			City:          city,
			State:         state,
			Country:       country,
			Address:       address,
			District:      district,
			TheaterName:   theaterName,
			StreamingOnly: streamingOnly,
		}

		resolvedExisting := false
		if p.Entity != nil && venueName != "" && opts.EntityServiceEnabled {
			if id, ok := findUniqueVenue(ctx, p.Entity, venueName, logger); ok {
				payload.ExistingVenueID = id
				resolvedExisting = true
			}
		}

		confidence := clamp01(
			0.5*boolToFloat(venueName != "") +
				0.3*boolToFloat(city != "") +
				0.2*boolToFloat(resolvedExisting),
		)

		status := models.StatusCompleted
		if posterType.RequiresVenue() && venueName == "" {
			status = models.StatusNeedsReview
		}

		return models.PhaseResult{
			PosterID:         pctx.PosterID,
			ImagePath:        pctx.ImagePath,
			Phase:            models.PhaseVenue,
			Status:           status,
			Confidence:       confidence,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
			Warnings:         warnings,
			Venue:            &payload,
		}
	})
}

// findUniqueVenue looks up candidate Venue vertices by normalized name and
// returns the single best match's id, or ok=false when zero or several
// candidates tie (ambiguous — a new vertex is created at assembly time).
func findUniqueVenue(ctx context.Context, entity services.EntityService, name string, logger *zap.Logger) (string, bool) {
	candidates, err := entity.FindByName(ctx, string(models.VertexVenue), name)
	if err != nil {
		logger.Warn("venue phase: entity lookup failed", zap.Error(err))
		return "", false
	}

	normalized := normalizeVenueName(name)
	var matchID string
	matchCount := 0
	for _, c := range candidates {
		candidateName, _ := c.Fields["name"].(string)
		if normalizeVenueName(candidateName) == normalized {
			matchID = c.ID
			matchCount++
		}
	}
	if matchCount == 1 {
		return matchID, true
	}
	return "", false
}

func normalizeVenueName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
