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

// patternKeywords are the type-specific keyword sets the pattern-confidence
// scan looks for in a poster's extracted text.
var patternKeywords = map[models.PosterType][]string{
	models.PosterTypeConcert:    {"tickets", "doors", "live", "tour", "support act", "presents"},
	models.PosterTypeFestival:   {"festival", "lineup", "stages", "day pass", "weekend pass"},
	models.PosterTypeComedy:     {"stand-up", "stand up", "comedy", "comedian"},
	models.PosterTypeTheater:    {"theatre", "theater", "matinee", "box office", "curtain"},
	models.PosterTypeFilm:       {"directed by", "starring", "rated", "in theaters", "now playing"},
	models.PosterTypeAlbum:      {"album", "out now", "new single", "streaming", "record label"},
	models.PosterTypeExhibition: {"gallery", "exhibition", "opening reception", "curated by"},
	models.PosterTypePromo:      {"coming soon", "save the date", "announcement"},
}

// knowledgeBaseValidationBonus is the capped bonus Type applies when a
// similar poster in the knowledge base shares the extracted poster type.
const knowledgeBaseValidationBonus = 0.1

// TypePhase classifies a poster into the closed PosterType enumeration.
type TypePhase struct {
	Vision services.VisionProvider
	KB     services.KnowledgeBaseSearch // optional
	Logger *zap.Logger
}

// Name identifies this phase.
func (p *TypePhase) Name() models.PhaseName { return models.PhaseType }

// Execute runs the Type phase.
func (p *TypePhase) Execute(ctx context.Context, pctx *models.ProcessingContext, opts models.ProcessingOptions) models.PhaseResult {
	start := time.Now()
	logger := Logger(p.Logger)

	return Envelope(models.PhaseType, pctx.PosterID, pctx.ImagePath, start, func() models.PhaseResult {
		prompt := prompts.GetPhasePrompt(models.PhaseType, "")
		vr, err := p.Vision.Extract(ctx, pctx.ImagePath, prompt)
		if err != nil {
			logger.Error("type phase: vision call failed", zap.Error(err))
			return Failed(models.PhaseType, pctx.PosterID, pctx.ImagePath, start, err.Error())
		}
		pctx.AppendExtractedText(vr.ExtractedText)

		fields, warnings := ParseVisionResponse(vr.ExtractedText)

		rawType, _ := NormalizeString(fields["poster_type"])
		posterType := models.NormalizePosterType(rawType)
		modelConfidence := NormalizeConfidence(fields["confidence"])
		refined := false

		if modelConfidence < opts.ConfidenceThreshold && opts.RefinementEnabled {
			_, evidence := scanPatternKeywords(vr.ExtractedText, posterType)
			refinedPrompt := prompts.RefinementPrompt(posterType, modelConfidence, evidence)
			if rvr, rerr := p.Vision.Extract(ctx, pctx.ImagePath, refinedPrompt); rerr == nil {
				rFields, rWarnings := ParseVisionResponse(rvr.ExtractedText)
				warnings = append(warnings, rWarnings...)
				rRawType, _ := NormalizeString(rFields["poster_type"])
				rType := models.NormalizePosterType(rRawType)
				rConfidence := NormalizeConfidence(rFields["confidence"])
				if rConfidence > modelConfidence {
					posterType, modelConfidence, fields = rType, rConfidence, rFields
					pctx.AppendExtractedText(rvr.ExtractedText)
					refined = true
				}
				// Refinement failure (parse yields nothing useful) is a
				// no-op: the original classification stands.
			} else {
				logger.Warn("type phase: refinement call failed, keeping original classification", zap.Error(rerr))
			}
		}

		patternConfidence, _ := scanPatternKeywords(pctx.ExtractedText(), posterType)
		confidence := clamp01(0.7*modelConfidence + 0.3*patternConfidence)

		if p.KB != nil && opts.KnowledgeBaseEnabled {
			confidence = applyKnowledgeBaseBonus(ctx, p.KB, pctx.ExtractedText(), posterType, confidence)
		}

		visual := extractVisualElements(fields)
		secondary := buildSecondaryTypes(posterType, confidence)

		readyForPhase2 := confidence >= opts.ConfidenceThreshold
		status := models.StatusCompleted
		if !readyForPhase2 {
			status = models.StatusNeedsReview
		}
		if confidence < 0.7 {
			warnings = append(warnings, "type confidence below 0.7")
		}

		return models.PhaseResult{
			PosterID:         pctx.PosterID,
			ImagePath:        pctx.ImagePath,
			Phase:            models.PhaseType,
			Status:           status,
			Confidence:       confidence,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
			Warnings:         warnings,
			Type: &models.TypePayload{
				PosterType:        posterType,
				ModelConfidence:   modelConfidence,
				PatternConfidence: patternConfidence,
				SecondaryTypes:    secondary,
				Visual:            visual,
				ReadyForPhase2:    readyForPhase2,
				Refined:           refined,
			},
		}
	})
}

// scanPatternKeywords scans text for the keyword set of candidate,
// subtracting a small penalty for hits belonging to competing types.
func scanPatternKeywords(text string, candidate models.PosterType) (float64, []string) {
	lowered := strings.ToLower(text)

	ownKeywords := patternKeywords[candidate]
	var evidence []string
	hits := 0
	for _, kw := range ownKeywords {
		if strings.Contains(lowered, kw) {
			hits++
			evidence = append(evidence, kw)
		}
	}
	score := 0.0
	if len(ownKeywords) > 0 {
		score = float64(hits) / float64(len(ownKeywords))
	}

	competingHits := 0
	competingTotal := 0
	for t, keywords := range patternKeywords {
		if t == candidate {
			continue
		}
		competingTotal += len(keywords)
		for _, kw := range keywords {
			if strings.Contains(lowered, kw) {
				competingHits++
			}
		}
	}
	if competingTotal > 0 {
		score -= 0.15 * (float64(competingHits) / float64(competingTotal))
	}
	return clamp01(score), evidence
}

func applyKnowledgeBaseBonus(ctx context.Context, kb services.KnowledgeBaseSearch, text string, posterType models.PosterType, confidence float64) float64 {
	query := text
	if len(query) > 200 {
		query = query[:200]
	}
	results, err := kb.Search(ctx, query, services.SearchOptions{EntityTypes: []string{string(models.VertexPoster)}, Limit: 5})
	if err != nil {
		// Knowledge-base failure is "no prior knowledge": neither bonus
		// nor penalty.
		return confidence
	}
	for _, r := range results {
		if r.PosterType == string(posterType) {
			return clamp01(confidence + knowledgeBaseValidationBonus)
		}
	}
	return confidence
}

func extractVisualElements(fields map[string]interface{}) models.VisualElements {
	style, _ := NormalizeString(fields["style"])
	switch style {
	case "photographic", "illustrated", "typographic", "mixed", "other":
	default:
		style = "other"
	}
	return models.VisualElements{
		HasArtistPhoto: asBool(fields["has_artist_photo"]),
		HasAlbumArt:    asBool(fields["has_album_art"]),
		HasLogo:        asBool(fields["has_logo"]),
		DominantColors: NormalizeStringList(fields["dominant_colors"]),
		Style:          style,
	}
}

func asBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

// buildSecondaryTypes always includes the primary type; hybrid posters
// additionally emit album and concert candidates.
func buildSecondaryTypes(primary models.PosterType, confidence float64) []models.TypeInference {
	out := []models.TypeInference{{
		TypeKey:    primary,
		Confidence: confidence,
		Source:     "vision+pattern",
		IsPrimary:  true,
	}}
	if primary == models.PosterTypeHybrid {
		out = append(out,
			models.TypeInference{TypeKey: models.PosterTypeAlbum, Confidence: clamp01(0.9 * confidence), Source: "hybrid-secondary", IsPrimary: false},
			models.TypeInference{TypeKey: models.PosterTypeConcert, Confidence: clamp01(0.85 * confidence), Source: "hybrid-secondary", IsPrimary: false},
		)
	}
	return out
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
