package phases

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/posterforge/extractioncore/internal/core/prompts"
	"github.com/posterforge/extractioncore/internal/domain/models"
	"github.com/posterforge/extractioncore/internal/services"
)

// maxConcatenatedEntryLen is the heuristic cap on a single extracted list
// entry before it's treated as several artist names the model ran
// together without separators.
const maxConcatenatedEntryLen = 80

var noneFilterValues = map[string]bool{
	"none": true, "n/a": true, "na": true, "not specified": true,
	"not applicable": true, "unknown": true, "tbd": true, "tba": true,
}

// ArtistPhase extracts headliner/supporting-act/director/cast information,
// projected differently per poster type.
type ArtistPhase struct {
	Vision    services.VisionProvider
	Validator services.ArtistAuthority // optional
	Logger    *zap.Logger
}

func (p *ArtistPhase) Name() models.PhaseName { return models.PhaseArtist }

func (p *ArtistPhase) Execute(ctx context.Context, pctx *models.ProcessingContext, opts models.ProcessingOptions) models.PhaseResult {
	start := time.Now()
	logger := Logger(p.Logger)
	posterType := pctx.Hints.PrimaryPosterType

	return Envelope(models.PhaseArtist, pctx.PosterID, pctx.ImagePath, start, func() models.PhaseResult {
		prompt := prompts.GetPhasePrompt(models.PhaseArtist, posterType)
		vr, err := p.Vision.Extract(ctx, pctx.ImagePath, prompt)
		if err != nil {
			logger.Error("artist phase: vision call failed", zap.Error(err))
			return Failed(models.PhaseArtist, pctx.PosterID, pctx.ImagePath, start, err.Error())
		}
		pctx.AppendExtractedText(vr.ExtractedText)

		fields, warnings := ParseVisionResponse(vr.ExtractedText)
		payload := projectArtistPayload(posterType, fields)

		validatorMatched := false
		if p.Validator != nil {
			validatorMatched = validateArtists(ctx, p.Validator, &payload, logger)
		}

		hasSupportOrAlbum := len(payload.SupportingActs) > 0 || payload.AlbumTitle != ""
		confidence := clamp01(
			0.6*boolToFloat(!payload.Headliner.IsEmpty()) +
				0.2*boolToFloat(validatorMatched) +
				0.2*boolToFloat(hasSupportOrAlbum),
		)

		status := models.StatusCompleted
		if posterType.RequiresHeadliner() && payload.Headliner.IsEmpty() {
			status = models.StatusNeedsReview
		}

		return models.PhaseResult{
			PosterID:         pctx.PosterID,
			ImagePath:        pctx.ImagePath,
			Phase:            models.PhaseArtist,
			Status:           status,
			Confidence:       confidence,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
			Warnings:         warnings,
			Artist:           &payload,
		}
	})
}

func projectArtistPayload(posterType models.PosterType, fields map[string]interface{}) models.ArtistPayload {
	var payload models.ArtistPayload

	switch posterType {
	case models.PosterTypeFilm:
		director, _ := NormalizeString(fields["director"])
		payload.Director = models.Match{Extracted: director}
		payload.Cast = matchesFromList(sanitizeList(NormalizeStringList(fields["cast"])))
	case models.PosterTypeAlbum, models.PosterTypeHybrid:
		headliner, _ := NormalizeString(fields["headliner"])
		albumTitle, _ := NormalizeString(fields["album_title"])
		recordLabel, _ := NormalizeString(fields["record_label"])
		payload.Headliner = models.Match{Extracted: sanitizeSingle(headliner)}
		payload.AlbumTitle = albumTitle
		payload.RecordLabel = recordLabel
		payload.FeaturedArtists = matchesFromList(sanitizeList(NormalizeStringList(fields["featured_artists"])))
	case models.PosterTypeExhibition:
		headliner, _ := NormalizeString(fields["headliner"])
		curator, _ := NormalizeString(fields["curator"])
		payload.Headliner = models.Match{Extracted: sanitizeSingle(headliner)}
		payload.Curator = models.Match{Extracted: curator}
	default:
		headliner, _ := NormalizeString(fields["headliner"])
		tourName, _ := NormalizeString(fields["tour_name"])
		recordLabel, _ := NormalizeString(fields["record_label"])
		payload.Headliner = models.Match{Extracted: sanitizeSingle(headliner)}
		payload.TourName = tourName
		payload.RecordLabel = recordLabel
		payload.SupportingActs = matchesFromList(sanitizeList(NormalizeStringList(fields["supporting_acts"])))
	}

	return payload
}

// sanitizeSingle applies the concatenation/none-filter guard to one value,
// returning "" when it should be rejected.
func sanitizeSingle(v string) string {
	if v == "" || !isSaneArtistEntry(v) {
		return ""
	}
	return v
}

// sanitizeList filters a list, dropping any entry that fails the
// concatenation guard or matches the "none/not specified" filter.
func sanitizeList(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if isSaneArtistEntry(e) {
			out = append(out, e)
		}
	}
	return out
}

func isSaneArtistEntry(entry string) bool {
	if noneFilterValues[normalizeForFilter(entry)] {
		return false
	}
	if len(entry) > maxConcatenatedEntryLen && !containsAnyFold(entry, " ", ",", "&", "-") {
		return false
	}
	return true
}

func normalizeForFilter(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}

func matchesFromList(entries []string) []models.Match {
	out := make([]models.Match, 0, len(entries))
	for _, e := range entries {
		out = append(out, models.Match{Extracted: e})
	}
	return out
}

// validateArtists validates the headliner and each supporting act against
// an authoritative artist catalog, attaching canonical names/external ids
// on a confident match. Returns whether the headliner itself was matched.
func validateArtists(ctx context.Context, validator services.ArtistAuthority, payload *models.ArtistPayload, logger *zap.Logger) bool {
	headlinerMatched := false
	if !payload.Headliner.IsEmpty() {
		headlinerMatched = validateOne(ctx, validator, &payload.Headliner, logger)
	}
	for i := range payload.SupportingActs {
		validateOne(ctx, validator, &payload.SupportingActs[i], logger)
	}
	for i := range payload.FeaturedArtists {
		validateOne(ctx, validator, &payload.FeaturedArtists[i], logger)
	}
	return headlinerMatched
}

func validateOne(ctx context.Context, validator services.ArtistAuthority, m *models.Match, logger *zap.Logger) bool {
	matches, err := validator.SearchArtist(ctx, m.Extracted)
	if err != nil {
		// Validator failure degrades to the un-validated extracted value,
		// never a phase failure.
		logger.Warn("artist phase: validator lookup failed", zap.String("name", m.Extracted), zap.Error(err))
		return false
	}
	if len(matches) == 0 {
		return false
	}
	best := matches[0]
	if TitleMatchConfidence(m.Extracted, best.Name) < titleMatchThreshold {
		return false
	}
	m.Validated = best.Name
	m.ExternalID = "mbid:" + best.ID
	m.Source = "musicbrainz"
	return true
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
