package phases

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/posterforge/extractioncore/internal/core/dateparse"
	"github.com/posterforge/extractioncore/internal/core/prompts"
	"github.com/posterforge/extractioncore/internal/domain/models"
	"github.com/posterforge/extractioncore/internal/services"
)

// EventPhase extracts dates, times, price, age restriction and promoter,
// splitting multi-date posters into individual shows.
type EventPhase struct {
	Vision services.VisionProvider
	KB     services.KnowledgeBaseSearch // optional
	Logger *zap.Logger
}

func (p *EventPhase) Name() models.PhaseName { return models.PhaseEvent }

func (p *EventPhase) Execute(ctx context.Context, pctx *models.ProcessingContext, opts models.ProcessingOptions) models.PhaseResult {
	start := time.Now()
	logger := Logger(p.Logger)
	posterType := pctx.Hints.PrimaryPosterType

	return Envelope(models.PhaseEvent, pctx.PosterID, pctx.ImagePath, start, func() models.PhaseResult {
		prompt := prompts.GetPhasePrompt(models.PhaseEvent, posterType)
		vr, err := p.Vision.Extract(ctx, pctx.ImagePath, prompt)
		if err != nil {
			logger.Error("event phase: vision call failed", zap.Error(err))
			return Failed(models.PhaseEvent, pctx.PosterID, pctx.ImagePath, start, err.Error())
		}
		pctx.AppendExtractedText(vr.ExtractedText)

		fields, warnings := ParseVisionResponse(vr.ExtractedText)
		dateField := prompts.EventDateField(posterType)

		shows := extractShows(fields, dateField)
		if len(shows) == 0 {
			if year, ok := asFloat(fields["year"]); ok && year > 0 {
				shows = []models.ShowInfo{{
					Date:    models.DateInfo{Year: int(year), Format: models.DateFormatYearOnly, Confidence: 0.6},
					Ordinal: 1,
				}}
			}
		}

		promoter, _ := NormalizeString(fields["promoter"])
		year := 0
		if len(shows) > 0 {
			year = shows[0].Date.Year
		}

		artistValidated, venueValidated := true, true
		if p.KB != nil && opts.KnowledgeBaseEnabled && year > 0 {
			if !pctx.Hints.AcceptedArtist.IsEmpty() {
				artistValidated = checkPlausibility(ctx, p.KB, pctx.Hints.AcceptedArtist.CanonicalName(), year, -5, 10, logger)
			}
			if !pctx.Hints.AcceptedVenue.IsEmpty() {
				venueValidated = checkPlausibility(ctx, p.KB, pctx.Hints.AcceptedVenue.CanonicalName(), year, 0, 20, logger)
			}
		}

		confidence := computeEventConfidence(posterType, shows, artistValidated, venueValidated)
		readyForAssembly := confidence >= opts.ConfidenceThreshold || isDateOptional(posterType)

		status := models.StatusCompleted
		if !readyForAssembly {
			status = models.StatusNeedsReview
		}

		return models.PhaseResult{
			PosterID:         pctx.PosterID,
			ImagePath:        pctx.ImagePath,
			Phase:            models.PhaseEvent,
			Status:           status,
			Confidence:       confidence,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
			Warnings:         warnings,
			Event: &models.EventPayload{
				Shows:            shows,
				Promoter:         promoter,
				Year:             year,
				ArtistValidated:  artistValidated,
				VenueValidated:   venueValidated,
				ReadyForAssembly: readyForAssembly,
			},
		}
	})
}

// extractShows builds the ordered ShowInfo list, preferring a shows[]
// array when present and otherwise splitting the single raw date field.
func extractShows(fields map[string]interface{}, dateField string) []models.ShowInfo {
	if rawShows, ok := fields["shows"].([]interface{}); ok && len(rawShows) > 0 {
		var shows []models.ShowInfo
		ordinal := 1
		for _, raw := range rawShows {
			entry, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			entryDate, _ := NormalizeString(entry[dateField])
			if entryDate == "" {
				entryDate, _ = NormalizeString(entry["event_date"])
			}
			if entryDate == "" {
				continue
			}
			for _, seg := range dateparse.SplitSegments(entryDate) {
				shows = append(shows, buildShowInfo(seg, entry, ordinal))
				ordinal++
			}
		}
		return shows
	}

	rawDate, _ := NormalizeString(fields[dateField])
	if rawDate == "" {
		return nil
	}
	var shows []models.ShowInfo
	ordinal := 1
	for _, seg := range dateparse.SplitSegments(rawDate) {
		shows = append(shows, buildShowInfo(seg, fields, ordinal))
		ordinal++
	}
	return shows
}

func buildShowInfo(seg dateparse.Segment, fields map[string]interface{}, ordinal int) models.ShowInfo {
	doorTime, _ := NormalizeString(fields["door_time"])
	ticketPrice, _ := NormalizeString(fields["ticket_price"])
	ageRestriction, _ := NormalizeString(fields["age_restriction"])

	return models.ShowInfo{
		Date:           dateparse.ParseDate(seg.Text),
		DayOfWeek:      seg.DayOfWeek,
		DoorTime:       doorTime,
		ShowTime:       joinShowTimes(fields["show_time"]),
		TicketPrice:    ticketPrice,
		AgeRestriction: ageRestriction,
		Ordinal:        ordinal,
	}
}

// joinShowTimes normalizes a show_time field that may be a single string
// or an array of times into one comma-joined string.
func joinShowTimes(v interface{}) string {
	if s, ok := NormalizeString(v); ok {
		return s
	}
	return strings.Join(NormalizeStringList(v), ", ")
}

func isDateOptional(t models.PosterType) bool {
	return t == models.PosterTypePromo || t == models.PosterTypeUnknown
}

// checkPlausibility searches the knowledge base for other posters sharing
// subject (a headliner or venue name) and reports whether year falls
// within [min(observed)+lowPad, max(observed)+highPad].
func checkPlausibility(ctx context.Context, kb services.KnowledgeBaseSearch, subject string, year, lowPad, highPad int, logger *zap.Logger) bool {
	results, err := kb.Search(ctx, subject, services.SearchOptions{Limit: 10})
	if err != nil {
		// Knowledge-base failure: "no prior knowledge", neither bonus nor
		// penalty — treat as valid so confidence isn't wrongly docked.
		logger.Warn("event phase: knowledge-base plausibility check failed", zap.Error(err))
		return true
	}

	years := observedYears(results)
	if len(years) == 0 {
		return true
	}
	min, max := years[0], years[0]
	for _, y := range years {
		if y < min {
			min = y
		}
		if y > max {
			max = y
		}
	}
	return year >= min+lowPad && year <= max+highPad
}

func observedYears(results []services.ScoredEntity) []int {
	var years []int
	for _, r := range results {
		for _, obs := range r.Observations {
			if y, ok := yearFromObservation(obs); ok {
				years = append(years, y)
			}
		}
	}
	return years
}

func yearFromObservation(obs string) (int, bool) {
	const prefix = "year:"
	idx := strings.Index(strings.ToLower(obs), prefix)
	if idx < 0 {
		return 0, false
	}
	rest := strings.TrimSpace(obs[idx+len(prefix):])
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end != 4 {
		return 0, false
	}
	return int(mustAtoi(rest[:end])), true
}

func mustAtoi(s string) int64 {
	var n int64
	for i := 0; i < len(s); i++ {
		n = n*10 + int64(s[i]-'0')
	}
	return n
}

func computeEventConfidence(posterType models.PosterType, shows []models.ShowInfo, artistValidated, venueValidated bool) float64 {
	if len(shows) == 0 {
		if isDateOptional(posterType) {
			return 0.5
		}
		return 0
	}

	primary := shows[0]
	confidence := primary.Date.Confidence
	if primary.DoorTime != "" || primary.ShowTime != "" {
		confidence += 0.1
	}
	if primary.Date.IsFullyResolved() {
		confidence += 0.1
	}
	if !artistValidated {
		confidence -= 0.15
	}
	if !venueValidated {
		confidence -= 0.1
	}
	return clamp01(confidence)
}
