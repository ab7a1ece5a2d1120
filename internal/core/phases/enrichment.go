package phases

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/posterforge/extractioncore/internal/domain/models"
	"github.com/posterforge/extractioncore/internal/services"
)

// titleMatchThreshold is the minimum TitleMatchConfidence a film-authority
// candidate must clear before Enrichment accepts it.
const titleMatchThreshold = 0.75

// EnrichmentPhase fills fields Assembly left empty from authoritative
// external catalogs, routed by poster type. All four collaborators are
// optional; a phase with none configured is a no-op that still reports
// status=completed with zero enriched fields.
type EnrichmentPhase struct {
	Film             services.FilmAuthority
	MusicAuthority   services.ArtistAuthority
	ReleaseAuthority services.ReleaseAuthority
	SecondaryMusic   services.SecondaryMusicAuthority
	Logger           *zap.Logger
}

func (p *EnrichmentPhase) Name() models.PhaseName { return models.PhaseEnrichment }

func (p *EnrichmentPhase) Execute(ctx context.Context, pctx *models.ProcessingContext, opts models.ProcessingOptions) models.PhaseResult {
	start := time.Now()
	logger := Logger(p.Logger)

	return Envelope(models.PhaseEnrichment, pctx.PosterID, pctx.ImagePath, start, func() models.PhaseResult {
		assemblyResult, ok := pctx.Result(models.PhaseAssembly)
		if !ok || assemblyResult.Assembly == nil || assemblyResult.Assembly.Poster == nil {
			return Failed(models.PhaseEnrichment, pctx.PosterID, pctx.ImagePath, start, "enrichment requires a prior assembly result")
		}
		poster := assemblyResult.Assembly.Poster

		var fields, sources []string
		switch poster.PosterType {
		case models.PosterTypeFilm:
			fields, sources = p.enrichFilm(ctx, poster, logger)
		case models.PosterTypeAlbum, models.PosterTypeHybrid:
			fields, sources = p.enrichAlbum(ctx, poster, logger)
		default:
			fields, sources = p.enrichHeadlinerOnly(ctx, poster, logger)
		}

		return models.PhaseResult{
			PosterID:         pctx.PosterID,
			ImagePath:        pctx.ImagePath,
			Phase:            models.PhaseEnrichment,
			Status:           models.StatusCompleted,
			Confidence:       pctx.OverallConfidence(),
			ProcessingTimeMs: time.Since(start).Milliseconds(),
			Enrichment: &models.EnrichmentPayload{
				EnrichedFields: fields,
				Sources:        sources,
			},
		}
	})
}

func (p *EnrichmentPhase) enrichFilm(ctx context.Context, poster *models.PosterEntity, logger *zap.Logger) ([]string, []string) {
	if p.Film == nil || poster.Title == "" {
		return nil, nil
	}

	candidates, err := p.Film.SearchMovie(ctx, poster.Title, poster.Year)
	if err != nil || len(candidates) == 0 {
		if err != nil {
			logger.Warn("enrichment: film authority search failed", zap.Error(err))
		}
		return nil, nil
	}

	top := candidates[0]
	if TitleMatchConfidence(poster.Title, top.Title) < titleMatchThreshold {
		return nil, nil
	}

	var fields, sources []string
	if poster.Year == 0 && len(top.ReleaseDate) >= 4 {
		fmt.Sscanf(top.ReleaseDate[:4], "%d", &poster.Year)
		fields = append(fields, "year")
	}

	credits, err := p.Film.GetMovieCredits(ctx, top.ID)
	if err != nil {
		logger.Warn("enrichment: film credits lookup failed", zap.Error(err))
		return fields, sources
	}
	sources = append(sources, "tmdb")

	if director := firstCrewByRole(credits.Crew, "Director"); director != nil {
		poster.Observations = append(poster.Observations, fmt.Sprintf("director (tmdb): %s", director.Name))
		fields = append(fields, "director")
	}

	const topCastCount = 5
	castNames := make([]string, 0, topCastCount)
	for i, c := range credits.Cast {
		if i >= topCastCount {
			break
		}
		castNames = append(castNames, c.Name)
	}
	if len(castNames) > 0 {
		poster.Observations = append(poster.Observations, fmt.Sprintf("cast (tmdb): %v", castNames))
		fields = append(fields, "cast")
	}

	if poster.Headliner != "" && TitleMatchConfidence(poster.Headliner, top.Title) < titleMatchThreshold {
		// Films have no headliner field; preserve what was extracted as
		// an observation instead of losing it outright.
		poster.Observations = append(poster.Observations, fmt.Sprintf("previously extracted headliner: %s", poster.Headliner))
		poster.Headliner = ""
		fields = append(fields, "headliner")
	}

	if top.VoteAverage > 0 {
		poster.Observations = append(poster.Observations, fmt.Sprintf("vote_average: %.1f", top.VoteAverage))
		fields = append(fields, "vote_average")
	}

	return fields, sources
}

func (p *EnrichmentPhase) enrichAlbum(ctx context.Context, poster *models.PosterEntity, logger *zap.Logger) ([]string, []string) {
	var fields, sources []string

	if p.MusicAuthority != nil && poster.Headliner != "" {
		matches, err := p.MusicAuthority.SearchArtist(ctx, poster.Headliner)
		if err != nil {
			logger.Warn("enrichment: music authority artist search failed", zap.Error(err))
		} else if len(matches) > 0 {
			poster.Observations = append(poster.Observations, fmt.Sprintf("artist (musicbrainz): %s (mbid:%s)", matches[0].Name, matches[0].ID))
			fields = append(fields, "headliner")
			sources = append(sources, "musicbrainz")
		}
	}

	if p.ReleaseAuthority != nil && poster.Title != "" {
		releases, err := p.ReleaseAuthority.SearchRelease(ctx, poster.Title, poster.Headliner)
		if err != nil {
			logger.Warn("enrichment: release authority search failed", zap.Error(err))
		} else if len(releases) > 0 {
			fields = append(fields, applyRelease(poster, releases[0])...)
			sources = append(sources, "musicbrainz")
		}
	}

	if p.SecondaryMusic != nil && len(fields) <= 1 {
		results, err := p.SecondaryMusic.SearchRelease(ctx, poster.Title)
		if err != nil {
			logger.Warn("enrichment: secondary music authority search failed", zap.Error(err))
		} else if len(results) > 0 {
			r := results[0]
			if poster.Year == 0 && r.Year > 0 {
				poster.Year = r.Year
				fields = append(fields, "year")
			}
			if poster.RecordLabel == "" && len(r.Label) > 0 {
				poster.RecordLabel = r.Label[0]
				fields = append(fields, "recordLabel")
			}
			sources = append(sources, "discogs")
		}
	}

	return fields, sources
}

func applyRelease(poster *models.PosterEntity, release services.ReleaseCandidate) []string {
	var fields []string
	if poster.FirstEventDate == "" && release.Date != "" {
		poster.FirstEventDate = toDDMMYYYY(release.Date)
		fields = append(fields, "firstEventDate")
	}
	if poster.Year == 0 && len(release.Date) >= 4 {
		fmt.Sscanf(release.Date[:4], "%d", &poster.Year)
		fields = append(fields, "year")
	}
	if poster.RecordLabel == "" && len(release.LabelInfo) > 0 {
		poster.RecordLabel = release.LabelInfo[0]
		fields = append(fields, "recordLabel")
	}
	return fields
}

// toDDMMYYYY reformats an ISO (YYYY-MM-DD) release date into DD/MM/YYYY,
// the format Enrichment fills firstEventDate with.
func toDDMMYYYY(iso string) string {
	var y, m, d int
	if n, _ := fmt.Sscanf(iso, "%4d-%2d-%2d", &y, &m, &d); n == 3 {
		return fmt.Sprintf("%02d/%02d/%04d", d, m, y)
	}
	return iso
}

func (p *EnrichmentPhase) enrichHeadlinerOnly(ctx context.Context, poster *models.PosterEntity, logger *zap.Logger) ([]string, []string) {
	if p.MusicAuthority == nil || poster.Headliner == "" {
		return nil, nil
	}
	matches, err := p.MusicAuthority.SearchArtist(ctx, poster.Headliner)
	if err != nil {
		logger.Warn("enrichment: music authority artist search failed", zap.Error(err))
		return nil, nil
	}
	if len(matches) == 0 {
		return nil, nil
	}
	poster.Observations = append(poster.Observations, fmt.Sprintf("headliner (musicbrainz): %s (mbid:%s)", matches[0].Name, matches[0].ID))
	return []string{"headliner"}, []string{"musicbrainz"}
}

func firstCrewByRole(crew []services.CreditedPerson, role string) *services.CreditedPerson {
	for i := range crew {
		if crew[i].Role == role {
			return &crew[i]
		}
	}
	return nil
}
