package phases

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/posterforge/extractioncore/internal/domain/models"
	"github.com/posterforge/extractioncore/internal/services"
)

// AssemblyPhase merges every prior phase's output into one PosterEntity
// plus related entities and typed edges, routed by poster type.
type AssemblyPhase struct {
	Entity   services.EntityService   // optional
	Relation services.RelationService // optional
	Logger   *zap.Logger
}

func (p *AssemblyPhase) Name() models.PhaseName { return models.PhaseAssembly }

func (p *AssemblyPhase) Execute(ctx context.Context, pctx *models.ProcessingContext, opts models.ProcessingOptions) models.PhaseResult {
	start := time.Now()
	logger := Logger(p.Logger)

	return Envelope(models.PhaseAssembly, pctx.PosterID, pctx.ImagePath, start, func() models.PhaseResult {
		typeResult, _ := pctx.Result(models.PhaseType)
		artistResult, _ := pctx.Result(models.PhaseArtist)
		venueResult, _ := pctx.Result(models.PhaseVenue)
		eventResult, _ := pctx.Result(models.PhaseEvent)

		posterType := pctx.Hints.PrimaryPosterType
		poster := buildPosterEntity(pctx, typeResult, artistResult, venueResult, eventResult)

		entities := map[string]services.Entity{
			poster.ID: posterToEntity(poster),
		}
		var relations []models.Relation

		addTypeEdges(poster, &relations)
		routeRelatedEntities(posterType, artistResult, venueResult, eventResult, poster, entities, &relations)

		isNewByID, persistErr := persistAll(ctx, p.Entity, p.Relation, entities, relations, logger)

		var errs []string
		if persistErr != nil {
			errs = append(errs, persistErr.Error())
		}

		status := models.StatusCompleted
		if !(typeResult.Succeeded() && artistResult.Succeeded() && venueResult.Succeeded() && eventResult.Succeeded()) {
			status = models.StatusNeedsReview
		}
		// A persistence failure only fails Assembly when the Poster vertex
		// itself wasn't written — losing a secondary edge still leaves a
		// useful partial graph.
		if persistErr != nil && !posterWasPersisted(isNewByID, poster.ID) {
			status = models.StatusFailed
		}

		return models.PhaseResult{
			PosterID:         pctx.PosterID,
			ImagePath:        pctx.ImagePath,
			Phase:            models.PhaseAssembly,
			Status:           status,
			Confidence:       pctx.OverallConfidence(),
			ProcessingTimeMs: time.Since(start).Milliseconds(),
			Errors:           errs,
			Assembly: &models.AssemblyPayload{
				Poster:    poster,
				Relations: relations,
				IsNewByID: isNewByID,
			},
		}
	})
}

// posterWasPersisted reports whether the Poster vertex itself made it
// into isNewByID — a persistence failure that still recorded the Poster
// write is a secondary-edge failure, not a Poster failure.
func posterWasPersisted(isNewByID map[string]bool, posterID string) bool {
	_, ok := isNewByID[posterID]
	return ok
}

func buildPosterEntity(pctx *models.ProcessingContext, typeResult, artistResult, venueResult, eventResult models.PhaseResult) *models.PosterEntity {
	poster := &models.PosterEntity{
		ID:         pctx.PosterID,
		EntityType: models.VertexPoster,
		PosterType: pctx.Hints.PrimaryPosterType,
		Metadata: models.PosterMetadata{
			SourceHash:        pctx.PosterID,
			OverallConfidence: pctx.OverallConfidence(),
			CreatedAt:         time.Time{},
			UpdatedAt:         time.Time{},
		},
		ExtractedText: pctx.ExtractedText(),
	}

	if typeResult.Type != nil {
		poster.InferredTypes = typeResult.Type.SecondaryTypes
		poster.Visual = typeResult.Type.Visual
	}

	if artistResult.Artist != nil {
		a := artistResult.Artist
		poster.Headliner = a.Headliner.CanonicalName()
		for _, s := range a.SupportingActs {
			poster.SupportingActs = append(poster.SupportingActs, s.CanonicalName())
		}
		poster.TourName = a.TourName
		poster.RecordLabel = a.RecordLabel
		if poster.Title == "" {
			poster.Title = a.AlbumTitle
		}
	}

	if venueResult.Venue != nil {
		v := venueResult.Venue
		poster.VenueName = v.Venue.CanonicalName()
		poster.City, poster.State, poster.Country = v.City, v.State, v.Country
	}

	if eventResult.Event != nil && len(eventResult.Event.Shows) > 0 {
		first := eventResult.Event.Shows[0]
		poster.FirstEventDate = first.Date.Raw
		poster.Year = first.Date.Year
		if first.Date.Year > 0 {
			poster.Decade = (first.Date.Year / 10) * 10
		}
		poster.DoorTime = first.DoorTime
		poster.ShowTime = first.ShowTime
		poster.TicketPrice = first.TicketPrice
		poster.AgeRestriction = first.AgeRestriction
		poster.Promoter = eventResult.Event.Promoter
	}

	poster.Observations = buildObservations(typeResult, artistResult, venueResult, eventResult)
	return poster
}

func buildObservations(typeResult, artistResult, venueResult, eventResult models.PhaseResult) []string {
	var lines []string
	if typeResult.Type != nil {
		lines = append(lines, fmt.Sprintf("type: %s", typeResult.Type.PosterType))
	}
	if artistResult.Artist != nil && !artistResult.Artist.Headliner.IsEmpty() {
		lines = append(lines, fmt.Sprintf("headliner: %s", artistResult.Artist.Headliner.CanonicalName()))
	}
	if venueResult.Venue != nil && !venueResult.Venue.Venue.IsEmpty() {
		lines = append(lines, fmt.Sprintf("venue: %s", venueResult.Venue.Venue.CanonicalName()))
	}
	if eventResult.Event != nil {
		for _, show := range eventResult.Event.Shows {
			if show.Date.Year > 0 {
				lines = append(lines, fmt.Sprintf("year: %d", show.Date.Year))
			}
		}
	}
	return lines
}

func posterToEntity(poster *models.PosterEntity) services.Entity {
	return services.Entity{
		ID:   poster.ID,
		Kind: string(models.VertexPoster),
		Fields: map[string]interface{}{
			"name":         poster.Title,
			"posterType":   string(poster.PosterType),
			"headliner":    poster.Headliner,
			"observations": poster.Observations,
		},
	}
}

func addTypeEdges(poster *models.PosterEntity, relations *[]models.Relation) {
	for _, t := range poster.InferredTypes {
		typeID := models.DeterministicID(models.VertexPosterType, string(t.TypeKey))
		*relations = append(*relations, models.Relation{
			From:         poster.ID,
			To:           typeID,
			RelationType: models.RelHasType,
			Confidence:   t.Confidence,
			Metadata: map[string]interface{}{
				"source":    t.Source,
				"evidence":  t.Evidence,
				"isPrimary": t.IsPrimary,
			},
		})
	}
}

// routeRelatedEntities creates the related vertices and edges appropriate
// to posterType.
func routeRelatedEntities(
	posterType models.PosterType,
	artistResult, venueResult, eventResult models.PhaseResult,
	poster *models.PosterEntity,
	entities map[string]services.Entity,
	relations *[]models.Relation,
) {
	switch {
	case posterType == models.PosterTypeAlbum || posterType == models.PosterTypeHybrid:
		addAlbumPath(artistResult, poster, entities, relations)
		if posterType == models.PosterTypeHybrid {
			addEventPath(posterType, artistResult, venueResult, eventResult, poster, entities, relations)
		}
	case posterType == models.PosterTypeFilm:
		addFilmPath(artistResult, poster, entities, relations)
	case posterType.IsEventLike():
		addEventPath(posterType, artistResult, venueResult, eventResult, poster, entities, relations)
	default: // promo, exhibition, unknown
		addBasicArtistVenueEdges(artistResult, venueResult, poster, entities, relations)
	}
}

func addAlbumPath(artistResult models.PhaseResult, poster *models.PosterEntity, entities map[string]services.Entity, relations *[]models.Relation) {
	if artistResult.Artist == nil || artistResult.Artist.Headliner.IsEmpty() {
		return
	}
	a := artistResult.Artist

	albumTitle := a.AlbumTitle
	if albumTitle == "" {
		albumTitle = poster.Title
	}
	if albumTitle == "" {
		return
	}
	albumID := models.DeterministicID(models.VertexAlbum, albumTitle)
	entities[albumID] = services.Entity{ID: albumID, Kind: string(models.VertexAlbum), Fields: map[string]interface{}{"title": albumTitle}}
	*relations = append(*relations, models.Relation{From: poster.ID, To: albumID, RelationType: models.RelAdvertisesAlbum})

	artistID := models.DeterministicID(models.VertexArtist, a.Headliner.CanonicalName())
	entities[artistID] = artistEntity(a.Headliner)
	*relations = append(*relations, models.Relation{From: albumID, To: artistID, RelationType: models.RelCreatedBy, Metadata: map[string]interface{}{"role": "primary"}})
	*relations = append(*relations, models.Relation{From: artistID, To: poster.ID, RelationType: models.RelHeadlinedOn})

	for _, featured := range a.FeaturedArtists {
		if featured.IsEmpty() {
			continue
		}
		fid := models.DeterministicID(models.VertexArtist, featured.CanonicalName())
		entities[fid] = artistEntity(featured)
		*relations = append(*relations, models.Relation{From: albumID, To: fid, RelationType: models.RelCreatedBy, Metadata: map[string]interface{}{"role": "featured"}})
	}

	if a.RecordLabel != "" {
		orgID := models.DeterministicID(models.VertexOrganization, a.RecordLabel)
		entities[orgID] = services.Entity{ID: orgID, Kind: string(models.VertexOrganization), Fields: map[string]interface{}{"name": a.RecordLabel, "role": "label"}}
		*relations = append(*relations, models.Relation{From: albumID, To: orgID, RelationType: models.RelReleasedBy})
	}
}

func addFilmPath(artistResult models.PhaseResult, poster *models.PosterEntity, entities map[string]services.Entity, relations *[]models.Relation) {
	if artistResult.Artist == nil {
		return
	}
	a := artistResult.Artist

	if !a.Director.IsEmpty() {
		dirID := models.DeterministicID(models.VertexArtist, a.Director.CanonicalName())
		entities[dirID] = artistEntity(a.Director)
		*relations = append(*relations, models.Relation{From: poster.ID, To: dirID, RelationType: models.RelDirectedBy})
	}

	cast := a.Cast
	if len(cast) == 0 && !a.Headliner.IsEmpty() {
		cast = []models.Match{a.Headliner}
	}
	for i, member := range cast {
		if member.IsEmpty() {
			continue
		}
		memberID := models.DeterministicID(models.VertexArtist, member.CanonicalName())
		entities[memberID] = artistEntity(member)
		*relations = append(*relations, models.Relation{
			From:         poster.ID,
			To:           memberID,
			RelationType: models.RelStars,
			Metadata:     map[string]interface{}{"billingOrder": i + 1},
		})
	}
}

func addEventPath(
	posterType models.PosterType,
	artistResult, venueResult, eventResult models.PhaseResult,
	poster *models.PosterEntity,
	entities map[string]services.Entity,
	relations *[]models.Relation,
) {
	var venueID string
	if venueResult.Venue != nil && !venueResult.Venue.Venue.IsEmpty() {
		v := venueResult.Venue
		venueID = v.ExistingVenueID
		if venueID == "" {
			venueID = models.DeterministicID(models.VertexVenue, v.Venue.CanonicalName())
			entities[venueID] = services.Entity{ID: venueID, Kind: string(models.VertexVenue), Fields: map[string]interface{}{
				"name": v.Venue.CanonicalName(), "city": v.City, "state": v.State, "country": v.Country,
			}}
		}
		*relations = append(*relations, models.Relation{From: poster.ID, To: venueID, RelationType: models.RelAdvertisesVenue})
	}

	eventName := poster.Title
	if eventName == "" {
		eventName = poster.Headliner
	}
	eventID := models.DeterministicID(models.VertexEvent, eventName+"|"+poster.FirstEventDate)
	entities[eventID] = services.Entity{ID: eventID, Kind: string(models.VertexEvent), Fields: map[string]interface{}{
		"name": eventName, "date": poster.FirstEventDate, "year": poster.Year,
	}}
	*relations = append(*relations, models.Relation{From: poster.ID, To: eventID, RelationType: models.RelAdvertisesEvent})
	if venueID != "" {
		*relations = append(*relations, models.Relation{From: eventID, To: venueID, RelationType: models.RelHeldAt})
	}

	if artistResult.Artist != nil && !artistResult.Artist.Headliner.IsEmpty() {
		h := artistResult.Artist.Headliner
		artistID := models.DeterministicID(models.VertexArtist, h.CanonicalName())
		entities[artistID] = artistEntity(h)
		*relations = append(*relations,
			models.Relation{From: artistID, To: poster.ID, RelationType: models.RelHeadlinedOn},
			models.Relation{From: artistID, To: eventID, RelationType: models.RelHeadlined},
		)
		for _, support := range artistResult.Artist.SupportingActs {
			if support.IsEmpty() {
				continue
			}
			supportID := models.DeterministicID(models.VertexArtist, support.CanonicalName())
			entities[supportID] = artistEntity(support)
			*relations = append(*relations,
				models.Relation{From: supportID, To: poster.ID, RelationType: models.RelPerformedOn},
				models.Relation{From: supportID, To: eventID, RelationType: models.RelPerformedAt},
			)
		}
	}

	if eventResult.Event != nil && eventResult.Event.Promoter != "" {
		orgID := models.DeterministicID(models.VertexOrganization, eventResult.Event.Promoter)
		entities[orgID] = services.Entity{ID: orgID, Kind: string(models.VertexOrganization), Fields: map[string]interface{}{"name": eventResult.Event.Promoter, "role": "promoter"}}
		*relations = append(*relations, models.Relation{From: eventID, To: orgID, RelationType: models.RelPromotedBy})
	}
}

func addBasicArtistVenueEdges(artistResult, venueResult models.PhaseResult, poster *models.PosterEntity, entities map[string]services.Entity, relations *[]models.Relation) {
	if artistResult.Artist != nil && !artistResult.Artist.Headliner.IsEmpty() {
		h := artistResult.Artist.Headliner
		artistID := models.DeterministicID(models.VertexArtist, h.CanonicalName())
		entities[artistID] = artistEntity(h)
		*relations = append(*relations, models.Relation{From: artistID, To: poster.ID, RelationType: models.RelHeadlinedOn})
	}
	if venueResult.Venue != nil && !venueResult.Venue.Venue.IsEmpty() {
		v := venueResult.Venue
		venueID := v.ExistingVenueID
		if venueID == "" {
			venueID = models.DeterministicID(models.VertexVenue, v.Venue.CanonicalName())
			entities[venueID] = services.Entity{ID: venueID, Kind: string(models.VertexVenue), Fields: map[string]interface{}{"name": v.Venue.CanonicalName()}}
		}
		*relations = append(*relations, models.Relation{From: poster.ID, To: venueID, RelationType: models.RelAdvertisesVenue})
	}
}

func artistEntity(m models.Match) services.Entity {
	return services.Entity{
		ID:   models.DeterministicID(models.VertexArtist, m.CanonicalName()),
		Kind: string(models.VertexArtist),
		Fields: map[string]interface{}{
			"name":       m.CanonicalName(),
			"externalId": m.ExternalID,
			"source":     m.Source,
		},
	}
}

// persistAll writes every entity then every relation, when the respective
// optional services are configured. A nil EntityService/RelationService
// is "dry mode" — entities/relations are still returned to the
// caller in the PhaseResult, just not written anywhere.
func persistAll(ctx context.Context, entityService services.EntityService, relationService services.RelationService, entities map[string]services.Entity, relations []models.Relation, logger *zap.Logger) (map[string]bool, error) {
	isNewByID := make(map[string]bool, len(entities))
	if entityService == nil {
		for id := range entities {
			isNewByID[id] = true
		}
		return isNewByID, nil
	}

	list := make([]services.Entity, 0, len(entities))
	for _, e := range entities {
		list = append(list, e)
	}
	created, err := entityService.CreateEntities(ctx, list)
	if err != nil {
		logger.Error("assembly: entity persistence failed", zap.Error(err))
		return created, err
	}
	isNewByID = created

	if relationService != nil && len(relations) > 0 {
		svcRelations := make([]services.Relation, 0, len(relations))
		for _, r := range relations {
			svcRelations = append(svcRelations, services.Relation{
				From: r.From, To: r.To, RelationType: string(r.RelationType), Confidence: r.Confidence, Metadata: r.Metadata,
			})
		}
		if err := relationService.CreateRelations(ctx, svcRelations); err != nil {
			logger.Warn("assembly: relation persistence failed", zap.Error(err))
			return isNewByID, err
		}
	}

	return isNewByID, nil
}
