package phases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/posterforge/extractioncore/internal/domain/models"
	"github.com/posterforge/extractioncore/internal/services"
)

func newVenueContext(posterType models.PosterType) *models.ProcessingContext {
	pctx := models.NewProcessingContext("s1", "poster.jpg", "poster:1")
	pctx.Hints.PrimaryPosterType = posterType
	return pctx
}

func TestVenuePhase_Execute_Basic(t *testing.T) {
	vision := &fakeVisionProvider{responses: []services.VisionResult{
		{ExtractedText: `{"venue": "The Forum", "city": "Inglewood", "state": "CA", "country": "USA"}`},
	}}
	phase := &VenuePhase{Vision: vision}
	pctx := newVenueContext(models.PosterTypeConcert)

	result := phase.Execute(context.Background(), pctx, models.ProcessingOptions{})

	require.NotNil(t, result.Venue)
	assert.Equal(t, "The Forum", result.Venue.Venue.Extracted)
	assert.Equal(t, "Inglewood", result.Venue.City)
	assert.Equal(t, models.StatusCompleted, result.Status)
}

func TestVenuePhase_Execute_MissingVenueNeedsReview(t *testing.T) {
	vision := &fakeVisionProvider{responses: []services.VisionResult{
		{ExtractedText: `{}`},
	}}
	phase := &VenuePhase{Vision: vision}
	pctx := newVenueContext(models.PosterTypeConcert)

	result := phase.Execute(context.Background(), pctx, models.ProcessingOptions{})

	assert.Equal(t, models.StatusNeedsReview, result.Status)
}

func TestVenuePhase_Execute_AlbumDoesNotRequireVenue(t *testing.T) {
	vision := &fakeVisionProvider{responses: []services.VisionResult{
		{ExtractedText: `{}`},
	}}
	phase := &VenuePhase{Vision: vision}
	pctx := newVenueContext(models.PosterTypeAlbum)

	result := phase.Execute(context.Background(), pctx, models.ProcessingOptions{})

	assert.Equal(t, models.StatusCompleted, result.Status)
}

func TestVenuePhase_Execute_DedupesAgainstExistingVertex(t *testing.T) {
	vision := &fakeVisionProvider{responses: []services.VisionResult{
		{ExtractedText: `{"venue": "The Forum", "city": "Inglewood"}`},
	}}
	entity := &fakeEntityService{byName: map[string][]services.Entity{
		"The Forum": {{ID: "venue:the-forum", Kind: "Venue", Fields: map[string]interface{}{"name": "The Forum"}}},
	}}
	phase := &VenuePhase{Vision: vision, Entity: entity}
	pctx := newVenueContext(models.PosterTypeConcert)

	result := phase.Execute(context.Background(), pctx, models.ProcessingOptions{EntityServiceEnabled: true})

	require.NotNil(t, result.Venue)
	assert.Equal(t, "venue:the-forum", result.Venue.ExistingVenueID)
}

func TestVenuePhase_Execute_AmbiguousMatchCreatesNew(t *testing.T) {
	vision := &fakeVisionProvider{responses: []services.VisionResult{
		{ExtractedText: `{"venue": "The Forum"}`},
	}}
	entity := &fakeEntityService{byName: map[string][]services.Entity{
		"The Forum": {
			{ID: "venue:a", Fields: map[string]interface{}{"name": "The Forum"}},
			{ID: "venue:b", Fields: map[string]interface{}{"name": "the forum"}},
		},
	}}
	phase := &VenuePhase{Vision: vision, Entity: entity}
	pctx := newVenueContext(models.PosterTypeConcert)

	result := phase.Execute(context.Background(), pctx, models.ProcessingOptions{EntityServiceEnabled: true})

	require.NotNil(t, result.Venue)
	assert.Empty(t, result.Venue.ExistingVenueID)
}

func TestNormalizeVenueName(t *testing.T) {
	assert.Equal(t, "the forum", normalizeVenueName("  The   Forum  "))
}
