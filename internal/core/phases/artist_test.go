package phases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/posterforge/extractioncore/internal/domain/models"
	"github.com/posterforge/extractioncore/internal/services"
)

func newArtistContext(posterType models.PosterType) *models.ProcessingContext {
	pctx := models.NewProcessingContext("s1", "poster.jpg", "poster:1")
	pctx.Hints.PrimaryPosterType = posterType
	return pctx
}

func TestArtistPhase_Execute_DefaultProjection(t *testing.T) {
	vision := &fakeVisionProvider{responses: []services.VisionResult{
		{ExtractedText: `{"headliner": "Boris", "supporting_acts": ["Melvins", "none"], "tour_name": "Noise Tour"}`},
	}}
	phase := &ArtistPhase{Vision: vision}
	pctx := newArtistContext(models.PosterTypeConcert)

	result := phase.Execute(context.Background(), pctx, models.ProcessingOptions{})

	require.NotNil(t, result.Artist)
	assert.Equal(t, "Boris", result.Artist.Headliner.Extracted)
	assert.Equal(t, "Noise Tour", result.Artist.TourName)
	require.Len(t, result.Artist.SupportingActs, 1)
	assert.Equal(t, "Melvins", result.Artist.SupportingActs[0].Extracted)
	assert.Equal(t, models.StatusCompleted, result.Status)
}

func TestArtistPhase_Execute_FilmProjection(t *testing.T) {
	vision := &fakeVisionProvider{responses: []services.VisionResult{
		{ExtractedText: `{"director": "Jane Doe", "cast": ["Actor One", "Actor Two"]}`},
	}}
	phase := &ArtistPhase{Vision: vision}
	pctx := newArtistContext(models.PosterTypeFilm)

	result := phase.Execute(context.Background(), pctx, models.ProcessingOptions{})

	require.NotNil(t, result.Artist)
	assert.Equal(t, "Jane Doe", result.Artist.Director.Extracted)
	assert.Len(t, result.Artist.Cast, 2)
}

func TestArtistPhase_Execute_MissingHeadlinerNeedsReview(t *testing.T) {
	vision := &fakeVisionProvider{responses: []services.VisionResult{
		{ExtractedText: `{"headliner": ""}`},
	}}
	phase := &ArtistPhase{Vision: vision}
	pctx := newArtistContext(models.PosterTypeConcert)

	result := phase.Execute(context.Background(), pctx, models.ProcessingOptions{})

	assert.Equal(t, models.StatusNeedsReview, result.Status)
}

func TestArtistPhase_Execute_ValidatorCanonicalizesHeadliner(t *testing.T) {
	vision := &fakeVisionProvider{responses: []services.VisionResult{
		{ExtractedText: `{"headliner": "boris"}`},
	}}
	validator := &fakeArtistAuthority{matches: []services.NameMatch{{ID: "abc123", Name: "Boris"}}}
	phase := &ArtistPhase{Vision: vision, Validator: validator}
	pctx := newArtistContext(models.PosterTypeConcert)

	result := phase.Execute(context.Background(), pctx, models.ProcessingOptions{})

	require.NotNil(t, result.Artist)
	assert.Equal(t, "Boris", result.Artist.Headliner.Validated)
	assert.Equal(t, "mbid:abc123", result.Artist.Headliner.ExternalID)
	assert.Equal(t, "musicbrainz", result.Artist.Headliner.Source)
}

func TestArtistPhase_Execute_ValidatorErrorDegradesGracefully(t *testing.T) {
	vision := &fakeVisionProvider{responses: []services.VisionResult{
		{ExtractedText: `{"headliner": "Boris"}`},
	}}
	validator := &fakeArtistAuthority{err: assertErr("musicbrainz down")}
	phase := &ArtistPhase{Vision: vision, Validator: validator}
	pctx := newArtistContext(models.PosterTypeConcert)

	result := phase.Execute(context.Background(), pctx, models.ProcessingOptions{})

	require.NotNil(t, result.Artist)
	assert.Equal(t, "Boris", result.Artist.Headliner.Extracted)
	assert.Empty(t, result.Artist.Headliner.Validated)
}

func TestSanitizeList_FiltersNoneAndConcatenation(t *testing.T) {
	out := sanitizeList([]string{"Boris", "none", "TBD", "ThisIsOneVeryLongConcatenatedNameWithNoSeparatorsAtAllThatShouldBeRejectedOutright"})
	assert.Equal(t, []string{"Boris"}, out)
}

func TestIsSaneArtistEntry_AllowsLongNameWithSeparators(t *testing.T) {
	long := "Boris, Melvins, Sunn O))), Earth, Om, Neurosis - Supergroup Collaboration Night 2024"
	assert.True(t, len(long) > maxConcatenatedEntryLen)
	assert.True(t, isSaneArtistEntry(long))
}
