package phases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/posterforge/extractioncore/internal/domain/models"
	"github.com/posterforge/extractioncore/internal/services"
)

func TestTypePhase_Execute_HighConfidenceNoRefinement(t *testing.T) {
	vision := &fakeVisionProvider{responses: []services.VisionResult{
		{ExtractedText: `{"poster_type": "concert", "confidence": 92, "has_artist_photo": true, "style": "photographic", "extracted_text": "tickets doors live tour support act presents"}`},
	}}
	phase := &TypePhase{Vision: vision}
	pctx := models.NewProcessingContext("s1", "poster.jpg", "poster:1")
	opts := models.ProcessingOptions{ConfidenceThreshold: 0.7, RefinementEnabled: true}

	result := phase.Execute(context.Background(), pctx, opts)

	require.NotNil(t, result.Type)
	assert.Equal(t, models.PosterTypeConcert, result.Type.PosterType)
	assert.Equal(t, models.StatusCompleted, result.Status)
	assert.Equal(t, 1, vision.calls)
	assert.True(t, result.Type.Visual.HasArtistPhoto)
}

func TestTypePhase_Execute_LowConfidenceTriggersRefinement(t *testing.T) {
	vision := &fakeVisionProvider{responses: []services.VisionResult{
		{ExtractedText: `{"poster_type": "concert", "confidence": 40}`},
		{ExtractedText: `{"poster_type": "festival", "confidence": 95}`},
	}}
	phase := &TypePhase{Vision: vision}
	pctx := models.NewProcessingContext("s1", "poster.jpg", "poster:1")
	opts := models.ProcessingOptions{ConfidenceThreshold: 0.7, RefinementEnabled: true}

	result := phase.Execute(context.Background(), pctx, opts)

	assert.Equal(t, 2, vision.calls)
	require.NotNil(t, result.Type)
	assert.Equal(t, models.PosterTypeFestival, result.Type.PosterType)
	assert.True(t, result.Type.Refined)
}

func TestTypePhase_Execute_RefinementWorseKeepsOriginal(t *testing.T) {
	vision := &fakeVisionProvider{responses: []services.VisionResult{
		{ExtractedText: `{"poster_type": "concert", "confidence": 40}`},
		{ExtractedText: `{"poster_type": "festival", "confidence": 10}`},
	}}
	phase := &TypePhase{Vision: vision}
	pctx := models.NewProcessingContext("s1", "poster.jpg", "poster:1")
	opts := models.ProcessingOptions{ConfidenceThreshold: 0.7, RefinementEnabled: true}

	result := phase.Execute(context.Background(), pctx, opts)

	require.NotNil(t, result.Type)
	assert.Equal(t, models.PosterTypeConcert, result.Type.PosterType)
	assert.False(t, result.Type.Refined)
}

func TestTypePhase_Execute_VisionErrorFails(t *testing.T) {
	vision := &fakeVisionProvider{
		responses: []services.VisionResult{{}},
		errs:      []error{assertErr("vision unavailable")},
	}
	phase := &TypePhase{Vision: vision}
	pctx := models.NewProcessingContext("s1", "poster.jpg", "poster:1")
	opts := models.ProcessingOptions{ConfidenceThreshold: 0.7}

	result := phase.Execute(context.Background(), pctx, opts)

	assert.Equal(t, models.StatusFailed, result.Status)
	assert.Nil(t, result.Type)
	assert.Equal(t, []string{"vision unavailable"}, result.Errors)
}

func TestTypePhase_Execute_KnowledgeBaseBonusApplied(t *testing.T) {
	vision := &fakeVisionProvider{responses: []services.VisionResult{
		{ExtractedText: `{"poster_type": "concert", "confidence": 75}`},
	}}
	kb := &fakeKnowledgeBase{hits: []services.ScoredEntity{{ID: "poster:old", PosterType: "concert"}}}
	phase := &TypePhase{Vision: vision, KB: kb}
	pctx := models.NewProcessingContext("s1", "poster.jpg", "poster:1")
	opts := models.ProcessingOptions{ConfidenceThreshold: 0.7, KnowledgeBaseEnabled: true}

	result := phase.Execute(context.Background(), pctx, opts)

	require.NotNil(t, result.Type)
	assert.InDelta(t, 0.625, result.Confidence, 0.001)
}

func TestScanPatternKeywords(t *testing.T) {
	score, evidence := scanPatternKeywords("Doors at 8pm, tickets on sale now, live!", models.PosterTypeConcert)
	assert.Greater(t, score, 0.0)
	assert.NotEmpty(t, evidence)
}

func TestBuildSecondaryTypes_Hybrid(t *testing.T) {
	secondary := buildSecondaryTypes(models.PosterTypeHybrid, 0.8)
	assert.Len(t, secondary, 3)
	assert.True(t, secondary[0].IsPrimary)
}

func TestBuildSecondaryTypes_NonHybrid(t *testing.T) {
	secondary := buildSecondaryTypes(models.PosterTypeConcert, 0.8)
	assert.Len(t, secondary, 1)
}

type simpleErr string

func (e simpleErr) Error() string { return string(e) }

func assertErr(msg string) error { return simpleErr(msg) }
