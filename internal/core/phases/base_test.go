package phases

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/posterforge/extractioncore/internal/domain/models"
)

func TestParseVisionResponse_PlainJSON(t *testing.T) {
	fields, warnings := ParseVisionResponse(`here you go: {"artist": "Boris", "confidence": 0.9} thanks`)

	assert.Empty(t, warnings)
	assert.Equal(t, "Boris", fields["artist"])
	assert.Equal(t, 0.9, fields["confidence"])
}

func TestParseVisionResponse_FencedJSON(t *testing.T) {
	text := "Sure, here's the extraction:\n```json\n{\"venue\": \"The Forum\"}\n```\n"

	fields, warnings := ParseVisionResponse(text)

	assert.Empty(t, warnings)
	assert.Equal(t, "The Forum", fields["venue"])
}

func TestParseVisionResponse_NestedBraces(t *testing.T) {
	fields, _ := ParseVisionResponse(`{"show": {"date": "2024-05-01"}, "ok": true}`)

	assert.Equal(t, true, fields["ok"])
	nested, ok := fields["show"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, "2024-05-01", nested["date"])
}

func TestParseVisionResponse_Unparseable(t *testing.T) {
	fields, warnings := ParseVisionResponse("no json here at all")

	assert.Empty(t, fields)
	assert.NotEmpty(t, warnings)
}

func TestParseVisionResponse_UnbalancedBraces(t *testing.T) {
	fields, warnings := ParseVisionResponse(`{"artist": "Boris"`)

	assert.Empty(t, fields)
	assert.NotEmpty(t, warnings)
}

func TestNormalizeString(t *testing.T) {
	s, ok := NormalizeString("  Pixies  ")
	assert.True(t, ok)
	assert.Equal(t, "Pixies", s)

	_, ok = NormalizeString("   ")
	assert.False(t, ok)

	_, ok = NormalizeString(42)
	assert.False(t, ok)
}

func TestNormalizeStringList(t *testing.T) {
	list := NormalizeStringList([]interface{}{"Pixies", "  ", "Wolf Alice", 7})
	assert.Equal(t, []string{"Pixies", "Wolf Alice"}, list)

	single := NormalizeStringList("Pixies")
	assert.Equal(t, []string{"Pixies"}, single)

	assert.Nil(t, NormalizeStringList(42))
}

func TestNormalizeConfidence(t *testing.T) {
	assert.Equal(t, 0.85, NormalizeConfidence(0.85))
	assert.Equal(t, 0.85, NormalizeConfidence(85))
	assert.Equal(t, 1.0, NormalizeConfidence(150))
	assert.Equal(t, 0.0, NormalizeConfidence(-5))
	assert.Equal(t, 0.0, NormalizeConfidence("not a number"))
	assert.Equal(t, 0.5, NormalizeConfidence("0.5"))
}

func TestLogger_NilSafe(t *testing.T) {
	l := Logger(nil)
	assert.NotNil(t, l)
	// Should not panic when used.
	l.Sugar().Info("nop")
}

func TestEnvelope_RecoversPanic(t *testing.T) {
	start := time.Now()
	result := Envelope(models.PhaseArtist, "poster:1", "img.jpg", start, func() models.PhaseResult {
		panic(errors.New("boom"))
	})

	assert.Equal(t, models.StatusFailed, result.Status)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Equal(t, []string{"boom"}, result.Errors)
}

func TestEnvelope_PassesThroughNormalResult(t *testing.T) {
	start := time.Now()
	want := models.PhaseResult{Phase: models.PhaseArtist, Status: models.StatusCompleted, Confidence: 0.5}

	got := Envelope(models.PhaseArtist, "poster:1", "img.jpg", start, func() models.PhaseResult {
		return want
	})

	assert.Equal(t, want, got)
}

func TestFailed(t *testing.T) {
	start := time.Now()
	result := Failed(models.PhaseVenue, "poster:1", "img.jpg", start, "timeout")

	assert.Equal(t, models.StatusFailed, result.Status)
	assert.Equal(t, "poster:1", result.PosterID)
	assert.Equal(t, "img.jpg", result.ImagePath)
	assert.Equal(t, models.PhaseVenue, result.Phase)
	assert.Equal(t, []string{"timeout"}, result.Errors)
}
