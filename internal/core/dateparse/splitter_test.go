package dateparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit_NoSeparatorReturnsSingleSegment(t *testing.T) {
	got := Split("Fri 15 March 2024")
	require := assert.New(t)
	require.Len(got, 1)
	require.Equal("15 March 2024", got[0])
}

func TestSplit_AmpersandAndAndAreEquivalent(t *testing.T) {
	ampersand := Split("17th & 18th September, 2005")
	and := Split("17th and 18th September, 2005")

	assert.Len(t, ampersand, 2)
	assert.Len(t, and, 2)
	for _, seg := range ampersand {
		assert.Contains(t, seg, "September")
		assert.Contains(t, seg, "2005")
	}
	for _, seg := range and {
		assert.Contains(t, seg, "September")
		assert.Contains(t, seg, "2005")
	}
}

func TestSplit_DayRangeExpandsInclusively(t *testing.T) {
	got := Split("17th – 18th September 2005")
	assert.Equal(t, []string{"17 September 2005", "18 September 2005"}, got)
}

func TestSplit_RangeOverCapFallsBackUnexpanded(t *testing.T) {
	got := Split("1st - 20th September 2005")
	assert.Len(t, got, 1)
}

func TestSplit_SlashSeparatesWordLikeSegmentsNotNumericDate(t *testing.T) {
	got := Split("Fri 27 April / Sat 28 April")
	assert.Equal(t, []string{"27 April", "28 April"}, got)
}

func TestSplit_SlashDoesNotSplitNumericDate(t *testing.T) {
	got := Split("27/04/2005")
	assert.Equal(t, []string{"27/04/2005"}, got)
}

func TestSplitSegments_CapturesDayOfWeek(t *testing.T) {
	segs := SplitSegments("Fri 27 & Sat 28 April 2005")
	if assert.Len(t, segs, 2) {
		assert.Equal(t, "Fri", segs[0].DayOfWeek)
		assert.Equal(t, "Sat", segs[1].DayOfWeek)
	}
}
