package phases

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleMatchConfidence_Exact(t *testing.T) {
	assert.Equal(t, 1.0, TitleMatchConfidence("The Forum Tour", "the forum tour"))
}

func TestTitleMatchConfidence_Substring(t *testing.T) {
	assert.Equal(t, 0.9, TitleMatchConfidence("World Tour 2024", "World Tour"))
}

func TestTitleMatchConfidence_Fuzzy(t *testing.T) {
	score := TitleMatchConfidence("Midnight Sessions", "Midnite Sessions")
	assert.Greater(t, score, 0.7)
	assert.Less(t, score, 1.0)
}

func TestTitleMatchConfidence_EmptyInput(t *testing.T) {
	assert.Equal(t, 0.0, TitleMatchConfidence("", "anything"))
	assert.Equal(t, 0.0, TitleMatchConfidence("anything", ""))
}

func TestTitleMatchConfidence_NoOverlap(t *testing.T) {
	score := TitleMatchConfidence("Pixies", "Unrelated Completely Different Words")
	assert.Less(t, score, 0.5)
}
