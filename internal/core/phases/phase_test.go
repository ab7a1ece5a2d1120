package phases

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/posterforge/extractioncore/internal/domain/models"
)

func TestHardDependency(t *testing.T) {
	assert.True(t, HardDependency(models.PhaseType))
	assert.False(t, HardDependency(models.PhaseArtist))
	assert.False(t, HardDependency(models.PhaseVenue))
	assert.False(t, HardDependency(models.PhaseEvent))
	assert.False(t, HardDependency(models.PhaseAssembly))
	assert.False(t, HardDependency(models.PhaseEnrichment))
}
