// Package context provides the Phase Context & Manager: the per-image
// session that phases read and write as the pipeline runs. The manager
// itself holds no module-level mutable state — every session lives in its
// own *models.ProcessingContext, created fresh by the orchestrator and
// removed on every exit path.
package context

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/posterforge/extractioncore/internal/domain/models"
)

// Recovery is the optional persistence hook a Manager uses so an in-flight
// session survives a process restart; services.SessionCache implements it.
// A nil Recovery leaves every ProcessingContext purely in-memory, the
// default mode.
type Recovery interface {
	Save(ctx context.Context, pctx *models.ProcessingContext) error
	Remove(ctx context.Context, sessionID string) error
}

// Manager owns every in-flight ProcessingContext, keyed by session id.
// Safe for concurrent use by multiple orchestrator instances, each of
// which owns a single session at a time.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*models.ProcessingContext
	recovery Recovery
	logger   *zap.Logger
}

// NewManager returns an empty Manager. recovery and logger are both
// optional; a nil recovery disables the restart-recovery snapshot and a
// nil logger discards recovery-failure warnings.
func NewManager(recovery Recovery, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{sessions: make(map[string]*models.ProcessingContext), recovery: recovery, logger: logger}
}

// Create starts a new session for one image, generating its session id.
func (m *Manager) Create(imagePath, posterID string) *models.ProcessingContext {
	sessionID := uuid.NewString()
	ctx := models.NewProcessingContext(sessionID, imagePath, posterID)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = ctx
	return ctx
}

// SetResult stores a phase result against its session and updates the
// context's hints so downstream phases can read them without re-parsing
// the payload: the primary poster type from any Type result carrying a
// payload (whatever its status), and the headliner and venue from Artist
// and Venue results when those are non-empty.
//
// Writing a result for an unknown session id is a programmer error: the
// orchestrator must only ever call this with a session it created and has
// not yet removed. It panics rather than silently dropping the result,
// matching the package's fail-fast contract.
func (m *Manager) SetResult(ctx context.Context, sessionID string, result models.PhaseResult) {
	m.mu.Lock()
	pctx, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if !ok {
		panic(fmt.Sprintf("context: SetResult called for unknown session %q", sessionID))
	}

	pctx.SetResult(result)
	if result.Phase == models.PhaseType && result.Type != nil {
		pctx.Hints.PrimaryPosterType = result.Type.PosterType
	}
	if result.Phase == models.PhaseArtist && result.Artist != nil && !result.Artist.Headliner.IsEmpty() {
		pctx.Hints.AcceptedArtist = result.Artist.Headliner
	}
	if result.Phase == models.PhaseVenue && result.Venue != nil && !result.Venue.Venue.IsEmpty() {
		pctx.Hints.AcceptedVenue = result.Venue.Venue
	}

	if m.recovery != nil {
		if err := m.recovery.Save(ctx, pctx); err != nil {
			m.logger.Warn("context: recovery snapshot failed", zap.String("sessionId", sessionID), zap.Error(err))
		}
	}
}

// Get returns the context for a session, and whether it is still live.
func (m *Manager) Get(sessionID string) (*models.ProcessingContext, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pctx, ok := m.sessions[sessionID]
	return pctx, ok
}

// Remove atomically deletes a session. The orchestrator calls this on
// every exit path — success, failure, or cancellation — so no context
// outlives the image it was created for.
func (m *Manager) Remove(ctx context.Context, sessionID string) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if m.recovery != nil {
		if err := m.recovery.Remove(ctx, sessionID); err != nil {
			m.logger.Warn("context: recovery cleanup failed", zap.String("sessionId", sessionID), zap.Error(err))
		}
	}
}
