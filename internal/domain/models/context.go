package models

import "encoding/json"

// ProcessingContext is the per-image session the orchestrator creates
// before Phase 1 and removes on every exit path. It is the only shared
// mutable state within one image's processing and is owned by a single
// task — no phase mutates another phase's result.
type ProcessingContext struct {
	SessionID  string
	ImagePath  string
	PosterID   string

	// phaseOrder preserves insertion order since phases read prior
	// results in a fixed sequence; Results keyed by PhaseName.
	phaseOrder []PhaseName
	Results    map[PhaseName]PhaseResult

	// rawText accumulates each phase's raw vision response text, in the
	// order phases ran, so later phases can search/scan everything
	// extracted so far without re-parsing earlier payloads.
	rawText []string

	// Hints are scratch values later phases read without re-deriving them.
	Hints ContextHints
}

// ContextHints are the cross-phase scratch values later phases need
// directly: the primary poster type and the artist/venue an upstream
// phase has already accepted, so Event's plausibility checks and Assembly
// don't need to re-parse an earlier phase's payload.
type ContextHints struct {
	PrimaryPosterType PosterType
	AcceptedArtist    Match
	AcceptedVenue     Match
}

// processingContextSnapshot mirrors ProcessingContext with phaseOrder and
// rawText exported, so SessionCache's round trip through JSON preserves
// them — the unexported fields would otherwise be silently dropped.
type processingContextSnapshot struct {
	SessionID  string
	ImagePath  string
	PosterID   string
	PhaseOrder []PhaseName
	Results    map[PhaseName]PhaseResult
	RawText    []string
	Hints      ContextHints
}

// MarshalJSON snapshots every field, including the unexported ordering and
// raw-text state, for SessionCache persistence.
func (c *ProcessingContext) MarshalJSON() ([]byte, error) {
	return json.Marshal(processingContextSnapshot{
		SessionID:  c.SessionID,
		ImagePath:  c.ImagePath,
		PosterID:   c.PosterID,
		PhaseOrder: c.phaseOrder,
		Results:    c.Results,
		RawText:    c.rawText,
		Hints:      c.Hints,
	})
}

// UnmarshalJSON restores a context saved by MarshalJSON, including the
// unexported ordering and raw-text state.
func (c *ProcessingContext) UnmarshalJSON(data []byte) error {
	var snap processingContextSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	c.SessionID = snap.SessionID
	c.ImagePath = snap.ImagePath
	c.PosterID = snap.PosterID
	c.phaseOrder = snap.PhaseOrder
	c.Results = snap.Results
	c.rawText = snap.RawText
	c.Hints = snap.Hints
	return nil
}

// NewProcessingContext creates an empty context for one image session.
func NewProcessingContext(sessionID, imagePath, posterID string) *ProcessingContext {
	return &ProcessingContext{
		SessionID: sessionID,
		ImagePath: imagePath,
		PosterID:  posterID,
		Results:   make(map[PhaseName]PhaseResult),
	}
}

// SetResult stores a phase's result, recording insertion order the first
// time a phase name is written.
func (c *ProcessingContext) SetResult(result PhaseResult) {
	if _, exists := c.Results[result.Phase]; !exists {
		c.phaseOrder = append(c.phaseOrder, result.Phase)
	}
	c.Results[result.Phase] = result
}

// Result returns the stored result for a phase, and whether one exists.
func (c *ProcessingContext) Result(phase PhaseName) (PhaseResult, bool) {
	result, ok := c.Results[phase]
	return result, ok
}

// OrderedResults returns every stored result in the order phases ran.
func (c *ProcessingContext) OrderedResults() []PhaseResult {
	ordered := make([]PhaseResult, 0, len(c.phaseOrder))
	for _, phase := range c.phaseOrder {
		ordered = append(ordered, c.Results[phase])
	}
	return ordered
}

// OverallConfidence is the arithmetic mean of per-phase confidences across
// the phases that actually ran.
func (c *ProcessingContext) OverallConfidence() float64 {
	if len(c.phaseOrder) == 0 {
		return 0
	}
	var sum float64
	for _, phase := range c.phaseOrder {
		sum += c.Results[phase].Confidence
	}
	return sum / float64(len(c.phaseOrder))
}

// FieldsNeedingReview collects the field each needs_review phase owns.
func (c *ProcessingContext) FieldsNeedingReview() []string {
	var fields []string
	for _, phase := range c.phaseOrder {
		if field := c.Results[phase].ReviewField(); field != "" {
			fields = append(fields, field)
		}
	}
	return fields
}

// AppendExtractedText records one phase's raw vision response text in the
// shared pool used for keyword scanning and knowledge-base search queries.
func (c *ProcessingContext) AppendExtractedText(text string) {
	if text == "" {
		return
	}
	c.rawText = append(c.rawText, text)
}

// ExtractedText concatenates every phase's raw extracted text recorded so
// far, used by Type's pattern-confidence scan and knowledge-base search.
func (c *ProcessingContext) ExtractedText() string {
	joined := ""
	for i, t := range c.rawText {
		if i > 0 {
			joined += " "
		}
		joined += t
	}
	return joined
}
