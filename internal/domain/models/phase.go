package models

// PhaseName identifies one stage of the pipeline, used both as a context
// map key and as the PhaseResult.Phase discriminator.
type PhaseName string

const (
	PhaseType       PhaseName = "type"
	PhaseArtist     PhaseName = "artist"
	PhaseVenue      PhaseName = "venue"
	PhaseEvent      PhaseName = "event"
	PhaseAssembly   PhaseName = "assembly"
	PhaseEnrichment PhaseName = "enrichment"
)

// PhaseStatus is the outcome of running one phase.
type PhaseStatus string

const (
	StatusCompleted   PhaseStatus = "completed"
	StatusNeedsReview PhaseStatus = "needs_review"
	StatusFailed      PhaseStatus = "failed"
	StatusSkipped     PhaseStatus = "skipped"
)

// TypeInference is one candidate poster type with its own confidence and
// evidence, carried into the HAS_TYPE edges at Assembly.
type TypeInference struct {
	TypeKey    PosterType `bson:"typeKey" json:"typeKey"`
	Confidence float64    `bson:"confidence" json:"confidence"`
	Source     string     `bson:"source" json:"source"`
	Evidence   []string   `bson:"evidence,omitempty" json:"evidence,omitempty"`
	IsPrimary  bool       `bson:"isPrimary" json:"isPrimary"`
}

// VisualElements are the visual cues Type phase lifts out of the parsed
// vision response: presence flags, a dominant color list, and a style tag.
type VisualElements struct {
	HasArtistPhoto bool     `bson:"hasArtistPhoto" json:"hasArtistPhoto"`
	HasAlbumArt    bool     `bson:"hasAlbumArt" json:"hasAlbumArt"`
	HasLogo        bool     `bson:"hasLogo" json:"hasLogo"`
	DominantColors []string `bson:"dominantColors,omitempty" json:"dominantColors,omitempty"`
	Style          string   `bson:"style,omitempty" json:"style,omitempty"` // photographic|illustrated|typographic|mixed|other
}

// TypePayload is the Type phase's contribution to a PhaseResult.
type TypePayload struct {
	PosterType       PosterType       `bson:"posterType" json:"posterType"`
	ModelConfidence  float64          `bson:"modelConfidence" json:"modelConfidence"`
	PatternConfidence float64         `bson:"patternConfidence" json:"patternConfidence"`
	SecondaryTypes   []TypeInference  `bson:"secondaryTypes" json:"secondaryTypes"`
	Visual           VisualElements   `bson:"visual" json:"visual"`
	ReadyForPhase2   bool             `bson:"readyForPhase2" json:"readyForPhase2"`
	Refined          bool             `bson:"refined" json:"refined"`
}

// ArtistPayload is the Artist phase's contribution to a PhaseResult. Poster
// types project a different subset of these fields.
type ArtistPayload struct {
	Headliner       Match   `bson:"headliner" json:"headliner"`
	SupportingActs  []Match `bson:"supportingActs,omitempty" json:"supportingActs,omitempty"`
	TourName        string  `bson:"tourName,omitempty" json:"tourName,omitempty"`
	RecordLabel     string  `bson:"recordLabel,omitempty" json:"recordLabel,omitempty"`
	Director        Match   `bson:"director,omitempty" json:"director,omitempty"`
	Cast            []Match `bson:"cast,omitempty" json:"cast,omitempty"`
	AlbumTitle      string  `bson:"albumTitle,omitempty" json:"albumTitle,omitempty"`
	FeaturedArtists []Match `bson:"featuredArtists,omitempty" json:"featuredArtists,omitempty"`
	Curator         Match   `bson:"curator,omitempty" json:"curator,omitempty"`
}

// VenuePayload is the Venue phase's contribution to a PhaseResult.
type VenuePayload struct {
	Venue           Match  `bson:"venue" json:"venue"`
	City            string `bson:"city,omitempty" json:"city,omitempty"`
	State           string `bson:"state,omitempty" json:"state,omitempty"`
	Country         string `bson:"country,omitempty" json:"country,omitempty"`
	Address         string `bson:"address,omitempty" json:"address,omitempty"`
	District        string `bson:"district,omitempty" json:"district,omitempty"`
	TheaterName     string `bson:"theaterName,omitempty" json:"theaterName,omitempty"`
	StreamingOnly   bool   `bson:"streamingOnly,omitempty" json:"streamingOnly,omitempty"`
	ExistingVenueID string `bson:"existingVenueId,omitempty" json:"existingVenueId,omitempty"`
}

// EventPayload is the Event phase's contribution to a PhaseResult.
type EventPayload struct {
	Shows            []ShowInfo `bson:"shows" json:"shows"`
	Promoter         string     `bson:"promoter,omitempty" json:"promoter,omitempty"`
	Year             int        `bson:"year,omitempty" json:"year,omitempty"`
	ArtistValidated  bool       `bson:"artistValidated,omitempty" json:"artistValidated,omitempty"`
	VenueValidated   bool       `bson:"venueValidated,omitempty" json:"venueValidated,omitempty"`
	ReadyForAssembly bool       `bson:"readyForAssembly" json:"readyForAssembly"`
}

// AssemblyPayload is Assembly's contribution to a PhaseResult: the written
// Poster plus a record of every vertex touched, keyed by deterministic id.
type AssemblyPayload struct {
	Poster      *PosterEntity   `bson:"poster" json:"poster"`
	Relations   []Relation      `bson:"relations" json:"relations"`
	IsNewByID   map[string]bool `bson:"isNewById" json:"isNewById"`
}

// EnrichmentPayload is Enrichment's contribution to a PhaseResult: which
// fields were filled and which external catalogs supplied them.
type EnrichmentPayload struct {
	EnrichedFields []string `bson:"enrichedFields" json:"enrichedFields"`
	Sources        []string `bson:"sources" json:"sources"`
}

// PhaseResult is the tagged-variant output of one phase. Exactly one of the
// payload fields is populated, selected by Phase; the others stay nil/zero.
// This mirrors the free-form JSON-in-text the vision model returns — each
// phase normalizes it into one of these typed shapes and never propagates
// a raw, un-normalized response past its own boundary.
type PhaseResult struct {
	PosterID         string      `bson:"posterId" json:"posterId"`
	ImagePath        string      `bson:"imagePath" json:"imagePath"`
	Phase            PhaseName   `bson:"phase" json:"phase"`
	Status           PhaseStatus `bson:"status" json:"status"`
	Confidence       float64     `bson:"confidence" json:"confidence"`
	ProcessingTimeMs int64       `bson:"processingTimeMs" json:"processingTimeMs"`
	Warnings         []string    `bson:"warnings,omitempty" json:"warnings,omitempty"`
	Errors           []string    `bson:"errors,omitempty" json:"errors,omitempty"`

	Type       *TypePayload       `bson:"type,omitempty" json:"type,omitempty"`
	Artist     *ArtistPayload     `bson:"artist,omitempty" json:"artist,omitempty"`
	Venue      *VenuePayload      `bson:"venue,omitempty" json:"venue,omitempty"`
	Event      *EventPayload      `bson:"event,omitempty" json:"event,omitempty"`
	Assembly   *AssemblyPayload   `bson:"assembly,omitempty" json:"assembly,omitempty"`
	Enrichment *EnrichmentPayload `bson:"enrichment,omitempty" json:"enrichment,omitempty"`
}

// Succeeded reports whether the phase ran to completion (with or without a
// review flag) as opposed to failing or being skipped.
func (r PhaseResult) Succeeded() bool {
	return r.Status == StatusCompleted || r.Status == StatusNeedsReview
}

// ReviewField names the PosterEntity field a needs_review phase owns, for
// the fieldsNeedingReview contribution rule. Empty when the phase doesn't
// contribute a named field (Assembly, Enrichment).
func (r PhaseResult) ReviewField() string {
	if r.Status != StatusNeedsReview {
		return ""
	}
	switch r.Phase {
	case PhaseType:
		return "poster_type"
	case PhaseArtist:
		return "headliner"
	case PhaseVenue:
		return "venue"
	case PhaseEvent:
		return "event_date"
	default:
		return ""
	}
}
