// Package services defines the small, single-responsibility collaborator
// interfaces each phase depends on, and the implementations backing them
// (vision provider, graph store, knowledge-base search, authoritative
// validators, session cache). Every interface here is optional from a
// phase's perspective except the vision provider — callers check for
// presence (nil) and degrade gracefully.
package services

import "context"

// VisionResult is what the vision provider returns for one prompt call:
// the model's raw textual response (parsed as JSON-in-text by the phase)
// and a human-readable model identifier.
type VisionResult struct {
	ExtractedText string
	Model         string
}

// VisionInfo describes the currently active vision backend.
type VisionInfo struct {
	Name       string
	Provider   string
	Parameters map[string]interface{}
}

// VisionProvider is the one mandatory external collaborator: every phase
// calls it at most once (plus Type's optional refinement call).
type VisionProvider interface {
	Extract(ctx context.Context, imagePath, prompt string) (VisionResult, error)
	Info() VisionInfo
	HealthCheck(ctx context.Context) bool
}

// Entity is a generic graph vertex payload as seen by the graph store: an
// id, its kind, and the kind-specific fields flattened into a map so the
// store doesn't need a variant type for every entity kind it persists.
type Entity struct {
	ID     string
	Kind   string
	Fields map[string]interface{}
}

// EntityService is the optional graph vertex layer consumed by Venue
// (deduplication) and Assembly (persistence). GetEntity looks up by
// deterministic id; FindByName looks up by name.
type EntityService interface {
	GetEntity(ctx context.Context, id string) (Entity, bool, error)
	// CreateEntities upserts each entity by id (create-if-absent) and
	// reports, per id, whether it was newly created.
	CreateEntities(ctx context.Context, entities []Entity) (isNew map[string]bool, err error)
	// FindByName looks up candidate vertices of a kind whose normalized
	// name matches query, for Venue's dedup step.
	FindByName(ctx context.Context, kind, query string) ([]Entity, error)
}

// RelationService is the optional edge layer consumed by Assembly.
type RelationService interface {
	CreateRelations(ctx context.Context, relations []Relation) error
}

// Relation mirrors models.Relation; kept as a distinct type here so the
// services package doesn't require every caller to depend on the domain
// model for a five-field edge.
type Relation struct {
	From         string
	To           string
	RelationType string
	Confidence   float64
	Metadata     map[string]interface{}
}

// ScoredEntity is one knowledge-base search hit.
type ScoredEntity struct {
	ID           string
	Score        float64
	Observations []string
	PosterType   string
}

// SearchOptions narrows a knowledge-base search.
type SearchOptions struct {
	EntityTypes []string
	Limit       int
}

// KnowledgeBaseSearch is the optional local-graph search layer consumed by
// Type (validation bonus) and Event (artist/venue plausibility checks).
type KnowledgeBaseSearch interface {
	Search(ctx context.Context, text string, opts SearchOptions) ([]ScoredEntity, error)
}

// NameMatch is the common shape every authoritative validator returns for
// a name lookup: an external id and a canonical name.
type NameMatch struct {
	ID   string
	Name string
}

// ArtistAuthority validates/canonicalizes performer names (MusicBrainz).
type ArtistAuthority interface {
	SearchArtist(ctx context.Context, name string) ([]NameMatch, error)
}

// ReleaseCandidate is one hit from ReleaseAuthority.SearchRelease.
type ReleaseCandidate struct {
	ID        string
	Title     string
	Date      string
	Country   string
	LabelInfo []string
}

// ReleaseAuthority resolves album releases by title+artist (MusicBrainz).
type ReleaseAuthority interface {
	SearchRelease(ctx context.Context, title, artist string) ([]ReleaseCandidate, error)
}

// MovieCandidate is one hit from FilmAuthority.SearchMovie.
type MovieCandidate struct {
	ID          string
	Title       string
	ReleaseDate string
	VoteAverage float64
}

// CreditedPerson is one entry in a film's cast or crew list.
type CreditedPerson struct {
	ID   string
	Name string
	Role string // character (cast) or job (crew)
}

// MovieCredits is a film's cast and crew (TMDB's shape).
type MovieCredits struct {
	Cast []CreditedPerson
	Crew []CreditedPerson
}

// FilmAuthority resolves film metadata and credits (TMDB).
type FilmAuthority interface {
	SearchMovie(ctx context.Context, title string, year int) ([]MovieCandidate, error)
	GetMovie(ctx context.Context, id string) (MovieCandidate, error)
	GetMovieCredits(ctx context.Context, id string) (MovieCredits, error)
}

// SecondaryReleaseCandidate is one hit from SecondaryMusicAuthority.
type SecondaryReleaseCandidate struct {
	ID    string
	Title string
	Year  int
	Label []string
	Genre []string
	Style []string
}

// SecondaryMusicAuthority is the fallback release catalog (Discogs),
// consulted only when the primary authority fills at most one field.
type SecondaryMusicAuthority interface {
	SearchRelease(ctx context.Context, query string) ([]SecondaryReleaseCandidate, error)
}
