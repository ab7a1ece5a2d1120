package models

import "time"

// VertexKind discriminates the entity types written to the graph store.
type VertexKind string

const (
	VertexPoster       VertexKind = "Poster"
	VertexArtist       VertexKind = "Artist"
	VertexVenue        VertexKind = "Venue"
	VertexEvent        VertexKind = "Event"
	VertexAlbum        VertexKind = "Album"
	VertexOrganization VertexKind = "Organization"
	VertexPosterType   VertexKind = "PosterType"
)

// PosterMetadata carries provenance and processing bookkeeping that isn't
// part of the extracted content itself.
type PosterMetadata struct {
	SourceHash        string    `bson:"sourceHash" json:"sourceHash"`
	VisionModel       string    `bson:"visionModel" json:"visionModel"`
	ProcessingTimeMs  int64     `bson:"processingTimeMs" json:"processingTimeMs"`
	OverallConfidence float64   `bson:"overallConfidence" json:"overallConfidence"`
	CreatedAt         time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time `bson:"updatedAt" json:"updatedAt"`
}

// PosterEntity is the final record written to the graph for one processed
// image: the Poster vertex itself, carrying everything Assembly could
// reconstruct from the upstream phases.
type PosterEntity struct {
	ID            string          `bson:"_id" json:"id"`
	EntityType    VertexKind      `bson:"entityType" json:"entityType"`
	PosterType    PosterType      `bson:"posterType" json:"posterType"`
	InferredTypes []TypeInference `bson:"inferredTypes" json:"inferredTypes"`

	Title          string   `bson:"title,omitempty" json:"title,omitempty"`
	Headliner      string   `bson:"headliner,omitempty" json:"headliner,omitempty"`
	SupportingActs []string `bson:"supportingActs,omitempty" json:"supportingActs,omitempty"`

	VenueName string `bson:"venueName,omitempty" json:"venueName,omitempty"`
	City      string `bson:"city,omitempty" json:"city,omitempty"`
	State     string `bson:"state,omitempty" json:"state,omitempty"`
	Country   string `bson:"country,omitempty" json:"country,omitempty"`

	FirstEventDate string `bson:"firstEventDate,omitempty" json:"firstEventDate,omitempty"`
	Year           int    `bson:"year,omitempty" json:"year,omitempty"`
	Decade         int    `bson:"decade,omitempty" json:"decade,omitempty"`
	DoorTime       string `bson:"doorTime,omitempty" json:"doorTime,omitempty"`
	ShowTime       string `bson:"showTime,omitempty" json:"showTime,omitempty"`
	TicketPrice    string `bson:"ticketPrice,omitempty" json:"ticketPrice,omitempty"`
	AgeRestriction string `bson:"ageRestriction,omitempty" json:"ageRestriction,omitempty"`
	Promoter       string `bson:"promoter,omitempty" json:"promoter,omitempty"`

	TourName    string `bson:"tourName,omitempty" json:"tourName,omitempty"`
	RecordLabel string `bson:"recordLabel,omitempty" json:"recordLabel,omitempty"`

	ExtractedText string         `bson:"extractedText,omitempty" json:"extractedText,omitempty"`
	Visual        VisualElements `bson:"visual" json:"visual"`
	Observations  []string       `bson:"observations,omitempty" json:"observations,omitempty"`

	Metadata PosterMetadata `bson:"metadata" json:"metadata"`
}

// PrimaryType returns the TypeInference entry marked is_primary, and true
// when found. Assembly guarantees exactly one such entry exists.
func (p *PosterEntity) PrimaryType() (TypeInference, bool) {
	for _, t := range p.InferredTypes {
		if t.IsPrimary {
			return t, true
		}
	}
	return TypeInference{}, false
}
