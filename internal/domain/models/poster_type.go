// Package models holds the data types shared across every phase of the
// extraction pipeline: the poster type enumeration, phase results, the
// final PosterEntity record, and the related graph vertices/edges.
package models

import "strings"

// PosterType is the closed enumeration a poster is classified into by the
// Type phase and carried through Assembly as poster_type.
type PosterType string

const (
	PosterTypeConcert    PosterType = "concert"
	PosterTypeFestival   PosterType = "festival"
	PosterTypeComedy     PosterType = "comedy"
	PosterTypeTheater    PosterType = "theater"
	PosterTypeFilm       PosterType = "film"
	PosterTypeAlbum      PosterType = "album"
	PosterTypePromo      PosterType = "promo"
	PosterTypeExhibition PosterType = "exhibition"
	PosterTypeHybrid     PosterType = "hybrid"
	PosterTypeUnknown    PosterType = "unknown"
)

// posterTypes is the closed set, in a stable order used wherever the
// enumeration needs to be enumerated (validation, tests, docs).
var posterTypes = []PosterType{
	PosterTypeConcert, PosterTypeFestival, PosterTypeComedy, PosterTypeTheater,
	PosterTypeFilm, PosterTypeAlbum, PosterTypePromo, PosterTypeExhibition,
	PosterTypeHybrid, PosterTypeUnknown,
}

// IsValid reports whether t is a member of the closed PosterType enumeration.
func (t PosterType) IsValid() bool {
	for _, candidate := range posterTypes {
		if t == candidate {
			return true
		}
	}
	return false
}

// posterTypeAliases maps free-text variations the vision model commonly
// returns onto the closed enumeration. Matching is case-insensitive.
var posterTypeAliases = map[string]PosterType{
	"show":           PosterTypeConcert,
	"gig":            PosterTypeConcert,
	"live show":      PosterTypeConcert,
	"movie":          PosterTypeFilm,
	"cinema":         PosterTypeFilm,
	"motion picture": PosterTypeFilm,
	"record":         PosterTypeAlbum,
	"release":        PosterTypeAlbum,
	"stand-up":       PosterTypeComedy,
	"standup":        PosterTypeComedy,
	"play":           PosterTypeTheater,
	"musical":        PosterTypeTheater,
	"art show":       PosterTypeExhibition,
	"gallery":        PosterTypeExhibition,
	"advertisement":  PosterTypePromo,
	"flyer":          PosterTypePromo,
}

// NormalizePosterType maps raw model output onto the closed enumeration.
// Unrecognized input normalizes to PosterTypeUnknown rather than failing,
// since Type-phase confidence (not this function) is what signals doubt.
func NormalizePosterType(raw string) PosterType {
	candidate := PosterType(strings.ToLower(strings.TrimSpace(raw)))
	if candidate.IsValid() {
		return candidate
	}
	if mapped, ok := posterTypeAliases[string(candidate)]; ok {
		return mapped
	}
	return PosterTypeUnknown
}

// RequiresHeadliner reports whether Artist phase should flag a missing
// headliner as needs_review for this poster type.
func (t PosterType) RequiresHeadliner() bool {
	switch t {
	case PosterTypeConcert, PosterTypeFestival, PosterTypeComedy, PosterTypeTheater, PosterTypeAlbum, PosterTypeHybrid:
		return true
	default:
		return false
	}
}

// RequiresVenue reports whether Venue phase should flag a missing venue as
// needs_review for this poster type.
func (t PosterType) RequiresVenue() bool {
	switch t {
	case PosterTypeConcert, PosterTypeFestival, PosterTypeComedy, PosterTypeTheater, PosterTypeExhibition, PosterTypeHybrid:
		return true
	default:
		return false
	}
}

// IsEventLike reports whether this type drives the full Venue/Event
// assembly path (vs. the album or basic-edges-only paths).
func (t PosterType) IsEventLike() bool {
	switch t {
	case PosterTypeConcert, PosterTypeFestival, PosterTypeComedy, PosterTypeTheater:
		return true
	default:
		return false
	}
}
