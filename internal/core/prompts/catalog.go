// Package prompts holds the immutable, bit-stable prompt catalog the
// vision provider is called with. Templates never mutate at runtime;
// refinement uses string substitution into a fixed template, never
// construction from scratch, so the same (phase, posterType) pair always
// produces the exact same prompt text for auditing.
package prompts

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/posterforge/extractioncore/internal/domain/models"
)

const typePrompt = `Look at this poster image and classify it into exactly one of: concert, festival, comedy, theater, film, album, promo, exhibition, hybrid, unknown.
Return JSON with: poster_type, confidence (0-100), extracted_text, has_artist_photo, has_album_art, has_logo, dominant_colors (array), style (one of photographic, illustrated, typographic, mixed, other).`

const refinementTemplate = `Your previous classification of this poster was "{{previous_type}}" at {{previous_confidence}}% confidence, based on: {{previous_evidence}}.
Look again and return the same JSON shape as before, choosing the poster type you are now most confident in.`

var artistPrompts = map[models.PosterType]string{
	models.PosterTypeFilm: `Identify the film's director and starring cast from this poster. Return JSON with director, cast (ordered array of names as billed).`,
	models.PosterTypeAlbum: `Identify the recording artist and album from this poster. Return JSON with headliner, album_title, record_label, featured_artists (array).`,
	models.PosterTypeHybrid: `Identify the recording artist and album from this poster, as well as any live event being promoted. Return JSON with headliner, album_title, record_label, featured_artists (array).`,
	models.PosterTypeExhibition: `Identify the exhibiting artist and curator (if any) from this poster. Return JSON with headliner (the exhibiting artist), curator.`,
}

const defaultArtistPrompt = `Identify every performer on this poster as separate list entries. Return JSON with headliner, supporting_acts (array), tour_name, record_label.
Clearly distinguish the headliner from supporting acts.`

var venuePrompts = map[models.PosterType]string{
	models.PosterTypeAlbum: `Identify any venue mentioned on this poster (optional — many album posters have none). Return JSON with venue, city, state, country, streaming_only (boolean, true if this is a streaming-only release).`,
}

const defaultVenuePrompt = `Identify the venue where this event takes place. Return JSON with venue, city, state, country, address, district, theater_name.`

var eventDateFieldByType = map[models.PosterType]string{
	models.PosterTypeAlbum:      "release_date",
	models.PosterTypeFilm:       "release_date",
	models.PosterTypeTheater:    "opening_date",
	models.PosterTypeExhibition: "opening_date",
	models.PosterTypeFestival:   "start_date",
}

// EventDateField returns the name of the raw date field the Event phase
// should read for this poster type.
func EventDateField(t models.PosterType) string {
	if field, ok := eventDateFieldByType[t]; ok {
		return field
	}
	return "event_date"
}

var eventPrompts = map[models.PosterType]string{}

// GetPhasePrompt returns the exact prompt template for a phase and poster
// type. It is a pure function
// of its two arguments.
func GetPhasePrompt(phase models.PhaseName, posterType models.PosterType) string {
	switch phase {
	case models.PhaseType:
		return typePrompt
	case models.PhaseArtist:
		if tmpl, ok := artistPrompts[posterType]; ok {
			return tmpl
		}
		return defaultArtistPrompt
	case models.PhaseVenue:
		if tmpl, ok := venuePrompts[posterType]; ok {
			return tmpl
		}
		return defaultVenuePrompt
	case models.PhaseEvent:
		if tmpl, ok := eventPrompts[posterType]; ok {
			return tmpl
		}
		field := EventDateField(posterType)
		return fmt.Sprintf(`Identify every show date and the surrounding details for this poster. The primary date field is "%s"; also accept a top-level "year".
Return JSON with %s, year, shows (array of {event_date, day_of_week, door_time, show_time, ticket_price, age_restriction}), promoter.`, field, field)
	default:
		return ""
	}
}

// RefinementPrompt fills the refinement template with the prior
// classification's type, confidence (as a whole-number percent), and
// comma-joined evidence.
func RefinementPrompt(previousType models.PosterType, previousConfidence float64, evidence []string) string {
	percent := strconv.Itoa(int(previousConfidence*100 + 0.5))
	replacer := strings.NewReplacer(
		"{{previous_type}}", string(previousType),
		"{{previous_confidence}}", percent,
		"{{previous_evidence}}", strings.Join(evidence, ", "),
	)
	return replacer.Replace(refinementTemplate)
}
