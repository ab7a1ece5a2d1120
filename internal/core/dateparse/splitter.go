// Package dateparse turns the free-form date text a vision model lifts off
// a poster into ordered, individually parseable show date strings, then
// parses each into a calendar date when possible. Splitting and parsing
// are pure functions over strings; neither depends on the rest of the
// pipeline, which is what makes them safely shareable across concurrent
// orchestrator instances.
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
)

const maxRangeDays = 14

var (
	yearTrailingRe = regexp.MustCompile(`,?\s*((?:19|20)\d{2})\s*$`)

	// dayRangeRe matches a bare-day range with an optional weekday word
	// ahead of each endpoint: "17th - 18th", "Fri 27 - Sat 28", "27-28".
	dayRangeRe = regexp.MustCompile(`(?i)^(?:[a-z]+\.?,?\s+)?(\d{1,2})(?:st|nd|rd|th)?\s*(?:-|–|—|to)\s*(?:[a-z]+\.?,?\s+)?(\d{1,2})(?:st|nd|rd|th)?$`)

	primarySeparatorRe = regexp.MustCompile(`(?i)\s*(?:&|,|\band\b)\s*`)
	slashSeparatorRe   = regexp.MustCompile(`\s*/\s*`)
)

// Segment is one per-show date string recovered by Split, along with the
// day-of-week prefix it carried (if any) before that prefix was peeled off
// for date parsing.
type Segment struct {
	Text      string
	DayOfWeek string
}

// Split parses a raw poster date string into one or more per-show date
// strings, each carrying whatever month/year information it needs for the
// parser in parser.go — distributing a shared trailing month/year to
// segments that don't have their own.
func Split(raw string) []string {
	segments := SplitSegments(raw)
	texts := make([]string, 0, len(segments))
	for _, s := range segments {
		texts = append(texts, s.Text)
	}
	return texts
}

// SplitSegments is Split but keeps each segment's day-of-week prefix,
// for callers (the Event phase) that populate ShowInfo.DayOfWeek.
func SplitSegments(raw string) []Segment {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	remainder, sharedYear := stripTrailingYear(trimmed)
	remainder, sharedMonth := stripTrailingMonth(remainder)
	remainder = strings.TrimSpace(remainder)

	if segments, ok := expandRange(remainder, sharedMonth); ok {
		return attachShared(segments, sharedMonth, sharedYear)
	}

	segments := splitOnSeparators(remainder)
	return attachShared(segments, sharedMonth, sharedYear)
}

// stripTrailingYear removes a four-digit year (19xx/20xx) from the end of
// s, returning the remainder and the year as a string, or "" if absent.
// A year glued directly onto a numeric date via "/" or "-" (27/04/2005)
// is left alone — that's a single self-contained date, not several dates
// sharing one trailing year annotation.
func stripTrailingYear(s string) (string, string) {
	loc := yearTrailingRe.FindStringSubmatchIndex(s)
	if loc == nil {
		return s, ""
	}
	if loc[0] > 0 {
		prev := s[loc[0]-1]
		if prev == '/' || prev == '-' {
			return s, ""
		}
	}
	year := s[loc[2]:loc[3]]
	return s[:loc[0]], year
}

// stripTrailingMonth removes a trailing month name from s, returning the
// remainder and the month name as written, or "" if absent.
func stripTrailingMonth(s string) (string, string) {
	loc := monthTrailingRe.FindStringSubmatchIndex(s)
	if loc == nil {
		return s, ""
	}
	month := s[loc[2]:loc[3]]
	return s[:loc[0]], month
}

// expandRange detects a bare day-number range in remainder and, when a
// shared month is known, expands it inclusively into one segment per day.
// It reports ok=false only when there is no range to expand (falling
// through to ordinary separator splitting). A range it cannot expand
// (reversed, no shared month, or longer than 14 days) comes back as a
// single segment holding the whole string, with ok=true.
func expandRange(remainder, sharedMonth string) ([]string, bool) {
	match := dayRangeRe.FindStringSubmatch(strings.TrimSpace(remainder))
	if match == nil {
		return nil, false
	}
	start, errStart := strconv.Atoi(match[1])
	end, errEnd := strconv.Atoi(match[2])
	if errStart != nil || errEnd != nil || end < start {
		return []string{remainder}, true
	}
	if sharedMonth == "" {
		// No shared month to distribute: can't safely expand into
		// individual calendar days, so keep it as a single segment.
		return []string{remainder}, true
	}
	if end-start+1 > maxRangeDays {
		return []string{remainder}, true
	}

	segments := make([]string, 0, end-start+1)
	for day := start; day <= end; day++ {
		segments = append(segments, strconv.Itoa(day))
	}
	return segments, true
}

// splitOnSeparators splits remainder on &, "and", commas, and — only when
// the piece contains letters (to avoid mangling a numeric DD/MM/YYYY
// date) — forward slashes.
func splitOnSeparators(remainder string) []string {
	primary := primarySeparatorRe.Split(remainder, -1)

	segments := make([]string, 0, len(primary))
	for _, part := range primary {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if containsLetters(part) && strings.Contains(part, "/") {
			for _, sub := range slashSeparatorRe.Split(part, -1) {
				sub = strings.TrimSpace(sub)
				if sub != "" {
					segments = append(segments, sub)
				}
			}
			continue
		}
		segments = append(segments, part)
	}
	if len(segments) == 0 {
		return []string{strings.TrimSpace(remainder)}
	}
	return segments
}

// attachShared peels a leading day-of-week off each segment, then appends
// the shared month/year to any segment that doesn't already carry its own.
func attachShared(segments []string, sharedMonth, sharedYear string) []Segment {
	out := make([]Segment, 0, len(segments))
	for _, seg := range segments {
		trimmedSeg := strings.TrimSpace(seg)
		dayOfWeek := ""
		if loc := weekdayPrefixRe.FindStringIndex(trimmedSeg); loc != nil {
			dayOfWeek = strings.TrimSpace(weekdayNameRe.FindString(trimmedSeg))
		}
		text := strings.TrimSpace(weekdayPrefixRe.ReplaceAllString(trimmedSeg, ""))

		if sharedMonth != "" && !monthAnywhereRe.MatchString(text) {
			text = strings.TrimSpace(text + " " + sharedMonth)
		}
		if sharedYear != "" && !hasYear(text) {
			text = strings.TrimSpace(text + " " + sharedYear)
		}
		out = append(out, Segment{Text: text, DayOfWeek: dayOfWeek})
	}
	return out
}

func hasYear(s string) bool {
	return regexp.MustCompile(`(?:19|20)\d{2}`).MatchString(s)
}

func containsLetters(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}
