package dateparse

import "regexp"

// monthNames maps every month name/abbreviation the poster text is likely
// to use onto its 1-12 number. monthNameAlternation below must list every
// key of this map.
var monthNames = map[string]int{
	"january": 1, "jan": 1,
	"february": 2, "feb": 2,
	"march": 3, "mar": 3,
	"april": 4, "apr": 4,
	"may": 5,
	"june": 6, "jun": 6,
	"july": 7, "jul": 7,
	"august": 8, "aug": 8,
	"september": 9, "sep": 9, "sept": 9,
	"october": 10, "oct": 10,
	"november": 11, "nov": 11,
	"december": 12, "dec": 12,
}

// monthNameAlternation is a regex alternation over every key in
// monthNames, longest first so "september" matches before "sep" would
// short-circuit it.
const monthNameAlternation = `september|february|november|december|january|october|august|march|april|june|july|sept|jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec`

var (
	monthTrailingRe = regexp.MustCompile(`(?i)\b(` + monthNameAlternation + `)\.?\s*$`)
	monthAnywhereRe = regexp.MustCompile(`(?i)\b(` + monthNameAlternation + `)\b`)
	monthLeadingRe  = regexp.MustCompile(`(?i)^(` + monthNameAlternation + `)\.?\s+`)

	weekdayPrefixRe = regexp.MustCompile(`(?i)^(mon|monday|tue|tues|tuesday|wed|weds|wednesday|thu|thur|thurs|thursday|fri|friday|sat|saturday|sun|sunday)\.?,?\s+`)
	weekdayNameRe   = regexp.MustCompile(`(?i)^(mon|monday|tue|tues|tuesday|wed|weds|wednesday|thu|thur|thurs|thursday|fri|friday|sat|saturday|sun|sunday)`)
)

func monthNumber(name string) (int, bool) {
	n, ok := monthNames[normalizeMonthKey(name)]
	return n, ok
}

func normalizeMonthKey(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}
