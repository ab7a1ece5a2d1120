package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/posterforge/extractioncore/internal/domain/models"
)

var (
	numericDateRe  = regexp.MustCompile(`^(\d{1,2})[/\-](\d{1,2})[/\-](\d{2,4})$`)
	monthFirstRe   = regexp.MustCompile(`(?i)^(` + monthNameAlternation + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s*(\d{2,4})?$`)
	dayFirstRe     = regexp.MustCompile(`(?i)^(\d{1,2})(?:st|nd|rd|th)?\s+(` + monthNameAlternation + `)\.?,?\s*(\d{2,4})?$`)
	yearOnlyRe     = regexp.MustCompile(`^(\d{4})$`)
)

// ParseDate converts one already-split show date string into a DateInfo,
// trying a fixed list of formats in order. It never
// errors: an unparseable string yields a zero-confidence DateInfo holding
// the raw text, no day, month or year, and Format set to year_only.
func ParseDate(raw string) models.DateInfo {
	info := models.DateInfo{Raw: raw}

	candidate := strings.TrimSpace(weekdayPrefixRe.ReplaceAllString(raw, ""))
	candidate = strings.TrimSpace(candidate)

	if m := numericDateRe.FindStringSubmatch(candidate); m != nil {
		day, month, year := atoi(m[1]), atoi(m[2]), normalizeYear(m[3])
		return buildDateInfo(info, day, month, year)
	}

	if m := monthFirstRe.FindStringSubmatch(candidate); m != nil {
		month, _ := monthNumber(m[1])
		day := atoi(m[2])
		year := 0
		if m[3] != "" {
			year = normalizeYear(m[3])
		}
		return buildDateInfo(info, day, month, year)
	}

	if m := dayFirstRe.FindStringSubmatch(candidate); m != nil {
		day := atoi(m[1])
		month, _ := monthNumber(m[2])
		year := 0
		if m[3] != "" {
			year = normalizeYear(m[3])
		}
		return buildDateInfo(info, day, month, year)
	}

	if m := yearOnlyRe.FindStringSubmatch(candidate); m != nil {
		info.Year = atoi(m[1])
		info.Format = models.DateFormatYearOnly
		info.Confidence = 0.6
		return info
	}

	info.Format = models.DateFormatYearOnly
	info.Confidence = 0
	return info
}

// buildDateInfo fills in day/month/year and attempts to build a real
// calendar date out of them, lifting confidence to 0.9 on success.
func buildDateInfo(info models.DateInfo, day, month, year int) models.DateInfo {
	info.Day, info.Month, info.Year = day, month, year

	if day > 0 && month > 0 && year > 0 && isValidCalendarDate(day, month, year) {
		info.Resolved = time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
		info.Format = models.DateFormatParsed
		info.Confidence = 0.9
		return info
	}

	if year > 0 && day == 0 && month == 0 {
		info.Format = models.DateFormatYearOnly
		info.Confidence = 0.6
		return info
	}

	// Day and/or month present but the triple doesn't resolve to a valid
	// calendar date (missing year, or an invalid day/month combination):
	// keep the partial fields but don't claim a resolved date.
	info.Format = models.DateFormatParsed
	info.Confidence = 0.5
	return info
}

func isValidCalendarDate(day, month, year int) bool {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Day() == day && int(t.Month()) == month && t.Year() == year
}

// normalizeYear expands a 2-digit year: <=30 maps to 20xx, >30 to 19xx.
// 4-digit years pass through unchanged.
func normalizeYear(raw string) int {
	n := atoi(raw)
	if len(raw) >= 4 || n >= 100 {
		return n
	}
	if n <= 30 {
		return 2000 + n
	}
	return 1900 + n
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
