// Package phases implements the six pipeline phases (Type, Artist, Venue,
// Event, Assembly, Enrichment) and the primitives they all share: parsing
// a vision response into a dictionary, normalizing its fields, and
// wrapping execution in a uniform error envelope that never propagates a
// panic or error past the phase boundary.
package phases

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/posterforge/extractioncore/internal/domain/models"
)

// VisionExtraction groups what one vision call yields: the parsed
// JSON-in-text dictionary, the raw text it was parsed from, and any
// warning recorded along the way. The phases in this package do not use
// it; they work on ParseVisionResponse's map and warnings directly.
type VisionExtraction struct {
	Fields   map[string]interface{}
	RawText  string
	Model    string
	Warnings []string
}

var (
	fencedCodeRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
)

// ParseVisionResponse finds the first balanced brace block in text and
// decodes it as JSON; if that fails it strips Markdown code fences and
// retries once. A response with no parseable JSON returns an empty map and
// a warning — it never errors.
func ParseVisionResponse(text string) (map[string]interface{}, []string) {
	if block := firstBalancedBraceBlock(text); block != "" {
		var fields map[string]interface{}
		if err := json.Unmarshal([]byte(block), &fields); err == nil {
			return fields, nil
		}
	}

	if m := fencedCodeRe.FindStringSubmatch(text); m != nil {
		if block := firstBalancedBraceBlock(m[1]); block != "" {
			var fields map[string]interface{}
			if err := json.Unmarshal([]byte(block), &fields); err == nil {
				return fields, nil
			}
		}
	}

	return map[string]interface{}{}, []string{"vision response contained no parseable JSON object"}
}

// firstBalancedBraceBlock returns the first substring of s that forms a
// balanced {...} block, or "" if none closes.
func firstBalancedBraceBlock(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// NormalizeString trims s and returns (value, true) when non-empty.
func NormalizeString(v interface{}) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// NormalizeStringList coerces v into an ordered list of trimmed, non-empty
// strings. Accepts a JSON array or a single string (treated as one entry).
func NormalizeStringList(v interface{}) []string {
	switch val := v.(type) {
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := NormalizeString(item); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if s, ok := NormalizeString(val); ok {
			return []string{s}
		}
	}
	return nil
}

// NormalizeConfidence accepts either a 0-1 fraction or a 0-100 percentage
// and returns a value clamped to [0,1].
func NormalizeConfidence(v interface{}) float64 {
	f, ok := asFloat(v)
	if !ok {
		return 0
	}
	if f > 1 {
		f = f / 100
	}
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := json.Number(strings.TrimSpace(n)).Float64()
		return f, err == nil
	}
	return 0, false
}

// Logger wraps a possibly-nil *zap.Logger so every phase can log without a
// nil check at every call site; nil safely falls back to a no-op sink.
func Logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// Envelope runs fn and converts any panic into a failed PhaseResult,
// guaranteeing execute() never propagates past a phase boundary. fn
// itself is also expected to return errors as failed results rather than
// panicking; this is the last line of defense.
func Envelope(phase models.PhaseName, posterID, imagePath string, start time.Time, fn func() models.PhaseResult) (result models.PhaseResult) {
	defer func() {
		if r := recover(); r != nil {
			result = Failed(phase, posterID, imagePath, start, errorString(r))
		}
	}()
	return fn()
}

func errorString(r interface{}) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	if s, ok := r.(string); ok {
		return s
	}
	return "unknown panic"
}

// Failed builds the uniform failed-phase result: zero confidence, elapsed
// time, and the error message in Errors.
func Failed(phase models.PhaseName, posterID, imagePath string, start time.Time, reason string) models.PhaseResult {
	return models.PhaseResult{
		PosterID:         posterID,
		ImagePath:        imagePath,
		Phase:            phase,
		Status:           models.StatusFailed,
		Confidence:       0,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Errors:           []string{reason},
	}
}

// containsAnyFold reports whether s contains any of candidates, case
// insensitively. Used by the Artist phase's concatenation guard to check
// an over-long entry for separators.
func containsAnyFold(s string, candidates ...string) bool {
	lowered := strings.ToLower(s)
	for _, c := range candidates {
		if strings.Contains(lowered, strings.ToLower(c)) {
			return true
		}
	}
	return false
}
