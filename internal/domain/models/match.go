package models

// Match is an extracted string optionally canonicalized by an authoritative
// validator: a headliner name, a venue name, a director credit, and so on.
type Match struct {
	Extracted     string  `bson:"extracted" json:"extracted"`
	Validated     string  `bson:"validated,omitempty" json:"validated,omitempty"`
	Confidence    float64 `bson:"confidence" json:"confidence"`
	ExternalID    string  `bson:"externalId,omitempty" json:"externalId,omitempty"`
	Source        string  `bson:"source,omitempty" json:"source,omitempty"`
}

// CanonicalName returns the validator-sourced name when present, otherwise
// the raw extracted string.
func (m Match) CanonicalName() string {
	if m.Validated != "" {
		return m.Validated
	}
	return m.Extracted
}

// IsEmpty reports whether no name was extracted at all.
func (m Match) IsEmpty() bool {
	return m.Extracted == ""
}
