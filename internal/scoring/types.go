// Package scoring implements the lead qualification engine: a pure,
// configuration-driven score calculator plus temperature and intent
// classification. Nothing in this package performs I/O; callers supply a
// lead snapshot, its activity history and a Config, and receive a fresh
// ScoreResult per call.
package scoring

import "time"

// Requirement holds the structured property requirement captured on the
// lead form. A requirement is considered "rich" when more than two of its
// fields are populated.
type Requirement struct {
	PropertyType     string `json:"propertyType,omitempty"`
	SubType          string `json:"subType,omitempty"`
	UnitType         string `json:"unitType,omitempty"`
	Area             string `json:"area,omitempty"`
	Facing           string `json:"facing,omitempty"`
	Road             string `json:"road,omitempty"`
	Direction        string `json:"direction,omitempty"`
	PropertyUnitType string `json:"propertyUnitType,omitempty"`
}

// PopulatedFields returns how many requirement fields carry a value.
func (r Requirement) PopulatedFields() int {
	count := 0
	for _, field := range []string{
		r.PropertyType, r.SubType, r.UnitType, r.Area,
		r.Facing, r.Road, r.Direction, r.PropertyUnitType,
	} {
		if field != "" {
			count++
		}
	}
	return count
}

// Lead is the read-only snapshot the engine scores. The mobile number is the
// natural lead key; every other field degrades to zero contribution when
// absent.
type Lead struct {
	Mobile         string      `json:"mobile"`
	Email          string      `json:"email,omitempty"`
	Name           string      `json:"name,omitempty"`
	Stage          string      `json:"stage,omitempty"`
	Source         string      `json:"source,omitempty"`
	Requirement    Requirement `json:"requirement"`
	BudgetMatch    string      `json:"budgetMatch,omitempty"`
	LocationPref   string      `json:"locationPref,omitempty"`
	Timeline       string      `json:"timeline,omitempty"`
	Payment        []string    `json:"payment,omitempty"`
	Matched        int         `json:"matched"`
	PriceFit       string      `json:"priceFit,omitempty"`
	LastActivityAt *time.Time  `json:"lastActivityAt,omitempty"`
	Tags           string      `json:"tags,omitempty"`
	Remarks        string      `json:"remarks,omitempty"`
}

// Activity is a single interaction record, read-only to the engine.
// Scoring walks type → purpose → outcome through the configured taxonomy;
// an activity that misses at any level contributes zero.
type Activity struct {
	Type     string    `json:"type"`
	Purpose  string    `json:"purpose"`
	Outcome  string    `json:"outcome"`
	LoggedAt time.Time `json:"loggedAt"`
}

// Breakdown holds the five unclamped component values. They are kept verbatim
// for explainability, so they may not sum to the clamped total.
type Breakdown struct {
	Attribute int `json:"attribute"`
	Activity  int `json:"activity"`
	Source    int `json:"source"`
	Fit       int `json:"fit"`
	Decay     int `json:"decay"`
}

// ScoreResult is the value object returned by every Compute call.
type ScoreResult struct {
	Total       int         `json:"total"`
	Breakdown   Breakdown   `json:"breakdown"`
	Multiplier  float64     `json:"multiplier"`
	Temperature Temperature `json:"temperature"`
	Intent      Intent      `json:"intent"`
}
