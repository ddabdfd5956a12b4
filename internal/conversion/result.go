// Package conversion governs the one-way Lead → Contact transition:
// duplicate resolution, idempotent conversion with a durable history record,
// and event-driven auto-conversion rules.
package conversion

import "time"

// Outcome tags a conversion attempt's result. DuplicateFound and
// AlreadyConverted are expected business outcomes, not errors; callers are
// expected to handle them (e.g. prompting a merge flow on DuplicateFound).
type Outcome string

const (
	OutcomeSuccess          Outcome = "success"
	OutcomeDuplicateFound   Outcome = "duplicate_found"
	OutcomeAlreadyConverted Outcome = "already_converted"
	OutcomeNotEligible      Outcome = "not_eligible"
)

// Contact is the post-conversion customer record projected from a lead.
// Persistence of the contact itself is the caller's concern.
type Contact struct {
	ID             string          `json:"id"`
	Name           string          `json:"name,omitempty"`
	Mobile         string          `json:"mobile"`
	Email          string          `json:"email,omitempty"`
	Category       string          `json:"category,omitempty"`
	Tags           string          `json:"tags,omitempty"`
	Remarks        string          `json:"remarks,omitempty"`
	Source         string          `json:"source,omitempty"`
	ConversionMeta *ConversionMeta `json:"conversionMeta,omitempty"`
}

// ConversionMeta captures how and when a contact came out of a lead.
type ConversionMeta struct {
	Date              string `json:"date"`
	ScoreAtConversion int    `json:"scoreAtConversion"`
	Source            string `json:"source,omitempty"`
	Trigger           string `json:"trigger"`
}

// Record is the persisted conversion fact. At most one Record ever exists
// per lead key; it is never updated.
type Record struct {
	LeadKey     string    `json:"leadKey"`
	ConvertedAt time.Time `json:"convertedAt"`
	Trigger     string    `json:"trigger"`
	Score       int       `json:"score"`
}

// Result is the tagged outcome of a conversion attempt. It is ephemeral and
// never persisted.
type Result struct {
	Outcome Outcome `json:"outcome"`
	// Contact is set on Success.
	Contact *Contact `json:"contact,omitempty"`
	// ExistingContact is set on DuplicateFound.
	ExistingContact *Contact `json:"existingContact,omitempty"`
	// Score is the score computed during the attempt, when one was computed.
	Score   int    `json:"score"`
	Trigger string `json:"trigger,omitempty"`
}
