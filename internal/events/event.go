// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leadqual_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadActivityLogged is published when an interaction is recorded against a
// lead. The auto-conversion evaluator subscribes to it.
type LeadActivityLogged struct {
	BaseEvent
	LeadKey   string            `json:"leadKey"`
	EventType string            `json:"eventType"`
	EventData map[string]string `json:"eventData,omitempty"`
}

func (e LeadActivityLogged) EventName() string { return "leads.activity.logged" }

// LeadConverted is published after a lead is successfully converted to a
// contact.
type LeadConverted struct {
	BaseEvent
	LeadKey           string `json:"leadKey"`
	Trigger           string `json:"trigger"`
	ScoreAtConversion int    `json:"scoreAtConversion"`
}

func (e LeadConverted) EventName() string { return "leads.lead.converted" }

// LeadRescored is published when the nightly sweep persists a changed score.
type LeadRescored struct {
	BaseEvent
	LeadKey     string `json:"leadKey"`
	Score       int    `json:"score"`
	Temperature string `json:"temperature"`
}

func (e LeadRescored) EventName() string { return "leads.lead.rescored" }
