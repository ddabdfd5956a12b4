// Package transport defines the HTTP request and response shapes for the
// leads surface.
package transport

import (
	"time"

	"leadqual_backend/internal/conversion"
	"leadqual_backend/internal/scoring"
)

// RequirementPayload mirrors the structured requirement block on the lead
// intake form.
type RequirementPayload struct {
	PropertyType     string `json:"propertyType,omitempty"`
	SubType          string `json:"subType,omitempty"`
	UnitType         string `json:"unitType,omitempty"`
	Area             string `json:"area,omitempty"`
	Facing           string `json:"facing,omitempty"`
	Road             string `json:"road,omitempty"`
	Direction        string `json:"direction,omitempty"`
	PropertyUnitType string `json:"propertyUnitType,omitempty"`
}

func (r RequirementPayload) ToDomain() scoring.Requirement {
	return scoring.Requirement{
		PropertyType:     r.PropertyType,
		SubType:          r.SubType,
		UnitType:         r.UnitType,
		Area:             r.Area,
		Facing:           r.Facing,
		Road:             r.Road,
		Direction:        r.Direction,
		PropertyUnitType: r.PropertyUnitType,
	}
}

// UpsertLeadRequest creates or updates a lead keyed by mobile number.
type UpsertLeadRequest struct {
	Mobile       string             `json:"mobile" validate:"required,min=7,max=20"`
	Email        string             `json:"email,omitempty" validate:"omitempty,email"`
	Name         string             `json:"name,omitempty" validate:"max=200"`
	Stage        string             `json:"stage,omitempty" validate:"omitempty,oneof=New Prospect Opportunity Negotiation Lost Converted"`
	Source       string             `json:"source,omitempty" validate:"max=100"`
	Requirement  RequirementPayload `json:"requirement"`
	BudgetMatch  string             `json:"budgetMatch,omitempty" validate:"omitempty,oneof=perfect partial none"`
	LocationPref string             `json:"locationPref,omitempty"`
	Timeline     string             `json:"timeline,omitempty"`
	Payment      []string           `json:"payment,omitempty"`
	Matched      int                `json:"matched" validate:"min=0"`
	PriceFit     string             `json:"priceFit,omitempty" validate:"omitempty,oneof=good poor"`
	Tags         string             `json:"tags,omitempty"`
	Remarks      string             `json:"remarks,omitempty"`
}

// ActivityPayload is one interaction record supplied by a client.
type ActivityPayload struct {
	Type     string    `json:"type" validate:"required"`
	Purpose  string    `json:"purpose" validate:"required"`
	Outcome  string    `json:"outcome" validate:"required"`
	LoggedAt time.Time `json:"loggedAt"`
}

func (a ActivityPayload) ToDomain() scoring.Activity {
	loggedAt := a.LoggedAt
	if loggedAt.IsZero() {
		loggedAt = time.Now()
	}
	return scoring.Activity{
		Type:     a.Type,
		Purpose:  a.Purpose,
		Outcome:  a.Outcome,
		LoggedAt: loggedAt,
	}
}

// PreviewScoreRequest scores an ad-hoc lead snapshot without persisting it.
type PreviewScoreRequest struct {
	Lead       UpsertLeadRequest `json:"lead" validate:"required"`
	Activities []ActivityPayload `json:"activities" validate:"dive"`
	// LastActivityAt feeds the decay component; omitted means active now.
	LastActivityAt *time.Time `json:"lastActivityAt,omitempty"`
}

// LogEventRequest records a lead lifecycle event. Events that represent an
// interaction also append an activity; every event triggers auto-conversion
// evaluation.
type LogEventRequest struct {
	EventType string            `json:"eventType" validate:"required,oneof=call_logged site_visit_scheduled property_shortlisted note_added"`
	EventData map[string]string `json:"eventData,omitempty"`
	Activity  *ActivityPayload  `json:"activity,omitempty"`
}

// ConvertLeadRequest starts a manual conversion. Trigger is optional and
// defaults to the manual trigger label.
type ConvertLeadRequest struct {
	Trigger string `json:"trigger,omitempty" validate:"max=120"`
}

// ScoreResponse is the qualification read model returned by score endpoints.
type ScoreResponse struct {
	LeadKey          string            `json:"leadKey,omitempty"`
	Total            int               `json:"total"`
	Breakdown        scoring.Breakdown `json:"breakdown"`
	Multiplier       float64           `json:"multiplier"`
	Temperature      string            `json:"temperature"`
	TemperatureColor string            `json:"temperatureColor"`
	Intent           string            `json:"intent"`
}

func NewScoreResponse(leadKey string, res scoring.ScoreResult) ScoreResponse {
	return ScoreResponse{
		LeadKey:          leadKey,
		Total:            res.Total,
		Breakdown:        res.Breakdown,
		Multiplier:       res.Multiplier,
		Temperature:      string(res.Temperature),
		TemperatureColor: res.Temperature.Color(),
		Intent:           string(res.Intent),
	}
}

// ConversionResponse reports the outcome of a conversion attempt or an
// auto-conversion evaluation.
type ConversionResponse struct {
	Outcome         string              `json:"outcome"`
	Score           int                 `json:"score"`
	Trigger         string              `json:"trigger,omitempty"`
	Contact         *conversion.Contact `json:"contact,omitempty"`
	ExistingContact *conversion.Contact `json:"existingContact,omitempty"`
}

func NewConversionResponse(res conversion.Result) ConversionResponse {
	return ConversionResponse{
		Outcome:         string(res.Outcome),
		Score:           res.Score,
		Trigger:         res.Trigger,
		Contact:         res.Contact,
		ExistingContact: res.ExistingContact,
	}
}

// LogEventResponse combines the recorded event with its auto-conversion
// evaluation.
type LogEventResponse struct {
	LeadKey    string             `json:"leadKey"`
	EventType  string             `json:"eventType"`
	Conversion ConversionResponse `json:"conversion"`
}
