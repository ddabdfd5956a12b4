package conversion

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"leadqual_backend/internal/events"
	"leadqual_backend/internal/scoring"
	"leadqual_backend/platform/logger"
	"leadqual_backend/platform/phone"
)

// Trigger labels recorded in conversion history and contact metadata. The
// manual label is the default for operator-initiated conversions; the two
// AI labels are written by the auto-conversion rules.
const (
	TriggerManual         = "Manual Conversion"
	TriggerHighEngagement = "AI Scoring: High Engagement Conversion"
	TriggerHighIntent     = "AI Scoring: High Intent Action Conversion"
)

// Auto-conversion thresholds. Rule A fires on a connected call at or above
// the engagement threshold; rule B fires on a high-intent action at or above
// the intent threshold. Rule A is always evaluated first.
const (
	autoConvertEngagementScore = 60
	autoConvertIntentScore     = 50
)

// ContactSource supplies the existing contact book for duplicate resolution.
type ContactSource interface {
	ListContacts(ctx context.Context) ([]Contact, error)
}

// Service runs the lead-to-contact conversion flow. All mutating steps for a
// given lead key are serialized through a per-key mutex, so concurrent
// attempts on the same lead resolve to exactly one Success.
type Service struct {
	contacts ContactSource
	history  HistoryStore
	config   *scoring.Provider
	bus      events.Bus
	log      *logger.Logger
	now      func() time.Time

	mu   sync.Mutex
	keys map[string]*sync.Mutex
}

func NewService(contacts ContactSource, history HistoryStore, config *scoring.Provider, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		contacts: contacts,
		history:  history,
		config:   config,
		bus:      bus,
		log:      log,
		now:      time.Now,
		keys:     make(map[string]*sync.Mutex),
	}
}

func (s *Service) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.keys[key]
	if !ok {
		m = &sync.Mutex{}
		s.keys[key] = m
	}
	return m
}

// ConvertLead attempts to convert the lead identified by its mobile number.
// The flow is strictly ordered: history check, duplicate check, score
// computation, contact projection, then the history write as the final
// effect. A lead whose history write fails is therefore still convertible on
// retry. Returned Results tag business outcomes; the error return is reserved
// for infrastructure failures.
func (s *Service) ConvertLead(ctx context.Context, lead scoring.Lead, activities []scoring.Activity, trigger string) (Result, error) {
	if trigger == "" {
		trigger = TriggerManual
	}
	key := phone.NormalizeE164(lead.Mobile)

	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	converted, err := s.history.Has(ctx, key)
	if err != nil {
		return Result{}, err
	}
	if converted {
		s.log.ConversionEvent(key, trigger, string(OutcomeAlreadyConverted), 0)
		return Result{Outcome: OutcomeAlreadyConverted, Trigger: trigger}, nil
	}

	existing, err := s.contacts.ListContacts(ctx)
	if err != nil {
		return Result{}, err
	}
	if dup := FindDuplicate(existing, key, lead.Email); dup != nil {
		s.log.ConversionEvent(key, trigger, string(OutcomeDuplicateFound), 0)
		return Result{Outcome: OutcomeDuplicateFound, ExistingContact: dup, Trigger: trigger}, nil
	}

	now := s.now()
	score := scoring.ComputeAt(lead, activities, s.config.Current(), now)
	contact := s.projectContact(lead, key, score.Total, trigger, now)

	inserted, err := s.history.InsertIfAbsent(ctx, Record{
		LeadKey:     key,
		ConvertedAt: now,
		Trigger:     trigger,
		Score:       score.Total,
	})
	if err != nil {
		return Result{}, err
	}
	if !inserted {
		s.log.ConversionEvent(key, trigger, string(OutcomeAlreadyConverted), score.Total)
		return Result{Outcome: OutcomeAlreadyConverted, Score: score.Total, Trigger: trigger}, nil
	}

	s.log.ConversionEvent(key, trigger, string(OutcomeSuccess), score.Total)
	s.bus.Publish(ctx, events.LeadConverted{
		BaseEvent:         events.NewBaseEvent(),
		LeadKey:           key,
		Trigger:           trigger,
		ScoreAtConversion: score.Total,
	})

	return Result{Outcome: OutcomeSuccess, Contact: &contact, Score: score.Total, Trigger: trigger}, nil
}

// EvaluateAutoConversion applies the auto-conversion rules to a freshly
// logged activity event. The engagement rule is checked before the intent
// rule; the first rule that matches converts and the other is skipped. When
// neither matches the result is NotEligible with the computed score attached.
func (s *Service) EvaluateAutoConversion(ctx context.Context, lead scoring.Lead, activities []scoring.Activity, eventType string, eventData map[string]string) (Result, error) {
	score := scoring.Compute(lead, activities, s.config.Current())

	if eventType == "call_logged" && eventData["status"] == "connected" && score.Total >= autoConvertEngagementScore {
		return s.ConvertLead(ctx, lead, activities, TriggerHighEngagement)
	}

	if (eventType == "site_visit_scheduled" || eventType == "property_shortlisted") && score.Total >= autoConvertIntentScore {
		return s.ConvertLead(ctx, lead, activities, TriggerHighIntent)
	}

	return Result{Outcome: OutcomeNotEligible, Score: score.Total}, nil
}

// Converted reports whether the lead key has a conversion record.
func (s *Service) Converted(ctx context.Context, leadKey string) (bool, error) {
	return s.history.Has(ctx, phone.NormalizeE164(leadKey))
}

// History returns the conversion record for a lead key, when one exists.
func (s *Service) History(ctx context.Context, leadKey string) (Record, bool, error) {
	return s.history.Get(ctx, phone.NormalizeE164(leadKey))
}

func (s *Service) projectContact(lead scoring.Lead, key string, score int, trigger string, now time.Time) Contact {
	tags := "Converted Lead"
	if strings.TrimSpace(lead.Tags) != "" {
		tags = strings.TrimSpace(lead.Tags) + ", " + tags
	}

	remarks := fmt.Sprintf("(Converted at Score: %d) | %s", score, trigger)
	if strings.TrimSpace(lead.Remarks) != "" {
		remarks += " | " + strings.TrimSpace(lead.Remarks)
	}

	return Contact{
		ID:       key,
		Name:     lead.Name,
		Mobile:   key,
		Email:    lead.Email,
		Category: "Prospect",
		Tags:     tags,
		Remarks:  remarks,
		Source:   lead.Source,
		ConversionMeta: &ConversionMeta{
			Date:              now.Format("02/01/2006"),
			ScoreAtConversion: score,
			Source:            lead.Source,
			Trigger:           trigger,
		},
	}
}
