// Package service implements the lead qualification use cases behind the
// HTTP surface: intake, scoring reads, event logging and conversion
// orchestration.
package service

import (
	"context"
	"errors"

	"leadqual_backend/internal/contacts"
	"leadqual_backend/internal/conversion"
	"leadqual_backend/internal/events"
	"leadqual_backend/internal/leads/repository"
	"leadqual_backend/internal/leads/transport"
	"leadqual_backend/internal/scoring"
	"leadqual_backend/platform/apperr"
	"leadqual_backend/platform/logger"
	"leadqual_backend/platform/phone"
)

type Service struct {
	repo      *repository.Repository
	contacts  *contacts.Repository
	converter *conversion.Service
	config    *scoring.Provider
	bus       events.Bus
	log       *logger.Logger
}

func New(repo *repository.Repository, contactsRepo *contacts.Repository, converter *conversion.Service, config *scoring.Provider, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		contacts:  contactsRepo,
		converter: converter,
		config:    config,
		bus:       bus,
		log:       log,
	}
}

// Upsert creates or updates a lead and returns its normalized key.
func (s *Service) Upsert(ctx context.Context, req transport.UpsertLeadRequest) (string, error) {
	key := phone.NormalizeE164(req.Mobile)
	stage := req.Stage
	if stage == "" {
		stage = "New"
	}

	err := s.repo.Upsert(ctx, repository.UpsertLeadParams{
		LeadKey:      key,
		Email:        req.Email,
		Name:         req.Name,
		Stage:        stage,
		Source:       req.Source,
		Requirement:  req.Requirement.ToDomain(),
		BudgetMatch:  req.BudgetMatch,
		LocationPref: req.LocationPref,
		Timeline:     req.Timeline,
		Payment:      req.Payment,
		Matched:      req.Matched,
		PriceFit:     req.PriceFit,
		Tags:         req.Tags,
		Remarks:      req.Remarks,
	})
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "failed to save lead", err)
	}
	return key, nil
}

// Score computes the current qualification score for a stored lead.
func (s *Service) Score(ctx context.Context, leadKey string) (scoring.ScoreResult, error) {
	lead, activities, err := s.snapshot(ctx, leadKey)
	if err != nil {
		return scoring.ScoreResult{}, err
	}
	return scoring.Compute(lead, activities, s.config.Current()), nil
}

// Preview scores an ad-hoc snapshot without touching storage.
func (s *Service) Preview(req transport.PreviewScoreRequest) scoring.ScoreResult {
	lead := scoring.Lead{
		Mobile:         req.Lead.Mobile,
		Email:          req.Lead.Email,
		Name:           req.Lead.Name,
		Stage:          req.Lead.Stage,
		Source:         req.Lead.Source,
		Requirement:    req.Lead.Requirement.ToDomain(),
		BudgetMatch:    req.Lead.BudgetMatch,
		LocationPref:   req.Lead.LocationPref,
		Timeline:       req.Lead.Timeline,
		Payment:        req.Lead.Payment,
		Matched:        req.Lead.Matched,
		PriceFit:       req.Lead.PriceFit,
		LastActivityAt: req.LastActivityAt,
		Tags:           req.Lead.Tags,
		Remarks:        req.Lead.Remarks,
	}

	activities := make([]scoring.Activity, 0, len(req.Activities))
	for _, a := range req.Activities {
		activities = append(activities, a.ToDomain())
	}

	return scoring.Compute(lead, activities, s.config.Current())
}

// Convert runs a manual conversion for a stored lead. On success the
// projected contact is persisted before the result is returned.
func (s *Service) Convert(ctx context.Context, leadKey, trigger string) (conversion.Result, error) {
	lead, activities, err := s.snapshot(ctx, leadKey)
	if err != nil {
		return conversion.Result{}, err
	}

	res, err := s.converter.ConvertLead(ctx, lead, activities, trigger)
	if err != nil {
		return conversion.Result{}, apperr.Wrap(apperr.KindInternal, "conversion failed", err)
	}
	if err := s.finalize(ctx, res); err != nil {
		return conversion.Result{}, err
	}
	return res, nil
}

// LogEvent records a lead lifecycle event, optionally appending an activity,
// and evaluates the auto-conversion rules against the refreshed snapshot.
func (s *Service) LogEvent(ctx context.Context, leadKey string, req transport.LogEventRequest) (conversion.Result, error) {
	key := phone.NormalizeE164(leadKey)

	if req.Activity != nil {
		if err := s.repo.LogActivity(ctx, key, req.Activity.ToDomain()); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return conversion.Result{}, apperr.NotFound("lead not found")
			}
			return conversion.Result{}, apperr.Wrap(apperr.KindInternal, "failed to log activity", err)
		}
	}

	lead, activities, err := s.snapshot(ctx, key)
	if err != nil {
		return conversion.Result{}, err
	}

	s.bus.Publish(ctx, events.LeadActivityLogged{
		BaseEvent: events.NewBaseEvent(),
		LeadKey:   key,
		EventType: req.EventType,
		EventData: req.EventData,
	})

	res, err := s.converter.EvaluateAutoConversion(ctx, lead, activities, req.EventType, req.EventData)
	if err != nil {
		return conversion.Result{}, apperr.Wrap(apperr.KindInternal, "auto-conversion evaluation failed", err)
	}
	if err := s.finalize(ctx, res); err != nil {
		return conversion.Result{}, err
	}
	return res, nil
}

// MarkConverted moves a lead to the Converted stage. The leads module wires
// it to LeadConverted events so conversions from any path close the lead.
func (s *Service) MarkConverted(ctx context.Context, leadKey string) error {
	err := s.repo.SetStage(ctx, leadKey, "Converted")
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

func (s *Service) snapshot(ctx context.Context, leadKey string) (scoring.Lead, []scoring.Activity, error) {
	key := phone.NormalizeE164(leadKey)

	lead, err := s.repo.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return scoring.Lead{}, nil, apperr.NotFound("lead not found")
		}
		return scoring.Lead{}, nil, apperr.Wrap(apperr.KindInternal, "failed to load lead", err)
	}

	activities, err := s.repo.ListActivities(ctx, key)
	if err != nil {
		return scoring.Lead{}, nil, apperr.Wrap(apperr.KindInternal, "failed to load activities", err)
	}

	return lead, activities, nil
}

// finalize persists the projected contact after a successful conversion.
// Stage closure happens through the LeadConverted subscription.
func (s *Service) finalize(ctx context.Context, res conversion.Result) error {
	if res.Outcome != conversion.OutcomeSuccess || res.Contact == nil {
		return nil
	}
	if err := s.contacts.Save(ctx, *res.Contact); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to save converted contact", err)
	}
	return nil
}
