// Package leads provides the lead qualification bounded context module.
// This file defines the module that encapsulates all leads setup and route
// registration.
package leads

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"leadqual_backend/internal/contacts"
	"leadqual_backend/internal/conversion"
	"leadqual_backend/internal/events"
	apphttp "leadqual_backend/internal/http"
	"leadqual_backend/internal/leads/handler"
	"leadqual_backend/internal/leads/repository"
	"leadqual_backend/internal/leads/service"
	"leadqual_backend/internal/scoring"
	"leadqual_backend/platform/logger"
	"leadqual_backend/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the leads module with all its
// dependencies.
func NewModule(pool *pgxpool.Pool, history conversion.HistoryStore, config *scoring.Provider, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	contactsRepo := contacts.New(pool)
	converter := conversion.NewService(contactsRepo, history, config, eventBus, log)
	svc := service.New(repo, contactsRepo, converter, config, eventBus, log)

	// Close converted leads regardless of which path converted them.
	eventBus.Subscribe(events.LeadConverted{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.LeadConverted)
		if !ok {
			return nil
		}
		return svc.MarkConverted(ctx, e.LeadKey)
	}))

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the lead service for external use (e.g. the rescore
// worker).
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/leads"))
	m.handler.RegisterPreviewRoute(ctx.V1)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
