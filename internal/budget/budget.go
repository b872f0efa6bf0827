package budget

import (
	"log/slog"

	"caseworks/internal/budget/handler"
	"caseworks/internal/budget/service"
)

// Service maintains budgets and their expense and revenue ledgers.
type Service = service.Service

// Handler wires HTTP endpoints to the budget service.
type Handler = handler.Handler

// NewService constructs the budget service with required dependencies.
func NewService(store service.Store, opts ...service.Option) (*Service, error) {
	return service.New(store, opts...)
}

// NewHandler constructs an HTTP handler for budget routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
