package timesession

import (
	"log/slog"

	"caseworks/internal/directory"
	"caseworks/internal/timesession/handler"
	"caseworks/internal/timesession/service"
)

// Service tracks caseworker time per beneficiary.
type Service = service.Service

// Handler wires HTTP endpoints to the session service.
type Handler = handler.Handler

// NewService constructs the session service with required dependencies.
func NewService(store service.Store, dir directory.Directory, opts ...service.Option) (*Service, error) {
	return service.New(store, dir, opts...)
}

// NewHandler constructs an HTTP handler for session routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
