package stay

import (
	"log/slog"

	"caseworks/internal/directory"
	"caseworks/internal/stay/handler"
	"caseworks/internal/stay/service"
)

// Service allocates beds while preserving occupancy invariants.
type Service = service.Service

// Handler wires HTTP endpoints to the stay service.
type Handler = handler.Handler

// NewService constructs the stay service with required dependencies.
func NewService(store service.Store, dir directory.Directory, opts ...service.Option) (*Service, error) {
	return service.New(store, dir, opts...)
}

// NewHandler constructs an HTTP handler for stay routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
