package testutil

import (
	"net/http"
	"time"

	id "caseworks/pkg/domain"
	"caseworks/pkg/requestcontext"
)

// WithActor stamps the request context with the caller identity the auth
// middleware would normally provide. An unparsable user id is ignored.
func WithActor(req *http.Request, userID, role string) *http.Request {
	ctx := req.Context()
	if parsed, err := id.ParseUserID(userID); err == nil {
		ctx = requestcontext.WithUserID(ctx, parsed)
	}
	if role != "" {
		ctx = requestcontext.WithRole(ctx, role)
	}
	return req.WithContext(ctx)
}

// WithTime pins the request clock, matching what the request-id middleware
// does in production.
func WithTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}
