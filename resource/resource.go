// Package resource is the simulated resource server. It serves the profile of
// the token's subject and asks the authorization server whether the token is
// valid on every call.
package resource

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-oauth-simulator/instrumentation"
	"github.com/jrsteele09/go-oauth-simulator/internal/errors"
	"github.com/jrsteele09/go-oauth-simulator/internal/logging"
	"github.com/jrsteele09/go-oauth-simulator/oauth2"
	"github.com/jrsteele09/go-oauth-simulator/users"
	pkgerrors "github.com/pkg/errors"
)

// Introspector answers token validity questions.
type Introspector interface {
	Introspect(accessToken string) *oauth2.IntrospectionResponse
}

// Response is a successful GET /me.
type Response struct {
	OK     bool                          `json:"ok"`
	Status int                           `json:"status"`
	Data   *users.Profile                `json:"data"`
	Token  *oauth2.IntrospectionResponse `json:"token"`
}

// Error is a refused GET /me.
type Error struct {
	OK      bool                          `json:"ok"`
	Status  int                           `json:"status"`
	Code    string                        `json:"error"`
	Details *oauth2.IntrospectionResponse `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d %s", e.Status, e.Code)
}

type Server struct {
	introspector  Introspector
	users         users.UserRepo
	requiredScope string
	metrics       *instrumentation.Metrics
}

type ServerOption func(*Server)

func WithMetrics(m *instrumentation.Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// NewServer creates a resource server that requires requiredScope on every
// token it accepts.
func NewServer(introspector Introspector, userRepo users.UserRepo, requiredScope string, options ...ServerOption) (*Server, error) {
	if introspector == nil {
		return nil, pkgerrors.New("[resource.NewServer] introspector is required")
	}
	if userRepo == nil {
		return nil, pkgerrors.New("[resource.NewServer] user repo is required")
	}

	s := &Server{
		introspector:  introspector,
		users:         userRepo,
		requiredScope: requiredScope,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = instrumentation.Noop()
	}
	return s, nil
}

// GetProtectedResource simulates GET /me with a bearer token. An inactive
// token yields a 401 invalid_token error and a token without the required
// scope a 403 insufficient_scope error.
func (s *Server) GetProtectedResource(accessToken string) (*Response, error) {
	logging.Exchange(logging.Client, logging.Resource).
		Str("token", logging.Token(accessToken)).
		Msg("GET /me")

	resp, err := s.getProtectedResource(accessToken)

	status := http.StatusOK
	var rerr *Error
	if errors.As(err, &rerr) {
		status = rerr.Status
	} else if err != nil {
		status = http.StatusInternalServerError
	}
	s.metrics.RecordResource(context.Background(), status)

	logging.Exchange(logging.Resource, logging.Client).
		Int("status", status).
		Msg(http.StatusText(status))

	return resp, err
}

func (s *Server) getProtectedResource(accessToken string) (*Response, error) {
	info := s.introspector.Introspect(accessToken)
	if info == nil || !info.Active {
		return nil, &Error{Status: http.StatusUnauthorized, Code: oauth2.ErrorInvalidToken, Details: info}
	}
	if !HasScope(info.Scope, s.requiredScope) {
		return nil, &Error{Status: http.StatusForbidden, Code: oauth2.ErrorInsufficientScope, Details: info}
	}

	user, err := s.users.Get(info.Username)
	if err != nil {
		return nil, errors.Wrapf(err, "[resource.GetProtectedResource] subject %s", info.Username)
	}
	profile := user.Profile

	return &Response{
		OK:     true,
		Status: http.StatusOK,
		Data:   &profile,
		Token:  info,
	}, nil
}

// HasScope reports whether the space-delimited scope list contains required.
func HasScope(scope, required string) bool {
	for _, s := range strings.Fields(scope) {
		if s == required {
			return true
		}
	}
	return false
}
