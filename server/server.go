// Package server is a development stand-in for the pharmacy admin API. It reproduces
// the login, token rotation and admin endpoints the rxadmin client consumes, including
// expired-token and revoked-session responses, over in-memory repositories.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/rxadmin/internal/config"
	"github.com/jrsteele09/rxadmin/orders"
	"github.com/jrsteele09/rxadmin/tenants"
	"github.com/jrsteele09/rxadmin/token"
	"github.com/jrsteele09/rxadmin/token/refresh"
	"github.com/jrsteele09/rxadmin/users"
)

// Repos holds all repository dependencies for the server
type Repos struct {
	Users         users.Repo
	Tenants       tenants.Repo
	Orders        orders.Repo
	RefreshTokens refresh.Repo
}

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	handler  http.Handler
	routes   []string
	config   config.Config
	repos    Repos
	tokens   *token.Manager
	attempts *loginAttempts
	nowFunc  func() time.Time
}

type Option func(*Server)

func WithNowFunc(now func() time.Time) Option {
	return func(s *Server) {
		s.nowFunc = now
	}
}

func New(cfg config.Config, repos Repos, opts ...Option) (*Server, error) {
	s := &Server{
		env:     cfg.GetEnv(),
		mux:     http.NewServeMux(),
		config:  cfg,
		repos:   repos,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tokens = token.New(repos.RefreshTokens, repos.Users, cfg, token.WithNowFunc(s.nowFunc))
	s.attempts = newLoginAttempts(maxLoginAttempts, loginAttemptWindow, s.nowFunc)

	if err := s.InitialiseSystem(context.Background()); err != nil {
		return nil, fmt.Errorf("[Server New] Failed to initialise the system: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	s.handler = s.mux
	if base := strings.TrimRight(cfg.GetBasePath(), "/"); base != "" {
		s.handler = http.StripPrefix(base, s.mux)
	}
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Tokens exposes the token manager so the process can purge revoked sessions periodically.
func (s *Server) Tokens() *token.Manager {
	return s.tokens
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	base := strings.TrimRight(s.config.GetBasePath(), "/")
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], base+parts[1])
		} else {
			logRoute("", base+parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Println(routeLine(method, path))
}

func logFailure(method, path string, status int) {
	log.Println(failureLine(method, path, status))
}
