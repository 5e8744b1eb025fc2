// Copyright (C) 2025 Planet Nine
//
// This file is part of fount-go.
//
// fount-go is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// fount-go is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with fount-go.  If not, see <https://www.gnu.org/licenses/>.

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/planet-nine-app/fount-go/pkg/verifier"
	"go.uber.org/zap"
)

// DefaultInitialMP is the mp balance of a new user
const DefaultInitialMP = 1000

// Option configures a Server
type Option func(*options)

type options struct {
	logger           *zap.Logger
	now              func() time.Time
	window           time.Duration
	initialMP        uint64
	associatedKeys   bool
	requireTimestamp bool
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock sets the time source for the timestamp window and nineum years
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithTimestampWindow sets the accepted timestamp drift
func WithTimestampWindow(window time.Duration) Option {
	return func(o *options) {
		o.window = window
	}
}

// WithInitialMP sets the starting mp of new users
func WithInitialMP(mp uint64) Option {
	return func(o *options) {
		o.initialMP = mp
	}
}

// WithAssociatedKeySigning lets associated keys sign for a user
func WithAssociatedKeySigning(enabled bool) Option {
	return func(o *options) {
		o.associatedKeys = enabled
	}
}

// WithRequiredTimestamp rejects requests that carry no timestamp
func WithRequiredTimestamp(required bool) Option {
	return func(o *options) {
		o.requireTimestamp = required
	}
}

// Server is an in-memory fount service. It verifies every signed request
// the way the hosted service does and keeps all state in a Store.
type Server struct {
	store    *Store
	verifier *verifier.DefaultVerifier
	logger   *zap.Logger
	handler  http.Handler
}

// NewServer creates a server with its routes registered
func NewServer(opts ...Option) *Server {
	o := &options{
		logger:    zap.NewNop(),
		now:       time.Now,
		window:    DefaultTimestampWindow,
		initialMP: DefaultInitialMP,
	}
	for _, opt := range opts {
		opt(o)
	}

	store := NewStore(o.initialMP)
	store.now = o.now

	selector := verifier.NewDefaultKeySelector(store).IncludeAssociated(o.associatedKeys)
	s := &Server{
		store:    store,
		verifier: verifier.NewDefaultVerifier(selector, verifier.NewSessionlessVerifier()),
		logger:   o.logger,
	}

	timestamps := NewTimestampMiddleware(o.window, o.now)
	timestamps.SetRequired(o.requireTimestamp)

	r := mux.NewRouter()
	r.Use(LoggingMiddleware(o.logger), timestamps.Wrap)
	s.routes(r)
	s.handler = r
	return s
}

func (s *Server) routes(r *mux.Router) {
	r.HandleFunc("/user/create", s.handleCreateUser).Methods(http.MethodPut)
	r.HandleFunc("/user/pubKey/{pubKey}", s.handleGetUserByPublicKey).Methods(http.MethodGet)
	r.HandleFunc("/user/{uuid}", s.handleGetUserByUUID).Methods(http.MethodGet)
	r.HandleFunc("/user/{uuid}", s.handleDeleteUser).Methods(http.MethodDelete)
	r.HandleFunc("/user/{uuid}/grant", s.handleGrant).Methods(http.MethodPost)
	r.HandleFunc("/user/{uuid}/transfer", s.handleTransfer).Methods(http.MethodPost)

	r.HandleFunc("/user/{uuid}/nineum", s.handleGetNineum).Methods(http.MethodGet)
	r.HandleFunc("/user/{uuid}/nineum", s.handleGrantNineum).Methods(http.MethodPut)
	r.HandleFunc("/user/{uuid}/nineum/admin", s.handleGrantAdminNineum).Methods(http.MethodPut)
	r.HandleFunc("/user/{uuid}/nineum/galactic", s.handleGrantGalacticNineum).Methods(http.MethodPut)

	r.HandleFunc("/resolve/{spell}", s.handleResolve).Methods(http.MethodPost)

	r.HandleFunc("/message", s.handlePostMessage).Methods(http.MethodPost)
	r.HandleFunc("/messages/user/{uuid}", s.handleGetMessages).Methods(http.MethodGet)

	r.HandleFunc("/user/{uuid}/associate/signedPrompt", s.handleSignPrompt).Methods(http.MethodPost)
	r.HandleFunc("/user/{uuid}/associate", s.handleAssociate).Methods(http.MethodPost)
	r.HandleFunc("/associated/{associatedUUID}/user/{uuid}", s.handleDeleteKey).Methods(http.MethodDelete)
}

// Store returns the server state
func (s *Server) Store() *Store {
	return s.store
}

// Handler returns the HTTP handler serving every route
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("fount listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Start serves on addr in the background. It returns the base URL of the
// listener and a function that stops it. Use "127.0.0.1:0" for a free port.
func (s *Server) Start(addr string) (string, func(context.Context) error, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("fount server stopped", zap.Error(err))
		}
	}()

	return "http://" + ln.Addr().String() + "/", srv.Shutdown, nil
}
