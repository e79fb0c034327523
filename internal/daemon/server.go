// Copyright (c) 2026 dotandev
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package daemon

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dotandev/tranche/internal/contract"
	"github.com/dotandev/tranche/internal/logger"
	"github.com/dotandev/tranche/internal/session"
	"github.com/dotandev/tranche/internal/tranche"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
)

// Backend is the tranche facade the daemon exposes. *tranche.Service
// satisfies it.
type Backend interface {
	State() session.State
	Watch(fn func(session.State)) (cancel func())

	Connect(ctx context.Context) error
	Disconnect() error
	RefreshBalance(ctx context.Context) (string, error)

	Initialize(ctx context.Context, token, pool, minSenior, minJunior string) (string, error)
	Subscribe(ctx context.Context, kind contract.TrancheKind, amt string) (string, error)
	Redeem(ctx context.Context, kind contract.TrancheKind, amt string) (string, error)
	ApproveSubscription(ctx context.Context, user string, kind contract.TrancheKind, amt string) (string, error)
	CreateTrancheTokens(ctx context.Context, kind contract.TrancheKind, amt string) (string, error)
	InvestInTranche(ctx context.Context, kind contract.TrancheKind, amt string) (string, error)
	Supply(ctx context.Context, asset, amt string) (string, error)
	Withdraw(ctx context.Context, asset, amt string) (string, error)
	Borrow(ctx context.Context, asset, amt string) (string, error)
	Repay(ctx context.Context, asset, amt string) (string, error)

	GetUserShare(ctx context.Context, kind contract.TrancheKind) (string, error)
	GetTotals(ctx context.Context) (tranche.Totals, error)
	GetMinimums(ctx context.Context) (tranche.Totals, error)
	IsPaused(ctx context.Context) (bool, error)
	GetTokenBalance(ctx context.Context, token string) (string, error)
	GetPoolPosition(ctx context.Context) (tranche.Position, error)
}

var _ Backend = (*tranche.Service)(nil)

// Config holds daemon configuration
type Config struct {
	Addr      string
	AuthToken string
}

// Server serves the JSON-RPC API, the session endpoints and the SSE stream.
type Server struct {
	backend   Backend
	authToken string
	addr      string
	metrics   http.Handler
	streams   *StreamManager
}

type Option func(*Server)

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

func NewServer(backend Backend, config Config, opts ...Option) *Server {
	s := &Server{
		backend:   backend,
		authToken: config.AuthToken,
		addr:      config.Addr,
		streams:   NewStreamManager(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// authenticate validates the authorization token
func (s *Server) authenticate(r *http.Request) bool {
	if s.authToken == "" {
		return true
	}

	auth := r.Header.Get("Authorization")
	if auth == "" {
		return false
	}
	token := strings.TrimPrefix(auth, "Bearer ")
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) == 1
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticate(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Handler builds the HTTP routes.
func (s *Server) Handler() (http.Handler, error) {
	rpcServer := rpc.NewServer()
	rpcServer.RegisterCodec(json2.NewCodec(), "application/json")
	rpcServer.RegisterCodec(json2.NewCodec(), "application/json;charset=UTF-8")
	if err := rpcServer.RegisterService(&TrancheService{backend: s.backend}, "Tranche"); err != nil {
		return nil, fmt.Errorf("failed to register service: %w", err)
	}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Method(http.MethodPost, "/rpc", rpcServer)
		r.Get("/session", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, s.backend.State())
		})
		r.Get("/events", s.streamEvents)
	})
	return r, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Logger.Error("Response encode failed", "error", err)
	}
}

// Start serves until ctx is cancelled. ready, if non-nil, receives the
// bound address once the listener is open.
func (s *Server) Start(ctx context.Context, ready chan<- string) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	cancelWatch := s.backend.Watch(s.broadcastState)
	defer cancelWatch()

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	logger.Logger.Info("Starting JSON-RPC server", "addr", ln.Addr().String())
	if ready != nil {
		ready <- ln.Addr().String()
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Logger.Error("Server failed", "error", err)
			return err
		}
	}

	logger.Logger.Info("Shutting down JSON-RPC server")
	s.streams.CloseAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
