package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/specialistvlad/pipeprint/internal/blueprint"
	"github.com/specialistvlad/pipeprint/internal/config"
	"github.com/specialistvlad/pipeprint/internal/policy"
)

const maxRequestBody = 1 << 20

// blueprintRequest is the body of POST /v1/blueprints.
type blueprintRequest struct {
	Pipeline    map[string]any      `json:"pipeline"`
	Environment *policy.Environment `json:"environment"`
}

type errorResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

// Router returns the HTTP API:
//
//	GET  /health         liveness probe
//	GET  /v1/schema      blueprint JSON Schema
//	POST /v1/blueprints  build a blueprint; ?format=json|yaml
func (a *App) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(a.requestLogger)

	r.Get("/health", a.healthHandler)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/schema", a.schemaHandler)
		r.Post("/blueprints", a.blueprintHandler)
	})
	return r
}

func (a *App) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		a.logger.Debug("HTTP request served.",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start),
		)
	})
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (a *App) schemaHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/schema+json")
	w.Write(blueprint.Schema())
}

func (a *App) blueprintHandler(w http.ResponseWriter, r *http.Request) {
	format := blueprint.FormatJSON
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := blueprint.ParseFormat(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		format = f
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("cannot read body: %w", err))
		return
	}
	var req blueprintRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.Pipeline == nil {
		writeError(w, http.StatusBadRequest, errors.New("pipeline is required"))
		return
	}

	cfg, err := config.Decode(req.Pipeline)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var env policy.Environment
	if req.Environment != nil {
		env = *req.Environment
	}
	env = mergeEnvironment(env, a.config.Environment)

	_, out, err := a.build(a.withLogger(r.Context()), *cfg, env, format)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	if format == blueprint.FormatYAML {
		w.Header().Set("Content-Type", "application/yaml")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := errorResponse{Error: err.Error()}
	var verr *config.ValidationError
	if errors.As(err, &verr) {
		resp.Error = "configuration validation failed"
		resp.Problems = verr.Problems
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully.
func (a *App) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.config.Addr, err)
	}
	return a.serve(ctx, ln)
}

func (a *App) serve(ctx context.Context, ln net.Listener) error {
	a.httpServer = &http.Server{
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting.", "address", ln.Addr().String())
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a.logger.Info("Shutting down HTTP server...")
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown failed", "error", err)
		return err
	}
	a.logger.Debug("HTTP server shut down gracefully.")
	return nil
}
