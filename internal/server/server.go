// Package server exposes the plan API over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/pablasso/smartplan/internal/planner"
)

// Options configures the HTTP handler.
type Options struct {
	CORSOrigins []string
	Logger      *log.Logger
}

// New returns the API handler wrapped in the middleware stack.
func New(svc *planner.Service, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	h := &handler{svc: svc, logger: logger}

	router := mux.NewRouter()
	router.Use(withTracing)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	registerRoutes(router, h)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return Chain(router,
		WithRequestID,
		WithRecover(logger),
		WithAccessLog(logger),
		WithCORS(origins),
	)
}

func registerRoutes(router *mux.Router, h *handler) {
	router.HandleFunc("/", h.root).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/plans", h.listPlans).Methods(http.MethodGet)
	api.HandleFunc("/plan", h.createPlan).Methods(http.MethodPost)
	api.HandleFunc("/plan/{id}", h.getPlan).Methods(http.MethodGet)
	api.HandleFunc("/plan/{id}", h.deletePlan).Methods(http.MethodDelete)
	api.HandleFunc("/plan/{id}/progress", h.progress).Methods(http.MethodGet)
	api.HandleFunc("/plan/{id}/export/csv", h.exportCSV).Methods(http.MethodGet)
	api.HandleFunc("/task/{planId}/{taskNumber}/status", h.updateTaskStatus).Methods(http.MethodPatch)
}

// Run serves h on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, h http.Handler, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("smartplan API listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Printf("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
