// Package api serves the worker's admin endpoints: health, Prometheus
// metrics and per-bill index status.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/dharsanguruparan/BillIndex/internal/model"
	"github.com/dharsanguruparan/BillIndex/internal/storage"
)

// BillReader is the document-store lookup the status endpoint needs.
type BillReader interface {
	GetBill(ctx context.Context, billID string) (*model.Bill, error)
}

// BillStatus is the response body of GET /bills/{id}.
type BillStatus struct {
	BillID        string                `json:"bill_id"`
	Session       int                   `json:"session"`
	Indexed       bool                  `json:"indexed"`
	VersionsCount int                   `json:"versions_count"`
	VersionCodes  []string              `json:"version_codes"`
	LastVersion   *model.VersionSummary `json:"last_version,omitempty"`
	LastVersionOn model.Date            `json:"last_version_on"`
	CitationIDs   []string              `json:"citation_ids"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// Server exposes HTTP endpoints for operators.
type Server struct {
	addr            string
	shutdownTimeout time.Duration
	bills           BillReader
	gatherer        prometheus.Gatherer
	log             zerolog.Logger
	server          *http.Server
	once            sync.Once
}

// New constructs a Server.
func New(addr string, shutdownTimeout time.Duration, bills BillReader, gatherer prometheus.Gatherer, log zerolog.Logger) *Server {
	return &Server{
		addr:            addr,
		shutdownTimeout: shutdownTimeout,
		bills:           bills,
		gatherer:        gatherer,
		log:             log.With().Str("component", "api").Logger(),
	}
}

// Handler returns the routed handler wrapped in middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/bills/", s.handleBill)
	return s.loggingMiddleware(mux)
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.once.Do(func() {
		s.server = &http.Server{
			Addr:              s.addr,
			Handler:           s.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
	})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()
	s.log.Info().Str("addr", s.addr).Msg("admin api listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/bills/"), "/")
	if _, err := model.ParseBillID(id); err != nil {
		http.Error(w, "invalid bill id", http.StatusBadRequest)
		return
	}
	bill, err := s.bills.GetBill(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "bill not found", http.StatusNotFound)
			return
		}
		s.log.Error().Err(err).Str("bill_id", id).Msg("load bill")
		http.Error(w, "failed to load bill", http.StatusInternalServerError)
		return
	}
	s.respondJSON(w, http.StatusOK, BillStatus{
		BillID:        bill.BillID,
		Session:       bill.Session,
		Indexed:       bill.Indexed,
		VersionsCount: bill.VersionsCount,
		VersionCodes:  nonNil(bill.VersionCodes),
		LastVersion:   bill.LastVersion,
		LastVersionOn: bill.LastVersionOn,
		CitationIDs:   nonNil(bill.CitationIDs),
		UpdatedAt:     bill.UpdatedAt,
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error().Err(err).Msg("encode response")
	}
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Dur("took", time.Since(start)).Msg("request")
	})
}
