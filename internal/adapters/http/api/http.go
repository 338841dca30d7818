// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	engine "github.com/fairwaylabs/fairway/internal/app"
	"github.com/fairwaylabs/fairway/internal/domain/model"
	"github.com/fairwaylabs/fairway/internal/domain/tier"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the engine implementation.
type Dependencies interface {
	Rankings(ctx context.Context, userID string, t tier.Name) ([]model.RankingRecord, error)
	AddCourse(ctx context.Context, userID, courseID string, t tier.Name, req engine.AddRequest) (model.RankingRecord, error)
	ResolveComparison(ctx context.Context, userID, preferredID, otherID string, t tier.Name) ([]model.RankingRecord, error)
	ReconcileMissing(ctx context.Context, userID string, t tier.Name) ([]model.RankingRecord, error)
}

// Server wires HTTP routes for the ranking API.
type Server struct {
	healthHandler      *HealthHandler
	rankingsHandler    *RankingsHandler
	comparisonsHandler *ComparisonsHandler
	reconcileHandler   *ReconcileHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, maxLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		rankingsHandler:    NewRankingsHandler(deps, maxLimit),
		comparisonsHandler: NewComparisonsHandler(deps),
		reconcileHandler:   NewReconcileHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/rankings", MetricsMiddleware(s.rankingsHandler.Handle, "rankings"))
	mux.HandleFunc("/comparisons", MetricsMiddleware(s.comparisonsHandler.HandlePost, "comparisons"))
	mux.HandleFunc("/reconcile", MetricsMiddleware(s.reconcileHandler.HandlePost, "reconcile"))
}

// recordResponse mirrors the read shape returned by ranking queries.
type recordResponse struct {
	CourseID        string     `json:"course_id"`
	Tier            string     `json:"tier"`
	Position        int        `json:"position"`
	Score           float64    `json:"score"`
	ComparisonCount int        `json:"comparison_count"`
	LastComparedAt  *time.Time `json:"last_compared_at,omitempty"`
}

func toResponse(records []model.RankingRecord) []recordResponse {
	out := make([]recordResponse, len(records))
	for i, r := range records {
		out[i] = recordResponse{
			CourseID:        r.CourseID,
			Tier:            string(r.Tier),
			Position:        r.Position,
			Score:           r.Score,
			ComparisonCount: r.ComparisonCount,
			LastComparedAt:  r.LastComparedAt,
		}
	}
	return out
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
