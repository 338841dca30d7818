// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	engine "github.com/fairwaylabs/fairway/internal/app"
	"github.com/fairwaylabs/fairway/internal/domain/tier"
)

// ComparisonsHandler handles resolved pairwise comparison outcomes.
type ComparisonsHandler struct {
	deps Dependencies
}

// NewComparisonsHandler creates a new comparisons handler.
func NewComparisonsHandler(deps Dependencies) *ComparisonsHandler {
	return &ComparisonsHandler{deps: deps}
}

// comparisonRequest mirrors the POST /comparisons body.
type comparisonRequest struct {
	UserID      string `json:"user_id"`
	PreferredID string `json:"preferred_id"`
	OtherID     string `json:"other_id"`
	Tier        string `json:"tier"`
}

func (c comparisonRequest) validate() error {
	switch {
	case strings.TrimSpace(c.UserID) == "":
		return errors.New("missing user_id")
	case strings.TrimSpace(c.PreferredID) == "":
		return errors.New("missing preferred_id")
	case strings.TrimSpace(c.OtherID) == "":
		return errors.New("missing other_id")
	case c.PreferredID == c.OtherID:
		return errors.New("preferred_id and other_id must differ")
	case strings.TrimSpace(c.Tier) == "":
		return errors.New("missing tier")
	}
	return nil
}

// HandlePost handles POST /comparisons requests.
func (h *ComparisonsHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req comparisonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid JSON body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	records, err := h.deps.ResolveComparison(r.Context(), req.UserID, req.PreferredID, req.OtherID, tier.Name(req.Tier))
	if err != nil {
		switch {
		case errors.Is(err, tier.ErrUnknownTier):
			writeError(w, http.StatusBadRequest, "unknown_tier", err)
		case errors.Is(err, engine.ErrCourseNotRanked):
			writeError(w, http.StatusNotFound, "not_ranked", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, toResponse(records))
}

// ReconcileHandler handles reconciliation of missing ranking records.
type ReconcileHandler struct {
	deps Dependencies
}

// NewReconcileHandler creates a new reconcile handler.
func NewReconcileHandler(deps Dependencies) *ReconcileHandler {
	return &ReconcileHandler{deps: deps}
}

// reconcileRequest mirrors the POST /reconcile body.
type reconcileRequest struct {
	UserID string `json:"user_id"`
	Tier   string `json:"tier"`
}

// HandlePost handles POST /reconcile requests.
func (h *ReconcileHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Tier) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing user_id or tier"))
		return
	}

	records, err := h.deps.ReconcileMissing(r.Context(), req.UserID, tier.Name(req.Tier))
	if err != nil {
		switch {
		case errors.Is(err, tier.ErrUnknownTier):
			writeError(w, http.StatusBadRequest, "unknown_tier", err)
		case errors.Is(err, engine.ErrNoReviewsSource):
			writeError(w, http.StatusServiceUnavailable, "no_reviews_source", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, toResponse(records))
}
