// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	engine "github.com/fairwaylabs/fairway/internal/app"
	"github.com/fairwaylabs/fairway/internal/domain/model"
	"github.com/fairwaylabs/fairway/internal/domain/tier"
)

// RankingsHandler handles ranking list reads and new ranked courses.
type RankingsHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(deps Dependencies, maxLimit int) *RankingsHandler {
	return &RankingsHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// Handle dispatches GET /rankings?user_id=&tier= and POST /rankings.
func (h *RankingsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodPost:
		h.handlePost(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *RankingsHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	tierName := tier.Name(strings.TrimSpace(r.URL.Query().Get("tier")))
	if userID == "" || tierName == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing user_id or tier"))
		return
	}

	records, err := h.deps.Rankings(r.Context(), userID, tierName)
	if err != nil {
		if errors.Is(err, tier.ErrUnknownTier) {
			writeError(w, http.StatusBadRequest, "unknown_tier", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if len(records) > h.maxLimit {
		records = records[:h.maxLimit]
	}
	writeJSON(w, http.StatusOK, toResponse(records))
}

// addCourseRequest mirrors the POST /rankings body.
type addCourseRequest struct {
	UserID      string `json:"user_id"`
	CourseID    string `json:"course_id"`
	Tier        string `json:"tier"`
	Position    int    `json:"position,omitempty"`
	Comparisons []struct {
		PreferredID string `json:"preferred_id"`
		OtherID     string `json:"other_id"`
	} `json:"comparisons,omitempty"`
}

func (a addCourseRequest) validate() error {
	switch {
	case strings.TrimSpace(a.UserID) == "":
		return errors.New("missing user_id")
	case strings.TrimSpace(a.CourseID) == "":
		return errors.New("missing course_id")
	case strings.TrimSpace(a.Tier) == "":
		return errors.New("missing tier")
	case a.Position < 0:
		return errors.New("position must be positive")
	}
	return nil
}

func (h *RankingsHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	var req addCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid JSON body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	add := engine.AddRequest{Position: req.Position}
	for _, c := range req.Comparisons {
		add.Comparisons = append(add.Comparisons, model.Comparison{
			PreferredID: c.PreferredID,
			OtherID:     c.OtherID,
		})
	}

	record, err := h.deps.AddCourse(r.Context(), req.UserID, req.CourseID, tier.Name(req.Tier), add)
	if err != nil {
		switch {
		case errors.Is(err, tier.ErrUnknownTier):
			writeError(w, http.StatusBadRequest, "unknown_tier", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, toResponse([]model.RankingRecord{record})[0])
}
