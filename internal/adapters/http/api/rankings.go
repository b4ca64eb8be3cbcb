// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/clipscore/internal/domain/types"
	"github.com/okian/clipscore/pkg/metrics"
)

// RankingsDependencies defines the interface for leaderboard operations.
type RankingsDependencies interface {
	Rankings(ctx context.Context, window types.Window, limit int) ([]types.RankedEntry, error)
}

// RankingsHandler handles leaderboard requests.
type RankingsHandler struct {
	deps     RankingsDependencies
	maxLimit int
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(deps RankingsDependencies, maxLimit int) *RankingsHandler {
	return &RankingsHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// rankingsResponse mirrors the GET /rankings response body.
type rankingsResponse struct {
	Period  string              `json:"period"`
	Entries []types.RankedEntry `json:"entries"`
}

// HandleGetRankings handles GET /rankings?period=week|month|allTime&limit=N.
// Period defaults to month; limit defaults to the configured maximum.
func (h *RankingsHandler) HandleGetRankings(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rankings"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	window, ok := types.ParseWindow(r.URL.Query().Get("period"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_period", NewKind(op, ErrBadRequest))
		return
	}

	limit := h.maxLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}

	metrics.RecordRankingsRequest(string(window))

	entries, err := h.deps.Rankings(r.Context(), window, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if entries == nil {
		entries = []types.RankedEntry{}
	}
	writeJSON(w, http.StatusOK, rankingsResponse{Period: string(window), Entries: entries})
}
