// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/clipscore/internal/domain/model"
	"github.com/okian/clipscore/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// CreateSubmission registers a new video submission.
	CreateSubmission(ctx context.Context, videoURL, userID, userName, title string) (model.Submission, error)

	// ListSubmissions returns a user's submissions, newest first, with
	// current metrics attached.
	ListSubmissions(ctx context.Context, userID string) ([]types.SubmissionView, error)

	// OverrideStatus manually forces a submission's lifecycle state.
	OverrideStatus(ctx context.Context, id string, status model.Status) error

	// Rankings returns the leaderboard for a window, capped at limit.
	Rankings(ctx context.Context, window types.Window, limit int) ([]types.RankedEntry, error)

	// RunSync executes one verification plus metrics refresh pass.
	RunSync(ctx context.Context) (types.SyncSummary, error)

	// Stats exposes service counters for the stats endpoint.
	Stats(ctx context.Context) map[string]interface{}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	submissionsHandler *SubmissionsHandler
	rankingsHandler    *RankingsHandler
	syncHandler        *SyncHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, syncSecret string, maxLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		submissionsHandler: NewSubmissionsHandler(deps),
		rankingsHandler:    NewRankingsHandler(deps, maxLimit),
		syncHandler:        NewSyncHandler(deps, syncSecret),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/submissions", MetricsMiddleware(s.submissionsHandler.HandleSubmissions, "submissions"))
	mux.HandleFunc("/submissions/", MetricsMiddleware(s.submissionsHandler.HandleOverrideStatus, "submission_status"))
	mux.HandleFunc("/rankings", MetricsMiddleware(s.rankingsHandler.HandleGetRankings, "rankings"))
	mux.HandleFunc("/sync", MetricsMiddleware(s.syncHandler.HandleSync, "sync"))
}

// submissionView converts a domain submission to its read shape.
func submissionView(sub model.Submission) types.SubmissionView {
	return types.SubmissionView{
		ID:                 sub.ID,
		VideoID:            sub.VideoID,
		UserID:             sub.UserID,
		UserName:           sub.UserName,
		Title:              sub.Title,
		Status:             string(sub.Status),
		VerificationStatus: string(sub.VerificationStatus),
		CreatedAt:          sub.CreatedAt,
	}
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
