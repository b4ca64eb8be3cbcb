// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/clipscore/internal/adapters/repository"
	"github.com/okian/clipscore/internal/domain/model"
	"github.com/okian/clipscore/internal/domain/types"
	"github.com/okian/clipscore/pkg/metrics"
)

// SubmissionDependencies defines the interface for submission operations.
type SubmissionDependencies interface {
	CreateSubmission(ctx context.Context, videoURL, userID, userName, title string) (model.Submission, error)
	ListSubmissions(ctx context.Context, userID string) ([]types.SubmissionView, error)
	OverrideStatus(ctx context.Context, id string, status model.Status) error
}

// SubmissionsHandler handles submission requests.
type SubmissionsHandler struct {
	deps SubmissionDependencies
}

// NewSubmissionsHandler creates a new submissions handler.
func NewSubmissionsHandler(deps SubmissionDependencies) *SubmissionsHandler {
	return &SubmissionsHandler{deps: deps}
}

// submissionRequest mirrors the POST /submissions body.
type submissionRequest struct {
	VideoURL string `json:"video_url"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Title    string `json:"title"`
}

func (s submissionRequest) validate() error {
	switch {
	case strings.TrimSpace(s.VideoURL) == "":
		return errors.New("missing video_url")
	case strings.TrimSpace(s.UserID) == "":
		return errors.New("missing user_id")
	case strings.TrimSpace(s.Title) == "":
		return errors.New("missing title")
	}
	return nil
}

// HandleSubmissions handles POST /submissions and GET /submissions?user=ID.
func (h *SubmissionsHandler) HandleSubmissions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleCreate(w, r)
	case http.MethodGet:
		h.handleList(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *SubmissionsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_submission"

	var req submissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	sub, err := h.deps.CreateSubmission(r.Context(), req.VideoURL, req.UserID, req.UserName, req.Title)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidVideoURL):
			writeError(w, http.StatusBadRequest, "invalid_video_url", Wrap(op, err))
		case errors.Is(err, repository.ErrDuplicateVideo):
			writeError(w, http.StatusConflict, "duplicate_video", Wrap(op, err))
		case errors.Is(err, model.ErrMonthlyLimit):
			writeError(w, http.StatusTooManyRequests, "monthly_limit", Wrap(op, err))
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		}
		return
	}

	metrics.RecordSubmissionCreated()
	writeJSON(w, http.StatusCreated, submissionView(sub))
}

func (h *SubmissionsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_submissions"

	userID := strings.TrimSpace(r.URL.Query().Get("user"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	views, err := h.deps.ListSubmissions(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if views == nil {
		views = []types.SubmissionView{}
	}
	writeJSON(w, http.StatusOK, views)
}

// overrideRequest mirrors the POST /submissions/{id}/status body.
type overrideRequest struct {
	Status string `json:"status"`
}

// HandleOverrideStatus handles POST /submissions/{id}/status requests.
// The override moves a submission to any lifecycle state regardless of
// verification outcome; the recorded verification status is untouched.
func (h *SubmissionsHandler) HandleOverrideStatus(w http.ResponseWriter, r *http.Request) {
	const op = "api.override_status"

	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/submissions/")
	id, action, ok := strings.Cut(rest, "/")
	if !ok || id == "" || action != "status" {
		http.NotFound(w, r)
		return
	}

	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	status := model.Status(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid_status", NewKind(op, ErrBadRequest))
		return
	}

	if err := h.deps.OverrideStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": string(status)})
}
