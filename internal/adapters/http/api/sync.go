// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/okian/clipscore/internal/domain/types"
)

// SyncDependencies defines the interface for triggering a sync pass.
type SyncDependencies interface {
	RunSync(ctx context.Context) (types.SyncSummary, error)
}

// SyncHandler handles externally triggered sync requests.
type SyncHandler struct {
	deps   SyncDependencies
	secret string
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(deps SyncDependencies, secret string) *SyncHandler {
	return &SyncHandler{deps: deps, secret: secret}
}

// syncResponse mirrors the POST /sync response body.
type syncResponse struct {
	Success bool              `json:"success"`
	Summary types.SyncSummary `json:"summary"`
}

// HandleSync handles POST /sync requests. Callers authenticate with a
// bearer token shared with the external scheduler.
func (h *SyncHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	const op = "api.sync"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	if !h.authorized(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized", NewKind(op, ErrUnauthorized))
		return
	}

	summary, err := h.deps.RunSync(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sync_failed", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, syncResponse{Success: true, Summary: summary})
}

func (h *SyncHandler) authorized(r *http.Request) bool {
	if h.secret == "" {
		return false
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) == 1
}
