package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/salonloop/scheduling/internal/lock"
	"github.com/salonloop/scheduling/internal/model"
)

// Locker is the slot lock surface the handler needs.
type Locker interface {
	Acquire(ctx context.Context, req lock.AcquireRequest) (model.SlotLock, error)
	Release(ctx context.Context, orgID, sessionID string) error
}

type LockHandler struct {
	locks  Locker
	logger *slog.Logger
}

func NewLockHandler(locks Locker, logger *slog.Logger) *LockHandler {
	return &LockHandler{locks: locks, logger: logger}
}

type acquireLockRequest struct {
	OrganizationID string   `json:"org_id"`
	StaffID        string   `json:"staff_id"`
	Date           string   `json:"date"`
	StartTime      string   `json:"start_time"`
	ServiceIDs     []string `json:"service_ids"`
	SessionID      string   `json:"session_id"`
}

type acquireLockResponse struct {
	LockID    string `json:"lock_id"`
	StaffID   string `json:"staff_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	ExpiresAt string `json:"expires_at"`
}

// Handle dispatches on method: POST acquires (or replaces) the session's
// lock, DELETE releases it.
func (h *LockHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.Acquire(w, r)
	case http.MethodDelete:
		h.Release(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *LockHandler) Acquire(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req acquireLockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	date, dateErr := parseDate(req.Date)
	start, startErr := model.ParseMinute(req.StartTime)
	if req.OrganizationID == "" || dateErr != nil || startErr != nil {
		http.Error(w, "org_id, date and start_time required", http.StatusBadRequest)
		return
	}

	l, err := h.locks.Acquire(r.Context(), lock.AcquireRequest{
		OrganizationID: strings.TrimSpace(req.OrganizationID),
		StaffID:        strings.TrimSpace(req.StaffID),
		Date:           date,
		StartMinute:    start,
		ServiceIDs:     req.ServiceIDs,
		SessionID:      strings.TrimSpace(req.SessionID),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, acquireLockResponse{
		LockID:    l.ID,
		StaffID:   l.StaffID,
		Date:      l.Date.Format("2006-01-02"),
		StartTime: model.FormatMinute(l.StartMinute),
		EndTime:   model.FormatMinute(l.EndMinute),
		ExpiresAt: l.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

type releaseLockRequest struct {
	OrganizationID string `json:"org_id"`
	SessionID      string `json:"session_id"`
}

func (h *LockHandler) Release(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req releaseLockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if req.OrganizationID == "" || req.SessionID == "" {
		http.Error(w, "org_id and session_id required", http.StatusBadRequest)
		return
	}

	if err := h.locks.Release(r.Context(), req.OrganizationID, req.SessionID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "released"})
}
