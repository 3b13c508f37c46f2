package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/salonloop/scheduling/internal/booking"
	"github.com/salonloop/scheduling/internal/model"
)

// Scheduler is the staff-facing appointment surface. Authentication sits
// in front of these routes at the gateway.
type Scheduler interface {
	Reschedule(ctx context.Context, req booking.RescheduleRequest) (model.Appointment, error)
	Cancel(ctx context.Context, req booking.CancelRequest) error
	UpdateStatus(ctx context.Context, orgID, apptID string, to model.Status) (model.Appointment, error)
	Get(ctx context.Context, orgID, apptID string) (model.Appointment, error)
	ListByDate(ctx context.Context, orgID string, date time.Time, staffID string, status model.Status) ([]model.Appointment, error)
}

type AdminHandler struct {
	svc    Scheduler
	logger *slog.Logger
}

func NewAdminHandler(svc Scheduler, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, logger: logger}
}

type adminRescheduleRequest struct {
	OrganizationID string `json:"org_id"`
	AppointmentID  string `json:"appointment_id"`
	StaffID        string `json:"staff_id"`
	Date           string `json:"date"`
	StartTime      string `json:"start_time"`
}

func (h *AdminHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req adminRescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	date, dateErr := parseDate(req.Date)
	start, startErr := model.ParseMinute(req.StartTime)
	if req.OrganizationID == "" || req.AppointmentID == "" || dateErr != nil || startErr != nil {
		http.Error(w, "org_id, appointment_id, date and start_time required", http.StatusBadRequest)
		return
	}

	appt, err := h.svc.Reschedule(r.Context(), booking.RescheduleRequest{
		OrganizationID: strings.TrimSpace(req.OrganizationID),
		AppointmentID:  strings.TrimSpace(req.AppointmentID),
		StaffID:        strings.TrimSpace(req.StaffID),
		Date:           date,
		StartMinute:    start,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appointmentToView(appt))
}

type adminCancelRequest struct {
	OrganizationID string `json:"org_id"`
	AppointmentID  string `json:"appointment_id"`
	Reason         string `json:"reason"`
}

func (h *AdminHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req adminCancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if req.OrganizationID == "" || req.AppointmentID == "" {
		http.Error(w, "org_id and appointment_id required", http.StatusBadRequest)
		return
	}

	err := h.svc.Cancel(r.Context(), booking.CancelRequest{
		OrganizationID: strings.TrimSpace(req.OrganizationID),
		AppointmentID:  strings.TrimSpace(req.AppointmentID),
		Reason:         strings.TrimSpace(req.Reason),
		By:             "staff",
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

type statusRequest struct {
	OrganizationID string `json:"org_id"`
	AppointmentID  string `json:"appointment_id"`
	Status         string `json:"status"`
}

func (h *AdminHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if req.OrganizationID == "" || req.AppointmentID == "" || req.Status == "" {
		http.Error(w, "org_id, appointment_id and status required", http.StatusBadRequest)
		return
	}

	appt, err := h.svc.UpdateStatus(r.Context(), strings.TrimSpace(req.OrganizationID),
		strings.TrimSpace(req.AppointmentID), model.Status(strings.TrimSpace(req.Status)))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appointmentToView(appt))
}

func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	org := orgID(r)
	if org == "" {
		http.Error(w, "org_id required", http.StatusBadRequest)
		return
	}

	if id := strings.TrimSpace(r.URL.Query().Get("appointment_id")); id != "" {
		appt, err := h.svc.Get(r.Context(), org, id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appointmentToView(appt))
		return
	}

	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, "date required", http.StatusBadRequest)
		return
	}
	appts, err := h.svc.ListByDate(r.Context(), org, date,
		strings.TrimSpace(r.URL.Query().Get("staff_id")),
		model.Status(strings.TrimSpace(r.URL.Query().Get("status"))))
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]appointmentView, 0, len(appts))
	for _, a := range appts {
		items = append(items, appointmentToView(a))
	}
	writeJSON(w, http.StatusOK, map[string][]appointmentView{"appointments": items})
}
