package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/salonloop/scheduling/internal/booking"
	"github.com/salonloop/scheduling/internal/model"
)

// Booker is the customer-facing booking surface.
type Booker interface {
	Book(ctx context.Context, req booking.BookRequest) (model.Appointment, error)
	LookupByCode(ctx context.Context, orgID, code, phone string) (model.Appointment, error)
	CancelByCode(ctx context.Context, orgID, code, phone, reason string) error
	RescheduleByCode(ctx context.Context, req booking.CustomerRescheduleRequest) (model.Appointment, error)
}

type BookingHandler struct {
	svc    Booker
	logger *slog.Logger
}

func NewBookingHandler(svc Booker, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{svc: svc, logger: logger}
}

type bookRequest struct {
	OrganizationID string   `json:"org_id"`
	StaffID        string   `json:"staff_id"`
	Date           string   `json:"date"`
	StartTime      string   `json:"start_time"`
	ServiceIDs     []string `json:"service_ids"`
	SessionID      string   `json:"session_id"`
	CustomerName   string   `json:"customer_name"`
	CustomerPhone  string   `json:"customer_phone"`
}

func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req bookRequest
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

	appt, err := h.svc.Book(r.Context(), booking.BookRequest{
		OrganizationID: strings.TrimSpace(req.OrganizationID),
		StaffID:        strings.TrimSpace(req.StaffID),
		Date:           date,
		StartMinute:    start,
		ServiceIDs:     req.ServiceIDs,
		SessionID:      strings.TrimSpace(req.SessionID),
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, appointmentToView(appt))
}

func (h *BookingHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	org := orgID(r)
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	phone := strings.TrimSpace(r.URL.Query().Get("phone"))
	if org == "" || code == "" || phone == "" {
		http.Error(w, "org_id, code and phone required", http.StatusBadRequest)
		return
	}

	appt, err := h.svc.LookupByCode(r.Context(), org, code, phone)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appointmentToView(appt))
}

type customerCancelRequest struct {
	OrganizationID string `json:"org_id"`
	Code           string `json:"code"`
	Phone          string `json:"phone"`
	Reason         string `json:"reason"`
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req customerCancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if req.OrganizationID == "" || req.Code == "" || req.Phone == "" {
		http.Error(w, "org_id, code and phone required", http.StatusBadRequest)
		return
	}

	if err := h.svc.CancelByCode(r.Context(), req.OrganizationID, req.Code, req.Phone, strings.TrimSpace(req.Reason)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

type customerRescheduleRequest struct {
	OrganizationID string `json:"org_id"`
	Code           string `json:"code"`
	Phone          string `json:"phone"`
	StaffID        string `json:"staff_id"`
	Date           string `json:"date"`
	StartTime      string `json:"start_time"`
	SessionID      string `json:"session_id"`
}

func (h *BookingHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req customerRescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	date, dateErr := parseDate(req.Date)
	start, startErr := model.ParseMinute(req.StartTime)
	if req.OrganizationID == "" || req.Code == "" || req.Phone == "" || dateErr != nil || startErr != nil {
		http.Error(w, "org_id, code, phone, date and start_time required", http.StatusBadRequest)
		return
	}

	appt, err := h.svc.RescheduleByCode(r.Context(), booking.CustomerRescheduleRequest{
		OrganizationID:   strings.TrimSpace(req.OrganizationID),
		ConfirmationCode: req.Code,
		Phone:            req.Phone,
		StaffID:          strings.TrimSpace(req.StaffID),
		Date:             date,
		StartMinute:      start,
		SessionID:        strings.TrimSpace(req.SessionID),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appointmentToView(appt))
}
