// Package handlers exposes the scheduling core over HTTP. Handlers decode
// and validate requests, delegate to the services, and map the typed
// scheduling errors to statuses.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/salonloop/scheduling/internal/model"
	"github.com/salonloop/scheduling/internal/schederr"
	"github.com/salonloop/scheduling/internal/storage"
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var serr *schederr.Error
	if !errors.As(err, &serr) {
		// Unmatched row lookups (an unknown org id, say) surface as plain
		// not-found storage errors.
		if storage.IsNotFound(err) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	status := http.StatusInternalServerError
	switch serr {
	case schederr.ErrValidation:
		status = http.StatusBadRequest
	case schederr.ErrAppointmentNotFound, schederr.ErrInvalidConfirmationOrPhone:
		status = http.StatusNotFound
	case schederr.ErrAvailabilityConflict, schederr.ErrInvalidStatusTransition:
		status = http.StatusConflict
	case schederr.ErrOutsideModificationWindow, schederr.ErrInvalidStaffForServices:
		status = http.StatusUnprocessableEntity
	}

	var body errorBody
	body.Error.Code = serr.Code
	body.Error.Message = serr.Message
	writeJSON(w, status, body)
}

func orgID(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get("X-Organization-Id")); v != "" {
		return v
	}
	return strings.TrimSpace(r.URL.Query().Get("org_id"))
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(raw))
}

func splitServiceIDs(raw string) []string {
	var out []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

type serviceLineView struct {
	ServiceID       string `json:"service_id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	PriceCents      int64  `json:"price_cents"`
}

type appointmentView struct {
	AppointmentID    string            `json:"appointment_id"`
	StaffID          string            `json:"staff_id"`
	Date             string            `json:"date"`
	StartTime        string            `json:"start_time"`
	EndTime          string            `json:"end_time"`
	Status           string            `json:"status"`
	Services         []serviceLineView `json:"services"`
	ConfirmationCode string            `json:"confirmation_code"`
	TotalCents       int64             `json:"total_cents"`
	CancelledAt      string            `json:"cancelled_at,omitempty"`
	CancelReason     string            `json:"cancel_reason,omitempty"`
	CancelledBy      string            `json:"cancelled_by,omitempty"`
}

func appointmentToView(a model.Appointment) appointmentView {
	v := appointmentView{
		AppointmentID:    a.ID,
		StaffID:          a.StaffID,
		Date:             a.Date.Format("2006-01-02"),
		StartTime:        model.FormatMinute(a.StartMinute),
		EndTime:          model.FormatMinute(a.EndMinute),
		Status:           string(a.Status),
		Services:         make([]serviceLineView, 0, len(a.Services)),
		ConfirmationCode: a.ConfirmationCode,
		TotalCents:       a.TotalCents,
		CancelReason:     a.CancelReason,
		CancelledBy:      a.CancelledBy,
	}
	for _, l := range a.Services {
		v.Services = append(v.Services, serviceLineView(l))
	}
	if a.CancelledAt != nil {
		v.CancelledAt = a.CancelledAt.UTC().Format(time.RFC3339)
	}
	return v
}
