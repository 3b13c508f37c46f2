package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/salonloop/scheduling/internal/availability"
	"github.com/salonloop/scheduling/internal/model"
)

// SlotLister is the availability surface the handler needs.
type SlotLister interface {
	ListSlots(ctx context.Context, q availability.Query) ([]availability.Slot, error)
	AvailableDates(ctx context.Context, q availability.RangeQuery) ([]availability.DateSummary, error)
}

type AvailabilityHandler struct {
	computer SlotLister
	logger   *slog.Logger
}

func NewAvailabilityHandler(computer SlotLister, logger *slog.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{computer: computer, logger: logger}
}

type slotItem struct {
	StartTime         string   `json:"start_time"`
	EndTime           string   `json:"end_time"`
	StaffID           string   `json:"staff_id,omitempty"`
	CandidateStaffIDs []string `json:"candidate_staff_ids,omitempty"`
}

type slotsResponse struct {
	Date  string     `json:"date"`
	Slots []slotItem `json:"slots"`
}

func (h *AvailabilityHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	org := orgID(r)
	date, err := parseDate(r.URL.Query().Get("date"))
	serviceIDs := splitServiceIDs(r.URL.Query().Get("service_ids"))
	if org == "" || err != nil || len(serviceIDs) == 0 {
		http.Error(w, "org_id, date and service_ids required", http.StatusBadRequest)
		return
	}

	slots, err := h.computer.ListSlots(r.Context(), availability.Query{
		OrganizationID: org,
		Date:           date,
		ServiceIDs:     serviceIDs,
		StaffID:        strings.TrimSpace(r.URL.Query().Get("staff_id")),
		SessionID:      strings.TrimSpace(r.URL.Query().Get("session_id")),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := slotsResponse{Date: date.Format("2006-01-02"), Slots: make([]slotItem, 0, len(slots))}
	for _, s := range slots {
		resp.Slots = append(resp.Slots, slotItem{
			StartTime:         model.FormatMinute(s.StartMinute),
			EndTime:           model.FormatMinute(s.EndMinute),
			StaffID:           s.StaffID,
			CandidateStaffIDs: s.CandidateStaffIDs,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type dateItem struct {
	Date            string `json:"date"`
	HasAvailability bool   `json:"has_availability"`
	SlotCount       int    `json:"slot_count"`
}

func (h *AvailabilityHandler) Dates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	org := orgID(r)
	from, fromErr := parseDate(r.URL.Query().Get("from"))
	to, toErr := parseDate(r.URL.Query().Get("to"))
	serviceIDs := splitServiceIDs(r.URL.Query().Get("service_ids"))
	if org == "" || fromErr != nil || toErr != nil || len(serviceIDs) == 0 {
		http.Error(w, "org_id, from, to and service_ids required", http.StatusBadRequest)
		return
	}

	summaries, err := h.computer.AvailableDates(r.Context(), availability.RangeQuery{
		OrganizationID: org,
		From:           from,
		To:             to,
		ServiceIDs:     serviceIDs,
		StaffID:        strings.TrimSpace(r.URL.Query().Get("staff_id")),
		SessionID:      strings.TrimSpace(r.URL.Query().Get("session_id")),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]dateItem, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, dateItem{
			Date:            s.Date.Format("2006-01-02"),
			HasAvailability: s.HasAvailability,
			SlotCount:       s.SlotCount,
		})
	}
	writeJSON(w, http.StatusOK, map[string][]dateItem{"dates": items})
}
