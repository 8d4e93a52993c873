package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/auth"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/recurrence"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/store"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/websocket"
)

type CalendarHandler struct {
	events *store.EventStore
	users  *store.UserStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewCalendarHandler(es *store.EventStore, us *store.UserStore, hub *websocket.Hub, logger *slog.Logger) *CalendarHandler {
	return &CalendarHandler{events: es, users: us, hub: hub, logger: logger}
}

func (h *CalendarHandler) broadcast(familyID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.BroadcastToFamily(familyID, msg)
	}
}

type eventRequest struct {
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	AllDay          bool      `json:"all_day"`
	MemberID        *int64    `json:"member_id"`
	Location        string    `json:"location"`
	RecurrenceRule  string    `json:"recurrence_rule"`
	ReminderMinutes *int      `json:"reminder_minutes"`
}

func (h *CalendarHandler) validateRequest(ac auth.AuthContext, req *eventRequest) string {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return "title is required"
	}
	if req.StartTime.IsZero() {
		return "start_time is required"
	}
	if req.EndTime.IsZero() {
		req.EndTime = req.StartTime
	}
	if req.EndTime.Before(req.StartTime) {
		return "end_time must not precede start_time"
	}
	if req.RecurrenceRule != "" {
		if _, err := recurrence.Parse(req.RecurrenceRule); err != nil {
			return "invalid recurrence_rule"
		}
	}
	if req.ReminderMinutes != nil && *req.ReminderMinutes < 0 {
		return "reminder_minutes must not be negative"
	}
	if req.MemberID != nil {
		member, err := h.users.GetByID(*req.MemberID)
		if err != nil || member == nil || member.FamilyID != ac.FamilyID {
			return "member not found"
		}
	}
	return ""
}

func (h *CalendarHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := h.validateRequest(ac, &req); msg != "" {
		errorJSON(w, http.StatusBadRequest, msg)
		return
	}

	event, err := h.events.Create(ac.FamilyID, req.Title, req.Description, req.StartTime, req.EndTime, req.AllDay, req.MemberID, req.Location, req.RecurrenceRule, req.ReminderMinutes)
	if err != nil {
		h.logger.Error("create event", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to create event")
		return
	}

	h.broadcast(ac.FamilyID, websocket.NewMessage("event", "created", event.ID, nil))
	writeJSON(w, http.StatusCreated, event)
}

// occurrenceView is one concrete occurrence of an event within the queried
// range. Recurring events appear once per occurrence.
type occurrenceView struct {
	model.CalendarEvent
	OccurrenceStart time.Time `json:"occurrence_start"`
	OccurrenceEnd   time.Time `json:"occurrence_end"`
}

// List returns the family's event occurrences between ?start= and ?end=,
// defaulting to the next 7 days. Recurrence rules are expanded server-side.
func (h *CalendarHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	now := time.Now().UTC()
	start, err := parseDateParam(r, "start", now)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid start")
		return
	}
	end, err := parseDateParam(r, "end", start.AddDate(0, 0, 7))
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid end")
		return
	}
	if !end.After(start) {
		errorJSON(w, http.StatusBadRequest, "end must follow start")
		return
	}

	events, err := h.events.ListByRange(ac.FamilyID, start, end)
	if err != nil {
		h.logger.Error("list events", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	views := []occurrenceView{}
	for _, ev := range events {
		if ev.RecurrenceRule == "" {
			views = append(views, occurrenceView{
				CalendarEvent:   ev,
				OccurrenceStart: ev.StartTime,
				OccurrenceEnd:   ev.EndTime,
			})
			continue
		}
		rule, err := recurrence.Parse(ev.RecurrenceRule)
		if err != nil {
			h.logger.Warn("skipping event with bad recurrence rule", "event_id", ev.ID, "error", err)
			continue
		}
		for _, occ := range recurrence.Expand(rule, ev.StartTime, ev.EndTime, start, end) {
			views = append(views, occurrenceView{
				CalendarEvent:   ev,
				OccurrenceStart: occ.Start,
				OccurrenceEnd:   occ.End,
			})
		}
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *CalendarHandler) eventInFamily(w http.ResponseWriter, r *http.Request) (*model.CalendarEvent, bool) {
	ac, _ := auth.FromContext(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	event, err := h.events.GetByID(id)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to load event")
		return nil, false
	}
	if event == nil || event.FamilyID != ac.FamilyID {
		errorJSON(w, http.StatusNotFound, "event not found")
		return nil, false
	}
	return event, true
}

func (h *CalendarHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, ok := h.eventInFamily(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *CalendarHandler) Update(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	existing, ok := h.eventInFamily(w, r)
	if !ok {
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := h.validateRequest(ac, &req); msg != "" {
		errorJSON(w, http.StatusBadRequest, msg)
		return
	}

	event, err := h.events.Update(existing.ID, req.Title, req.Description, req.StartTime, req.EndTime, req.AllDay, req.MemberID, req.Location, req.RecurrenceRule, req.ReminderMinutes)
	if err != nil {
		h.logger.Error("update event", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to update event")
		return
	}

	h.broadcast(existing.FamilyID, websocket.NewMessage("event", "updated", existing.ID, nil))
	writeJSON(w, http.StatusOK, event)
}

func (h *CalendarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.eventInFamily(w, r)
	if !ok {
		return
	}

	if err := h.events.Delete(existing.ID); err != nil {
		h.logger.Error("delete event", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to delete event")
		return
	}

	h.broadcast(existing.FamilyID, websocket.NewMessage("event", "deleted", existing.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}
