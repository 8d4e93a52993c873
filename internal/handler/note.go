package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/auth"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/store"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/websocket"
)

type NoteHandler struct {
	notes  *store.NoteStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewNoteHandler(ns *store.NoteStore, hub *websocket.Hub, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{notes: ns, hub: hub, logger: logger}
}

func (h *NoteHandler) broadcast(familyID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.BroadcastToFamily(familyID, msg)
	}
}

// noteRequest carries plaintext or an encrypted envelope. When Encrypted is
// set the body is opaque ciphertext and Nonce plus WrappedKey must be
// present; the server stores them without inspection.
type noteRequest struct {
	Title      string `json:"title"`
	Body       string `json:"body"`
	Encrypted  bool   `json:"encrypted"`
	Nonce      string `json:"nonce"`
	WrappedKey string `json:"wrapped_key"`
	Priority   string `json:"priority"`
}

func (r *noteRequest) validate() string {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" && !r.Encrypted {
		return "title is required"
	}
	if r.Encrypted && (r.Nonce == "" || r.WrappedKey == "") {
		return "encrypted notes require nonce and wrapped_key"
	}
	if r.Priority == "" {
		r.Priority = "normal"
	}
	switch r.Priority {
	case "low", "normal", "high":
	default:
		return "invalid priority"
	}
	return ""
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		errorJSON(w, http.StatusBadRequest, msg)
		return
	}

	note, err := h.notes.Create(ac.FamilyID, req.Title, req.Body, req.Encrypted, req.Nonce, req.WrappedKey, &ac.UserID, req.Priority)
	if err != nil {
		h.logger.Error("create note", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to create note")
		return
	}

	h.broadcast(ac.FamilyID, websocket.NewMessage("note", "created", note.ID, nil))
	writeJSON(w, http.StatusCreated, note)
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	notes, err := h.notes.ListByFamily(ac.FamilyID)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to list notes")
		return
	}
	if notes == nil {
		notes = []model.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) noteInFamily(w http.ResponseWriter, r *http.Request) (*model.Note, bool) {
	ac, _ := auth.FromContext(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	note, err := h.notes.GetByID(id)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to load note")
		return nil, false
	}
	if note == nil || note.FamilyID != ac.FamilyID {
		errorJSON(w, http.StatusNotFound, "note not found")
		return nil, false
	}
	return note, true
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.noteInFamily(w, r)
	if !ok {
		return
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		errorJSON(w, http.StatusBadRequest, msg)
		return
	}

	note, err := h.notes.Update(existing.ID, req.Title, req.Body, req.Encrypted, req.Nonce, req.WrappedKey, req.Priority)
	if err != nil {
		h.logger.Error("update note", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to update note")
		return
	}

	h.broadcast(existing.FamilyID, websocket.NewMessage("note", "updated", existing.ID, nil))
	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) TogglePinned(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.noteInFamily(w, r)
	if !ok {
		return
	}

	note, err := h.notes.TogglePinned(existing.ID)
	if err != nil {
		h.logger.Error("toggle note pin", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to update note")
		return
	}

	h.broadcast(existing.FamilyID, websocket.NewMessage("note", "pinned", existing.ID, map[string]any{
		"pinned": note.Pinned,
	}))
	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.noteInFamily(w, r)
	if !ok {
		return
	}

	if err := h.notes.Delete(existing.ID); err != nil {
		h.logger.Error("delete note", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to delete note")
		return
	}

	h.broadcast(existing.FamilyID, websocket.NewMessage("note", "deleted", existing.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}
