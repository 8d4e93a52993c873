package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/auth"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/grocery"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/notify"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/store"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/websocket"
)

type GroceryHandler struct {
	groceries *store.GroceryStore
	users     *store.UserStore
	notifier  *notify.Service
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewGroceryHandler(gs *store.GroceryStore, us *store.UserStore, notifier *notify.Service, hub *websocket.Hub, logger *slog.Logger) *GroceryHandler {
	return &GroceryHandler{groceries: gs, users: us, notifier: notifier, hub: hub, logger: logger}
}

func (h *GroceryHandler) broadcast(familyID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.BroadcastToFamily(familyID, msg)
	}
}

func (h *GroceryHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req struct {
		Name      string `json:"name"`
		SortOrder int    `json:"sort_order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		errorJSON(w, http.StatusBadRequest, "name is required")
		return
	}

	list, err := h.groceries.CreateList(ac.FamilyID, req.Name, req.SortOrder)
	if err != nil {
		h.logger.Error("create grocery list", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to create list")
		return
	}

	h.broadcast(ac.FamilyID, websocket.NewMessage("grocery_list", "created", list.ID, nil))
	writeJSON(w, http.StatusCreated, list)
}

func (h *GroceryHandler) Lists(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	lists, err := h.groceries.ListsByFamily(ac.FamilyID)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to list grocery lists")
		return
	}
	if lists == nil {
		lists = []model.GroceryList{}
	}
	writeJSON(w, http.StatusOK, lists)
}

// listInFamily loads the {list_id} list and verifies family ownership.
func (h *GroceryHandler) listInFamily(w http.ResponseWriter, r *http.Request) (*model.GroceryList, bool) {
	ac, _ := auth.FromContext(r.Context())
	listID, err := parsePathID(r, "list_id")
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid list_id")
		return nil, false
	}
	list, err := h.groceries.GetListByID(listID)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to load list")
		return nil, false
	}
	if list == nil || list.FamilyID != ac.FamilyID {
		errorJSON(w, http.StatusNotFound, "list not found")
		return nil, false
	}
	return list, true
}

func (h *GroceryHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	list, ok := h.listInFamily(w, r)
	if !ok {
		return
	}

	if err := h.groceries.DeleteList(list.ID); err != nil {
		h.logger.Error("delete grocery list", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to delete list")
		return
	}

	h.broadcast(list.FamilyID, websocket.NewMessage("grocery_list", "deleted", list.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

type groceryItemRequest struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
	Notes    string `json:"notes"`
	Category string `json:"category"`
}

// CreateItem adds an item to a list. Items without an explicit category are
// auto-categorized by name.
func (h *GroceryHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	list, ok := h.listInFamily(w, r)
	if !ok {
		return
	}

	var req groceryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		errorJSON(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Category == "" {
		req.Category = grocery.Categorize(req.Name)
	}

	item, err := h.groceries.CreateItem(list.ID, req.Name, req.Quantity, req.Unit, req.Notes, req.Category, &ac.UserID)
	if err != nil {
		h.logger.Error("create grocery item", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	if h.notifier != nil {
		user, _ := h.users.GetByID(ac.UserID)
		name := "Someone"
		if user != nil {
			name = user.Name
		}
		h.notifier.NotifyFamily(ac.FamilyID, ac.UserID, model.NotifGroceryAdded,
			"Grocery list updated",
			fmt.Sprintf("%s added %q to %s", name, item.Name, list.Name))
	}

	h.broadcast(list.FamilyID, websocket.NewMessage("grocery_item", "created", item.ID, map[string]any{
		"list_id": list.ID,
	}))
	writeJSON(w, http.StatusCreated, item)
}

func (h *GroceryHandler) Items(w http.ResponseWriter, r *http.Request) {
	list, ok := h.listInFamily(w, r)
	if !ok {
		return
	}

	items, err := h.groceries.ListItems(list.ID)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.GroceryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// itemInList loads the {id} item and verifies it belongs to the list.
func (h *GroceryHandler) itemInList(w http.ResponseWriter, r *http.Request, list *model.GroceryList) (*model.GroceryItem, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	item, err := h.groceries.GetItemByID(id)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to load item")
		return nil, false
	}
	if item == nil || item.ListID != list.ID {
		errorJSON(w, http.StatusNotFound, "item not found")
		return nil, false
	}
	return item, true
}

func (h *GroceryHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	list, ok := h.listInFamily(w, r)
	if !ok {
		return
	}
	item, ok := h.itemInList(w, r, list)
	if !ok {
		return
	}

	var req groceryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		errorJSON(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Category == "" {
		req.Category = grocery.Categorize(req.Name)
	}

	updated, err := h.groceries.UpdateItem(item.ID, req.Name, req.Quantity, req.Unit, req.Notes, req.Category)
	if err != nil {
		h.logger.Error("update grocery item", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	h.broadcast(list.FamilyID, websocket.NewMessage("grocery_item", "updated", item.ID, map[string]any{
		"list_id": list.ID,
	}))
	writeJSON(w, http.StatusOK, updated)
}

func (h *GroceryHandler) ToggleChecked(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	list, ok := h.listInFamily(w, r)
	if !ok {
		return
	}
	item, ok := h.itemInList(w, r, list)
	if !ok {
		return
	}

	var checkedBy *int64
	if !item.Checked {
		checkedBy = &ac.UserID
	}
	updated, err := h.groceries.SetChecked(item.ID, !item.Checked, checkedBy)
	if err != nil {
		h.logger.Error("toggle grocery item", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	h.broadcast(list.FamilyID, websocket.NewMessage("grocery_item", "checked", item.ID, map[string]any{
		"list_id": list.ID,
		"checked": updated.Checked,
	}))
	writeJSON(w, http.StatusOK, updated)
}

func (h *GroceryHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	list, ok := h.listInFamily(w, r)
	if !ok {
		return
	}
	item, ok := h.itemInList(w, r, list)
	if !ok {
		return
	}

	if err := h.groceries.DeleteItem(item.ID); err != nil {
		h.logger.Error("delete grocery item", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	h.broadcast(list.FamilyID, websocket.NewMessage("grocery_item", "deleted", item.ID, map[string]any{
		"list_id": list.ID,
	}))
	w.WriteHeader(http.StatusNoContent)
}

// ClearChecked removes all checked items from a list.
func (h *GroceryHandler) ClearChecked(w http.ResponseWriter, r *http.Request) {
	list, ok := h.listInFamily(w, r)
	if !ok {
		return
	}

	removed, err := h.groceries.ClearChecked(list.ID)
	if err != nil {
		h.logger.Error("clear checked items", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to clear items")
		return
	}

	h.broadcast(list.FamilyID, websocket.NewMessage("grocery_list", "cleared", list.ID, map[string]any{
		"removed": removed,
	}))
	writeJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}
