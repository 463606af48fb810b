package api

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/erazemk/narocila/internal/logging"
	"github.com/erazemk/narocila/internal/metrics"
	"github.com/erazemk/narocila/internal/model"
	"github.com/erazemk/narocila/internal/store"
)

// ItemsHandler handles item CRUD endpoints.
type ItemsHandler struct {
	Items store.ItemRepository
}

// itemRequest is the body of both create and update: updates replace every field.
type itemRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"required"`
	Stock       *int     `json:"stock" validate:"required"`
}

func (req itemRequest) input() model.ItemInput {
	return model.ItemInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Stock:       *req.Stock,
	}
}

// List handles GET /items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := pageParams(w, r)
	if !ok {
		return
	}

	items, err := h.Items.ListItems(r.Context(), limit, offset)
	if err != nil {
		logging.FromContext(r.Context()).WithError(err).Error("failed to list items")
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	item, err := h.Items.CreateItem(r.Context(), req.input())
	if err != nil {
		logging.FromContext(r.Context()).WithError(err).Error("failed to create item")
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	metrics.SetItemStock(item.ID, item.Stock)
	logging.FromContext(r.Context()).WithFields(log.Fields{"item_id": item.ID, "name": item.Name}).Info("item created")
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.Items.GetItem(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		logging.FromContext(r.Context()).WithError(err).Error("failed to get item")
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req itemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	item, err := h.Items.UpdateItem(r.Context(), id, req.input())
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		logging.FromContext(r.Context()).WithError(err).Error("failed to update item")
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	metrics.SetItemStock(item.ID, item.Stock)
	logging.FromContext(r.Context()).WithField("item_id", item.ID).Info("item updated")
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	err = h.Items.DeleteItem(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		logging.FromContext(r.Context()).WithError(err).Error("failed to delete item")
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	metrics.ForgetItem(id)
	logging.FromContext(r.Context()).WithField("item_id", id).Info("item deleted")
	w.WriteHeader(http.StatusNoContent)
}
