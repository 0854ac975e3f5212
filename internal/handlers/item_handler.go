package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/merxlabs/merx/internal/common"
	"github.com/merxlabs/merx/internal/interfaces"
	"github.com/merxlabs/merx/internal/models"
	"github.com/merxlabs/merx/internal/services/catalog"
)

// CreateItemRequest is the payload for registering a work item
type CreateItemRequest struct {
	SourceURL  string `json:"source_url" validate:"required,url"`
	SourceKind string `json:"source_kind" validate:"required,oneof=page pdf"`
	Supplier   string `json:"supplier"`
	Category   string `json:"category" validate:"required"`
}

// ItemHandler handles work item API requests
type ItemHandler struct {
	itemStorage interfaces.ItemStorage
	schemas     *catalog.Registry
	validate    *validator.Validate
	logger      arbor.ILogger
}

// NewItemHandler creates a new item handler
func NewItemHandler(itemStorage interfaces.ItemStorage, schemas *catalog.Registry, logger arbor.ILogger) *ItemHandler {
	return &ItemHandler{
		itemStorage: itemStorage,
		schemas:     schemas,
		validate:    validator.New(),
		logger:      logger,
	}
}

// CreateHandler registers a new work item in the backlog
// POST /api/items
func (h *ItemHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid item request: "+err.Error())
		return
	}

	if !h.schemas.Has(req.Category) {
		WriteError(w, http.StatusBadRequest, "Unknown category: "+req.Category)
		return
	}

	now := time.Now()
	item := &models.WorkItem{
		ID:         common.NewItemID(),
		SourceURL:  req.SourceURL,
		SourceKind: models.SourceKind(req.SourceKind),
		Supplier:   req.Supplier,
		Category:   req.Category,
		Status:     models.ItemStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := item.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.itemStorage.SaveItem(r.Context(), item); err != nil {
		h.logger.Error().Err(err).Msg("Failed to save item")
		WriteError(w, http.StatusInternalServerError, "Failed to save item")
		return
	}

	h.logger.Info().
		Str("item_id", item.ID).
		Str("category", item.Category).
		Msg("Work item created")

	WriteJSON(w, http.StatusCreated, item)
}

// ListHandler returns work items, newest first
// GET /api/items?status=pending&category=sinks&limit=50&offset=0
func (h *ItemHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	opts := &interfaces.ItemListOptions{
		Status:   models.ItemStatus(r.URL.Query().Get("status")),
		Category: r.URL.Query().Get("category"),
		Limit:    50,
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			opts.Limit = parsed
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed > 0 {
			opts.Offset = parsed
		}
	}

	items, err := h.itemStorage.ListItems(r.Context(), opts)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list items")
		WriteError(w, http.StatusInternalServerError, "Failed to list items")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

// GetHandler returns one work item, including its enrichment result
// once processed.
// GET /api/items/{id}
func (h *ItemHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	itemID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/items/"), "/")
	if itemID == "" || strings.Contains(itemID, "/") {
		WriteError(w, http.StatusBadRequest, "Item ID is required")
		return
	}

	item, err := h.itemStorage.GetItem(r.Context(), itemID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Item not found: "+itemID)
			return
		}
		h.logger.Error().Err(err).Str("item_id", itemID).Msg("Failed to get item")
		WriteError(w, http.StatusInternalServerError, "Failed to get item")
		return
	}

	WriteJSON(w, http.StatusOK, item)
}
