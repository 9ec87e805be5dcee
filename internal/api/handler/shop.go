package handler

import (
	"encoding/json"
	"net/http"

	"github.com/grandline/server/internal/api/middleware"
	"github.com/grandline/server/internal/api/request"
	"github.com/grandline/server/internal/api/response"
	"github.com/grandline/server/internal/model"
	"github.com/grandline/server/internal/services/shop"
)

// ShopHandler handles catalog, inventory and purchase endpoints
type ShopHandler struct {
	shopService *shop.Service
}

// NewShopHandler creates a new shop handler
func NewShopHandler(shopService *shop.Service) *ShopHandler {
	return &ShopHandler{
		shopService: shopService,
	}
}

// Catalog handles GET /api/v1/inventory/shop
func (h *ShopHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	items, err := h.shopService.Catalog(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ShopResponseFromModel(items))
}

// Inventory handles GET /api/v1/inventory
func (h *ShopHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.MustGetUserID(r.Context())

	inv, err := h.shopService.GetInventory(r.Context(), userID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.InventoryResponseFromModel(inv))
}

// Buy handles POST /api/v1/inventory/buy
func (h *ShopHandler) Buy(w http.ResponseWriter, r *http.Request) {
	userID := middleware.MustGetUserID(r.Context())

	var req request.BuyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.ItemID == "" {
		WriteError(w, NewInvalidRequestError("item_id is required"))
		return
	}

	// Quantity defaults to a single unit when omitted
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	result, err := h.shopService.Buy(r.Context(), userID, model.ItemID(req.ItemID), quantity, req.IdempotencyKey)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.BuyResponseFromModel(result))
}
