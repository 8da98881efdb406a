package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/Quocthai23/lumiere-storefront/internal/cart"
	"github.com/Quocthai23/lumiere-storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	carts   *cart.Manager
	timeout time.Duration
}

func NewCartHandler(carts *cart.Manager, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	VariantID   string `json:"variant_id"`
	VariantName string `json:"variant_name"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type ApplyVoucherRequestDTO struct {
	Code string `json:"code"`
}

type CartResponseDTO struct {
	Items           []domain.CartLineItem  `json:"items"`
	Count           int                    `json:"count"`
	Subtotal        int64                  `json:"subtotal"`
	VoucherDiscount int64                  `json:"voucher_discount"`
	Total           int64                  `json:"total"`
	Voucher         *domain.AppliedVoucher `json:"voucher,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func cartResponse(s *cart.Store) CartResponseDTO {
	return CartResponseDTO{
		Items:           s.Items(),
		Count:           s.Count(),
		Subtotal:        s.Subtotal(),
		VoucherDiscount: s.VoucherDiscount(),
		Total:           s.Total(),
		Voucher:         s.Voucher(),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "missing cart session")
		return
	}

	s := h.carts.Session(ctx, sessionID)
	respondJSON(w, http.StatusOK, cartResponse(s))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "missing cart session")
		return
	}

	// Parse request body
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// Validate request
	if req.VariantID == "" {
		respondError(w, http.StatusBadRequest, "invalid_variant_id", "variant_id is required")
		return
	}
	if req.Quantity <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be positive")
		return
	}
	if req.UnitPrice < 0 {
		respondError(w, http.StatusBadRequest, "invalid_price", "unit_price must be non-negative")
		return
	}

	s := h.carts.Session(ctx, sessionID)
	err := s.AddItem(ctx,
		domain.Product{ID: req.ProductID, Name: req.ProductName},
		domain.ProductVariant{ID: req.VariantID, Name: req.VariantName, Price: req.UnitPrice},
		req.Quantity)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, cartResponse(s))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "missing cart session")
		return
	}

	variantID := chi.URLParam(r, "variant_id")
	if variantID == "" {
		respondError(w, http.StatusBadRequest, "invalid_variant_id", "variant_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	s := h.carts.Session(ctx, sessionID)
	s.SetQuantity(ctx, variantID, req.Quantity)

	respondJSON(w, http.StatusOK, cartResponse(s))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "missing cart session")
		return
	}

	variantID := chi.URLParam(r, "variant_id")
	if variantID == "" {
		respondError(w, http.StatusBadRequest, "invalid_variant_id", "variant_id is required")
		return
	}

	s := h.carts.Session(ctx, sessionID)
	s.RemoveItem(ctx, variantID)

	respondJSON(w, http.StatusOK, cartResponse(s))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "missing cart session")
		return
	}

	s := h.carts.Session(ctx, sessionID)
	s.Clear(ctx)

	respondJSON(w, http.StatusOK, cartResponse(s))
}

func (h *CartHandler) ApplyVoucher(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "missing cart session")
		return
	}

	var req ApplyVoucherRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	s := h.carts.Session(ctx, sessionID)
	result := s.ApplyVoucher(ctx, req.Code)

	// Both outcomes are 200: an invalid code is a normal answer, not a
	// transport failure.
	respondJSON(w, http.StatusOK, struct {
		cart.VoucherResult
		Cart CartResponseDTO `json:"cart"`
	}{
		VoucherResult: result,
		Cart:          cartResponse(s),
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: "",
	})
}
