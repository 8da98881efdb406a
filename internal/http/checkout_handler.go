package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/Quocthai23/lumiere-storefront/internal/cart"
	"github.com/Quocthai23/lumiere-storefront/internal/checkout"
	"github.com/Quocthai23/lumiere-storefront/internal/domain"
)

// CheckoutHandler keeps one checkout attempt per cart session. Beginning a
// new checkout replaces the previous attempt for that session.
type CheckoutHandler struct {
	carts     *cart.Manager
	addresses checkout.AddressBook
	profiles  checkout.CustomerProfile
	orders    checkout.OrderSubmitter
	timeout   time.Duration

	mu       sync.Mutex
	attempts map[string]*checkout.Orchestrator
}

func NewCheckoutHandler(carts *cart.Manager, addresses checkout.AddressBook, profiles checkout.CustomerProfile, orders checkout.OrderSubmitter, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		carts:     carts,
		addresses: addresses,
		profiles:  profiles,
		orders:    orders,
		timeout:   timeout,
		attempts:  make(map[string]*checkout.Orchestrator),
	}
}

type ShippingRequestDTO struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Street   string `json:"street"`
	City     string `json:"city"`
}

type SelectAddressRequestDTO struct {
	AddressID string `json:"address_id"`
}

type PaymentMethodRequestDTO struct {
	Method string `json:"method"`
}

type RedeemPointsRequestDTO struct {
	Points int64 `json:"points"`
}

type CheckoutStateDTO struct {
	Status         domain.CheckoutStatus    `json:"status"`
	Shipping       checkout.ShippingForm    `json:"shipping"`
	SavedAddressID string                   `json:"saved_address_id,omitempty"`
	PaymentMethod  domain.PaymentMethod     `json:"payment_method"`
	Candidates     []domain.ShippingAddress `json:"candidates"`
	Summary        checkout.Summary         `json:"summary"`
}

func (h *CheckoutHandler) attempt(sessionID string) *checkout.Orchestrator {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.attempts[sessionID]
}

func (h *CheckoutHandler) state(orch *checkout.Orchestrator) CheckoutStateDTO {
	form, savedID := orch.Shipping()
	return CheckoutStateDTO{
		Status:         orch.Status(),
		Shipping:       form,
		SavedAddressID: savedID,
		PaymentMethod:  orch.PaymentMethod(),
		Candidates:     orch.Candidates(),
		Summary:        orch.Summary(),
	}
}

func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "missing cart session")
		return
	}

	cartStore := h.carts.Session(r.Context(), sessionID)
	orch := checkout.NewOrchestrator(cartStore, h.addresses, h.profiles, h.orders,
		checkout.WithCollaboratorTimeout(h.timeout))

	customerID := getCustomerID(r.Context())
	if err := orch.Begin(r.Context(), customerID); err != nil {
		// The attempt still reached READY; report the degraded fetch but
		// keep the checkout usable.
		h.mu.Lock()
		h.attempts[sessionID] = orch
		h.mu.Unlock()

		respondJSON(w, http.StatusOK, struct {
			CheckoutStateDTO
			Warning string `json:"warning"`
		}{h.state(orch), "could not load saved addresses, enter shipping details manually"})
		return
	}

	h.mu.Lock()
	h.attempts[sessionID] = orch
	h.mu.Unlock()

	respondJSON(w, http.StatusCreated, h.state(orch))
}

func (h *CheckoutHandler) GetState(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r.Context())
	orch := h.attempt(sessionID)
	if orch == nil {
		respondError(w, http.StatusNotFound, "no_checkout", "no checkout in progress")
		return
	}
	respondJSON(w, http.StatusOK, h.state(orch))
}

func (h *CheckoutHandler) SetShipping(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r.Context())
	orch := h.attempt(sessionID)
	if orch == nil {
		respondError(w, http.StatusNotFound, "no_checkout", "no checkout in progress")
		return
	}

	var req ShippingRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	err := orch.SetShipping(checkout.ShippingForm{
		FullName: req.FullName,
		Phone:    req.Phone,
		Street:   req.Street,
		City:     req.City,
	})
	if err != nil {
		h.respondCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.state(orch))
}

func (h *CheckoutHandler) SelectAddress(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r.Context())
	orch := h.attempt(sessionID)
	if orch == nil {
		respondError(w, http.StatusNotFound, "no_checkout", "no checkout in progress")
		return
	}

	var req SelectAddressRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := orch.SelectAddress(req.AddressID); err != nil {
		h.respondCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.state(orch))
}

func (h *CheckoutHandler) SetPaymentMethod(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r.Context())
	orch := h.attempt(sessionID)
	if orch == nil {
		respondError(w, http.StatusNotFound, "no_checkout", "no checkout in progress")
		return
	}

	var req PaymentMethodRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := orch.SetPaymentMethod(domain.PaymentMethod(req.Method)); err != nil {
		h.respondCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.state(orch))
}

func (h *CheckoutHandler) RedeemPoints(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r.Context())
	orch := h.attempt(sessionID)
	if orch == nil {
		respondError(w, http.StatusNotFound, "no_checkout", "no checkout in progress")
		return
	}

	var req RedeemPointsRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := orch.RedeemPoints(req.Points); err != nil {
		h.respondCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.state(orch))
}

func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r.Context())
	orch := h.attempt(sessionID)
	if orch == nil {
		respondError(w, http.StatusNotFound, "no_checkout", "no checkout in progress")
		return
	}

	ref, err := orch.Submit(r.Context())
	if err != nil {
		h.respondCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, struct {
		Order *domain.OrderReference `json:"order"`
	}{ref})
}

func (h *CheckoutHandler) respondCheckoutError(w http.ResponseWriter, err error) {
	var vErr *checkout.ValidationError
	var sErr *checkout.SubmitError

	switch {
	case errors.As(err, &vErr):
		respondError(w, http.StatusBadRequest, "missing_field", vErr.Error())
	case errors.Is(err, checkout.ErrPointsExceedCap):
		respondError(w, http.StatusUnprocessableEntity, "points_exceed_cap", err.Error())
	case errors.Is(err, checkout.ErrInvalidPoints):
		respondError(w, http.StatusBadRequest, "invalid_points", err.Error())
	case errors.Is(err, checkout.ErrInvalidPaymentMethod):
		respondError(w, http.StatusBadRequest, "invalid_payment_method", err.Error())
	case errors.Is(err, checkout.ErrUnknownAddress):
		respondError(w, http.StatusBadRequest, "unknown_address", err.Error())
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusUnprocessableEntity, "empty_cart", err.Error())
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		respondError(w, http.StatusConflict, "submission_in_flight", err.Error())
	case errors.As(err, &sErr):
		respondError(w, http.StatusBadGateway, "submission_failed", err.Error())
	case errors.Is(err, checkout.IllegalTransitionError):
		respondError(w, http.StatusConflict, "illegal_state", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
