package checkout

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Quocthai23/lumiere-storefront/internal/cart"
	"github.com/Quocthai23/lumiere-storefront/internal/domain"
)

const (
	// DefaultPointRate is the loyalty conversion: 1 point redeems 1,000 VND.
	DefaultPointRate int64 = 1_000

	defaultCollaboratorTimeout = 5 * time.Second
)

// ShippingForm is the editable destination for the order. All four fields
// are required before submission.
type ShippingForm struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Street   string `json:"street"`
	City     string `json:"city"`
}

func (f ShippingForm) validate() error {
	switch {
	case f.FullName == "":
		return &ValidationError{Field: "full_name"}
	case f.Phone == "":
		return &ValidationError{Field: "phone"}
	case f.Street == "":
		return &ValidationError{Field: "street"}
	case f.City == "":
		return &ValidationError{Field: "city"}
	}
	return nil
}

// Summary is the priced view of the attempt. Voucher discount applies to
// the subtotal first, then the points discount comes off the
// voucher-adjusted total, and the payable amount is floored at zero.
type Summary struct {
	Subtotal        int64 `json:"subtotal"`
	VoucherDiscount int64 `json:"voucher_discount"`
	CartTotal       int64 `json:"cart_total"`
	PointsCap       int64 `json:"points_cap"`
	PointsRedeemed  int64 `json:"points_redeemed"`
	PointsDiscount  int64 `json:"points_discount"`
	Payable         int64 `json:"payable"`

	// PointsDropped reports that a previously accepted redemption exceeded
	// the recomputed cap after a cart or voucher change and was discarded.
	PointsDropped bool `json:"points_dropped"`
}

// Orchestrator drives a single checkout attempt over one session's cart:
// IDLE -> ADDRESS_RESOLVING -> READY -> SUBMITTING -> COMPLETED or FAILED,
// with FAILED retryable.
type Orchestrator struct {
	cart      *cart.Store
	addresses AddressBook
	profiles  CustomerProfile
	orders    OrderSubmitter

	pointRate int64
	timeout   time.Duration

	mu             sync.Mutex
	status         domain.CheckoutStatus
	customerID     string // empty for guests
	balance        int64
	candidates     []domain.ShippingAddress
	form           ShippingForm
	savedAddressID string // cleared by any manual form edit
	method         domain.PaymentMethod
	points         int64
	pointsDropped  bool
}

type Option func(*Orchestrator)

func WithPointRate(rate int64) Option {
	return func(o *Orchestrator) { o.pointRate = rate }
}

func WithCollaboratorTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

func NewOrchestrator(cartStore *cart.Store, addresses AddressBook, profiles CustomerProfile, orders OrderSubmitter, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cart:      cartStore,
		addresses: addresses,
		profiles:  profiles,
		orders:    orders,
		pointRate: DefaultPointRate,
		timeout:   defaultCollaboratorTimeout,
		status:    domain.CheckoutStatusIdle,
		method:    domain.PaymentMethodCOD,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) Status() domain.CheckoutStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Begin starts the attempt. Authenticated customers get their address book
// and loyalty balance fetched; the default address, if any, is pre-selected
// into the shipping form. A fetch failure is retryable: the attempt still
// reaches READY with an empty form so manual entry loses nothing.
func (o *Orchestrator) Begin(ctx context.Context, customerID string) error {
	o.mu.Lock()
	if !domain.CanTransitionTo(o.status, domain.CheckoutStatusAddressResolving) {
		o.mu.Unlock()
		return IllegalTransitionError
	}
	o.status = domain.CheckoutStatusAddressResolving
	o.customerID = customerID
	o.mu.Unlock()

	if customerID == "" {
		o.mu.Lock()
		o.status = domain.CheckoutStatusReady
		o.mu.Unlock()
		return nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	customer, err := o.profiles.Get(fetchCtx, customerID)
	if err != nil {
		o.mu.Lock()
		o.status = domain.CheckoutStatusReady
		o.mu.Unlock()
		return fmt.Errorf("failed to fetch customer profile: %w", err)
	}

	addresses, err := o.addresses.List(fetchCtx, customerID)
	if err != nil {
		o.mu.Lock()
		o.balance = customer.LoyaltyPoints
		o.status = domain.CheckoutStatusReady
		o.mu.Unlock()
		return fmt.Errorf("failed to fetch addresses: %w", err)
	}

	o.mu.Lock()
	o.balance = customer.LoyaltyPoints
	o.candidates = addresses
	for _, addr := range addresses {
		if addr.IsDefault {
			o.selectAddressLocked(addr)
			break
		}
	}
	o.status = domain.CheckoutStatusReady
	o.mu.Unlock()
	return nil
}

// Candidates returns the fetched address book entries.
func (o *Orchestrator) Candidates() []domain.ShippingAddress {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]domain.ShippingAddress, len(o.candidates))
	copy(out, o.candidates)
	return out
}

// SelectAddress copies a fetched address into the shipping form and marks
// it as the selected saved address.
func (o *Orchestrator) SelectAddress(addressID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.mutableLocked(); err != nil {
		return err
	}
	for _, addr := range o.candidates {
		if addr.ID == addressID {
			o.selectAddressLocked(addr)
			return nil
		}
	}
	return ErrUnknownAddress
}

func (o *Orchestrator) selectAddressLocked(addr domain.ShippingAddress) {
	o.form = ShippingForm{
		FullName: addr.FullName,
		Phone:    addr.Phone,
		Street:   addr.Street,
		City:     addr.City,
	}
	o.savedAddressID = addr.ID
}

// SetShipping overwrites the form with manually entered fields. Manual
// editing and selecting a saved address are mutually exclusive, so the
// saved-address marker is cleared.
func (o *Orchestrator) SetShipping(form ShippingForm) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.mutableLocked(); err != nil {
		return err
	}
	o.form = form
	o.savedAddressID = ""
	return nil
}

func (o *Orchestrator) Shipping() (ShippingForm, string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.form, o.savedAddressID
}

func (o *Orchestrator) SetPaymentMethod(method domain.PaymentMethod) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.mutableLocked(); err != nil {
		return err
	}
	if !method.IsValid() {
		return ErrInvalidPaymentMethod
	}
	o.method = method
	return nil
}

func (o *Orchestrator) PaymentMethod() domain.PaymentMethod {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.method
}

// RedeemPoints elects a redemption for this attempt. A request above the
// current cap is refused whole, never clamped. Zero clears the redemption.
func (o *Orchestrator) RedeemPoints(points int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.mutableLocked(); err != nil {
		return err
	}
	if points < 0 {
		return ErrInvalidPoints
	}
	if points > o.pointsCapLocked() {
		return ErrPointsExceedCap
	}
	o.points = points
	o.pointsDropped = false
	return nil
}

// pointsCapLocked recomputes the usable-points cap from the live cart
// total: min(balance, floor(voucher-adjusted total / rate)).
func (o *Orchestrator) pointsCapLocked() int64 {
	cap := o.cart.Total() / o.pointRate
	if o.balance < cap {
		cap = o.balance
	}
	return cap
}

// Summary reprices the attempt against the current cart state. The points
// cap is re-validated on every call: a redemption that no longer fits the
// recomputed cap is dropped and flagged rather than silently over-credited.
func (o *Orchestrator) Summary() Summary {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.summaryLocked()
}

func (o *Orchestrator) summaryLocked() Summary {
	subtotal := o.cart.Subtotal()
	voucherDiscount := o.cart.VoucherDiscount()
	cartTotal := o.cart.Total()
	cap := o.pointsCapLocked()

	if o.points > cap {
		log.Printf("dropping stale point redemption %d: cap is now %d", o.points, cap)
		o.points = 0
		o.pointsDropped = true
	}

	pointsDiscount := o.points * o.pointRate
	payable := cartTotal - pointsDiscount
	if payable < 0 {
		payable = 0
	}

	return Summary{
		Subtotal:        subtotal,
		VoucherDiscount: voucherDiscount,
		CartTotal:       cartTotal,
		PointsCap:       cap,
		PointsRedeemed:  o.points,
		PointsDiscount:  pointsDiscount,
		Payable:         payable,
		PointsDropped:   o.pointsDropped,
	}
}

// Submit builds the order draft and hands it to the submission
// collaborator. Exactly one submission may be in flight; a second call is
// refused locally. On success the cart is cleared and the attempt
// completes; on transport failure the attempt is FAILED but retryable and
// the cart is untouched.
func (o *Orchestrator) Submit(ctx context.Context) (*domain.OrderReference, error) {
	o.mu.Lock()
	if o.status == domain.CheckoutStatusSubmitting {
		o.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	if !domain.CanTransitionTo(o.status, domain.CheckoutStatusSubmitting) {
		o.mu.Unlock()
		return nil, IllegalTransitionError
	}

	if err := o.form.validate(); err != nil {
		o.status = domain.CheckoutStatusReady
		o.mu.Unlock()
		return nil, err
	}

	items := o.cart.Items()
	if len(items) == 0 {
		o.mu.Unlock()
		return nil, ErrEmptyCart
	}

	summary := o.summaryLocked()
	draft := buildDraft(o.customerID, o.form, o.method, summary, items)
	o.status = domain.CheckoutStatusSubmitting
	o.mu.Unlock()

	submitCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	ref, err := o.orders.Create(submitCtx, draft)

	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.status = domain.CheckoutStatusFailed
		return nil, &SubmitError{Err: err, Retryable: true}
	}

	o.cart.Clear(ctx)
	o.status = domain.CheckoutStatusCompleted
	return ref, nil
}

// mutableLocked gates edits: nothing changes while a submission is in
// flight or after the attempt completed.
func (o *Orchestrator) mutableLocked() error {
	if o.status == domain.CheckoutStatusSubmitting {
		return ErrSubmissionInFlight
	}
	if o.status.IsTerminal() {
		return IllegalTransitionError
	}
	return nil
}
