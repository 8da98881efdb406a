package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "PENDING"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "UNPAID"
	PaymentStatusPaid   PaymentStatus = "PAID"
)

type FulfillmentStatus string

const (
	FulfillmentStatusUnfulfilled FulfillmentStatus = "UNFULFILLED"
)

type PaymentMethod string

const (
	PaymentMethodCOD        PaymentMethod = "COD"
	PaymentMethodCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentMethodZaloPay    PaymentMethod = "ZALOPAY"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodCreditCard, PaymentMethodZaloPay:
		return true
	}
	return false
}

// InitialPaymentStatus maps the chosen payment method to the status a fresh
// order carries: cash on delivery starts UNPAID, everything else is charged
// up front.
func (m PaymentMethod) InitialPaymentStatus() PaymentStatus {
	if m == PaymentMethodCOD {
		return PaymentStatusUnpaid
	}
	return PaymentStatusPaid
}

// OrderLine is one cart line item frozen at submission time.
type OrderLine struct {
	ProductID   string `json:"product_id"`
	VariantID   string `json:"variant_id"`
	VariantName string `json:"variant_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	LineTotal   int64  `json:"line_total"`
}

// OrderDraft is the full submission payload. It is built once per checkout
// attempt and never mutated after handoff.
type OrderDraft struct {
	CustomerID        *string           `json:"customer_id"`
	Status            OrderStatus       `json:"status"`
	PaymentStatus     PaymentStatus     `json:"payment_status"`
	FulfillmentStatus FulfillmentStatus `json:"fulfillment_status"`
	PaymentMethod     PaymentMethod     `json:"payment_method"`
	Total             int64             `json:"total"`
	PointsRedeemed    int64             `json:"points_redeemed"`
	ShippingSummary   string            `json:"shipping_summary"`
	Lines             []OrderLine       `json:"lines"`
}

// OrderReference is what the submission collaborator hands back for display.
type OrderReference struct {
	OrderID   uuid.UUID `json:"order_id"`
	CreatedAt time.Time `json:"created_at"`
}
