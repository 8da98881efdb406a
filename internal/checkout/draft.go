package checkout

import (
	"fmt"

	"github.com/Quocthai23/lumiere-storefront/internal/domain"
)

// buildDraft assembles the order submission payload as a pure function of
// the attempt's state. The draft is never mutated after construction.
func buildDraft(customerID string, form ShippingForm, method domain.PaymentMethod, summary Summary, items []domain.CartLineItem) *domain.OrderDraft {
	lines := make([]domain.OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, domain.OrderLine{
			ProductID:   item.Product.ID,
			VariantID:   item.Variant.ID,
			VariantName: item.Variant.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.Variant.Price,
			LineTotal:   item.LineTotal(),
		})
	}

	var customer *string
	if customerID != "" {
		id := customerID
		customer = &id
	}

	return &domain.OrderDraft{
		CustomerID:        customer,
		Status:            domain.OrderStatusPending,
		PaymentStatus:     method.InitialPaymentStatus(),
		FulfillmentStatus: domain.FulfillmentStatusUnfulfilled,
		PaymentMethod:     method,
		Total:             summary.Payable,
		PointsRedeemed:    summary.PointsRedeemed,
		ShippingSummary:   fmt.Sprintf("%s, %s, %s, %s", form.FullName, form.Phone, form.Street, form.City),
		Lines:             lines,
	}
}
