package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is the person an order is delivered to
type Customer struct {
	Name    string
	Phone   string
	Address string
}

// LineItem is a single product line of an order
type LineItem struct {
	ID          string
	ProductName string
	Size        string
	Quantity    int
	ProductCode string
	Note        string
	UnitPrice   *decimal.Decimal
}

// LineTotal returns UnitPrice × Quantity, or nil when no unit price is known
func (l LineItem) LineTotal() *decimal.Decimal {
	if l.UnitPrice == nil {
		return nil
	}
	total := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
	return &total
}

// Order is the localized view of an upstream order
type Order struct {
	ID         string
	Code       string
	Time       TimeOfDay
	Date       time.Time
	LunarLabel string
	Customer   Customer
	Items      []LineItem
	Total      decimal.Decimal
	ShipFee    decimal.Decimal
	Status     Status
	Payment    PaymentMethod

	Branch         string
	DeliveryMethod string
	Shipper        string

	DeliveryAddress string
	DeliveryDate    string
	DeliveryTime    string
	Note            string
}

// AmountDue is what the shipper collects on delivery
func (o Order) AmountDue() decimal.Decimal {
	return o.Total.Add(o.ShipFee)
}

// DropOffAddress prefers the delivery override over the customer address
func (o Order) DropOffAddress() string {
	if o.DeliveryAddress != "" {
		return o.DeliveryAddress
	}
	return o.Customer.Address
}

// IsCancelled reports whether the order was cancelled
func (o Order) IsCancelled() bool {
	return o.Status == StatusCancelled
}
