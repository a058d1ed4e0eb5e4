package ahamove

import "github.com/shopspring/decimal"

// Payment methods accepted by the Ahamove order API
const (
	PaymentCash    = "CASH"
	PaymentBalance = "BALANCE"
)

// Point is one stop of a delivery route. The first point is the pickup.
type Point struct {
	Address string  `json:"address"`
	Name    string  `json:"name,omitempty"`
	Mobile  string  `json:"mobile,omitempty"`
	COD     int64   `json:"cod,omitempty"` // VND collected at this stop
	Remarks string  `json:"remarks,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty"`
}

// CreateOrderRequest is the dispatch payload
type CreateOrderRequest struct {
	ServiceID     string  `json:"service_id"`
	Path          []Point `json:"path"`
	PaymentMethod string  `json:"payment_method"`
	Remarks       string  `json:"remarks,omitempty"`
}

// CreateOrderResponse is what Ahamove returns for a created delivery
type CreateOrderResponse struct {
	OrderID    string          `json:"order_id"`
	Status     string          `json:"status"`
	SharedLink string          `json:"shared_link,omitempty"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Place is one address autocomplete suggestion
type Place struct {
	Address string  `json:"address"`
	Name    string  `json:"name,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty"`
}

type apiError struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (e apiError) message() string {
	switch {
	case e.Description != "":
		return e.Description
	case e.Title != "":
		return e.Title
	default:
		return e.Code
	}
}
