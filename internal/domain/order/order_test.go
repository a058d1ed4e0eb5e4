package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineItem_LineTotal(t *testing.T) {
	price := decimal.NewFromInt(250000)
	item := LineItem{Quantity: 3, UnitPrice: &price}

	total := item.LineTotal()
	require.NotNil(t, total)
	assert.True(t, decimal.NewFromInt(750000).Equal(*total))

	assert.Nil(t, LineItem{Quantity: 3}.LineTotal())
}

func TestOrder_AmountDueAndDropOff(t *testing.T) {
	o := Order{
		Total:    decimal.NewFromInt(1000000),
		ShipFee:  decimal.NewFromInt(30000),
		Customer: Customer{Address: "12 Lê Lợi"},
	}
	assert.True(t, decimal.NewFromInt(1030000).Equal(o.AmountDue()))
	assert.Equal(t, "12 Lê Lợi", o.DropOffAddress())

	o.DeliveryAddress = "99 Trần Phú"
	assert.Equal(t, "99 Trần Phú", o.DropOffAddress())
}
