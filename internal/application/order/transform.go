package order

import (
	"encoding/json"
	"strings"

	domain "github.com/heoquay/backend/internal/domain/order"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Upstream field aliases. The webhook API is not consistent across versions,
// so each view field is looked up under every name it has been sent with.
var (
	keyID               = []string{"id", "_id", "orderId", "order_id"}
	keyCode             = []string{"maDonHang", "orderCode", "order_code", "code"}
	keyTime             = []string{"gio", "gioNhan", "time", "orderTime"}
	keyDate             = []string{"ngay", "ngayNhan", "date", "orderDate"}
	keyLunar            = []string{"ngayAm", "lunarDate", "lunar"}
	keyCustomer         = []string{"khachHang", "customer"}
	keyCustomerName     = []string{"ten", "tenKhachHang", "customerName", "name"}
	keyFlatCustomerName = []string{"tenKhachHang", "customerName"}
	keyCustomerPhone    = []string{"soDienThoai", "sdt", "phone", "customerPhone"}
	keyCustomerAddress  = []string{"diaChi", "address", "customerAddress"}
	keyItems            = []string{"sanPhams", "items", "products"}
	keyTotal            = []string{"tongTien", "total", "totalAmount"}
	keyShipFee          = []string{"phiShip", "shipFee", "shippingFee"}
	keyStatus           = []string{"trangThai", "status"}
	keyPayment          = []string{"thanhToan", "paymentMethod", "payment"}
	keyBranch           = []string{"chiNhanh", "branch"}
	keyDeliveryMethod   = []string{"hinhThucGiao", "deliveryMethod"}
	keyShipper          = []string{"shipper", "shipperName"}
	keyDeliveryAddress  = []string{"diaChiGiao", "deliveryAddress"}
	keyDeliveryDate     = []string{"ngayGiao", "deliveryDate"}
	keyDeliveryTime     = []string{"gioGiao", "deliveryTime"}
	keyNote             = []string{"ghiChu", "note", "notes"}

	keyItemID    = []string{"id", "_id", "itemId"}
	keyItemName  = []string{"tenSanPham", "productName", "name"}
	keyItemSize  = []string{"kichThuoc", "size"}
	keyItemQty   = []string{"soLuong", "quantity", "qty"}
	keyItemCode  = []string{"maSanPham", "productCode", "code"}
	keyItemNote  = []string{"ghiChu", "note"}
	keyItemPrice = []string{"donGia", "unitPrice", "price"}
)

// FromUpstream maps one raw upstream order onto the view model. It never
// fails: missing or malformed fields degrade to empty values.
func FromUpstream(raw map[string]any, cal *domain.Calendar) domain.Order {
	o := domain.Order{
		ID:         str(raw, keyID),
		Code:       str(raw, keyCode),
		Time:       domain.ParseTimeOfDay(str(raw, keyTime)),
		Date:       cal.ParseDate(str(raw, keyDate)),
		LunarLabel: str(raw, keyLunar),
		Total:      money(raw, keyTotal),
		ShipFee:    money(raw, keyShipFee),
		Status:     domain.ParseStatus(str(raw, keyStatus)),
		Payment:    domain.ParsePaymentMethod(str(raw, keyPayment)),

		Branch:          str(raw, keyBranch),
		DeliveryMethod:  str(raw, keyDeliveryMethod),
		Shipper:         str(raw, keyShipper),
		DeliveryAddress: str(raw, keyDeliveryAddress),
		DeliveryDate:    str(raw, keyDeliveryDate),
		DeliveryTime:    str(raw, keyDeliveryTime),
		Note:            str(raw, keyNote),
	}

	// Customer fields arrive nested or flattened onto the order
	nested, _ := lookup(raw, keyCustomer).(map[string]any)
	o.Customer = domain.Customer{
		Name:    firstNonEmpty(str(nested, keyCustomerName), str(raw, keyFlatCustomerName)),
		Phone:   firstNonEmpty(str(nested, keyCustomerPhone), str(raw, keyCustomerPhone)),
		Address: firstNonEmpty(str(nested, keyCustomerAddress), str(raw, keyCustomerAddress)),
	}

	for _, item := range cast.ToSlice(lookup(raw, keyItems)) {
		if m, ok := item.(map[string]any); ok {
			o.Items = append(o.Items, itemFromUpstream(m))
		}
	}

	if o.LunarLabel == "" && !o.Date.IsZero() {
		o.LunarLabel = domain.LunarLabel(o.Date)
	}
	return o
}

// FromUpstreamList maps every object in raw, skipping anything that is not one
func FromUpstreamList(raw []any, cal *domain.Calendar) []domain.Order {
	orders := make([]domain.Order, 0, len(raw))
	for _, r := range raw {
		if m, ok := r.(map[string]any); ok {
			orders = append(orders, FromUpstream(m, cal))
		}
	}
	return orders
}

func itemFromUpstream(raw map[string]any) domain.LineItem {
	item := domain.LineItem{
		ID:          str(raw, keyItemID),
		ProductName: str(raw, keyItemName),
		Size:        str(raw, keyItemSize),
		Quantity:    quantity(raw, keyItemQty),
		ProductCode: str(raw, keyItemCode),
		Note:        str(raw, keyItemNote),
	}
	if str(raw, keyItemPrice) != "" {
		price := money(raw, keyItemPrice)
		item.UnitPrice = &price
	}
	return item
}

func lookup(raw map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func str(raw map[string]any, keys []string) string {
	v := lookup(raw, keys)
	switch v.(type) {
	case map[string]any, []any:
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// money parses numbers and numeric strings such as "350000", "350.000" or
// "350.000đ". A dot or comma followed by exactly three digits is a thousands
// separator, as VND amounts carry no fractional part.
func money(raw map[string]any, keys []string) decimal.Decimal {
	switch v := lookup(raw, keys).(type) {
	case nil:
		return decimal.Zero
	case json.Number:
		return parseAmount(v.String())
	case string:
		return parseAmount(v)
	default:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return decimal.Zero
		}
		return decimal.NewFromFloat(f)
	}
}

// quantity reads a whole count in base 10, so "08" is 8. Fractions are
// dropped.
func quantity(raw map[string]any, keys []string) int {
	return int(money(raw, keys).IntPart())
}

func parseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if d, err := decimal.NewFromString(s); err == nil {
		if i := strings.LastIndexByte(s, '.'); i < 0 || len(s)-i-1 != 3 {
			return d
		}
	}

	var b strings.Builder
	for i, r := range s {
		if (r >= '0' && r <= '9') || (r == '-' && i == 0) {
			b.WriteRune(r)
		}
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}
