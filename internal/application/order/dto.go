package order

import (
	domain "github.com/heoquay/backend/internal/domain/order"
	"github.com/shopspring/decimal"
)

// CustomerResponse is the customer block of an order
type CustomerResponse struct {
	Ten         string `json:"ten"`
	SoDienThoai string `json:"soDienThoai"`
	DiaChi      string `json:"diaChi"`
}

// LineItemResponse is one product line (SanPham)
type LineItemResponse struct {
	ID         string   `json:"id"`
	TenSanPham string   `json:"tenSanPham"`
	KichThuoc  string   `json:"kichThuoc"`
	SoLuong    int      `json:"soLuong"`
	MaSanPham  string   `json:"maSanPham"`
	GhiChu     string   `json:"ghiChu,omitempty"`
	DonGia     *float64 `json:"donGia,omitempty"`
	ThanhTien  *float64 `json:"thanhTien,omitempty"`
}

// OrderResponse is the order view model (DonHang)
type OrderResponse struct {
	ID           string             `json:"id"`
	MaDonHang    string             `json:"maDonHang"`
	Gio          string             `json:"gio"`
	Ngay         string             `json:"ngay"`
	NgayAm       string             `json:"ngayAm"`
	KhachHang    CustomerResponse   `json:"khachHang"`
	SanPhams     []LineItemResponse `json:"sanPhams"`
	TongTien     float64            `json:"tongTien"`
	PhiShip      float64            `json:"phiShip"`
	TrangThai    string             `json:"trangThai"`
	TenTrangThai string             `json:"tenTrangThai"`
	ThanhToan    string             `json:"thanhToan"`
	ChiNhanh     string             `json:"chiNhanh,omitempty"`
	HinhThucGiao string             `json:"hinhThucGiao,omitempty"`
	Shipper      string             `json:"shipper,omitempty"`
	DiaChiGiao   string             `json:"diaChiGiao,omitempty"`
	NgayGiao     string             `json:"ngayGiao,omitempty"`
	GioGiao      string             `json:"gioGiao,omitempty"`
	GhiChu       string             `json:"ghiChu,omitempty"`
}

// DayBucketResponse is one calendar day (DonHangTheoNgay)
type DayBucketResponse struct {
	Ngay         string          `json:"ngay"`
	NgayAm       string          `json:"ngayAm"`
	Thu          string          `json:"thu"`
	SoDon        int             `json:"soDon"`
	TongDoanhThu float64         `json:"tongDoanhThu"`
	DonHangs     []OrderResponse `json:"donHangs"`
}

// TabCountsResponse holds the status tab badges
type TabCountsResponse struct {
	TatCa     int            `json:"tatCa"`
	TrangThai map[string]int `json:"trangThai"`
}

// CalendarResponse is the filtered calendar view
type CalendarResponse struct {
	Ngays        []DayBucketResponse `json:"ngays"`
	TongDon      int                 `json:"tongDon"`
	TongDoanhThu float64             `json:"tongDoanhThu"`
	Tabs         TabCountsResponse   `json:"tabs"`
}

// PickItemResponse is one aggregated pick-list line
type PickItemResponse struct {
	MaSanPham  string `json:"maSanPham"`
	TenSanPham string `json:"tenSanPham"`
	KichThuoc  string `json:"kichThuoc"`
	SoLuong    int    `json:"soLuong"`
	SoDon      int    `json:"soDon"`
}

// PickListResponse is the kitchen pick list for a day
type PickListResponse struct {
	Ngay    string             `json:"ngay"`
	NgayAm  string             `json:"ngayAm"`
	TongDon int                `json:"tongDon"`
	Items   []PickItemResponse `json:"items"`
}

// ToOrderResponse converts a domain order to its view model
func ToOrderResponse(o domain.Order, cal *domain.Calendar) OrderResponse {
	items := make([]LineItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = LineItemResponse{
			ID:         it.ID,
			TenSanPham: it.ProductName,
			KichThuoc:  it.Size,
			SoLuong:    it.Quantity,
			MaSanPham:  it.ProductCode,
			GhiChu:     it.Note,
			DonGia:     floatPtr(it.UnitPrice),
			ThanhTien:  floatPtr(it.LineTotal()),
		}
	}
	return OrderResponse{
		ID:        o.ID,
		MaDonHang: o.Code,
		Gio:       o.Time.String(),
		Ngay:      cal.Key(o.Date),
		NgayAm:    o.LunarLabel,
		KhachHang: CustomerResponse{
			Ten:         o.Customer.Name,
			SoDienThoai: o.Customer.Phone,
			DiaChi:      o.Customer.Address,
		},
		SanPhams:     items,
		TongTien:     o.Total.InexactFloat64(),
		PhiShip:      o.ShipFee.InexactFloat64(),
		TrangThai:    string(o.Status),
		TenTrangThai: o.Status.Label(),
		ThanhToan:    string(o.Payment),
		ChiNhanh:     o.Branch,
		HinhThucGiao: o.DeliveryMethod,
		Shipper:      o.Shipper,
		DiaChiGiao:   o.DeliveryAddress,
		NgayGiao:     o.DeliveryDate,
		GioGiao:      o.DeliveryTime,
		GhiChu:       o.Note,
	}
}

// ToOrderResponses converts a list of domain orders
func ToOrderResponses(orders []domain.Order, cal *domain.Calendar) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = ToOrderResponse(o, cal)
	}
	return out
}

// ToDayBucketResponses converts grouped buckets
func ToDayBucketResponses(buckets []domain.DayBucket, cal *domain.Calendar) []DayBucketResponse {
	out := make([]DayBucketResponse, len(buckets))
	for i, b := range buckets {
		out[i] = DayBucketResponse{
			Ngay:         b.Key,
			NgayAm:       b.LunarLabel,
			Thu:          b.Weekday,
			SoDon:        b.Count(),
			TongDoanhThu: b.Revenue.InexactFloat64(),
			DonHangs:     ToOrderResponses(b.Orders, cal),
		}
	}
	return out
}

// ToTabCountsResponse converts tab counts keyed by status code
func ToTabCountsResponse(t domain.TabCounts) TabCountsResponse {
	byStatus := make(map[string]int, len(t.ByStatus))
	for s, n := range t.ByStatus {
		byStatus[string(s)] = n
	}
	return TabCountsResponse{TatCa: t.All, TrangThai: byStatus}
}

// ToCalendarResponse converts a calendar view
func ToCalendarResponse(v CalendarView, cal *domain.Calendar) CalendarResponse {
	return CalendarResponse{
		Ngays:        ToDayBucketResponses(v.Buckets, cal),
		TongDon:      v.Count,
		TongDoanhThu: domain.TotalRevenue(v.Buckets).InexactFloat64(),
		Tabs:         ToTabCountsResponse(v.Tabs),
	}
}

// ToPickListResponse converts a pick list
func ToPickListResponse(p domain.PickList, cal *domain.Calendar) PickListResponse {
	items := make([]PickItemResponse, len(p.Items))
	for i, it := range p.Items {
		items[i] = PickItemResponse{
			MaSanPham:  it.ProductCode,
			TenSanPham: it.ProductName,
			KichThuoc:  it.Size,
			SoLuong:    it.Quantity,
			SoDon:      it.OrderCount,
		}
	}
	resp := PickListResponse{
		Ngay:    cal.Key(p.Date),
		TongDon: p.OrderCount,
		Items:   items,
	}
	if !p.Date.IsZero() {
		resp.NgayAm = domain.LunarLabel(p.Date)
	}
	return resp
}

func floatPtr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}
