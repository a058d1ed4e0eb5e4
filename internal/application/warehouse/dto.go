package warehouse

import (
	domain "github.com/heoquay/backend/internal/domain/warehouse"
	"github.com/shopspring/decimal"
)

// ItemResponse is the warehouse item view model (VatTu). It is also the
// record sent upstream on create and update.
type ItemResponse struct {
	ID        string  `json:"id"`
	MaNvl     string  `json:"maNvl"`
	TenNvl    string  `json:"tenNvl"`
	DonViTinh string  `json:"donViTinh"`
	TonDau    float64 `json:"tonDau"`
	Nhap      float64 `json:"nhap"`
	Xuat      float64 `json:"xuat"`
	TonKho    float64 `json:"tonKho"`
}

// ToItemResponse converts an item, deriving tonKho
func ToItemResponse(i domain.Item) ItemResponse {
	return ItemResponse{
		ID:        i.ID,
		MaNvl:     i.Code,
		TenNvl:    i.Name,
		DonViTinh: i.Unit,
		TonDau:    i.Opening.InexactFloat64(),
		Nhap:      i.Received.InexactFloat64(),
		Xuat:      i.Issued.InexactFloat64(),
		TonKho:    i.OnHand().InexactFloat64(),
	}
}

// CreateInput is a new warehouse item. Quantities accept numbers or numeric strings.
type CreateInput struct {
	MaNvl     string          `json:"maNvl" binding:"required"`
	TenNvl    string          `json:"tenNvl" binding:"required"`
	DonViTinh string          `json:"donViTinh"`
	TonDau    decimal.Decimal `json:"tonDau"`
	Nhap      decimal.Decimal `json:"nhap"`
	Xuat      decimal.Decimal `json:"xuat"`
}

// UpdateInput is a partial update identified by id or maNvl. Absent fields
// keep their current value.
type UpdateInput struct {
	ID        string           `json:"id"`
	MaNvl     *string          `json:"maNvl"`
	TenNvl    *string          `json:"tenNvl"`
	DonViTinh *string          `json:"donViTinh"`
	TonDau    *decimal.Decimal `json:"tonDau"`
	Nhap      *decimal.Decimal `json:"nhap"`
	Xuat      *decimal.Decimal `json:"xuat"`
}
