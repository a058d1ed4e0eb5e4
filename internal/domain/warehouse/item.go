package warehouse

import (
	"strings"

	"github.com/google/uuid"
	"github.com/heoquay/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ErrCodeImmutable is returned when an update tries to change the material code
var ErrCodeImmutable = shared.NewDomainError(shared.ErrImmutableField.Code, "Không được thay đổi mã NVL")

// Item is a raw material tracked in the warehouse (VatTu).
// On-hand stock is never stored; it is derived from the three movements.
type Item struct {
	ID       string
	Code     string
	Name     string
	Unit     string
	Opening  decimal.Decimal
	Received decimal.Decimal
	Issued   decimal.Decimal
}

// NewItem creates an item with a fresh identifier
func NewItem(code, name, unit string, opening, received, issued decimal.Decimal) (*Item, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, shared.InvalidInput("Thiếu mã NVL (maNvl)")
	}
	if name == "" {
		return nil, shared.InvalidInput("Thiếu tên NVL (tenNvl)")
	}
	return &Item{
		ID:       uuid.New().String(),
		Code:     code,
		Name:     name,
		Unit:     strings.TrimSpace(unit),
		Opening:  opening,
		Received: received,
		Issued:   issued,
	}, nil
}

// OnHand returns opening + received − issued
func (i Item) OnHand() decimal.Decimal {
	return i.Opening.Add(i.Received).Sub(i.Issued)
}

// Patch is a partial update; nil fields are left unchanged
type Patch struct {
	Code     *string
	Name     *string
	Unit     *string
	Opening  *decimal.Decimal
	Received *decimal.Decimal
	Issued   *decimal.Decimal
}

// Apply merges p into the item. Sending the current code is allowed,
// sending a different one is rejected and leaves the item untouched.
func (i *Item) Apply(p Patch) error {
	if p.Code != nil && strings.TrimSpace(*p.Code) != i.Code {
		return ErrCodeImmutable
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return shared.InvalidInput("Tên NVL không được để trống")
		}
		i.Name = name
	}
	if p.Unit != nil {
		i.Unit = strings.TrimSpace(*p.Unit)
	}
	if p.Opening != nil {
		i.Opening = *p.Opening
	}
	if p.Received != nil {
		i.Received = *p.Received
	}
	if p.Issued != nil {
		i.Issued = *p.Issued
	}
	return nil
}
