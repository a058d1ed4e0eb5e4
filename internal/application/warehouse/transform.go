package warehouse

import (
	"encoding/json"
	"strings"

	domain "github.com/heoquay/backend/internal/domain/warehouse"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

var (
	keyID       = []string{"id", "_id"}
	keyCode     = []string{"maNvl", "maNVL", "code"}
	keyName     = []string{"tenNvl", "tenNVL", "name"}
	keyUnit     = []string{"donViTinh", "dvt", "unit"}
	keyOpening  = []string{"tonDau", "opening"}
	keyReceived = []string{"nhap", "received"}
	keyIssued   = []string{"xuat", "issued"}
)

// listKeys are the wrapper keys the item array has been sent under
var listKeys = []string{"items", "vatTus", "data", "rows"}

// FromUpstream maps one raw upstream record onto an item. Any tonKho sent by
// upstream is ignored, stock is always derived from the movements.
func FromUpstream(raw map[string]any) domain.Item {
	return domain.Item{
		ID:       str(raw, keyID),
		Code:     str(raw, keyCode),
		Name:     str(raw, keyName),
		Unit:     str(raw, keyUnit),
		Opening:  quantity(raw, keyOpening),
		Received: quantity(raw, keyReceived),
		Issued:   quantity(raw, keyIssued),
	}
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
	return strings.TrimSpace(cast.ToString(lookup(raw, keys)))
}

func quantity(raw map[string]any, keys []string) decimal.Decimal {
	switch v := lookup(raw, keys).(type) {
	case nil:
		return decimal.Zero
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero
		}
		return d
	case string:
		d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(v), ",", "."))
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.NewFromFloat(cast.ToFloat64(v))
	}
}
