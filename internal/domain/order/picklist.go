package order

import (
	"sort"
	"strconv"
	"time"
)

// PickItem is the aggregated quantity of one product and size for a day
type PickItem struct {
	ProductCode string
	ProductName string
	Size        string
	Quantity    int
	OrderCount  int
}

// PickList is what the kitchen has to prepare for a day
type PickList struct {
	Date       time.Time
	OrderCount int
	Items      []PickItem
}

type pickKey struct {
	code string
	size string
}

// BuildPickList aggregates the line items of the non-cancelled orders of day
// by product code and size. Lines without a code are keyed by product name.
func (c *Calendar) BuildPickList(orders []Order, day time.Time) PickList {
	key := c.Key(day)
	list := PickList{Date: c.Truncate(day)}
	index := make(map[pickKey]int)
	seen := make(map[pickKey]map[string]struct{})

	for i, o := range orders {
		if o.IsCancelled() || c.Key(o.Date) != key {
			continue
		}
		list.OrderCount++
		orderKey := o.ID
		if orderKey == "" {
			orderKey = o.Code
		}
		if orderKey == "" {
			orderKey = "#" + strconv.Itoa(i)
		}
		for _, item := range o.Items {
			k := pickKey{code: item.ProductCode, size: FoldText(item.Size)}
			if k.code == "" {
				k.code = FoldText(item.ProductName)
			}
			j, ok := index[k]
			if !ok {
				j = len(list.Items)
				index[k] = j
				seen[k] = make(map[string]struct{})
				list.Items = append(list.Items, PickItem{
					ProductCode: item.ProductCode,
					ProductName: item.ProductName,
					Size:        item.Size,
				})
			}
			list.Items[j].Quantity += item.Quantity
			if _, dup := seen[k][orderKey]; !dup {
				seen[k][orderKey] = struct{}{}
				list.Items[j].OrderCount++
			}
		}
	}

	sort.SliceStable(list.Items, func(a, b int) bool {
		na, nb := FoldText(list.Items[a].ProductName), FoldText(list.Items[b].ProductName)
		if na != nb {
			return na < nb
		}
		return FoldText(list.Items[a].Size) < FoldText(list.Items[b].Size)
	})
	return list
}
