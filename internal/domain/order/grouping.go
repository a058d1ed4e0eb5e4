package order

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DayBucket holds every order of a single calendar day
type DayBucket struct {
	Key        string
	Date       time.Time
	LunarLabel string
	Weekday    string
	Orders     []Order
	Revenue    decimal.Decimal
}

// Count is the number of orders in the bucket
func (b DayBucket) Count() int {
	return len(b.Orders)
}

// GroupByDay places each order into exactly one bucket keyed by its calendar
// date. Buckets ascend by date with undated orders last; orders inside a bucket
// ascend by time of day and keep their input order on ties.
func (c *Calendar) GroupByDay(orders []Order) []DayBucket {
	index := make(map[string]int)
	var buckets []DayBucket

	for _, o := range orders {
		key := c.Key(o.Date)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			b := DayBucket{Key: key, Revenue: decimal.Zero}
			if !o.Date.IsZero() {
				b.Date = c.Truncate(o.Date)
				b.Weekday = WeekdayLabel(b.Date)
				b.LunarLabel = LunarLabel(b.Date)
			}
			buckets = append(buckets, b)
		}
		b := &buckets[i]
		b.Orders = append(b.Orders, o)
		b.Revenue = b.Revenue.Add(o.Total)
		if o.LunarLabel != "" && b.LunarLabel == "" {
			b.LunarLabel = o.LunarLabel
		}
	}

	for i := range buckets {
		members := buckets[i].Orders
		sort.SliceStable(members, func(a, b int) bool {
			return members[a].Time.Before(members[b].Time)
		})
	}

	sort.SliceStable(buckets, func(a, b int) bool {
		ka, kb := buckets[a].Key, buckets[b].Key
		if ka == "" || kb == "" {
			return kb == "" && ka != ""
		}
		return ka < kb
	})
	return buckets
}

// TotalRevenue sums bucket revenue
func TotalRevenue(buckets []DayBucket) decimal.Decimal {
	total := decimal.Zero
	for _, b := range buckets {
		total = total.Add(b.Revenue)
	}
	return total
}
