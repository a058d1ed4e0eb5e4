package order

import (
	"strings"
	"time"
)

// Predicate selects orders
type Predicate func(Order) bool

// Filter is the set of user-selected list filters. Empty fields match everything.
type Filter struct {
	Status         Status
	Search         string
	Date           time.Time
	Branch         string
	DeliveryMethod string
	Shipper        string
}

// IsEmpty reports whether no filter is active
func (f Filter) IsEmpty() bool {
	return f.Status == "" && strings.TrimSpace(f.Search) == "" && f.Date.IsZero() &&
		f.Branch == "" && f.DeliveryMethod == "" && f.Shipper == ""
}

// WithoutStatus returns a copy of f with the status predicate cleared
func (f Filter) WithoutStatus() Filter {
	f.Status = ""
	return f
}

// Predicates builds the independent predicate chain for the active filters
func (c *Calendar) Predicates(f Filter) []Predicate {
	var preds []Predicate
	if f.Status != "" {
		status := f.Status
		preds = append(preds, func(o Order) bool { return o.Status == status })
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		preds = append(preds, SearchPredicate(q))
	}
	if !f.Date.IsZero() {
		key := c.Key(f.Date)
		preds = append(preds, func(o Order) bool { return c.Key(o.Date) == key })
	}
	if f.Branch != "" {
		preds = append(preds, fieldEquals(f.Branch, func(o Order) string { return o.Branch }))
	}
	if f.DeliveryMethod != "" {
		preds = append(preds, fieldEquals(f.DeliveryMethod, func(o Order) string { return o.DeliveryMethod }))
	}
	if f.Shipper != "" {
		preds = append(preds, fieldEquals(f.Shipper, func(o Order) string { return o.Shipper }))
	}
	return preds
}

// SearchPredicate matches the customer name or order code ignoring case and
// diacritics, or the phone number by digits.
func SearchPredicate(query string) Predicate {
	folded := FoldText(query)
	digits := digitsOnly(query)
	return func(o Order) bool {
		if strings.Contains(FoldText(o.Customer.Name), folded) {
			return true
		}
		if strings.Contains(FoldText(o.Code), folded) {
			return true
		}
		return digits != "" && strings.Contains(digitsOnly(o.Customer.Phone), digits)
	}
}

func fieldEquals(want string, field func(Order) string) Predicate {
	folded := FoldText(want)
	return func(o Order) bool { return FoldText(field(o)) == folded }
}

// Apply keeps the orders matching every predicate, preserving input order
func Apply(orders []Order, preds ...Predicate) []Order {
	out := make([]Order, 0, len(orders))
next:
	for _, o := range orders {
		for _, p := range preds {
			if !p(o) {
				continue next
			}
		}
		out = append(out, o)
	}
	return out
}

// Filter applies every active filter
func (c *Calendar) Filter(orders []Order, f Filter) []Order {
	return Apply(orders, c.Predicates(f)...)
}

// TabCounts holds the per-status badge counts of the status tabs
type TabCounts struct {
	All      int
	ByStatus map[Status]int
}

// CountTabs counts orders per status over the list filtered by every active
// filter except status, so each tab shows what selecting it would display.
func (c *Calendar) CountTabs(orders []Order, f Filter) TabCounts {
	base := c.Filter(orders, f.WithoutStatus())
	counts := TabCounts{All: len(base), ByStatus: make(map[Status]int, len(AllStatuses()))}
	for _, s := range AllStatuses() {
		counts.ByStatus[s] = 0
	}
	for _, o := range base {
		counts.ByStatus[o.Status]++
	}
	return counts
}
