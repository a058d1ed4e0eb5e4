package order

import (
	"strconv"
	"strings"
)

// Status represents the lifecycle state of an order
type Status string

const (
	StatusPending        Status = "cho_xu_ly"
	StatusRoasting       Status = "dang_quay"
	StatusOutForDelivery Status = "dang_giao"
	StatusDelivered      Status = "da_giao"
	StatusTransferred    Status = "da_chuyen_khoan"
	StatusCancelled      Status = "da_huy"
	StatusDebt           Status = "cong_no"
	StatusCompleted      Status = "hoan_thanh"
)

// AllStatuses returns every status in display (tab) order
func AllStatuses() []Status {
	return []Status{
		StatusPending,
		StatusRoasting,
		StatusOutForDelivery,
		StatusDelivered,
		StatusTransferred,
		StatusCancelled,
		StatusDebt,
		StatusCompleted,
	}
}

var statusLabels = map[Status]string{
	StatusPending:        "Chờ xử lý",
	StatusRoasting:       "Đang quay",
	StatusOutForDelivery: "Đang giao",
	StatusDelivered:      "Đã giao",
	StatusTransferred:    "Đã chuyển khoản",
	StatusCancelled:      "Đã hủy",
	StatusDebt:           "Công nợ",
	StatusCompleted:      "Hoàn thành",
}

// statusAliases maps every accepted upstream spelling (folded) to a status.
// Upstream sends either the code, the Vietnamese label, an English word or
// the 1-based position of the status in AllStatuses.
var statusAliases = func() map[string]Status {
	m := map[string]Status{
		"pending":          StatusPending,
		"new":              StatusPending,
		"roasting":         StatusRoasting,
		"delivering":       StatusOutForDelivery,
		"out_for_delivery": StatusOutForDelivery,
		"shipping":         StatusOutForDelivery,
		"delivered":        StatusDelivered,
		"transferred":      StatusTransferred,
		"paid":             StatusTransferred,
		"cancelled":        StatusCancelled,
		"canceled":         StatusCancelled,
		"debt":             StatusDebt,
		"completed":        StatusCompleted,
		"done":             StatusCompleted,
	}
	for i, s := range AllStatuses() {
		m[string(s)] = s
		m[FoldText(statusLabels[s])] = s
		m[strconv.Itoa(i+1)] = s
	}
	return m
}()

// ParseStatus converts an upstream status value into a Status.
// Unknown or empty values fall back to StatusPending.
func ParseStatus(raw string) Status {
	s, ok := LookupStatus(raw)
	if !ok {
		return StatusPending
	}
	return s
}

// LookupStatus is ParseStatus without the fallback
func LookupStatus(raw string) (Status, bool) {
	key := strings.ReplaceAll(FoldText(raw), " ", "_")
	if s, ok := statusAliases[key]; ok {
		return s, true
	}
	if s, ok := statusAliases[FoldText(raw)]; ok {
		return s, true
	}
	return "", false
}

// IsValid returns true if the status is one of the known statuses
func (s Status) IsValid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the Vietnamese display label
func (s Status) Label() string {
	return statusLabels[s]
}

// String implements fmt.Stringer
func (s Status) String() string {
	return string(s)
}

// PaymentMethod is how the customer pays for an order
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "tien_mat"
	PaymentBankTransfer PaymentMethod = "chuyen_khoan"
)

// ParsePaymentMethod converts an upstream payment value. Anything that is not
// recognisably a bank transfer is treated as cash.
func ParsePaymentMethod(raw string) PaymentMethod {
	switch strings.ReplaceAll(FoldText(raw), " ", "_") {
	case "chuyen_khoan", "ck", "bank", "bank_transfer", "transfer", "banking":
		return PaymentBankTransfer
	default:
		return PaymentCash
	}
}

// Label returns the Vietnamese display label
func (p PaymentMethod) Label() string {
	if p == PaymentBankTransfer {
		return "Chuyển khoản"
	}
	return "Tiền mặt"
}
