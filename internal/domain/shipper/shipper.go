package shipper

import "strings"

// Shipper is a delivery person known to the webhook API
type Shipper struct {
	UserName string `json:"userName"`
	Phone    string `json:"soDienThoai,omitempty"`
	Role     string `json:"vaiTro,omitempty"`
}

// Dedupe drops entries without a username and repeated usernames,
// keeping the first occurrence.
func Dedupe(list []Shipper) []Shipper {
	seen := make(map[string]struct{}, len(list))
	out := make([]Shipper, 0, len(list))
	for _, s := range list {
		s.UserName = strings.TrimSpace(s.UserName)
		key := strings.ToLower(s.UserName)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
