package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ordersPayload = `{"error":"0","data":[
	{"id":"A1","ngay":"2024-02-10","trangThai":"cho_xu_ly","tongTien":700000,
	 "sanPhams":[{"tenSanPham":"Heo quay","kichThuoc":"5kg","soLuong":2,"maSanPham":"HQ5"}]},
	{"id":"A2","ngay":"2024-02-10","trangThai":"da_giao","tongTien":350000,
	 "sanPhams":[{"tenSanPham":"Heo quay","kichThuoc":"5kg","soLuong":1,"maSanPham":"HQ5"},
	             {"tenSanPham":"Bánh hỏi","soLuong":3,"maSanPham":"BH"}]},
	{"id":"A3","ngay":"2024-02-10","trangThai":"da_huy","tongTien":200000,
	 "sanPhams":[{"tenSanPham":"Heo quay","kichThuoc":"5kg","soLuong":9,"maSanPham":"HQ5"}]},
	{"id":"A4","ngay":"2024-02-11","trangThai":"cho_xu_ly","tongTien":500000}
]}`

// fakeOrders serves GET /orders and records the Authorization headers
type fakeOrders struct {
	*httptest.Server
	mu    sync.Mutex
	auths []string
}

func newFakeOrders(t *testing.T, status int, body string) *fakeOrders {
	t.Helper()
	f := &fakeOrders{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.auths = append(f.auths, r.Header.Get("Authorization"))
		f.mu.Unlock()
		if r.URL.Path != "/orders" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeOrders) lastAuth() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.auths) == 0 {
		return ""
	}
	return f.auths[len(f.auths)-1]
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// an empty config file keeps a stray config.toml in the working directory out of the test
	cfgFile := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgFile, nil, 0o600))

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--config", cfgFile}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestPickList_Table(t *testing.T) {
	srv := newFakeOrders(t, http.StatusOK, ordersPayload)

	out, err := run(t, "pick-list", "--upstream-url", srv.URL, "--date", "2024-02-10", "--token", "tok-1")
	require.NoError(t, err)

	assert.Contains(t, out, "Ngày 2024-02-10 (1/1 ÂL) - 2 đơn")
	assert.Regexp(t, `HQ5\s+Heo quay\s+5kg\s+3\s+2`, out)
	assert.Regexp(t, `BH\s+Bánh hỏi\s+3\s+1`, out)
	assert.Equal(t, "Bearer tok-1", srv.lastAuth())
}

func TestPickList_JSON(t *testing.T) {
	srv := newFakeOrders(t, http.StatusOK, ordersPayload)

	out, err := run(t, "pick-list", "--upstream-url", srv.URL, "--date", "2024-02-11", "--json")
	require.NoError(t, err)

	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "2024-02-11", resp["ngay"])
	assert.Equal(t, float64(1), resp["tongDon"])
	assert.Empty(t, resp["items"])
}

func TestPickList_DayFirstDate(t *testing.T) {
	srv := newFakeOrders(t, http.StatusOK, ordersPayload)

	out, err := run(t, "pick-list", "--upstream-url", srv.URL, "--date", "10/02/2024")
	require.NoError(t, err)
	assert.Contains(t, out, "Ngày 2024-02-10 (1/1 ÂL) - 2 đơn")
}

func TestPickList_Errors(t *testing.T) {
	srv := newFakeOrders(t, http.StatusOK, ordersPayload)

	_, err := run(t, "pick-list", "--upstream-url", srv.URL, "--date", "2024-13-40")
	assert.ErrorContains(t, err, `invalid --date "2024-13-40"`)

	_, err = run(t, "pick-list", "--upstream-url", srv.URL, "--date", "mai")
	assert.ErrorContains(t, err, `invalid --date "mai"`)

	_, err = run(t, "pick-list")
	assert.ErrorContains(t, err, "no webhook API configured")

	down := newFakeOrders(t, http.StatusBadGateway, `{"error":"1","message":"Hết giờ"}`)
	_, err = run(t, "pick-list", "--upstream-url", down.URL)
	assert.ErrorContains(t, err, "failed to build pick list")
}

func TestWatch_Once(t *testing.T) {
	srv := newFakeOrders(t, http.StatusOK, ordersPayload)

	out, err := run(t, "watch", "--once", "--upstream-url", srv.URL, "--token", "svc")
	require.NoError(t, err)

	assert.Contains(t, out, "4 đơn (manual)")
	assert.Regexp(t, `2024-02-10 Thứ 7\s+1/1 ÂL\s+3 đơn\s+1250000 đ`, out)
	assert.Regexp(t, `2024-02-11 Chủ nhật\s+2/1 ÂL\s+1 đơn\s+500000 đ`, out)
	assert.Equal(t, "Bearer svc", srv.lastAuth())
}

func TestWatch_OnceFailure(t *testing.T) {
	srv := newFakeOrders(t, http.StatusServiceUnavailable, `{"error":"1","message":"Bảo trì"}`)

	out, err := run(t, "watch", "--once", "--upstream-url", srv.URL)
	require.Error(t, err)
	assert.Contains(t, out, "làm mới thất bại (manual)")
}
