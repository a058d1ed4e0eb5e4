package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/heoquay/backend/internal/application/delivery"
	orderapp "github.com/heoquay/backend/internal/application/order"
	"github.com/heoquay/backend/internal/infrastructure/ahamove"
	"github.com/heoquay/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAhamove answers every call with one canned status and body
type fakeAhamove struct {
	server *httptest.Server
	status int
	body   string

	mu    sync.Mutex
	paths []string
	last  map[string]any
}

func newFakeAhamove(t *testing.T, status int, body string) *fakeAhamove {
	t.Helper()
	f := &fakeAhamove{status: status, body: body}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.paths = append(f.paths, r.URL.Path)
		f.last = nil
		_ = json.Unmarshal(raw, &f.last)
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		_, _ = io.WriteString(w, f.body)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAhamove) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

func (f *fakeAhamove) lastBody() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func (f *fakeAhamove) config() config.AhamoveConfig {
	return config.AhamoveConfig{
		BaseURL:          f.server.URL,
		Token:            "aha-token",
		Timeout:          2 * time.Second,
		DefaultServiceID: "SGN-BIKE",
		PickupAddress:    "1 Nguyễn Huệ",
		PickupName:       "Heo Quay Ngọc Hải",
		PickupPhone:      "0281234567",
	}
}

// deliveryFixture wires a delivery service to both fakes
func deliveryFixture(t *testing.T, aha *fakeAhamove) (*fakeWebhook, *orderapp.Service, *delivery.Service) {
	t.Helper()
	f := newFakeWebhook(t)
	f.handleJSON(http.MethodGet, "/orders", http.StatusOK, ordersFixture)
	f.handleJSON(http.MethodPost, "/orders/update-status", http.StatusOK, `{"error":"0"}`)

	orders := orderapp.NewService(f.client(), handlerCalendar)
	cfg := aha.config()
	return f, orders, delivery.NewService(ahamove.NewClient(cfg), orders, orders, cfg)
}

func deliveryRouter(svc *delivery.Service) *gin.Engine {
	h := NewDeliveryHandler(svc)
	r := gin.New()
	r.POST("/api/ahamove/create-order", h.Dispatch)
	r.GET("/api/ahamove/search-address", h.SearchAddress)
	return r
}

func TestDeliveryHandler_Dispatch(t *testing.T) {
	aha := newFakeAhamove(t, http.StatusOK, `{"order_id":"AHA-1","status":"ASSIGNING","total_price":32000}`)
	f, _, svc := deliveryFixture(t, aha)

	w := performRequest(deliveryRouter(svc), http.MethodPost, "/api/ahamove/create-order", `{"orderId":"A1"}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "AHA-1", data["ahamoveOrderId"])
	assert.Equal(t, float64(32000), data["phiGiao"])
	assert.Equal(t, float64(700000), data["cod"])
	assert.Equal(t, true, data["statusUpdated"])

	sent := aha.lastBody()
	assert.Equal(t, "SGN-BIKE", sent["service_id"])
	assert.Equal(t, ahamove.PaymentCash, sent["payment_method"])
	path := sent["path"].([]any)
	require.Len(t, path, 2)
	assert.Equal(t, "1 Nguyễn Huệ", path[0].(map[string]any)["address"])
	assert.Equal(t, "34 Lê Lợi", path[1].(map[string]any)["address"])

	last := f.lastCall()
	assert.Equal(t, "/orders/update-status", last.Path)
	assert.Equal(t, map[string]any{"orderId": "A1", "status": "dang_giao"}, last.Body)
}

func TestDeliveryHandler_DispatchRejected(t *testing.T) {
	aha := newFakeAhamove(t, http.StatusNotAcceptable, `{"code":"INVALID_SERVICE","description":"Dịch vụ không hợp lệ"}`)
	f, _, svc := deliveryFixture(t, aha)

	w := performRequest(deliveryRouter(svc), http.MethodPost, "/api/ahamove/create-order", `{"orderId":"A1","service_id":"NOPE"}`)

	assert.Equal(t, http.StatusNotAcceptable, w.Code)
	assert.Equal(t, "Dịch vụ không hợp lệ", decodeBody(t, w)["message"])
	assert.NotEqual(t, "/orders/update-status", f.lastCall().Path)
}

func TestDeliveryHandler_DispatchValidation(t *testing.T) {
	aha := newFakeAhamove(t, http.StatusOK, `{}`)
	_, _, svc := deliveryFixture(t, aha)
	router := deliveryRouter(svc)

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"missing order id", `{}`, http.StatusBadRequest, "Thiếu orderId"},
		{"unknown order", `{"orderId":"ZZZ"}`, http.StatusNotFound, "Không tìm thấy đơn hàng ZZZ"},
		{"order without address", `{"orderId":"A2"}`, http.StatusBadRequest, "Đơn hàng chưa có địa chỉ giao"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPost, "/api/ahamove/create-order", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.message, decodeBody(t, w)["message"])
		})
	}
	assert.Empty(t, aha.calls())
}

func TestDeliveryHandler_SearchAddress(t *testing.T) {
	aha := newFakeAhamove(t, http.StatusOK, `[{"address":"34 Lê Lợi, Quận 1","lat":10.77,"lng":106.70}]`)
	_, _, svc := deliveryFixture(t, aha)
	router := deliveryRouter(svc)

	w := performRequest(router, http.MethodGet, "/api/ahamove/search-address?keySearch=L", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"error":"0","data":[]}`, w.Body.String())
	assert.Empty(t, aha.calls())

	w = performRequest(router, http.MethodGet, "/api/ahamove/search-address?keySearch=L%C3%AA+L%E1%BB%A3i", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"error":"0","data":[{"address":"34 Lê Lợi, Quận 1","lat":10.77,"lng":106.70}]}`, w.Body.String())
	assert.Equal(t, []string{"/v1/place/autocomplete"}, aha.calls())
}

func TestOrderHandler_UpdateTypesAhamove(t *testing.T) {
	aha := newFakeAhamove(t, http.StatusOK, `{"order_id":"AHA-9","status":"ASSIGNING","total_price":30000}`)
	f, orders, svc := deliveryFixture(t, aha)

	h := NewOrderHandler(orders, orderapp.NewBulkService(f.client(), svc))
	r := gin.New()
	r.POST("/api/orders/update-types", h.UpdateTypes)

	w := performRequest(r, http.MethodPost, "/api/orders/update-types", `{"orderIds":["A1","A2"],"type":"4"}`)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "1", body["error"])
	assert.Equal(t, "1/2 đơn không tạo được giao hàng", body["message"])

	outcomes := body["data"].([]any)
	require.Len(t, outcomes, 2)
	first := outcomes[0].(map[string]any)
	assert.Equal(t, "A1", first["orderId"])
	assert.Equal(t, "0", first["error"])
	assert.Equal(t, "AHA-9", first["data"].(map[string]any)["ahamoveOrderId"])
	second := outcomes[1].(map[string]any)
	assert.Equal(t, "A2", second["orderId"])
	assert.Equal(t, "1", second["error"])
	assert.Equal(t, "Đơn hàng chưa có địa chỉ giao", second["message"])

	assert.Equal(t, []string{"/v1/order/create"}, aha.calls())
}
