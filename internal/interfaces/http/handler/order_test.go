package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	orderapp "github.com/heoquay/backend/internal/application/order"
	domain "github.com/heoquay/backend/internal/domain/order"
	"github.com/heoquay/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ordersFixture = `{"error":"0","data":[
	{"id":"A1","maDonHang":"DH001","gio":"9:30","ngay":"2024-02-10",
	 "khachHang":{"ten":"Nguyễn Văn A","soDienThoai":"0901234567","diaChi":"34 Lê Lợi"},
	 "sanPhams":[{"tenSanPham":"Heo quay","kichThuoc":"5kg","soLuong":2,"maSanPham":"HQ5"}],
	 "tongTien":700000,"trangThai":"cho_xu_ly","thanhToan":"tien_mat"},
	{"id":"A2","maDonHang":"DH002","gio":"7:00","ngay":"2024-02-10",
	 "khachHang":{"ten":"Trần Thị B","soDienThoai":"0907654321"},
	 "sanPhams":[{"tenSanPham":"Heo quay","kichThuoc":"5kg","soLuong":1,"maSanPham":"HQ5"}],
	 "tongTien":350000,"trangThai":"da_giao","thanhToan":"chuyen_khoan"},
	{"id":"A3","maDonHang":"DH003","gio":"10:00","ngay":"2024-02-11",
	 "khachHang":{"ten":"Lê Văn C"},
	 "tongTien":500000,"trangThai":"cho_xu_ly"}
]}`

var handlerCalendar = domain.MustCalendar(domain.DefaultTimezone)

func orderRouter(f *fakeWebhook) *gin.Engine {
	up := f.client()
	svc := orderapp.NewService(up, handlerCalendar, orderapp.WithClock(func() time.Time {
		return time.Date(2024, 2, 10, 8, 0, 0, 0, handlerCalendar.Location())
	}))
	h := NewOrderHandler(svc, orderapp.NewBulkService(up, nil))

	r := gin.New()
	r.Use(middleware.Credentials(""))
	r.GET("/api/orders", h.List)
	r.GET("/api/orders/calendar", h.Calendar)
	r.POST("/api/orders/update", h.Update)
	r.POST("/api/orders/update-status", h.UpdateStatus)
	r.POST("/api/orders/update-types", h.UpdateTypes)
	r.POST("/api/orders/check-paid", h.CheckPaid)
	r.POST("/api/orders/qr-payment", h.QRPayment)
	r.POST("/api/orders/send-zalo", h.SendZalo)
	r.POST("/api/orders/shipper-confirm", h.ShipperConfirm)
	r.GET("/api/collect-orders", h.CollectOrders)
	return r
}

func TestOrderHandler_ListForwardsCredentials(t *testing.T) {
	f := newFakeWebhook(t)
	f.handleJSON(http.MethodGet, "/orders", http.StatusOK, ordersFixture)

	w := performRequest(orderRouter(f), http.MethodGet, "/api/orders?chiNhanh=q1", "",
		"Authorization", "Bearer tok-1", "X-Role", "Admin")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "0", body["error"])
	orders := body["data"].([]any)
	require.Len(t, orders, 3)
	first := orders[0].(map[string]any)
	assert.Equal(t, "DH001", first["maDonHang"])
	assert.Equal(t, "09:30", first["gio"])
	assert.Equal(t, "1/1 ÂL", first["ngayAm"])

	call := f.lastCall()
	assert.Equal(t, "Bearer tok-1", call.Auth)
	assert.Equal(t, "Admin", call.Role)
	assert.Equal(t, "q1", call.Query.Get("chiNhanh"))
}

func TestOrderHandler_ListWithoutCredentials(t *testing.T) {
	f := newFakeWebhook(t)
	f.handleJSON(http.MethodGet, "/orders", http.StatusOK, ordersFixture)

	w := performRequest(orderRouter(f), http.MethodGet, "/api/orders", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, f.lastCall().Auth)
	assert.Empty(t, f.lastCall().Role)
}

func TestOrderHandler_Calendar(t *testing.T) {
	f := newFakeWebhook(t)
	f.handleJSON(http.MethodGet, "/orders", http.StatusOK, ordersFixture)
	router := orderRouter(f)

	w := performRequest(router, http.MethodGet, "/api/orders/calendar?status=cho_xu_ly&q=nguyen", "")
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(1), data["tongDon"])
	assert.Equal(t, float64(700000), data["tongDoanhThu"])
	tabs := data["tabs"].(map[string]any)
	// tab counts ignore the status filter but keep the search
	assert.Equal(t, float64(1), tabs["tatCa"])

	w = performRequest(router, http.MethodGet, "/api/orders/calendar?status=khong_ro", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "status không hợp lệ", decodeBody(t, w)["message"])

	w = performRequest(router, http.MethodGet, "/api/orders/calendar?ngay=2024-02-11", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["data"].(map[string]any)["tongDon"])
}

func TestOrderHandler_ValidationBeforeForwarding(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		body    string
		message string
	}{
		{"update without orderId", "/api/orders/update", `{"sanPhams":[]}`, "Thiếu orderId"},
		{"update without items", "/api/orders/update", `{"orderId":"A1"}`, "Thiếu sanPhams"},
		{"status without value", "/api/orders/update-status", `{"orderId":"A1"}`, "Thiếu status"},
		{"unknown status", "/api/orders/update-status", `{"orderId":"A1","status":"bay"}`, "status không hợp lệ"},
		{"bulk type out of range", "/api/orders/update-types", `{"orderIds":["A1"],"type":5}`, "type phải là 1, 2, 3 hoặc 4"},
		{"bulk type with a fraction", "/api/orders/update-types", `{"orderIds":["A1"],"type":1.9}`, "type phải là 1, 2, 3 hoặc 4"},
		{"bulk type as fractional text", "/api/orders/update-types", `{"orderIds":["A1"],"type":"2.5"}`, "type phải là 1, 2, 3 hoặc 4"},
		{"bulk type as words", "/api/orders/update-types", `{"orderIds":["A1"],"type":"hai"}`, "type phải là 1, 2, 3 hoặc 4"},
		{"bulk without ids", "/api/orders/update-types", `{"orderIds":[" "],"type":2}`, "Thiếu orderIds"},
		{"zalo without phone", "/api/orders/send-zalo", `{"orderId":"A1"}`, "Thiếu phone"},
		{"confirm without shipper", "/api/orders/shipper-confirm", `{"orderId":"A1"}`, "Thiếu shipper"},
		{"check-paid malformed", "/api/orders/check-paid", `{"orderId":`, "Dữ liệu gửi lên không phải JSON hợp lệ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeWebhook(t)

			w := performRequest(orderRouter(f), http.MethodPost, tt.path, tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, "1", body["error"])
			assert.Equal(t, tt.message, body["message"])
			assert.Zero(t, f.callCount())
		})
	}
}

func TestOrderHandler_UpdateRelaysUpstreamStatus(t *testing.T) {
	f := newFakeWebhook(t)
	f.handleJSON(http.MethodPost, "/orders/update", http.StatusUnprocessableEntity, `{"error":1,"message":"Sai dữ liệu"}`)

	w := performRequest(orderRouter(f), http.MethodPost, "/api/orders/update",
		`{"orderId":" A1 ","sanPhams":[{"maSanPham":"HQ5","soLuong":3}]}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"error":"1","message":"Sai dữ liệu"}`, w.Body.String())

	call := f.lastCall()
	assert.Equal(t, "A1", call.Body["orderId"])
	assert.Len(t, call.Body["sanPhams"], 1)
}

func TestOrderHandler_UpdateStatusNormalizes(t *testing.T) {
	f := newFakeWebhook(t)
	f.handleJSON(http.MethodPost, "/orders/update-status", http.StatusOK, `{"error":"0","message":"OK"}`)

	w := performRequest(orderRouter(f), http.MethodPost, "/api/orders/update-status",
		`{"orderId":"A1","status":"Đang giao"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"error":"0","message":"OK"}`, w.Body.String())
	assert.Equal(t, "dang_giao", f.lastCall().Body["status"])
}

func TestOrderHandler_UpdateTypesForwardsBulk(t *testing.T) {
	f := newFakeWebhook(t)
	f.handleJSON(http.MethodPost, "/orders/update-types", http.StatusOK, `{"error":0}`)

	w := performRequest(orderRouter(f), http.MethodPost, "/api/orders/update-types",
		`{"orderIds":["A1","A2"],"type":"2"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"error":"0"}`, w.Body.String())

	call := f.lastCall()
	assert.Equal(t, []any{"A1", "A2"}, call.Body["orderIds"])
	assert.Equal(t, float64(2), call.Body["type"])
	assert.NotContains(t, call.Body, "status")
}

func TestOrderHandler_CheckPaid(t *testing.T) {
	tests := []struct {
		name     string
		upstream string
		wantPaid bool
	}{
		{"paid", `{"error":"0","message":"Đã thanh toán"}`, true},
		{"unpaid", `{"error":"1","message":"Chưa thanh toán"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeWebhook(t)
			f.handleJSON(http.MethodPost, "/orders/check-paid", http.StatusOK, tt.upstream)

			w := performRequest(orderRouter(f), http.MethodPost, "/api/orders/check-paid", `{"orderId":"A1"}`)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantPaid, decodeBody(t, w)["isPaid"])
		})
	}
}

func TestOrderHandler_QRPaymentImage(t *testing.T) {
	f := newFakeWebhook(t)
	f.handle(http.MethodPost, "/orders/qr-payment", http.StatusOK, "image/png", "\x89PNG")

	w := performRequest(orderRouter(f), http.MethodPost, "/api/orders/qr-payment", `{"orderId":"A1"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "0", body["error"])
	data := body["data"].(map[string]any)
	assert.Equal(t, true, data["isImage"])
	assert.Equal(t, "image/png", data["contentType"])
	assert.NotEmpty(t, data["imageBase64"])
}

func TestOrderHandler_NonJSONUpstreamError(t *testing.T) {
	f := newFakeWebhook(t)
	f.handle(http.MethodPost, "/orders/send-zalo", http.StatusBadGateway, "text/html", "Bad gateway")

	w := performRequest(orderRouter(f), http.MethodPost, "/api/orders/send-zalo", `{"orderId":"A1","phone":"0901234567"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"1","message":"Bad gateway"}`, w.Body.String())
}

func TestOrderHandler_ShipperConfirm(t *testing.T) {
	f := newFakeWebhook(t)
	f.handleJSON(http.MethodPost, "/orders/shipper-confirm", http.StatusOK, `{"error":"0"}`)

	w := performRequest(orderRouter(f), http.MethodPost, "/api/orders/shipper-confirm", `{"orderId":"A1","shipper":"tuan"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tuan", f.lastCall().Body["shipper"])
}

func TestOrderHandler_UpstreamUnreachable(t *testing.T) {
	up := unreachableClient(t)
	svc := orderapp.NewService(up, handlerCalendar)
	h := NewOrderHandler(svc, orderapp.NewBulkService(up, nil))
	r := gin.New()
	r.GET("/api/orders", h.List)
	r.POST("/api/orders/update-status", h.UpdateStatus)

	w := performRequest(r, http.MethodGet, "/api/orders", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"1","message":"Không thể kết nối tới máy chủ"}`, w.Body.String())

	w = performRequest(r, http.MethodPost, "/api/orders/update-status", `{"orderId":"A1","status":"da_giao"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "1", decodeBody(t, w)["error"])
}

func TestOrderHandler_CollectOrders(t *testing.T) {
	f := newFakeWebhook(t)
	f.handleJSON(http.MethodGet, "/orders", http.StatusOK, ordersFixture)
	router := orderRouter(f)

	// defaults to today, 2024-02-10
	w := performRequest(router, http.MethodGet, "/api/collect-orders", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "2024-02-10", data["ngay"])
	assert.Equal(t, "1/1 ÂL", data["ngayAm"])
	items := data["items"].([]any)
	require.Len(t, items, 1)
	line := items[0].(map[string]any)
	assert.Equal(t, "HQ5", line["maSanPham"])
	assert.Equal(t, float64(3), line["soLuong"])
	assert.Equal(t, float64(2), line["soDon"])

	w = performRequest(router, http.MethodGet, "/api/collect-orders?date=10-02", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "date không hợp lệ", decodeBody(t, w)["message"])
}

func TestParseBulkType(t *testing.T) {
	tests := []struct {
		raw  any
		want orderapp.BulkType
	}{
		{float64(4), orderapp.BulkType(4)},
		{float64(2.0), orderapp.BulkType(2)},
		{" 3 ", orderapp.BulkType(3)},
		{"04", orderapp.BulkType(4)},
		{float64(1.9), 0},
		{"2.5", 0},
		{"", 0},
		{nil, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseBulkType(tt.raw), "%#v", tt.raw)
	}
}
