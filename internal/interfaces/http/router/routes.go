package router

import (
	"github.com/gin-gonic/gin"
	"github.com/heoquay/backend/internal/interfaces/http/handler"
	"github.com/heoquay/backend/internal/interfaces/http/middleware"
)

// Handlers are the HTTP handlers served below /api
type Handlers struct {
	Auth      *handler.AuthHandler
	Order     *handler.OrderHandler
	Board     *handler.BoardHandler
	Delivery  *handler.DeliveryHandler
	Warehouse *handler.WarehouseHandler
	Shipper   *handler.ShipperHandler
	User      *handler.UserHandler
	System    *handler.SystemHandler
}

// DomainGroups returns the API route groups. loginGuard runs in front of
// the login route only. The board is fetched with the service token and the
// users are local, so both groups refuse callers without a token.
func DomainGroups(h Handlers, loginGuard ...gin.HandlerFunc) []*DomainGroup {
	auth := NewDomainGroup("auth", "/auth")
	login := append(append([]gin.HandlerFunc{}, loginGuard...), h.Auth.Login)
	auth.POST("/login", login...)

	orders := NewDomainGroup("orders", "/orders")
	orders.GET("", h.Order.List).
		GET("/calendar", h.Order.Calendar).
		POST("/update", h.Order.Update).
		POST("/update-status", h.Order.UpdateStatus).
		POST("/update-types", h.Order.UpdateTypes).
		POST("/check-paid", h.Order.CheckPaid).
		POST("/qr-payment", h.Order.QRPayment).
		POST("/send-zalo", h.Order.SendZalo).
		POST("/shipper-confirm", h.Order.ShipperConfirm).
		POST("/ahamove", h.Delivery.Dispatch)

	orders.Group("board", "/board").
		Use(middleware.RequireToken()).
		GET("", h.Board.Get).
		POST("/refresh", h.Board.Refresh).
		POST("/visibility", h.Board.Visibility)

	collect := NewDomainGroup("collect-orders", "/collect-orders")
	collect.GET("", h.Order.CollectOrders)

	warehouse := NewDomainGroup("warehouse", "/warehouse")
	warehouse.GET("", h.Warehouse.List).
		POST("", h.Warehouse.Update).
		POST("/create", h.Warehouse.Create).
		DELETE("", h.Warehouse.Delete)

	shippers := NewDomainGroup("shippers", "/shippers")
	shippers.GET("", h.Shipper.List)

	users := NewDomainGroup("users", "/users").Use(middleware.RequireToken())
	users.GET("", h.User.List).
		POST("", h.User.Create).
		DELETE("", h.User.Delete)

	ahamove := NewDomainGroup("ahamove", "/ahamove")
	ahamove.GET("/search-address", h.Delivery.SearchAddress)

	system := NewDomainGroup("system", "/system")
	system.GET("/ping", h.System.Ping)

	return []*DomainGroup{auth, orders, collect, warehouse, shippers, users, ahamove, system}
}
