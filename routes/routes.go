package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ashutosh-187/Paper-Trading-platform-backend/handlers"
)

func RegisterRoutes(router *gin.Engine, h *handlers.Handler) {
	router.POST("/master_file", h.CreateMasterFile)
	router.GET("/master_file", h.GetMasterFile)

	router.POST("/subscribe", h.Subscribe)
	router.POST("/unsubscribe", h.Unsubscribe)
	router.GET("/subscriptions", h.ListSubscriptions)

	router.GET("/get_prices", h.GetPrices)
	router.POST("/place_order", h.PlaceOrder)
	router.POST("/square_off", h.SquareOff)
	router.GET("/get_mtm", h.GetMTM)
	router.GET("/get_alerts", h.GetAlerts)

	router.GET("/ws/ticks", h.TickStream)
}
