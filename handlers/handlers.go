package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/ashutosh-187/Paper-Trading-platform-backend/marketdata"
	"github.com/ashutosh-187/Paper-Trading-platform-backend/models"
	"github.com/ashutosh-187/Paper-Trading-platform-backend/service"
	"github.com/ashutosh-187/Paper-Trading-platform-backend/utils"
)

type Handler struct {
	Orders      *service.OrderService
	PnL         *service.PnLService
	Alerts      *service.AlertEngine
	Instruments *service.InstrumentService
	Feed        marketdata.SnapshotProvider
	Hub         *marketdata.Hub
	Validator   *validator.Validate
}

func NewHandler(
	orders *service.OrderService,
	pnl *service.PnLService,
	alerts *service.AlertEngine,
	instruments *service.InstrumentService,
	feed marketdata.SnapshotProvider,
	hub *marketdata.Hub,
) *Handler {
	return &Handler{
		Orders:      orders,
		PnL:         pnl,
		Alerts:      alerts,
		Instruments: instruments,
		Feed:        feed,
		Hub:         hub,
		Validator:   utils.GetValidator(),
	}
}

func formatValidationError(err error) map[string]string {
	out := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, e := range verrs {
			out[e.Field()] = "failed on tag '" + e.Tag() + "'"
		}
	}
	return out
}

// writeError maps the error taxonomy onto HTTP statuses: business outcomes
// and validation to 4xx, store/feed faults and invariant violations to 5xx.
func writeError(c *gin.Context, err error) {
	var (
		storeErr  *models.TransientStoreError
		feedErr   *models.TransientFeedError
		invariant *models.InvariantViolation
	)
	switch {
	case errors.Is(err, models.ErrInstrumentMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrSubscriptionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &storeErr), errors.As(err, &feedErr), errors.As(err, &invariant):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// POST /master_file
func (h *Handler) CreateMasterFile(c *gin.Context) {
	count, err := h.Instruments.GenerateMasterFile(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.MasterFileResponse{InsertedCount: count})
}

// GET /master_file
func (h *Handler) GetMasterFile(c *gin.Context) {
	instruments, err := h.Instruments.GetMasterFile(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, instruments)
}

// POST /subscribe
func (h *Handler) Subscribe(c *gin.Context) {
	var req models.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"validation_errors": formatValidationError(err)})
		return
	}

	resp, err := h.Instruments.Subscribe(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// POST /unsubscribe
func (h *Handler) Unsubscribe(c *gin.Context) {
	var req models.UnsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"validation_errors": formatValidationError(err)})
		return
	}

	resp, err := h.Instruments.Unsubscribe(c.Request.Context(), req.InstrumentID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GET /subscriptions
func (h *Handler) ListSubscriptions(c *gin.Context) {
	subs, err := h.Instruments.ListSubscriptions(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

// GET /get_prices
func (h *Handler) GetPrices(c *gin.Context) {
	snapshot, err := h.Feed.Snapshot(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// POST /place_order
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req models.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"validation_errors": formatValidationError(err)})
		return
	}

	resp, err := h.Orders.PlaceOrder(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	// Only a placed order is a success; "price not matched" and
	// "instrument not found" are rejections.
	if resp.Status != models.ResultOrderPlaced {
		c.JSON(http.StatusBadRequest, resp)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// POST /square_off
func (h *Handler) SquareOff(c *gin.Context) {
	var req models.SquareOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"validation_errors": formatValidationError(err)})
		return
	}

	resp, err := h.Orders.SquareOff(c.Request.Context(), req.InstrumentID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GET /get_mtm
func (h *Handler) GetMTM(c *gin.Context) {
	summary, err := h.PnL.Summary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GET /get_alerts
func (h *Handler) GetAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, models.AlertsResponse{
		AlertedTradeIDs: h.Alerts.AlertedIDs(),
		Alerts:          h.Alerts.Recent(),
	})
}

// GET /ws/ticks
func (h *Handler) TickStream(c *gin.Context) {
	h.Hub.HandleWS(c.Writer, c.Request)
}
