package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"sportscube-api/internal/middleware"
	"sportscube-api/internal/model"
	"sportscube-api/pkg/logger"
	"sportscube-api/prometheus"
)

// CartItem is one line of the cart in a place-order request.
type CartItem struct {
	Name     string  `json:"name"`
	Size     string  `json:"size"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// PlaceOrder handles POST /place-order. Every cart line becomes one Order
// row owned by the authenticated caller; the inserts run in a single
// transaction so a mid-batch failure leaves no partial order.
func (h *Handler) PlaceOrder(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.OrderCounter.Inc()

	userID, ok := middleware.UserID(c)
	if !ok {
		log.Error("Order placed without authenticated user")
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Access denied"})
	}

	// Parse request
	var req struct {
		CartItems []CartItem `json:"cartItems"`
		Phone     string     `json:"phone"`
		Address   string     `json:"address"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse order request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Cart is empty"})
	}

	if len(req.CartItems) == 0 {
		log.Warn("Empty cart", zap.Uint("user_id", userID))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Cart is empty"})
	}
	if req.Phone == "" || req.Address == "" {
		log.Warn("Missing delivery contact", zap.Uint("user_id", userID))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Phone and address required"})
	}

	orders := make([]model.Order, 0, len(req.CartItems))
	for _, item := range req.CartItems {
		// Malformed numerics are rejected up front instead of being
		// coerced into the store
		if item.Name == "" || item.Price < 0 || item.Quantity <= 0 {
			log.Warn("Invalid cart item",
				zap.Uint("user_id", userID),
				zap.String("product", item.Name),
				zap.Float64("price", item.Price),
				zap.Int("quantity", item.Quantity))
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid cart item"})
		}

		orders = append(orders, model.Order{
			UserID:      userID,
			ProductName: item.Name,
			Size:        item.Size,
			Price:       item.Price,
			Quantity:    item.Quantity,
			Phone:       req.Phone,
			Address:     req.Address,
		})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.store.CreateOrderItems(orders); err != nil {
		log.Error("Failed to store order",
			zap.Uint("user_id", userID),
			zap.Int("items", len(orders)),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error placing order"})
	}

	prometheus.OrderItemCounter.Add(float64(len(orders)))
	log.Info("Order placed",
		zap.Uint("user_id", userID),
		zap.Int("items", len(orders)))
	return c.JSON(http.StatusOK, echo.Map{"message": "Order placed successfully!"})
}
