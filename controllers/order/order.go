package orderControllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/raseen-shahil/Med-App-sub000/apperr"
	"github.com/raseen-shahil/Med-App-sub000/middleware"
	"github.com/raseen-shahil/Med-App-sub000/models"
)

const IdempotencyHeader = "Idempotency-Key"

// POST /user/orders/checkout
func PlaceOrderHandler(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}

		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		key := strings.TrimSpace(c.GetHeader(IdempotencyHeader))
		order, replayed, err := s.PlaceOrder(c.Request.Context(), userID, req, key)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		status := http.StatusCreated
		if replayed {
			status = http.StatusOK
		}
		c.JSON(status, gin.H{"message": "Order placed successfully", "order": order})
	}
}

// GET /user/orders
func GetUserOrdersHandler(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}
		orders, err := s.ListUserOrders(c.Request.Context(), userID)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /user/orders/:orderId
func GetUserOrderHandler(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}
		order, err := s.GetUserOrder(c.Request.Context(), userID, c.Param("orderId"))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// POST /user/orders/:orderId/cancel
func CancelOrderHandler(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}
		order, err := s.CancelOrder(c.Request.Context(), userID, c.Param("orderId"))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order cancelled", "order": order})
	}
}

// GET /seller/orders?status=pending|completed|cancelled
func GetSellerOrdersHandler(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sellerID, ok := middleware.CurrentUserID(c)
		if !ok {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}
		status := models.OrderStatus(strings.ToLower(c.Query("status")))
		orders, err := s.ListSellerOrders(c.Request.Context(), sellerID, status)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// POST /seller/orders/:orderId/ship
func ShipOrderHandler(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sellerID, ok := middleware.CurrentUserID(c)
		if !ok {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}
		order, err := s.ShipOrder(c.Request.Context(), sellerID, c.Param("orderId"))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order marked as shipped", "order": order})
	}
}
