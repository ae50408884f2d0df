package cartControllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/raseen-shahil/Med-App-sub000/apperr"
	"github.com/raseen-shahil/Med-App-sub000/middleware"
	"github.com/raseen-shahil/Med-App-sub000/models"
	"gorm.io/gorm"
)

type CartItemInput struct {
	MedicineID uint `json:"medicineId" binding:"required"`
	Quantity   *int `json:"quantity"`
}

type QuantityInput struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// POST /user/cart
func AddCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}

		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		qty := 1
		if input.Quantity != nil {
			qty = *input.Quantity
		}

		item, created, err := AddToCart(db, userID, input.MedicineID, qty)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		c.JSON(status, item)
	}
}

// PUT /user/cart/:itemId
func UpdateCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}
		itemID, err := strconv.ParseUint(c.Param("itemId"), 10, 64)
		if err != nil {
			apperr.Respond(c, ErrItemNotFound)
			return
		}

		var input QuantityInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		item, err := UpdateQuantity(db, userID, uint(itemID), *input.Quantity)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// DELETE /user/cart/:itemId
func DeleteCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}
		itemID, err := strconv.ParseUint(c.Param("itemId"), 10, 64)
		if err != nil {
			apperr.Respond(c, ErrItemNotFound)
			return
		}

		if err := RemoveItem(db, userID, uint(itemID)); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart item deleted"})
	}
}

// DELETE /user/cart
func ClearUserCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}
		if err := ClearCart(db, userID); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}

// GET /user/cart
func GetUserCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}

		items, err := LoadCart(db, userID)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"items": items,
			"count": len(items),
			"total": models.CartTotal(items),
		})
	}
}
