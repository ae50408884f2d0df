package userControllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/raseen-shahil/Med-App-sub000/apperr"
	cartControllers "github.com/raseen-shahil/Med-App-sub000/controllers/cart"
	"github.com/raseen-shahil/Med-App-sub000/middleware"
	"github.com/raseen-shahil/Med-App-sub000/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrWishlistItemNotFound = apperr.NotFound("Wishlist item")

type WishlistInput struct {
	MedicineID uint `json:"medicineId" binding:"required"`
}

type MoveToCartInput struct {
	Quantity *int `json:"quantity"`
}

// GET /user/wishlist
func GetWishlist(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}
		items := []models.WishlistItem{}
		if err := db.Where("user_id = ?", userID).Order("added_at DESC, id DESC").Find(&items).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
	}
}

// POST /user/wishlist; adding a medicine twice keeps the first entry.
func AddToWishlist(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}
		var input WishlistInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		var med models.Medicine
		err := db.First(&med, input.MedicineID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperr.Respond(c, cartControllers.ErrMedicineNotFound)
			return
		}
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		item := models.WishlistItem{
			UserID:     userID,
			MedicineID: med.ID,
			Name:       med.Name,
			Brand:      med.Brand,
			Price:      med.Price,
			ImageURL:   med.ImageURL,
			AddedAt:    time.Now(),
		}
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&item)
		if res.Error != nil {
			apperr.Respond(c, res.Error)
			return
		}
		if res.RowsAffected == 0 {
			if err := db.Where("user_id = ? AND medicine_id = ?", userID, med.ID).First(&item).Error; err != nil {
				apperr.Respond(c, err)
				return
			}
			c.JSON(http.StatusOK, item)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

// DELETE /user/wishlist/:medicineId
func RemoveFromWishlist(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}
		medicineID, err := strconv.ParseUint(c.Param("medicineId"), 10, 64)
		if err != nil {
			apperr.Respond(c, ErrWishlistItemNotFound)
			return
		}
		res := db.Where("user_id = ? AND medicine_id = ?", userID, medicineID).Delete(&models.WishlistItem{})
		if res.Error != nil {
			apperr.Respond(c, res.Error)
			return
		}
		if res.RowsAffected == 0 {
			apperr.Respond(c, ErrWishlistItemNotFound)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Removed from wishlist"})
	}
}

// POST /user/wishlist/:medicineId/move-to-cart
// The cart line follows the usual add rules; the wishlist entry goes only if that succeeds.
func MoveToCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}
		medicineID, err := strconv.ParseUint(c.Param("medicineId"), 10, 64)
		if err != nil {
			apperr.Respond(c, ErrWishlistItemNotFound)
			return
		}
		var input MoveToCartInput
		if c.Request.Body != nil && c.Request.Body != http.NoBody {
			if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
				apperr.Respond(c, apperr.ErrBadRequest)
				return
			}
		}
		qty := 1
		if input.Quantity != nil {
			qty = *input.Quantity
		}

		var line *models.CartItem
		err = db.Transaction(func(tx *gorm.DB) error {
			res := tx.Where("user_id = ? AND medicine_id = ?", userID, medicineID).Delete(&models.WishlistItem{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrWishlistItemNotFound
			}
			item, _, err := cartControllers.AddToCart(tx, userID, uint(medicineID), qty)
			line = item
			return err
		})
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Moved to cart", "item": line})
	}
}
