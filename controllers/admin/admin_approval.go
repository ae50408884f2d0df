package adminController

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/raseen-shahil/Med-App-sub000/apperr"
	"github.com/raseen-shahil/Med-App-sub000/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var ErrSellerNotFound = apperr.NotFound("Seller")

type sellerRef struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func bindSellerRef(c *gin.Context) (sellerRef, bool) {
	var req sellerRef
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return req, false
	}
	req.ID = strings.TrimSpace(req.ID)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.ID == "" && req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id or email is required"})
		return req, false
	}
	return req, true
}

func (r sellerRef) scope(db *gorm.DB) *gorm.DB {
	if r.ID != "" {
		return db.Where("id = ?", r.ID)
	}
	return db.Where("LOWER(email) = ?", r.Email)
}

// ListPendingSellers returns sellers awaiting approval, oldest first.
func ListPendingSellers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		pending := []models.Seller{}
		if err := db.Where("approved = ?", false).Order("created_at, id").Find(&pending).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, pending)
	}
}

func ApproveSeller(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bindSellerRef(c)
		if !ok {
			return
		}

		var seller models.Seller
		err := req.scope(db).First(&seller).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperr.Respond(c, ErrSellerNotFound)
			return
		}
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		if err := db.Model(&seller).Update("approved", true).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		log.Info().Str("seller_id", seller.ID).Str("email", seller.Email).Msg("✅ seller approved")
		c.JSON(http.StatusOK, gin.H{"message": "Seller approved", "seller": seller})
	}
}

// RejectSeller removes a pending registration. Approved sellers own
// inventory and orders, so they are left alone.
func RejectSeller(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bindSellerRef(c)
		if !ok {
			return
		}

		res := req.scope(db).Where("approved = ?", false).Delete(&models.Seller{})
		if res.Error != nil {
			apperr.Respond(c, res.Error)
			return
		}
		if res.RowsAffected == 0 {
			apperr.Respond(c, ErrSellerNotFound)
			return
		}
		log.Info().Str("seller_id", req.ID).Str("email", req.Email).Msg("🚫 seller rejected")
		c.JSON(http.StatusOK, gin.H{"message": "Seller rejected"})
	}
}
