package adminController

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/raseen-shahil/Med-App-sub000/apperr"
	"github.com/raseen-shahil/Med-App-sub000/models"
	"gorm.io/gorm"
)

// GetAllSellers lists every seller; ?approved=true|false narrows the list.
func GetAllSellers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Order("created_at DESC, id")
		switch c.Query("approved") {
		case "true":
			query = query.Where("approved = ?", true)
		case "false":
			query = query.Where("approved = ?", false)
		}

		sellers := []models.Seller{}
		if err := query.Find(&sellers).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, sellers)
	}
}
