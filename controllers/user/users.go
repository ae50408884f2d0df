package userControllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/raseen-shahil/Med-App-sub000/apperr"
	"github.com/raseen-shahil/Med-App-sub000/middleware"
	"github.com/raseen-shahil/Med-App-sub000/models"
	"gorm.io/gorm"
)

var ErrUserNotFound = apperr.NotFound("User")

type UpdateUserInput struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Picture *string `json:"picture"`
}

func loadUser(db *gorm.DB, userID string) (*models.User, error) {
	var user models.User
	err := db.First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GET /user/profile
func GetUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}
		user, err := loadUser(db, userID)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// PUT /user/profile; email is owned by the identity provider and never changes here.
func UpdateUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}
		user, err := loadUser(db, userID)
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		var input UpdateUserInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		v := &apperr.ValidationError{}
		updates := make(map[string]interface{})
		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				v.Add("name", "Name cannot be empty")
			}
			updates["name"] = name
		}
		if input.Phone != nil {
			phone := strings.TrimSpace(*input.Phone)
			if phone != "" && !models.ValidPhone(phone) {
				v.Add("phone", "Phone must be exactly 10 digits")
			}
			updates["phone"] = phone
		}
		if input.Picture != nil {
			updates["picture"] = strings.TrimSpace(*input.Picture)
		}
		if err := v.OrNil(); err != nil {
			apperr.Respond(c, err)
			return
		}

		if len(updates) > 0 {
			if err := db.Model(user).Updates(updates).Error; err != nil {
				apperr.Respond(c, err)
				return
			}
		}

		c.JSON(http.StatusOK, user)
	}
}

// GET /admin/users
func GetAllUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		users := []models.User{}
		if err := db.
			Select("id", "email", "name", "phone", "picture", "created_at", "updated_at").
			Order("created_at desc").
			Find(&users).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}
