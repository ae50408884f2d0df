package userControllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/raseen-shahil/Med-App-sub000/apperr"
	"github.com/raseen-shahil/Med-App-sub000/middleware"
	"github.com/raseen-shahil/Med-App-sub000/models"
	"gorm.io/gorm"
)

var ErrAddressNotFound = apperr.NotFound("Address")

type AddressInput struct {
	Label string `json:"label"`
	models.ShippingForm
	IsDefault bool `json:"isDefault"`
}

func (in AddressInput) validate() (models.ShippingForm, error) {
	form := in.ShippingForm.Trim()
	if problems := form.Problems(); problems != nil {
		return form, &apperr.ValidationError{Fields: problems}
	}
	return form, nil
}

func fill(a *models.Address, label string, form models.ShippingForm) {
	a.Label = strings.TrimSpace(label)
	a.FullName = form.FullName
	a.Phone = form.Phone
	a.Address = form.Address
	a.City = form.City
	a.State = form.State
	a.Pincode = form.Pincode
}

func findAddress(tx *gorm.DB, userID, rawID string) (*models.Address, error) {
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		return nil, ErrAddressNotFound
	}
	var a models.Address
	err = tx.Where("id = ? AND user_id = ?", id, userID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// makeDefault leaves a as the user's only default address.
func makeDefault(tx *gorm.DB, a *models.Address) error {
	err := tx.Model(&models.Address{}).
		Where("user_id = ? AND id <> ?", a.UserID, a.ID).
		Update("is_default", false).Error
	if err != nil {
		return err
	}
	a.IsDefault = true
	return tx.Model(a).Update("is_default", true).Error
}

// GET /user/addresses
func GetAddresses(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}
		addresses := []models.Address{}
		if err := db.Where("user_id = ?", userID).Order("is_default DESC, created_at DESC, id DESC").Find(&addresses).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, addresses)
	}
}

// POST /user/addresses; a user's first address becomes the default.
func CreateAddress(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}
		var input AddressInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.ErrBadRequest)
			return
		}
		form, err := input.validate()
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		address := models.Address{UserID: userID}
		fill(&address, input.Label, form)
		err = db.Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.Address{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
				return err
			}
			if err := tx.Create(&address).Error; err != nil {
				return err
			}
			if input.IsDefault || count == 0 {
				return makeDefault(tx, &address)
			}
			return nil
		})
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, address)
	}
}

// PUT /user/addresses/:id replaces every field of the address.
func UpdateAddress(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}
		var input AddressInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.ErrBadRequest)
			return
		}
		form, err := input.validate()
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		var address *models.Address
		err = db.Transaction(func(tx *gorm.DB) error {
			a, err := findAddress(tx, userID, c.Param("id"))
			if err != nil {
				return err
			}
			address = a
			fill(address, input.Label, form)
			if err := tx.Save(address).Error; err != nil {
				return err
			}
			if input.IsDefault && !address.IsDefault {
				return makeDefault(tx, address)
			}
			return nil
		})
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, address)
	}
}

// DELETE /user/addresses/:id; removing the default promotes the newest remaining address.
func DeleteAddress(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			a, err := findAddress(tx, userID, c.Param("id"))
			if err != nil {
				return err
			}
			if err := tx.Delete(a).Error; err != nil {
				return err
			}
			if !a.IsDefault {
				return nil
			}
			var next models.Address
			err = tx.Where("user_id = ?", userID).Order("created_at DESC, id DESC").First(&next).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			return makeDefault(tx, &next)
		})
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Address deleted"})
	}
}

// POST /user/addresses/:id/default
func SetDefaultAddress(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}
		var address *models.Address
		err := db.Transaction(func(tx *gorm.DB) error {
			a, err := findAddress(tx, userID, c.Param("id"))
			if err != nil {
				return err
			}
			address = a
			return makeDefault(tx, a)
		})
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, address)
	}
}
