package medicineControllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/raseen-shahil/Med-App-sub000/apperr"
	"github.com/raseen-shahil/Med-App-sub000/middleware"
	"github.com/raseen-shahil/Med-App-sub000/models"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	medicineImageFolder  = "medicines"
	imageFallbackWarning = "Image upload failed; the medicine was saved without an image"
)

// medicineForm holds the optional fields of a create or edit request.
// Absent fields stay nil.
type medicineForm struct {
	Name        *string
	Brand       *string
	Category    *string
	Price       *string
	Stock       *string
	Description *string
}

func readForm(c *gin.Context) medicineForm {
	get := func(key string) *string {
		v, ok := c.GetPostForm(key)
		if !ok {
			return nil
		}
		v = strings.TrimSpace(v)
		return &v
	}
	return medicineForm{
		Name:        get("name"),
		Brand:       get("brand"),
		Category:    get("category"),
		Price:       get("price"),
		Stock:       get("stock"),
		Description: get("description"),
	}
}

// applyTo validates the form and copies it onto m. When create is true the
// name, brand, category, price and stock fields are required.
func (f medicineForm) applyTo(m *models.Medicine, create bool) error {
	v := &apperr.ValidationError{}
	required := func(field string, val *string, dst *string) {
		switch {
		case val == nil && create, val != nil && *val == "":
			v.Add(field, strings.ToUpper(field[:1])+field[1:]+" is required")
		case val != nil:
			*dst = *val
		}
	}
	required("name", f.Name, &m.Name)
	required("brand", f.Brand, &m.Brand)
	required("category", f.Category, &m.Category)

	switch {
	case f.Price == nil && create:
		v.Add("price", "Price is required")
	case f.Price != nil:
		price, err := decimal.NewFromString(*f.Price)
		if err != nil || !price.IsPositive() {
			v.Add("price", "Price must be a number greater than 0")
		} else {
			m.Price = price.Round(2)
		}
	}

	switch {
	case f.Stock == nil && create:
		v.Add("stock", "Stock is required")
	case f.Stock != nil:
		stock, err := strconv.Atoi(*f.Stock)
		if err != nil || stock < 0 {
			v.Add("stock", "Stock must be a whole number of at least 0")
		} else {
			m.Stock = stock
		}
	}

	if f.Description != nil {
		m.Description = *f.Description
	}
	return v.OrNil()
}

// uploadFormImage stores the optional "image" part. attempted is false when
// no part was sent; a failed upload is logged and returned for the caller to downgrade.
func (cat *Catalog) uploadFormImage(c *gin.Context) (url string, attempted bool, err error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return "", false, nil
	}
	f, err := fh.Open()
	if err != nil {
		return "", true, err
	}
	defer f.Close()

	url, err = cat.Images.UploadImage(c.Request.Context(), medicineImageFolder, fh.Filename, f)
	if err != nil {
		log.Error().Err(err).Str("file", fh.Filename).Msg("❌ medicine image upload failed")
		return "", true, err
	}
	return url, true, nil
}

func (cat *Catalog) deleteImage(ctx context.Context, url *string) {
	if url == nil || *url == "" {
		return
	}
	if err := cat.Images.Delete(ctx, *url); err != nil {
		log.Warn().Err(err).Str("url", *url).Msg("old image not removed")
	}
}

func (cat *Catalog) sellerMedicine(sellerID, rawID string) (*models.Medicine, error) {
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		return nil, ErrMedicineNotFound
	}
	var m models.Medicine
	err = cat.DB.Where("id = ? AND seller_id = ?", id, sellerID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMedicineNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// POST /seller/medicines (multipart: name, brand, category, price, stock, description, image?)
func AddMedicine(cat *Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		sellerID, ok := middleware.CurrentUserID(c)
		if !ok {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}

		med := models.Medicine{SellerID: sellerID}
		if err := readForm(c).applyTo(&med, true); err != nil {
			apperr.Respond(c, err)
			return
		}

		resp := gin.H{}
		url, attempted, err := cat.uploadFormImage(c)
		switch {
		case err != nil:
			resp["warning"] = imageFallbackWarning
		case attempted:
			med.ImageURL = &url
		}

		if err := cat.DB.Create(&med).Error; err != nil {
			cat.deleteImage(c.Request.Context(), med.ImageURL)
			apperr.Respond(c, err)
			return
		}
		cat.invalidate(c.Request.Context(), medicineKeyPrefix)
		log.Info().Uint("medicine_id", med.ID).Str("seller_id", sellerID).Msg("✅ medicine added")

		resp["medicine"] = med
		c.JSON(http.StatusCreated, resp)
	}
}

// PUT /seller/medicines/:id; only the fields sent are changed.
func UpdateMedicine(cat *Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		sellerID, ok := middleware.CurrentUserID(c)
		if !ok {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}
		med, err := cat.sellerMedicine(sellerID, c.Param("id"))
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		if err := readForm(c).applyTo(med, false); err != nil {
			apperr.Respond(c, err)
			return
		}

		resp := gin.H{}
		oldImage := med.ImageURL
		url, attempted, err := cat.uploadFormImage(c)
		replaced := false
		switch {
		case err != nil:
			resp["warning"] = "Image upload failed; the previous image was kept"
		case attempted:
			med.ImageURL = &url
			replaced = true
		case c.PostForm("removeImage") == "true":
			med.ImageURL = nil
			replaced = true
		}

		if err := cat.DB.Save(med).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		if replaced {
			cat.deleteImage(c.Request.Context(), oldImage)
		}
		cat.invalidate(c.Request.Context(), medicineKeyPrefix)

		resp["medicine"] = med
		c.JSON(http.StatusOK, resp)
	}
}

// DELETE /seller/medicines/:id also drops the medicine from carts and wishlists.
func DeleteMedicine(cat *Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		sellerID, ok := middleware.CurrentUserID(c)
		if !ok {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}
		med, err := cat.sellerMedicine(sellerID, c.Param("id"))
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		err = cat.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("medicine_id = ?", med.ID).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("medicine_id = ?", med.ID).Delete(&models.WishlistItem{}).Error; err != nil {
				return err
			}
			return tx.Delete(med).Error
		})
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		cat.deleteImage(c.Request.Context(), med.ImageURL)
		cat.invalidate(c.Request.Context(), medicineKeyPrefix)
		c.JSON(http.StatusOK, gin.H{"message": "Medicine deleted"})
	}
}

// GET /seller/medicines
func GetSellerMedicines(cat *Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		sellerID, ok := middleware.CurrentUserID(c)
		if !ok {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}
		meds := []models.Medicine{}
		if err := cat.DB.Where("seller_id = ?", sellerID).Order("created_at DESC, id DESC").Find(&meds).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, meds)
	}
}
