package medicineControllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/raseen-shahil/Med-App-sub000/apperr"
	"github.com/raseen-shahil/Med-App-sub000/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const categoryImageFolder = "categories"

var (
	ErrCategoryNotFound = apperr.NotFound("Category")
	ErrCategoryExists   = apperr.New(http.StatusConflict, "Category already exists")
)

// GET /categories
func GetCategories(cat *Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		categories, err := cached(ctx, cat.Cache, categoriesKey, func() ([]models.Category, error) {
			out := []models.Category{}
			err := cat.DB.WithContext(ctx).Order("name").Find(&out).Error
			return out, err
		})
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

// POST /admin/categories (multipart: name, image?)
func CreateCategory(cat *Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := strings.TrimSpace(c.PostForm("name"))
		if name == "" {
			apperr.Respond(c, (&apperr.ValidationError{}).Add("name", "Name is required"))
			return
		}

		var count int64
		if err := cat.DB.Model(&models.Category{}).Where("LOWER(name) = ?", strings.ToLower(name)).Count(&count).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		if count > 0 {
			apperr.Respond(c, ErrCategoryExists)
			return
		}

		category := models.Category{Name: name}
		if fh, err := c.FormFile("image"); err == nil {
			f, err := fh.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image"})
				return
			}
			url, err := cat.Images.UploadImage(c.Request.Context(), categoryImageFolder, fh.Filename, f)
			f.Close()
			if err != nil {
				log.Error().Err(err).Str("category", name).Msg("❌ category image upload failed")
				c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to upload image"})
				return
			}
			category.ImageURL = &url
		}

		if err := cat.DB.Create(&category).Error; err != nil {
			cat.deleteImage(c.Request.Context(), category.ImageURL)
			apperr.Respond(c, err)
			return
		}
		cat.invalidate(c.Request.Context(), categoriesKey)
		c.JSON(http.StatusCreated, category)
	}
}

// DELETE /admin/categories/:id; medicines keep their category text.
func DeleteCategory(cat *Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apperr.Respond(c, ErrCategoryNotFound)
			return
		}
		var category models.Category
		err = cat.DB.First(&category, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperr.Respond(c, ErrCategoryNotFound)
			return
		}
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := cat.DB.Delete(&category).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		cat.deleteImage(c.Request.Context(), category.ImageURL)
		cat.invalidate(c.Request.Context(), categoriesKey)
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
	}
}
