package adminController

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/raseen-shahil/Med-App-sub000/apperr"
	"github.com/raseen-shahil/Med-App-sub000/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const bannerFolder = "banners"

var ErrBannerNotFound = apperr.NotFound("Banner")

// ImageStore is the part of the uploader the banner handlers need.
type ImageStore interface {
	UploadImage(ctx context.Context, folder, filename string, src io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// UploadBanner stores the "image" part and records its URL.
func UploadBanner(db *gorm.DB, images ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, fileHeader, err := c.Request.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No image uploaded"})
			return
		}
		defer file.Close()

		imageURL, err := images.UploadImage(c.Request.Context(), bannerFolder, fileHeader.Filename, file)
		if err != nil {
			log.Error().Err(err).Str("file", fileHeader.Filename).Msg("❌ banner upload failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to upload image"})
			return
		}

		banner := models.Banner{ImageURL: imageURL}
		if err := db.Create(&banner).Error; err != nil {
			_ = images.Delete(c.Request.Context(), imageURL)
			apperr.Respond(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "Banner uploaded", "data": banner})
	}
}

// GetBanners lists banners, newest first.
func GetBanners(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		banners := []models.Banner{}
		if err := db.Order("created_at DESC, id DESC").Find(&banners).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, banners)
	}
}

// DeleteBanner removes the record and then its stored image.
func DeleteBanner(db *gorm.DB, images ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apperr.Respond(c, ErrBannerNotFound)
			return
		}

		var banner models.Banner
		err = db.First(&banner, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperr.Respond(c, ErrBannerNotFound)
			return
		}
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		if err := db.Delete(&banner).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := images.Delete(c.Request.Context(), banner.ImageURL); err != nil {
			log.Warn().Err(err).Str("url", banner.ImageURL).Msg("banner image not removed")
		}

		c.JSON(http.StatusOK, gin.H{"message": "Banner deleted"})
	}
}
