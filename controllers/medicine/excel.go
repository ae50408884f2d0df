package medicineControllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/raseen-shahil/Med-App-sub000/apperr"
	"github.com/raseen-shahil/Med-App-sub000/middleware"
	"github.com/raseen-shahil/Med-App-sub000/models"
	"github.com/rs/zerolog/log"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

var inventoryHeaders = []string{"ID", "Name", "Brand", "Category", "Price", "Stock", "Description", "ImageURL", "UpdatedAt"}

// GET /seller/medicines/export
func ExportInventory(cat *Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		sellerID, ok := middleware.CurrentUserID(c)
		if !ok {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}

		var meds []models.Medicine
		if err := cat.DB.Where("seller_id = ?", sellerID).Order("id").Find(&meds).Error; err != nil {
			apperr.Respond(c, err)
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Medicines")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		headerRow := sheet.AddRow()
		for _, h := range inventoryHeaders {
			headerRow.AddCell().SetString(h)
		}
		for _, m := range meds {
			row := sheet.AddRow()
			row.AddCell().SetInt(int(m.ID))
			row.AddCell().SetString(m.Name)
			row.AddCell().SetString(m.Brand)
			row.AddCell().SetString(m.Category)
			row.AddCell().SetString(m.Price.StringFixed(2))
			row.AddCell().SetInt(m.Stock)
			row.AddCell().SetString(m.Description)
			img := ""
			if m.ImageURL != nil {
				img = *m.ImageURL
			}
			row.AddCell().SetString(img)
			row.AddCell().SetString(m.UpdatedAt.Format("2006-01-02 15:04:05"))
		}

		c.Header("Content-Disposition", "attachment; filename=medicines.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			log.Error().Err(err).Msg("write inventory workbook")
		}
	}
}

type importResult struct {
	Created int            `json:"createdCount"`
	Updated int            `json:"updatedCount"`
	Skipped int            `json:"skippedCount"`
	Errors  map[int]string `json:"errors,omitempty"`
}

// POST /seller/medicines/import (multipart "file")
// Rows whose ID belongs to the seller update that medicine and leave blank
// cells unchanged; rows without an ID create one. Images are not imported.
func ImportInventory(cat *Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		sellerID, ok := middleware.CurrentUserID(c)
		if !ok {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}

		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is required"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open Excel file"})
			return
		}
		defer f.Close()

		xlFile, err := xlsx.OpenReaderAt(f, fh.Size)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse Excel file"})
			return
		}
		if len(xlFile.Sheets) == 0 || xlFile.Sheets[0].MaxRow < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is empty or missing header row"})
			return
		}

		res := importResult{Errors: map[int]string{}}
		sheet := xlFile.Sheets[0]
		for i := 1; i < sheet.MaxRow; i++ {
			row := sheet.Rows[i]
			if row == nil {
				continue
			}
			get := func(index int) *string {
				if index >= len(row.Cells) {
					return nil
				}
				v := strings.TrimSpace(row.Cells[index].String())
				if v == "" {
					return nil
				}
				return &v
			}
			if get(0) == nil && get(1) == nil {
				continue
			}

			form := medicineForm{
				Name:        get(1),
				Brand:       get(2),
				Category:    get(3),
				Price:       get(4),
				Stock:       get(5),
				Description: get(6),
			}
			created, err := cat.importRow(sellerID, get(0), form)
			switch {
			case err != nil:
				res.Skipped++
				res.Errors[i+1] = err.Error()
			case created:
				res.Created++
			default:
				res.Updated++
			}
		}
		if res.Created+res.Updated > 0 {
			cat.invalidate(c.Request.Context(), medicineKeyPrefix)
		}
		log.Info().Str("seller_id", sellerID).Int("created", res.Created).Int("updated", res.Updated).
			Int("skipped", res.Skipped).Msg("inventory import completed")

		c.JSON(http.StatusOK, gin.H{"message": "Import completed", "result": res})
	}
}

func (cat *Catalog) importRow(sellerID string, rawID *string, form medicineForm) (bool, error) {
	if rawID != nil {
		id, err := strconv.ParseUint(*rawID, 10, 64)
		if err != nil {
			return false, errors.New("invalid ID")
		}
		var existing models.Medicine
		err = cat.DB.Where("id = ? AND seller_id = ?", id, sellerID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, errors.New("medicine not found")
		}
		if err != nil {
			return false, err
		}
		if err := form.applyTo(&existing, false); err != nil {
			return false, describe(err)
		}
		return false, cat.DB.Save(&existing).Error
	}

	med := models.Medicine{SellerID: sellerID}
	if err := form.applyTo(&med, true); err != nil {
		return false, describe(err)
	}
	return true, cat.DB.Create(&med).Error
}

// describe flattens a validation error into one line for the import report.
func describe(err error) error {
	var v *apperr.ValidationError
	if !errors.As(err, &v) {
		return err
	}
	parts := make([]string, 0, len(v.Fields))
	for _, field := range []string{"name", "brand", "category", "price", "stock"} {
		if msg, ok := v.Fields[field]; ok {
			parts = append(parts, msg)
		}
	}
	return errors.New(strings.Join(parts, "; "))
}
