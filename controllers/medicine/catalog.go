package medicineControllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/raseen-shahil/Med-App-sub000/apperr"
	"github.com/raseen-shahil/Med-App-sub000/cache"
	"github.com/raseen-shahil/Med-App-sub000/models"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	medicineKeyPrefix = "medicines:"
	categoriesKey     = "categories"
)

var ErrMedicineNotFound = apperr.NotFound("Medicine")

// Images uploads and removes medicine and category pictures.
type Images interface {
	UploadImage(ctx context.Context, folder, filename string, src io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// Catalog bundles what the medicine handlers share.
type Catalog struct {
	DB     *gorm.DB
	Cache  cache.Cache
	Images Images
}

func (cat *Catalog) invalidate(ctx context.Context, keys ...string) {
	for _, prefix := range keys {
		if err := cat.Cache.DeletePrefix(ctx, prefix); err != nil {
			log.Warn().Err(err).Str("prefix", prefix).Msg("cache invalidation failed")
		}
	}
}

// cached serves key from the cache or fills it with load.
func cached[T any](ctx context.Context, c cache.Cache, key string, load func() (T, error)) (T, error) {
	var out T
	err := c.GetJSON(ctx, key, &out)
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}
	out, err = load()
	if err != nil {
		return out, err
	}
	if err := c.SetJSON(ctx, key, out); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return out, nil
}

var sortColumns = map[string]string{
	"created_at": "created_at",
	"price":      "price",
	"name":       "name",
	"stock":      "stock",
}

type listQuery struct {
	Search   string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	SortBy   string
	Order    string
}

func parseListQuery(c *gin.Context) (listQuery, error) {
	q := listQuery{
		Search:   strings.TrimSpace(c.Query("search")),
		Category: strings.TrimSpace(c.Query("category")),
		SortBy:   c.DefaultQuery("sort_by", "created_at"),
		Order:    strings.ToLower(c.DefaultQuery("order", "desc")),
	}
	v := &apperr.ValidationError{}
	if _, ok := sortColumns[q.SortBy]; !ok {
		v.Add("sort_by", "Sort by created_at, price, name or stock")
	}
	if q.Order != "asc" && q.Order != "desc" {
		q.Order = "desc"
	}
	for field, dst := range map[string]**decimal.Decimal{"min_price": &q.MinPrice, "max_price": &q.MaxPrice} {
		raw := c.Query(field)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			v.Add(field, "Invalid "+field)
			continue
		}
		*dst = &d
	}
	return q, v.OrNil()
}

func (q listQuery) cacheKey() string {
	vals := url.Values{}
	vals.Set("search", strings.ToLower(q.Search))
	vals.Set("category", strings.ToLower(q.Category))
	if q.MinPrice != nil {
		vals.Set("min", q.MinPrice.String())
	}
	if q.MaxPrice != nil {
		vals.Set("max", q.MaxPrice.String())
	}
	vals.Set("sort", q.SortBy+" "+q.Order)
	return medicineKeyPrefix + "list:" + vals.Encode()
}

func (q listQuery) apply(db *gorm.DB) *gorm.DB {
	query := db.Model(&models.Medicine{})
	if q.Search != "" {
		like := "%" + strings.ToLower(q.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(brand) LIKE ? OR LOWER(description) LIKE ?", like, like, like)
	}
	if q.Category != "" {
		query = query.Where("LOWER(category) = ?", strings.ToLower(q.Category))
	}
	if q.MinPrice != nil {
		query = query.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		query = query.Where("price <= ?", *q.MaxPrice)
	}
	return query.Order(fmt.Sprintf("%s %s, id %s", sortColumns[q.SortBy], q.Order, q.Order))
}

// GET /medicines?search=&category=&min_price=&max_price=&sort_by=&order=
func GetMedicines(cat *Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := parseListQuery(c)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		ctx := c.Request.Context()
		medicines, err := cached(ctx, cat.Cache, q.cacheKey(), func() ([]models.Medicine, error) {
			out := []models.Medicine{}
			err := q.apply(cat.DB.WithContext(ctx)).Find(&out).Error
			return out, err
		})
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, medicines)
	}
}

// GET /medicines/:id
func GetMedicineByID(cat *Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid medicine ID"})
			return
		}
		ctx := c.Request.Context()
		med, err := cached(ctx, cat.Cache, fmt.Sprintf("%s%d", medicineKeyPrefix, id), func() (models.Medicine, error) {
			var m models.Medicine
			err := cat.DB.WithContext(ctx).First(&m, id).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return m, ErrMedicineNotFound
			}
			return m, err
		})
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, med)
	}
}
