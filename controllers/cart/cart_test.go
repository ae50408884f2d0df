package cartControllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/raseen-shahil/Med-App-sub000/database/dbtest"
	"github.com/raseen-shahil/Med-App-sub000/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAddToCartUpsertsPerMedicine(t *testing.T) {
	db := dbtest.Open(t)
	med := dbtest.Medicine(t, db, "seller-1", "Paracetamol", "25.50", 10)

	item, created, err := AddToCart(db, "u1", med.ID, 1)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Paracetamol", item.Name)

	item, created, err = AddToCart(db, "u1", med.ID, 2)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 3, item.Quantity)

	items, err := LoadCart(db, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestAddToCartClampsAtMaximum(t *testing.T) {
	db := dbtest.Open(t)
	med := dbtest.Medicine(t, db, "seller-1", "Cetirizine", "10", 50)

	_, _, err := AddToCart(db, "u1", med.ID, 4)
	require.NoError(t, err)
	item, _, err := AddToCart(db, "u1", med.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, models.MaxCartQuantity, item.Quantity)

	_, _, err = AddToCart(db, "u1", med.ID, 6)
	assert.ErrorIs(t, err, ErrQuantityOutOfRange)
}

func TestAddToCartChecksMedicineAndStock(t *testing.T) {
	db := dbtest.Open(t)
	med := dbtest.Medicine(t, db, "seller-1", "Insulin", "300", 1)

	_, _, err := AddToCart(db, "u1", 9999, 1)
	assert.ErrorIs(t, err, ErrMedicineNotFound)

	_, _, err = AddToCart(db, "u1", med.ID, 2)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestUpdateQuantityBounds(t *testing.T) {
	db := dbtest.Open(t)
	med := dbtest.Medicine(t, db, "seller-1", "ORS", "20", 10)
	item, _, err := AddToCart(db, "u1", med.ID, 1)
	require.NoError(t, err)

	for _, q := range []int{0, 6, -1} {
		_, err := UpdateQuantity(db, "u1", item.ID, q)
		assert.ErrorIs(t, err, ErrQuantityOutOfRange, "quantity %d", q)
	}

	updated, err := UpdateQuantity(db, "u1", item.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Quantity)

	_, err = UpdateQuantity(db, "someone-else", item.ID, 2)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestUpdateQuantityRefreshesPrice(t *testing.T) {
	db := dbtest.Open(t)
	med := dbtest.Medicine(t, db, "seller-1", "ORS", "20", 10)
	item, _, err := AddToCart(db, "u1", med.ID, 1)
	require.NoError(t, err)

	require.NoError(t, db.Model(&med).Update("price", decimal.RequireFromString("22.00")).Error)
	updated, err := UpdateQuantity(db, "u1", item.ID, 2)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("22").Equal(updated.Price))
}

func TestCartWritersLockLineBeforeMedicine(t *testing.T) {
	db := dbtest.Open(t)
	med := dbtest.Medicine(t, db, "seller-1", "Azithromycin", "90", 10)
	item, _, err := AddToCart(db, "u1", med.ID, 1)
	require.NoError(t, err)

	locked := dbtest.LockedTables(t, db)
	_, _, err = AddToCart(db, "u1", med.ID, 1)
	require.NoError(t, err)
	_, err = UpdateQuantity(db, "u1", item.ID, 4)
	require.NoError(t, err)
	_, err = LockCart(db, "u1")
	require.NoError(t, err)

	assert.Equal(t, []string{"cart_items", "medicines", "cart_items", "medicines", "cart_items"}, locked())
}

func TestRemoveAndClear(t *testing.T) {
	db := dbtest.Open(t)
	a := dbtest.Medicine(t, db, "seller-1", "A", "1", 10)
	b := dbtest.Medicine(t, db, "seller-1", "B", "1", 10)
	ia, _, err := AddToCart(db, "u1", a.ID, 1)
	require.NoError(t, err)
	_, _, err = AddToCart(db, "u1", b.ID, 1)
	require.NoError(t, err)
	_, _, err = AddToCart(db, "u2", b.ID, 1)
	require.NoError(t, err)

	assert.ErrorIs(t, RemoveItem(db, "u2", ia.ID), ErrItemNotFound)
	require.NoError(t, RemoveItem(db, "u1", ia.ID))
	assert.ErrorIs(t, RemoveItem(db, "u1", ia.ID), ErrItemNotFound)

	require.NoError(t, ClearCart(db, "u1"))
	items, err := LoadCart(db, "u1")
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = LoadCart(db, "u2")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func newRouter(db *gorm.DB, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/user/cart", func(c *gin.Context) { c.Set("user_id", userID) })
	g.GET("", GetUserCart(db))
	g.POST("", AddCartItem(db))
	g.PUT("/:itemId", UpdateCartItem(db))
	g.DELETE("/:itemId", DeleteCartItem(db))
	g.DELETE("", ClearUserCart(db))
	return r
}

func call(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCartEndpoints(t *testing.T) {
	db := dbtest.Open(t)
	a := dbtest.Medicine(t, db, "seller-1", "A", "50", 10)
	b := dbtest.Medicine(t, db, "seller-1", "B", "100", 10)
	r := newRouter(db, "u1")

	w := call(r, http.MethodGet, "/user/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[],"count":0,"total":0}`, w.Body.String())

	w = call(r, http.MethodPost, "/user/cart", gin.H{"medicineId": a.ID, "quantity": 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var line models.CartItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &line))

	w = call(r, http.MethodPost, "/user/cart", gin.H{"medicineId": b.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	w = call(r, http.MethodGet, "/user/cart", nil)
	var view struct {
		Items []models.CartItem `json:"items"`
		Count int               `json:"count"`
		Total decimal.Decimal   `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, 2, view.Count)
	assert.True(t, decimal.NewFromInt(200).Equal(view.Total), view.Total.String())

	w = call(r, http.MethodPut, fmt.Sprintf("/user/cart/%d", line.ID), gin.H{"quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = call(r, http.MethodPut, fmt.Sprintf("/user/cart/%d", line.ID), gin.H{"quantity": 6})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = call(r, http.MethodPut, fmt.Sprintf("/user/cart/%d", line.ID), gin.H{"quantity": 3})
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(r, http.MethodDelete, fmt.Sprintf("/user/cart/%d", line.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = call(r, http.MethodDelete, "/user/cart/abc", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(r, http.MethodDelete, "/user/cart", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = call(r, http.MethodGet, "/user/cart", nil)
	assert.JSONEq(t, `{"items":[],"count":0,"total":0}`, w.Body.String())
}

func TestCartRequiresUser(t *testing.T) {
	db := dbtest.Open(t)
	w := call(newRouter(db, ""), http.MethodGet, "/user/cart", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
