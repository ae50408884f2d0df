package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	Respond(c, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestRespondMapsStatus(t *testing.T) {
	errOut := New(http.StatusConflict, "Not enough stock")
	code, body := respond(t, fmt.Errorf("place order: %w", errOut))
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Not enough stock", body["error"])
	assert.Equal(t, "place order: Not enough stock", body["detail"])

	code, body = respond(t, NotFound("Order"))
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Order not found", body["error"])
	assert.NotContains(t, body, "detail")
}

func TestRespondValidation(t *testing.T) {
	v := (&ValidationError{}).Add("phone", "must be 10 digits").Add("pincode", "must be 6 digits")
	code, body := respond(t, v)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, map[string]any{"phone": "must be 10 digits", "pincode": "must be 6 digits"}, body["fields"])
}

func TestRespondHidesInternalErrors(t *testing.T) {
	code, body := respond(t, errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal Server Error", body["error"])
}

func TestOrNil(t *testing.T) {
	var v ValidationError
	assert.NoError(t, v.OrNil())
	assert.Error(t, v.Add("name", "required").OrNil())
}
