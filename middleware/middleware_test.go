package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/raseen-shahil/Med-App-sub000/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(issuer *auth.Issuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/user", ValidateToken(issuer), RequireRole(auth.RoleUser), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user_id"))
	})
	r.GET("/admin", ValidateAPIKey("k3y"), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/locked", ValidateAPIKey(""), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func do(r *gin.Engine, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestValidateToken(t *testing.T) {
	iss := auth.NewIssuer("secret", time.Hour)
	r := newRouter(iss)

	userTok, err := iss.Issue("cust-1", "c@x.io", auth.RoleUser)
	require.NoError(t, err)
	sellerTok, err := iss.Issue("seller-1", "s@x.io", auth.RoleSeller)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, do(r, "/user", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/user", map[string]string{"Authorization": "Bearer junk"}).Code)

	w := do(r, "/user", map[string]string{"Authorization": "Bearer " + userTok})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cust-1", w.Body.String())

	assert.Equal(t, http.StatusOK, do(r, "/user", map[string]string{"Authorization": userTok}).Code)
	assert.Equal(t, http.StatusOK, do(r, "/user?token="+userTok, nil).Code)

	w = do(r, "/user", map[string]string{"Authorization": "Bearer " + sellerTok})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Forbidden"}`, w.Body.String())
}

func TestValidateAPIKey(t *testing.T) {
	r := newRouter(auth.NewIssuer("secret", time.Hour))

	assert.Equal(t, http.StatusUnauthorized, do(r, "/admin", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/admin", map[string]string{"X-API-KEY": "nope"}).Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", map[string]string{"X-API-KEY": "k3y"}).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/locked", map[string]string{"X-API-KEY": ""}).Code)
}
