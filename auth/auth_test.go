package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/raseen-shahil/Med-App-sub000/database/dbtest"
	"github.com/raseen-shahil/Med-App-sub000/events"
	"github.com/raseen-shahil/Med-App-sub000/events/eventstest"
	"github.com/raseen-shahil/Med-App-sub000/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type fakeVerifier struct {
	identities map[string]*Identity
	resetErr   error
}

func (f *fakeVerifier) Verify(_ context.Context, idToken string) (*Identity, error) {
	id, ok := f.identities[idToken]
	if !ok {
		return nil, ErrInvalidToken
	}
	return id, nil
}

func (f *fakeVerifier) PasswordResetLink(_ context.Context, email string) (string, error) {
	if f.resetErr != nil {
		return "", f.resetErr
	}
	return "https://reset.example/" + email, nil
}

func TestIssuerRoundTrip(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	tok, err := iss.Issue("uid-1", "a@b.c", RoleSeller)
	require.NoError(t, err)

	claims, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", claims.UserID)
	assert.Equal(t, "a@b.c", claims.Email)
	assert.Equal(t, RoleSeller, claims.Role)
}

func TestIssuerRejectsBadTokens(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)

	other, err := NewIssuer("other", time.Hour).Issue("uid-1", "a@b.c", RoleUser)
	require.NoError(t, err)
	_, err = iss.Parse(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	iss.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := iss.Issue("uid-1", "a@b.c", RoleUser)
	require.NoError(t, err)
	iss.now = time.Now
	_, err = iss.Parse(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": "x", "role": "user"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = iss.Parse(none)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

type HandlerSuite struct {
	suite.Suite
	db       *gorm.DB
	verifier *fakeVerifier
	events   *eventstest.Recorder
	issuer   *Issuer
	router   *gin.Engine
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.db = dbtest.Open(s.T())
	s.verifier = &fakeVerifier{identities: map[string]*Identity{
		"cust-token":   {UID: "cust-1", Email: "cust@example.com", Name: "Asha"},
		"seller-token": {UID: "seller-1", Email: "shop@example.com", Name: "Ravi"},
	}}
	s.events = &eventstest.Recorder{}
	s.issuer = NewIssuer("secret", time.Hour)

	h := NewHandler(s.db, s.verifier, s.issuer, s.events)
	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.POST("/auth/register", h.Login)
	r.POST("/auth/forgot-password", h.ForgotPassword)
	r.POST("/auth/seller/register", h.SellerRegister)
	r.POST("/auth/seller/login", h.SellerLogin)
	s.router = r
}

func (s *HandlerSuite) post(path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	raw, err := json.Marshal(body)
	s.Require().NoError(err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func (s *HandlerSuite) TestRegisterThenLoginUpsertsUser() {
	w, body := s.post("/auth/register", gin.H{"idToken": "cust-token", "name": "Asha K", "phone": "9876543210"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	claims, err := s.issuer.Parse(body["token"].(string))
	s.Require().NoError(err)
	s.Equal("cust-1", claims.UserID)
	s.Equal(RoleUser, claims.Role)

	w, _ = s.post("/auth/login", gin.H{"idToken": "cust-token"})
	s.Require().Equal(http.StatusOK, w.Code)

	var users []models.User
	s.Require().NoError(s.db.Find(&users).Error)
	s.Require().Len(users, 1)
	s.Equal("Asha", users[0].Name)
	s.Equal("9876543210", users[0].Phone)
}

func (s *HandlerSuite) TestLoginRejectsUnknownToken() {
	w, body := s.post("/auth/login", gin.H{"idToken": "forged"})
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Invalid or revoked ID token", body["error"])

	w, _ = s.post("/auth/login", gin.H{})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestForgotPasswordPublishesLink() {
	w, _ := s.post("/auth/forgot-password", gin.H{"email": "cust@example.com"})
	s.Equal(http.StatusAccepted, w.Code)

	got := s.events.Topic(events.TopicPasswordReset)
	s.Require().Len(got, 1)
	s.Equal(events.PasswordReset{Email: "cust@example.com", Link: "https://reset.example/cust@example.com"}, got[0].Payload)
}

func (s *HandlerSuite) TestForgotPasswordHidesUnknownEmails() {
	s.verifier.resetErr = errors.New("EMAIL_NOT_FOUND")
	w, _ := s.post("/auth/forgot-password", gin.H{"email": "ghost@example.com"})
	s.Equal(http.StatusAccepted, w.Code)
	s.Empty(s.events.Events())

	w, body := s.post("/auth/forgot-password", gin.H{"email": "not-an-email"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(body["fields"], "email")
}

func (s *HandlerSuite) TestSellerApprovalFlow() {
	w, _ := s.post("/auth/seller/login", gin.H{"idToken": "seller-token"})
	s.Equal(http.StatusNotFound, w.Code)

	w, _ = s.post("/auth/seller/register", gin.H{"idToken": "seller-token", "storeName": "Ravi Pharma"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w, _ = s.post("/auth/seller/register", gin.H{"idToken": "seller-token", "storeName": "Again"})
	s.Equal(http.StatusConflict, w.Code)

	w, _ = s.post("/auth/seller/login", gin.H{"idToken": "seller-token"})
	s.Equal(http.StatusForbidden, w.Code)

	s.Require().NoError(s.db.Model(&models.Seller{}).Where("id = ?", "seller-1").Update("approved", true).Error)

	w, body := s.post("/auth/seller/login", gin.H{"idToken": "seller-token"})
	s.Require().Equal(http.StatusOK, w.Code)
	claims, err := s.issuer.Parse(body["token"].(string))
	s.Require().NoError(err)
	s.Equal(RoleSeller, claims.Role)
	s.Equal("seller-1", claims.UserID)
}
