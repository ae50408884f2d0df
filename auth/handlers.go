package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/raseen-shahil/Med-App-sub000/apperr"
	"github.com/raseen-shahil/Med-App-sub000/events"
	"github.com/raseen-shahil/Med-App-sub000/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	errInvalidIDToken  = apperr.New(http.StatusUnauthorized, "Invalid or revoked ID token")
	errPendingApproval = apperr.New(http.StatusForbidden, "Pending approval by platform admin")
	errSellerExists    = apperr.New(http.StatusConflict, "Seller already registered")
)

type Handler struct {
	db        *gorm.DB
	verifier  Verifier
	issuer    *Issuer
	publisher events.Publisher
}

func NewHandler(db *gorm.DB, verifier Verifier, issuer *Issuer, publisher events.Publisher) *Handler {
	return &Handler{db: db, verifier: verifier, issuer: issuer, publisher: publisher}
}

type loginRequest struct {
	IDToken string `json:"idToken" binding:"required"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
}

// Login handles POST /auth/login and POST /auth/register. Both verify the
// Firebase ID token, upsert the customer and hand back a session token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.ErrBadRequest)
		return
	}

	id, err := h.verifier.Verify(c.Request.Context(), req.IDToken)
	if err != nil {
		log.Warn().Err(err).Msg("❌ ID token verification failed")
		apperr.Respond(c, errInvalidIDToken)
		return
	}

	user := models.User{
		ID:      id.UID,
		Email:   id.Email,
		Name:    firstNonEmpty(req.Name, id.Name),
		Phone:   req.Phone,
		Picture: id.Picture,
	}
	update := []string{"email", "updated_at"}
	if user.Name != "" {
		update = append(update, "name")
	}
	if user.Phone != "" {
		update = append(update, "phone")
	}
	if user.Picture != "" {
		update = append(update, "picture")
	}
	err = h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(update),
	}).Create(&user).Error
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if err := h.db.First(&user, "id = ?", id.UID).Error; err != nil {
		apperr.Respond(c, err)
		return
	}

	token, err := h.issuer.Issue(user.ID, user.Email, RoleUser)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"role":    RoleUser,
		"user":    user,
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword always answers 202 so callers cannot probe which emails exist.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, (&apperr.ValidationError{}).Add("email", "A valid email is required"))
		return
	}

	link, err := h.verifier.PasswordResetLink(c.Request.Context(), req.Email)
	if err != nil {
		log.Warn().Err(err).Str("email", req.Email).Msg("password reset link not generated")
	} else {
		events.Emit(c.Request.Context(), h.publisher, events.TopicPasswordReset, req.Email,
			events.PasswordReset{Email: req.Email, Link: link})
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "If the account exists, a reset email is on its way"})
}

type sellerRegisterRequest struct {
	IDToken   string `json:"idToken" binding:"required"`
	StoreName string `json:"storeName" binding:"required"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
}

// SellerRegister creates a seller that stays pending until a platform admin approves it.
func (h *Handler) SellerRegister(c *gin.Context) {
	var req sellerRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.ErrBadRequest)
		return
	}
	if strings.TrimSpace(req.StoreName) == "" {
		apperr.Respond(c, (&apperr.ValidationError{}).Add("storeName", "Store name is required"))
		return
	}

	id, err := h.verifier.Verify(c.Request.Context(), req.IDToken)
	if err != nil {
		apperr.Respond(c, errInvalidIDToken)
		return
	}

	var existing models.Seller
	err = h.db.Where("id = ? OR email = ?", id.UID, id.Email).First(&existing).Error
	if err == nil {
		apperr.Respond(c, errSellerExists)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		apperr.Respond(c, err)
		return
	}

	seller := models.Seller{
		ID:        id.UID,
		Email:     id.Email,
		Name:      firstNonEmpty(req.Name, id.Name),
		StoreName: strings.TrimSpace(req.StoreName),
		Phone:     req.Phone,
	}
	if err := h.db.Create(&seller).Error; err != nil {
		apperr.Respond(c, err)
		return
	}
	log.Info().Str("email", seller.Email).Msg("📝 new seller registered (pending approval)")
	c.JSON(http.StatusCreated, gin.H{"message": "Registered, pending approval", "seller": seller})
}

type idTokenRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

func (h *Handler) SellerLogin(c *gin.Context) {
	var req idTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.ErrBadRequest)
		return
	}

	id, err := h.verifier.Verify(c.Request.Context(), req.IDToken)
	if err != nil {
		apperr.Respond(c, errInvalidIDToken)
		return
	}

	var seller models.Seller
	if err := h.db.First(&seller, "id = ?", id.UID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperr.Respond(c, apperr.NotFound("Seller"))
			return
		}
		apperr.Respond(c, err)
		return
	}
	if !seller.Approved {
		apperr.Respond(c, errPendingApproval)
		return
	}

	token, err := h.issuer.Issue(seller.ID, seller.Email, RoleSeller)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "role": RoleSeller, "seller": seller})
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
