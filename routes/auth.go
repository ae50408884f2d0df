package routes

import (
	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes registers all “/auth/*” endpoints.
func SetupAuthRoutes(r *gin.Engine, d Deps) {
	authGroup := r.Group("/auth")
	{
		// Firebase ID token in, API token out; register is the same upsert
		authGroup.POST("/login", d.Auth.Login)
		authGroup.POST("/register", d.Auth.Login)
		authGroup.POST("/forgot-password", d.Auth.ForgotPassword)

		authGroup.POST("/seller/register", d.Auth.SellerRegister)
		authGroup.POST("/seller/login", d.Auth.SellerLogin)
	}
}
