package routes

import (
	"github.com/gin-gonic/gin"
	adminController "github.com/raseen-shahil/Med-App-sub000/controllers/admin"
	medicineControllers "github.com/raseen-shahil/Med-App-sub000/controllers/medicine"
	userControllers "github.com/raseen-shahil/Med-App-sub000/controllers/user"
	"github.com/raseen-shahil/Med-App-sub000/middleware"
)

// SetupAdminRoutes registers all “/admin/*” endpoints. Requires the X-API-KEY header.
func SetupAdminRoutes(r *gin.Engine, d Deps) {
	db := d.DB
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateAPIKey(d.AdminAPIKey))
	{
		adminGroup.GET("/users", userControllers.GetAllUsers(db))

		// ─────────── Seller Approval Workflow ───────────
		sellers := adminGroup.Group("/sellers")
		{
			sellers.GET("", adminController.GetAllSellers(db))
			sellers.GET("/pending", adminController.ListPendingSellers(db))
			sellers.POST("/approve", adminController.ApproveSeller(db))
			sellers.POST("/reject", adminController.RejectSeller(db))
		}

		// ─────────── Category Management ───────────
		categoryAdmin := adminGroup.Group("/categories")
		{
			categoryAdmin.POST("", medicineControllers.CreateCategory(d.Catalog))
			categoryAdmin.DELETE("/:id", medicineControllers.DeleteCategory(d.Catalog))
		}

		bannerMgmt := adminGroup.Group("/banners")
		{
			bannerMgmt.POST("", adminController.UploadBanner(db, d.Catalog.Images))
			bannerMgmt.DELETE("/:id", adminController.DeleteBanner(db, d.Catalog.Images))
		}
	}
}
