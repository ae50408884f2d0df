package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/raseen-shahil/Med-App-sub000/auth"
	adminController "github.com/raseen-shahil/Med-App-sub000/controllers/admin"
	medicineControllers "github.com/raseen-shahil/Med-App-sub000/controllers/medicine"
	orderControllers "github.com/raseen-shahil/Med-App-sub000/controllers/order"
	"github.com/raseen-shahil/Med-App-sub000/database"
	"gorm.io/gorm"
)

// Deps is everything the route groups hand to their controllers.
type Deps struct {
	DB          *gorm.DB
	Issuer      *auth.Issuer
	Auth        *auth.Handler
	Catalog     *medicineControllers.Catalog
	Orders      *orderControllers.Service
	Hub         *orderControllers.Hub
	AdminAPIKey string
}

// SetupRoutes is the single entry-point that wires up every route group.
func SetupRoutes(r *gin.Engine, d Deps) {
	// 1️⃣ Public catalog
	r.GET("/health", health(d.DB))
	r.GET("/medicines", medicineControllers.GetMedicines(d.Catalog))
	r.GET("/medicines/:id", medicineControllers.GetMedicineByID(d.Catalog))
	r.GET("/categories", medicineControllers.GetCategories(d.Catalog))
	r.GET("/banners", adminController.GetBanners(d.DB))

	// 2️⃣ Auth (no middleware)
	SetupAuthRoutes(r, d)

	// 3️⃣ Customer routes (JWT, role user)
	SetupUserRoutes(r, d)

	// 4️⃣ Seller dashboard (JWT, role seller)
	SetupSellerRoutes(r, d)

	// 5️⃣ Platform admin (API key)
	SetupAdminRoutes(r, d)
}

func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := database.Ping(c.Request.Context(), db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
