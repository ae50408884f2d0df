package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/raseen-shahil/Med-App-sub000/auth"
	medicineControllers "github.com/raseen-shahil/Med-App-sub000/controllers/medicine"
	orderControllers "github.com/raseen-shahil/Med-App-sub000/controllers/order"
	"github.com/raseen-shahil/Med-App-sub000/middleware"
)

// SetupSellerRoutes registers the seller dashboard: inventory, fulfilment
// and the live order feed. Browsers cannot set headers on a websocket
// upgrade, so the token may also come as ?token=.
func SetupSellerRoutes(r *gin.Engine, d Deps) {
	seller := r.Group("/seller")
	seller.Use(middleware.ValidateToken(d.Issuer), middleware.RequireRole(auth.RoleSeller))
	{
		medicines := seller.Group("/medicines")
		{
			medicines.GET("", medicineControllers.GetSellerMedicines(d.Catalog))
			medicines.POST("", medicineControllers.AddMedicine(d.Catalog))
			medicines.GET("/export", medicineControllers.ExportInventory(d.Catalog))
			medicines.POST("/import", medicineControllers.ImportInventory(d.Catalog))
			medicines.PUT("/:id", medicineControllers.UpdateMedicine(d.Catalog))
			medicines.DELETE("/:id", medicineControllers.DeleteMedicine(d.Catalog))
		}

		orders := seller.Group("/orders")
		{
			orders.GET("", orderControllers.GetSellerOrdersHandler(d.Orders))
			orders.POST("/:orderId/ship", orderControllers.ShipOrderHandler(d.Orders))
		}

		// websocket endpoint for real-time order updates
		seller.GET("/ws/orders", d.Hub.OrderWebSocketHandler)
	}
}
