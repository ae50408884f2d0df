package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/raseen-shahil/Med-App-sub000/auth"
	cartControllers "github.com/raseen-shahil/Med-App-sub000/controllers/cart"
	orderControllers "github.com/raseen-shahil/Med-App-sub000/controllers/order"
	userControllers "github.com/raseen-shahil/Med-App-sub000/controllers/user"
	"github.com/raseen-shahil/Med-App-sub000/middleware"
)

// SetupUserRoutes registers all “/user/*” endpoints. Requires a customer JWT.
func SetupUserRoutes(r *gin.Engine, d Deps) {
	db := d.DB
	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken(d.Issuer), middleware.RequireRole(auth.RoleUser))
	{
		// ──────────────── Profile ────────────────
		userGroup.GET("/profile", userControllers.GetUser(db))
		userGroup.PUT("/profile", userControllers.UpdateUser(db))

		// ──────────────── Shopping Cart ────────────────
		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.GET("", cartControllers.GetUserCart(db))
			cartGroup.POST("", cartControllers.AddCartItem(db))
			cartGroup.DELETE("", cartControllers.ClearUserCart(db))
			cartGroup.PUT("/:itemId", cartControllers.UpdateCartItem(db))
			cartGroup.DELETE("/:itemId", cartControllers.DeleteCartItem(db))
		}

		// ──────────────── Wishlist ────────────────
		wishlist := userGroup.Group("/wishlist")
		{
			wishlist.GET("", userControllers.GetWishlist(db))
			wishlist.POST("", userControllers.AddToWishlist(db))
			wishlist.DELETE("/:medicineId", userControllers.RemoveFromWishlist(db))
			wishlist.POST("/:medicineId/move-to-cart", userControllers.MoveToCart(db))
		}

		// ──────────────── Saved Addresses ────────────────
		addresses := userGroup.Group("/addresses")
		{
			addresses.GET("", userControllers.GetAddresses(db))
			addresses.POST("", userControllers.CreateAddress(db))
			addresses.PUT("/:id", userControllers.UpdateAddress(db))
			addresses.DELETE("/:id", userControllers.DeleteAddress(db))
			addresses.POST("/:id/default", userControllers.SetDefaultAddress(db))
		}

		// ──────────────── Orders ────────────────
		orders := userGroup.Group("/orders")
		{
			orders.GET("", orderControllers.GetUserOrdersHandler(d.Orders))
			orders.POST("/checkout", orderControllers.PlaceOrderHandler(d.Orders))
			orders.GET("/:orderId", orderControllers.GetUserOrderHandler(d.Orders))
			orders.POST("/:orderId/cancel", orderControllers.CancelOrderHandler(d.Orders))
		}
	}
}
