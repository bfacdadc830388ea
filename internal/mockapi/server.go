package mockapi

import (
	"net/http"

	"food_marketplace/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the backend endpoints under rg
func (a *API) RegisterRoutes(rg *gin.RouterGroup) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/send-otp", a.SendOTP)
		authGroup.POST("/verify-otp", a.VerifyOTP)
	}

	authMW := middleware.JWTAuthMiddleware(a.cfg.JWT)
	staffMW := middleware.StaffMiddleware()
	superMW := middleware.SuperAdminMiddleware()

	products := rg.Group("/products", authMW)
	{
		products.GET("", a.ListProducts)
		products.POST("", staffMW, a.CreateProduct)
		products.PUT("/:id", staffMW, a.UpdateProduct)
		products.DELETE("/:id", staffMW, a.DeleteProduct)
	}

	shops := rg.Group("/shops", authMW)
	{
		shops.GET("", a.ListShops)
		shops.POST("", superMW, a.CreateShop)
		shops.PUT("/:id", superMW, a.UpdateShop)
		shops.DELETE("/:id", superMW, a.DeleteShop)
	}

	rg.GET("/users", authMW, superMW, a.ListUsers)
	rg.GET("/orders", authMW, a.ListOrders)
}

// NewRouter builds the complete backend engine: API under /api/v1, uploads, health check
func NewRouter(a *API) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.MaxMultipartMemory = 8 << 20

	a.RegisterRoutes(router.Group("/api/v1"))
	router.Static(UploadsURLPrefix, a.cfg.UploadsDir)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}
