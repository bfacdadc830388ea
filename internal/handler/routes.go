package handler

import (
	"net/http"

	"food_marketplace/internal/guard"
	"food_marketplace/internal/middleware"
	"food_marketplace/internal/model"

	"github.com/gin-gonic/gin"
)

// SessionView serves the current session state to the UI layer. It is not guarded.
func SessionView(sessions middleware.SessionReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"loading":       s.Loading,
			"authenticated": s.IsAuthenticated(),
			"role":          s.Role(),
			"user":          s.User,
		})
	}
}

// ScreenRoles lists the roles allowed on each role-restricted screen section
var ScreenRoles = map[string][]model.Role{
	"/category":             {model.RoleUser},
	"/admin/dashboard":      {model.RoleAdmin},
	"/superadmin/dashboard": {model.RoleSuperAdmin},
}

// RegisterRoutes registers every screen behind the route guard
func RegisterRoutes(r gin.IRouter, sessions middleware.SessionReader, cfg guard.Config, auth *AuthHandler, screens *ScreenHandler) {
	guarded := func(roles ...model.Role) gin.HandlerFunc {
		return middleware.RouteGuardMiddleware(sessions, cfg, roles...)
	}
	open := guarded()

	r.GET("/welcome", open, screen("welcome"))
	r.GET("/login", open, screen("login"))
	r.POST("/login", open, auth.SendOTP)
	r.GET("/signup", open, screen("signup"))
	r.POST("/signup", open, auth.SendOTP)
	r.GET("/otp-verification", open, auth.OTPScreen)
	r.POST("/otp-verification", open, auth.VerifyOTP)
	r.POST("/logout", open, auth.Logout)

	r.GET("/", open, screens.Home)
	r.GET("/orders", open, screens.Orders)
	r.GET("/category", guarded(ScreenRoles["/category"]...), screens.Category)

	admin := r.Group("/admin", guarded(ScreenRoles["/admin/dashboard"]...))
	{
		admin.GET("/dashboard", screens.AdminDashboard)
		admin.POST("/products", screens.CreateProduct)
		admin.PUT("/products/:id", screens.UpdateProduct)
		admin.DELETE("/products/:id", screens.DeleteProduct)
	}

	superAdmin := r.Group("/superadmin", guarded(ScreenRoles["/superadmin/dashboard"]...))
	{
		superAdmin.GET("/dashboard", screens.SuperAdminDashboard)
		superAdmin.POST("/shops", screens.CreateShop)
		superAdmin.PUT("/shops/:id", screens.UpdateShop)
		superAdmin.DELETE("/shops/:id", screens.DeleteShop)
	}

	r.GET("/session", SessionView(sessions))
}
