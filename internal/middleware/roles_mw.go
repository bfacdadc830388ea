package middleware

import (
	"net/http"

	"food_marketplace/internal/model"

	"github.com/gin-gonic/gin"
)

// RoleMiddleware creates a middleware to check for specific user roles
func RoleMiddleware(allowedRoles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get(AuthRoleKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Role not found in token, ensure JWT middleware runs first"})
			return
		}

		userRole, ok := roleVal.(model.Role)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Invalid role type in token"})
			return
		}

		for _, allowedRole := range allowedRoles {
			if userRole == allowedRole {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "You do not have permission to access this resource"})
	}
}

// StaffMiddleware allows admins and superadmins
func StaffMiddleware() gin.HandlerFunc {
	return RoleMiddleware(model.RoleAdmin, model.RoleSuperAdmin)
}

// SuperAdminMiddleware allows only superadmins
func SuperAdminMiddleware() gin.HandlerFunc {
	return RoleMiddleware(model.RoleSuperAdmin)
}
