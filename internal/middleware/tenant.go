package middleware

import (
	"regexp"

	"github.com/gin-gonic/gin"
)

// DefaultTenantID is used when a request carries no tenant header
const DefaultTenantID = "default"

var tenantIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,62}$`)

// Tenant extracts the tenant slug from the X-Tenant-ID header and stores
// it in the Gin context for downstream handlers. Malformed slugs fall
// back to the default tenant rather than failing the request.
func Tenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetHeader("X-Tenant-ID")
		if tenantID == "" || !tenantIDPattern.MatchString(tenantID) {
			tenantID = DefaultTenantID
		}
		c.Set("tenantID", tenantID)
		c.Next()
	}
}

// GetTenantID extracts the tenant ID from context
func GetTenantID(c *gin.Context) string {
	tenantID, exists := c.Get("tenantID")
	if !exists {
		return DefaultTenantID
	}
	if str, ok := tenantID.(string); ok && str != "" {
		return str
	}
	return DefaultTenantID
}
