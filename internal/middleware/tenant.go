package middleware

import (
	"strings"

	"github.com/damoang/notion-gateway/internal/common"
	"github.com/damoang/notion-gateway/internal/tenant"
	"github.com/damoang/notion-gateway/pkg/ginutil"
	"github.com/gin-gonic/gin"
)

const (
	tenantResolvedKey = "tenant_resolved"
	tenantRecordKey   = "tenant"
)

// ResolveTenant resolves the tenant of every request and stores its id in
// the request context. It never rejects a request.
func ResolveTenant(resolver *tenant.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip tenant resolution for non-tenant routes
		if shouldSkipTenant(c.Request.URL.Path) {
			c.Next()
			return
		}

		query := map[string]string{}
		if v := ginutil.FirstQuery(c, tenant.QueryTenantID, tenant.QueryTenantIDAlt); v != "" {
			query[tenant.QueryTenantID] = v
		}

		ctx := c.Request.Context()
		tenantID := resolver.Resolve(ctx, tenant.Signals{
			Header: c.GetHeader(tenant.HeaderTenantID),
			Query:  query,
			Host:   c.Request.Host,
		})

		c.Request = c.Request.WithContext(tenant.WithID(ctx, tenantID))
		c.Set("tenant_id", tenantID)
		c.Set(tenantResolvedKey, true)
		c.Next()
	}
}

// ValidateTenantParam gates a route on the tenant named by the given path
// parameter: 404 when it does not exist, 403 when it is not active.
func ValidateTenantParam(resolver *tenant.Resolver, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := resolver.Validate(c.Request.Context(), c.Param(param))
		if err != nil {
			common.HandleError(c, err)
			return
		}
		c.Set(tenantRecordKey, t)
		c.Next()
	}
}

// GetTenantID extracts tenant ID from context
func GetTenantID(c *gin.Context) string {
	return tenant.IDFromContext(c.Request.Context())
}

// shouldSkipTenant returns true for paths that don't need tenant resolution
func shouldSkipTenant(path string) bool {
	skipPaths := []string{
		"/health",
		"/metrics",
		"/api/tenants",
	}

	for _, skip := range skipPaths {
		if strings.HasPrefix(path, skip) {
			return true
		}
	}
	return false
}
