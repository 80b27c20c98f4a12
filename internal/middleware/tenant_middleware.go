package middleware

import (
	"clinicore/pkg/config"
	"clinicore/pkg/tenant"

	"github.com/gin-gonic/gin"
)

// TenantResolver 从请求Host解析诊所子域标识并写入上下文
// 解析结果为空表示平台根域访问
func TenantResolver() gin.HandlerFunc {
	cfg := config.GetConfig()

	return func(c *gin.Context) {
		slug := tenant.Resolve(c.Request.Host, cfg.Tenant.RootDomain)
		c.Set("tenant_slug", slug)
		c.Next()
	}
}

// GetTenantSlug 读取当前请求解析出的诊所标识
func GetTenantSlug(c *gin.Context) string {
	return c.GetString("tenant_slug")
}
