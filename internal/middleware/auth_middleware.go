package middleware

import (
	"errors"
	"strings"

	"clinicore/internal/models"
	"clinicore/internal/services"
	"clinicore/pkg/jwt"
	"clinicore/pkg/metrics"
	"clinicore/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthMiddleware 权限中间件
// 校验只做签名和有效期检查，不回查数据库——被停用的用户或诊所
// 在令牌自然过期前仍可通过校验，这是有意的无状态设计
type AuthMiddleware struct {
	jwtManager    *jwt.JWTManager
	clinicService *services.ClinicService
	cookieName    string
}

func NewAuthMiddleware(jwtManager *jwt.JWTManager, clinicService *services.ClinicService, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:    jwtManager,
		clinicService: clinicService,
		cookieName:    cookieName,
	}
}

// extractToken 从Cookie或Authorization头提取令牌
func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	if token, err := c.Cookie(m.cookieName); err == nil && token != "" {
		return token
	}

	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return authHeader[7:]
	}

	return ""
}

// RequireLogin 要求已登录
func (m *AuthMiddleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := m.extractToken(c)
		if tokenString == "" {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		// 验证token
		claims, err := m.jwtManager.VerifyToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "Token无效或已过期")
			c.Abort()
			return
		}

		// 将声明保存到上下文
		c.Set("claims", claims)
		c.Set("user_id", claims.UserID)
		c.Set("clinic_id", claims.ClinicID)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// RequireSuperAdmin 要求平台管理员
func (m *AuthMiddleware) RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		if claims.Role != models.RoleSuperAdmin {
			response.Forbidden(c, "需要平台管理员权限")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireClinic 要求诊所内用户（平台管理员不经诊所端点操作租户数据）
func (m *AuthMiddleware) RequireClinic() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		if claims.ClinicID == 0 {
			response.Forbidden(c, "无诊所归属")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireClinicAdmin 要求诊所管理员
func (m *AuthMiddleware) RequireClinicAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		if claims.Role != models.RoleAdmin {
			response.Forbidden(c, "需要诊所管理员权限")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireFeature 要求诊所启用指定功能
// 必须挂在RequireLogin之后；诊所不存在返回404，功能未启用返回403
func (m *AuthMiddleware) RequireFeature(feature string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		enabled, err := m.clinicService.HasFeature(c.Request.Context(), claims.ClinicID, feature)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.NotFound(c, "诊所不存在")
			} else {
				response.ServerError(c, "功能检查失败")
			}
			c.Abort()
			return
		}

		if !enabled {
			metrics.FeatureDeniedCounter.WithLabelValues(feature).Inc()
			response.Forbidden(c, "功能未启用: "+feature)
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetClaims 从上下文读取已验证的声明
func GetClaims(c *gin.Context) *jwt.SessionClaims {
	value, exists := c.Get("claims")
	if !exists {
		return nil
	}
	claims, ok := value.(*jwt.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}
