package handlers

import (
	"net/http"
	"time"

	"clinicore/internal/middleware"
	"clinicore/internal/models"
	"clinicore/internal/services"
	"clinicore/pkg/config"
	"clinicore/pkg/jwt"
	"clinicore/pkg/logger"
	"clinicore/pkg/metrics"
	"clinicore/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userService   *services.UserService
	clinicService *services.ClinicService
	jwtManager    *jwt.JWTManager
	cookieName    string
}

func NewAuthHandler(userService *services.UserService, clinicService *services.ClinicService) *AuthHandler {
	return &AuthHandler{
		userService:   userService,
		clinicService: clinicService,
		jwtManager:    jwt.GetJWTManager(), // 使用全局JWT管理器
		cookieName:    config.GetConfig().Tenant.CookieName,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string   `json:"token"`
	ExpiresAt int64    `json:"expires_at"`
	User      UserInfo `json:"user"`
}

type UserInfo struct {
	ID         uint   `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	ClinicID   uint   `json:"clinic_id"`
	ClinicSlug string `json:"clinic_slug"`
}

// Login 用户登录
// 登录作用域由请求Host决定：子域登录要求用户属于该诊所且诊所启用，
// 平台根域登录仅对平台管理员开放
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	slug := middleware.GetTenantSlug(c)

	// 根据邮箱获取用户
	user, err := h.userService.GetByEmail(req.Email)
	if err != nil {
		metrics.LoginCounter.WithLabelValues("failure").Inc()
		response.Unauthorized(c, "邮箱或密码错误")
		return
	}

	// 检查用户状态
	if !user.IsActive() {
		metrics.LoginCounter.WithLabelValues("failure").Inc()
		response.Unauthorized(c, "用户已被禁用")
		return
	}

	// 验证密码
	if !user.CheckPassword(req.Password) {
		metrics.LoginCounter.WithLabelValues("failure").Inc()
		response.Unauthorized(c, "邮箱或密码错误")
		return
	}

	var clinicID uint
	var clinicSlug string

	if slug == "" {
		// 平台根域只允许平台管理员登录
		if user.Role != models.RoleSuperAdmin {
			metrics.LoginCounter.WithLabelValues("failure").Inc()
			response.Unauthorized(c, "请从诊所地址登录")
			return
		}
	} else {
		// 子域登录：用户必须属于该诊所且诊所处于启用状态
		clinic, err := h.clinicService.GetBySlug(slug)
		if err != nil {
			metrics.LoginCounter.WithLabelValues("failure").Inc()
			response.Unauthorized(c, "诊所不存在")
			return
		}
		if clinic.Status != models.ClinicStatusActive {
			metrics.LoginCounter.WithLabelValues("failure").Inc()
			response.Unauthorized(c, "诊所已停用")
			return
		}
		if user.ClinicID == nil || *user.ClinicID != clinic.ID {
			metrics.LoginCounter.WithLabelValues("failure").Inc()
			response.Unauthorized(c, "邮箱或密码错误")
			return
		}
		clinicID = clinic.ID
		clinicSlug = clinic.Slug
	}

	// 生成Token
	token, err := h.jwtManager.GenerateToken(
		user.ID,
		user.Email,
		user.Name,
		user.Role,
		clinicID,
		clinicSlug,
	)
	if err != nil {
		response.ServerError(c, "生成Token失败")
		return
	}

	// 更新最后登录时间
	if err := h.userService.UpdateLastLogin(user.ID); err != nil {
		logger.GetLogger().Warnf("更新最后登录时间失败: user_id=%d err=%v", user.ID, err)
	}

	// 会话Cookie（HttpOnly，浏览器端不可读）
	maxAge := int(h.jwtManager.GetTokenDuration().Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, token, maxAge, "/", "", false, true)

	metrics.LoginCounter.WithLabelValues("success").Inc()

	expiresAt := time.Now().Add(h.jwtManager.GetTokenDuration()).Unix()

	resp := LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User: UserInfo{
			ID:         user.ID,
			Email:      user.Email,
			Name:       user.Name,
			Role:       user.Role,
			ClinicID:   clinicID,
			ClinicSlug: clinicSlug,
		},
	}

	response.Success(c, resp)
}

// Logout 用户登出 - 清除会话Cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, "", -1, "/", "", false, true)
	response.SuccessWithMessage(c, "登出成功", nil)
}

// Me 返回当前会话信息
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Unauthorized(c, "请先登录")
		return
	}

	response.Success(c, UserInfo{
		ID:         claims.UserID,
		Email:      claims.Email,
		Name:       claims.Name,
		Role:       claims.Role,
		ClinicID:   claims.ClinicID,
		ClinicSlug: claims.ClinicSlug,
	})
}
