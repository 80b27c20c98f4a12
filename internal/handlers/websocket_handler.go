package handlers

import (
	"net/http"
	"strings"

	"clinicore/internal/services"
	"clinicore/pkg/config"
	"clinicore/pkg/jwt"
	"clinicore/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// WebSocketHandler 诊所事件推送（低库存告警、新预约）
type WebSocketHandler struct {
	upgrader   websocket.Upgrader
	notifier   *services.Notifier
	jwtManager *jwt.JWTManager
	cookieName string
	log        *logrus.Logger
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(notifier *services.Notifier) *WebSocketHandler {
	cfg := config.GetConfig()
	allowedOrigins := cfg.CORS.AllowOrigins

	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")

				// 同源请求Origin为空，允许
				if origin == "" {
					return true
				}

				for _, allowed := range allowedOrigins {
					if allowed == "*" || matchOrigin(origin, allowed) {
						return true
					}
				}

				logger.GetLogger().Warnf("WebSocket连接被拒绝，非法Origin: %s", origin)
				return false
			},
			ReadBufferSize:  1024 * 4,
			WriteBufferSize: 1024 * 4,
		},
		notifier:   notifier,
		jwtManager: jwt.GetJWTManager(),
		cookieName: cfg.Tenant.CookieName,
		log:        logger.GetLogger(),
	}
}

// matchOrigin 比较Origin与允许项，支持*.example.com形式的子域通配
func matchOrigin(origin, allowed string) bool {
	if origin == allowed {
		return true
	}

	if idx := strings.Index(allowed, "*."); idx >= 0 {
		suffix := allowed[idx+1:] // ".example.com"
		prefix := allowed[:idx]
		return strings.HasSuffix(origin, suffix) && strings.HasPrefix(origin, prefix)
	}

	return false
}

// Events 建立诊所事件WebSocket连接
func (h *WebSocketHandler) Events(c *gin.Context) {
	// WebSocket握手带不上自定义header，令牌从Cookie或查询参数取
	token, err := c.Cookie(h.cookieName)
	if err != nil || token == "" {
		token = c.Query("token")
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "请先登录"})
		return
	}

	claims, err := h.jwtManager.VerifyToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token无效或已过期"})
		return
	}

	if claims.ClinicID == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "无诊所归属"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorf("WebSocket升级失败: %v", err)
		return
	}

	h.notifier.Register(claims.ClinicID, conn)
	h.log.Infof("WebSocket连接建立: clinic_id=%d user_id=%d", claims.ClinicID, claims.UserID)

	defer func() {
		h.notifier.Unregister(claims.ClinicID, conn)
		conn.Close()
		h.log.Infof("WebSocket连接关闭: clinic_id=%d user_id=%d", claims.ClinicID, claims.UserID)
	}()

	// 只推不收，读循环用于感知连接断开
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
