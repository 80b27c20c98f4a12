package router

import (
	"time"

	"clinicore/internal/database"
	"clinicore/internal/handlers"
	"clinicore/internal/middleware"
	"clinicore/internal/models"
	"clinicore/internal/services"
	"clinicore/pkg/config"
	"clinicore/pkg/jwt"
	"clinicore/pkg/metrics"
	"clinicore/pkg/response"

	"github.com/gin-gonic/gin"
)

// SetupRouter 设置路由
func SetupRouter(notifier *services.Notifier) *gin.Engine {
	router := gin.New()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SetupCORS())
	router.Use(middleware.TenantResolver())

	// 注册路由
	registerRoutes(router, notifier)
	return router
}

// 注册所有路由
func registerRoutes(router *gin.Engine, notifier *services.Notifier) {
	cfg := config.GetConfig()
	db := database.GetDB()

	featureCache := services.NewFeatureCache(database.GetRedisClient(), cfg.Redis.Prefix)
	clinicService := services.NewClinicService(db).WithFeatureCache(featureCache)
	userService := services.NewUserService(db)
	patientService := services.NewPatientService(db)
	appointmentService := services.NewAppointmentService(db).WithNotifier(notifier)
	paymentService := services.NewPaymentService(db)
	followUpService := services.NewFollowUpService(db)
	inventoryService := services.NewInventoryService(db).WithNotifier(notifier)
	statsService := services.NewStatsService(db)

	auth := middleware.NewAuthMiddleware(jwt.GetJWTManager(), clinicService, cfg.Tenant.CookieName)

	// API路由组
	api := router.Group("/api/v1")
	{
		// 健康检查接口
		api.GET("/health", healthCheck)
		api.GET("/ping", ping)

		// Prometheus指标
		api.GET("/metrics", metrics.Handler())

		// 认证路由（无需登录）
		authHandler := handlers.NewAuthHandler(userService, clinicService)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)   // 用户登录
			authGroup.POST("/logout", authHandler.Logout) // 用户登出

			// 🔒 获取当前会话信息
			authGroup.GET("/me", auth.RequireLogin(), authHandler.Me)
		}

		// 诊所路由
		clinicHandler := handlers.NewClinicHandler(clinicService)
		api.POST("/signup", clinicHandler.Signup)          // 诊所注册（公开）
		api.GET("/clinic-info", clinicHandler.PublicInfo)  // 子域诊所公开信息（公开）

		// 🔒 当前诊所功能开关
		api.GET("/features", auth.RequireLogin(), auth.RequireClinic(), clinicHandler.Features)

		// 🔐 平台管理路由（仅平台管理员）
		platform := api.Group("/platform", auth.RequireLogin(), auth.RequireSuperAdmin())
		{
			platform.GET("/clinics", clinicHandler.List)
			platform.GET("/clinics/:id", clinicHandler.Get)
			platform.PUT("/clinics/:id", clinicHandler.Update)
			platform.PUT("/clinics/:id/features", clinicHandler.UpdateFeatures)
			platform.POST("/clinics/:id/activate", clinicHandler.Activate)
			platform.POST("/clinics/:id/deactivate", clinicHandler.Deactivate)
			platform.GET("/stats", clinicHandler.Stats)
		}

		// 🔐 员工管理（仅诊所管理员）
		userHandler := handlers.NewUserHandler(userService)
		staff := api.Group("/staff", auth.RequireLogin(), auth.RequireClinic(), auth.RequireClinicAdmin())
		{
			staff.POST("", userHandler.Create)
			staff.GET("", userHandler.List)
			staff.GET("/:id", userHandler.Get)
			staff.PUT("/:id", userHandler.Update)
			staff.POST("/:id/activate", userHandler.Activate)
			staff.POST("/:id/deactivate", userHandler.Deactivate)
		}

		// 🔐 患者管理（需启用patients功能）
		patientHandler := handlers.NewPatientHandler(patientService)
		patients := api.Group("/patients", auth.RequireLogin(), auth.RequireClinic(), auth.RequireFeature(models.FeaturePatients))
		{
			patients.POST("", patientHandler.Create)
			patients.GET("", patientHandler.List)
			patients.GET("/:id", patientHandler.Get)
			patients.PUT("/:id", patientHandler.Update)
			patients.DELETE("/:id", patientHandler.Delete)
		}

		// 🔐 预约管理（需启用appointments功能）
		appointmentHandler := handlers.NewAppointmentHandler(appointmentService)
		appointments := api.Group("/appointments", auth.RequireLogin(), auth.RequireClinic(), auth.RequireFeature(models.FeatureAppointments))
		{
			appointments.POST("", appointmentHandler.Create)
			appointments.GET("", appointmentHandler.List)
			appointments.GET("/:id", appointmentHandler.Get)
			appointments.PUT("/:id", appointmentHandler.Update)
			appointments.PUT("/:id/status", appointmentHandler.UpdateStatus)
			appointments.DELETE("/:id", appointmentHandler.Delete)
		}

		// 🔐 收费管理（需启用payments功能）
		paymentHandler := handlers.NewPaymentHandler(paymentService)
		payments := api.Group("/payments", auth.RequireLogin(), auth.RequireClinic(), auth.RequireFeature(models.FeaturePayments))
		{
			payments.POST("", paymentHandler.Create)
			payments.GET("", paymentHandler.List)
			payments.GET("/next-receipt", paymentHandler.NextReceipt)
			payments.GET("/:id", paymentHandler.Get)
		}

		// 🔐 随访管理（需启用followups功能）
		followUpHandler := handlers.NewFollowUpHandler(followUpService)
		followUps := api.Group("/follow-ups", auth.RequireLogin(), auth.RequireClinic(), auth.RequireFeature(models.FeatureFollowUps))
		{
			followUps.POST("", followUpHandler.Create)
			followUps.GET("", followUpHandler.List)
			followUps.GET("/:id", followUpHandler.Get)
			followUps.PUT("/:id/status", followUpHandler.UpdateStatus)
			followUps.DELETE("/:id", followUpHandler.Delete)
		}

		// 🔐 库存管理（需启用inventory功能）
		inventoryHandler := handlers.NewInventoryHandler(inventoryService)
		inventory := api.Group("/inventory", auth.RequireLogin(), auth.RequireClinic(), auth.RequireFeature(models.FeatureInventory))
		{
			inventory.POST("/items", inventoryHandler.CreateItem)
			inventory.GET("/items", inventoryHandler.ListItems)
			inventory.GET("/items/:id", inventoryHandler.GetItem)
			inventory.PUT("/items/:id", inventoryHandler.UpdateItem)
			inventory.POST("/items/:id/transactions", inventoryHandler.CreateTransaction)
			inventory.GET("/items/:id/transactions", inventoryHandler.ListTransactions)
		}

		// 🔐 工作台统计（需启用reports功能）
		dashboardHandler := handlers.NewDashboardHandler(statsService)
		api.GET("/dashboard", auth.RequireLogin(), auth.RequireClinic(), auth.RequireFeature(models.FeatureReports), dashboardHandler.Stats)

		// 🔒 诊所事件推送
		wsHandler := handlers.NewWebSocketHandler(notifier)
		api.GET("/ws/events", wsHandler.Events)
	}
}

func healthCheck(c *gin.Context) {
	data := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now(),
		"service":   "CliniCore",
		"version":   "1.0.0",
	}
	response.Success(c, data)
}

func ping(c *gin.Context) {
	response.SuccessWithMessage(c, "pong", nil)
}
