package routes

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"djagency-backend/config"
	"djagency-backend/controllers"
	"djagency-backend/models"
	"djagency-backend/services"
	"djagency-backend/utils"
)

func SetupRouter(cfg *config.Config, deps controllers.Dependencies) *gin.Engine {
	controllers.Setup(deps)

	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(config.PerformanceLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.App.Name})
	})

	// only uploads are served; share-link blobs stay private
	if local, ok := deps.Storage.(*services.LocalStorage); ok {
		files := r.Group("/files", func(c *gin.Context) {
			// uploaded content never runs on the API origin
			c.Header("Content-Security-Policy", "sandbox")
			c.Header("X-Content-Type-Options", "nosniff")
		})
		files.StaticFS("/media", http.Dir(filepath.Join(local.Dir(), "media")))
		files.StaticFS("/proofs", http.Dir(filepath.Join(local.Dir(), "proofs")))
	}

	authMiddleware := []gin.HandlerFunc{utils.AuthMiddleware(cfg.JWT.Secret), controllers.ActiveProfile()}
	adminOnly := utils.RequireRole(models.RoleAdmin)
	producerOnly := utils.RequireRole(models.RoleProducer)

	auth := r.Group("/auth")
	{
		auth.POST("/login", controllers.Login)
		auth.POST("/logout", controllers.Logout)

		auth.Use(authMiddleware...)
		auth.GET("/me", controllers.Me)
		auth.PUT("/password", controllers.ChangePassword)
	}

	r.POST("/share/:token", controllers.ResolveShareLink)

	api := r.Group("/api")
	api.Use(authMiddleware...)
	{
		profile := api.Group("/profile")
		{
			profile.GET("", controllers.GetProfile)
			profile.PUT("", controllers.UpdateProfile)
		}

		producers := api.Group("/producers", adminOnly)
		{
			producers.POST("", controllers.CreateProducer)
			producers.GET("", controllers.GetProducers)
			producers.GET("/:id", controllers.GetProducer)
			producers.PUT("/:id", controllers.UpdateProducer)
			producers.DELETE("/:id", controllers.DeleteProducer)
		}

		djs := api.Group("/djs")
		{
			djs.GET("", controllers.GetDJs)
			djs.GET("/:id", controllers.GetDJ)
			djs.GET("/:id/media", controllers.GetDJMedia)
			djs.POST("", adminOnly, controllers.CreateDJ)
			djs.PUT("/:id", adminOnly, controllers.UpdateDJ)
			djs.DELETE("/:id", adminOnly, controllers.DeleteDJ)
			djs.POST("/:id/media", adminOnly, controllers.UploadDJMedia)
			djs.POST("/:id/share", adminOnly, controllers.CreateShareLink)
		}

		api.DELETE("/media/:id", adminOnly, controllers.DeleteDJMedia)
		api.DELETE("/share/:token", adminOnly, controllers.RevokeShareLink)

		events := api.Group("/events")
		{
			events.GET("", controllers.GetEvents)
			events.GET("/:id", controllers.GetEvent)
			events.POST("", adminOnly, controllers.CreateEvent)
			events.PUT("/:id", adminOnly, controllers.UpdateEvent)
			events.DELETE("/:id", adminOnly, controllers.DeleteEvent)
		}

		contracts := api.Group("/contracts")
		{
			contracts.GET("", controllers.GetContracts)
			contracts.GET("/:id", controllers.GetContract)
			contracts.PUT("/:id", adminOnly, controllers.UpdateContract)
			contracts.POST("/:id/sign", producerOnly, controllers.SignContract)
		}

		payments := api.Group("/payments")
		{
			payments.GET("", controllers.GetPayments)
			payments.GET("/export.csv", controllers.ExportPaymentsCSV)
			payments.GET("/export.xlsx", controllers.ExportPaymentsXLSX)
			payments.POST("/sweep-overdue", adminOnly, controllers.SweepOverduePayments)
			payments.GET("/:id", controllers.GetPayment)
			payments.PUT("/:id", adminOnly, controllers.UpdatePayment)
			payments.POST("/:id/mark-paid", adminOnly, controllers.MarkPaymentPaid)
			payments.POST("/:id/proof", producerOnly, controllers.UploadPaymentProof)
		}

		templates := api.Group("/templates", adminOnly)
		{
			templates.POST("", controllers.CreateTemplate)
			templates.GET("", controllers.GetTemplates)
			templates.GET("/:id", controllers.GetTemplate)
			templates.PUT("/:id", controllers.UpdateTemplate)
			templates.DELETE("/:id", controllers.DeleteTemplate)
		}
		api.GET("/reminder-logs", adminOnly, controllers.GetReminderLogs)

		api.GET("/dashboard/admin", adminOnly, controllers.GetAdminDashboard)
		api.GET("/dashboard/producer", producerOnly, controllers.GetProducerDashboard)

		reportController := controllers.ReportController{}
		api.GET("/reports/financial", adminOnly, reportController.GetFinancialReport)

		api.GET("/realtime", adminOnly, controllers.StreamChanges)
	}

	return r
}
