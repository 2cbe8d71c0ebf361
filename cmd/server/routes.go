package main

import (
	"github.com/gin-gonic/gin"
	"github.com/khoward/worktrack/internal/handlers"
	"github.com/khoward/worktrack/internal/middleware"
	"github.com/khoward/worktrack/pkg/logger"
)

func buildRouter(s *appServices) *gin.Engine {
	gin.SetMode(s.cfg.Server.Mode)

	r := gin.New()
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		queueMode := "sync"
		if s.queue.IsAsync() {
			queueMode = "async"
		}
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "worktrack",
			"components": gin.H{
				"queue_mode":    queueMode,
				"event_clients": s.hub.ClientCount(),
			},
		})
	})

	authHandler := handlers.NewAuthHandler(s.auth)
	oauthHandler := handlers.NewOAuthHandler(s.oauth)
	projectHandler := handlers.NewProjectHandler(s.projects)
	taskHandler := handlers.NewTaskHandler(s.tasks)
	timesheetHandler := handlers.NewTimesheetHandler(s.timesheet)
	profileHandler := handlers.NewProfileHandler(s.profiles)
	dashboardHandler := handlers.NewDashboardHandler(s.dashboard)
	eventsHandler := handlers.NewEventsHandler(s.hub)
	exportHandler := handlers.NewExportHandler(s.projects, s.tasks, s.timesheet, s.profiles)
	auditHandler := handlers.NewAuditHandler(s.audit)

	api := r.Group("/api")

	// Credential endpoints get a per-IP rate limit to slow guessing.
	limiter := middleware.NewRateLimiter(5, 10)
	auth := api.Group("/auth")
	auth.Use(limiter.Middleware())
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.GET("/confirm", authHandler.Confirm)
		auth.POST("/otp", authHandler.SendOtp)
		auth.POST("/otp/verify", authHandler.VerifyOtp)
		auth.POST("/resend", authHandler.ResendConfirmation)
		auth.POST("/reset", authHandler.SendPasswordReset)
		auth.POST("/reset/confirm", authHandler.ConfirmPasswordReset)
	}

	oauth := api.Group("/oauth")
	oauth.Use(limiter.Middleware())
	{
		oauth.GET("/:provider", oauthHandler.Authorize)
		oauth.GET("/:provider/callback", oauthHandler.Callback)
	}

	protected := api.Group("")
	protected.Use(middleware.AuthRequired())
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.POST("/auth/logout", authHandler.Logout)
		protected.POST("/auth/change-password", authHandler.ChangePassword)

		protected.GET("/projects", projectHandler.List)
		protected.GET("/projects/export", exportHandler.Projects)
		protected.GET("/projects/:id", projectHandler.GetByID)
		protected.POST("/projects", projectHandler.Create)
		protected.PUT("/projects/:id", projectHandler.Update)
		protected.DELETE("/projects/:id", projectHandler.Delete)

		protected.GET("/tasks", taskHandler.List)
		protected.GET("/tasks/export", exportHandler.Tasks)
		protected.GET("/tasks/:id", taskHandler.GetByID)
		protected.POST("/tasks", taskHandler.Create)
		protected.PUT("/tasks/:id", taskHandler.Update)
		protected.PUT("/tasks/:id/status", taskHandler.SetStatus)
		protected.DELETE("/tasks/:id", taskHandler.Delete)

		protected.GET("/timesheets", timesheetHandler.List)
		protected.GET("/timesheets/export", exportHandler.Timesheets)
		protected.GET("/timesheets/:id", timesheetHandler.GetByID)
		protected.POST("/timesheets", timesheetHandler.Create)
		protected.PUT("/timesheets/:id", timesheetHandler.Update)
		protected.DELETE("/timesheets/:id", timesheetHandler.Delete)

		protected.GET("/profiles", profileHandler.List)
		protected.GET("/profiles/:id", profileHandler.GetByID)
		protected.PUT("/profiles/:id", profileHandler.Update)

		protected.GET("/dashboard/stats", dashboardHandler.Stats)
		protected.GET("/events", eventsHandler.Stream)

		admin := protected.Group("")
		admin.Use(middleware.AdminRequired())
		{
			admin.GET("/audit", auditHandler.List)
		}
	}

	return r
}
