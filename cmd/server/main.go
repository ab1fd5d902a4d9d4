package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/harukimoto/teamtrack-api/internal/config"
	"github.com/harukimoto/teamtrack-api/internal/constants"
	"github.com/harukimoto/teamtrack-api/internal/database"
	"github.com/harukimoto/teamtrack-api/internal/handlers"
	"github.com/harukimoto/teamtrack-api/internal/middleware"
	"github.com/harukimoto/teamtrack-api/internal/repository"
	"github.com/harukimoto/teamtrack-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction, // true in production (HTTPS), false in development
		SameSite: 2,            // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	resetRepo := repository.NewPasswordResetRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Initialize services
	notificationService := services.NewNotificationService(notificationRepo)
	authService := services.NewAuthService(userRepo, companyRepo, resetRepo)
	membershipService := services.NewMembershipService(companyRepo, userRepo, teamRepo, notificationService)
	invitationService := services.NewInvitationService(invitationRepo, companyRepo, teamRepo, notificationService)
	teamService := services.NewTeamService(teamRepo, companyRepo, notificationService)
	taskService := services.NewTaskService(taskRepo, companyRepo, teamRepo, notificationService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	companyHandler := handlers.NewCompanyHandler(membershipService)
	invitationHandler := handlers.NewInvitationHandler(invitationService)
	teamHandler := handlers.NewTeamHandler(teamService)
	taskHandler := handlers.NewTaskHandler(taskService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "TeamTrack API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
			auth.POST("/password-reset", authHandler.ConsumePasswordReset)
		}

		// Company routes (protected)
		companies := api.Group("/companies")
		companies.Use(middleware.RequireAuth())
		{
			companies.GET("", companyHandler.ListMyCompanies)

			scoped := companies.Group("/:id")
			scoped.Use(middleware.RequireCompanyAccess())
			{
				scoped.GET("", companyHandler.GetCompany)
				scoped.PATCH("", middleware.RequireCompanyManager(), companyHandler.UpdateCompany)
				scoped.GET("/members", companyHandler.ListMembers)
				scoped.GET("/users/search", companyHandler.SearchUsers)

				scoped.PATCH("/members/:user_id", middleware.RequireCompanyManager(), companyHandler.UpdateMemberRole)
				scoped.DELETE("/members/:user_id", middleware.RequireCompanyManager(), companyHandler.RemoveMember)
				scoped.POST("/members/:user_id/password-reset", middleware.RequireCompanyManager(), authHandler.RequestPasswordReset)
				scoped.POST("/users", middleware.RequireCompanyManager(), companyHandler.CreateUser)

				scoped.GET("/invitations", middleware.RequireCompanyManager(), invitationHandler.List)
				scoped.POST("/invitations", middleware.RequireCompanyManager(), invitationHandler.Invite)
				scoped.POST("/invitations/:invitation_id/resend", middleware.RequireCompanyManager(), invitationHandler.Resend)
				scoped.DELETE("/invitations/:invitation_id", middleware.RequireCompanyManager(), invitationHandler.Cancel)

				scoped.GET("/teams", teamHandler.ListTeams)
				scoped.POST("/teams", teamHandler.CreateTeam)
				scoped.GET("/teams/:team_id", teamHandler.GetTeam)
				scoped.PATCH("/teams/:team_id", teamHandler.UpdateTeam)
				scoped.POST("/teams/:team_id/members", teamHandler.AddMember)
				scoped.DELETE("/teams/:team_id/members/:user_id", teamHandler.RemoveMember)
				scoped.PATCH("/teams/:team_id/members/:user_id/leader", teamHandler.SetLeader)
			}
		}

		// Invitation acceptance (protected, not company scoped: the
		// accepting user is not a member yet)
		api.POST("/invitations/accept", middleware.RequireAuth(), invitationHandler.Accept)

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", middleware.RequireTaskAccess(), taskHandler.GetTask)
			tasks.PATCH("/:id", middleware.RequireTaskAccess(), taskHandler.UpdateTask)
			tasks.PATCH("/:id/status", middleware.RequireTaskAccess(), taskHandler.UpdateStatus)
			tasks.DELETE("/:id", middleware.RequireTaskAccess(), taskHandler.DeleteTask)
			tasks.GET("/:id/responses", middleware.RequireTaskAccess(), taskHandler.ListResponses)
			tasks.POST("/:id/responses", middleware.RequireTaskAccess(), taskHandler.AddResponse)
			tasks.GET("/:id/subtasks", middleware.RequireTaskAccess(), taskHandler.ListSubtasks)
			tasks.POST("/:id/subtasks", middleware.RequireTaskAccess(), taskHandler.CreateSubtask)
		}

		// Notification routes (protected)
		notifications := api.Group("/notifications")
		notifications.Use(middleware.RequireAuth())
		{
			notifications.GET("", notificationHandler.List)
			notifications.POST("/read-all", notificationHandler.MarkAllRead)
			notifications.POST("/:id/read", notificationHandler.MarkRead)
			notifications.DELETE("/:id", notificationHandler.Dismiss)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
