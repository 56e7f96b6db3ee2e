package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/serialpm/serialpm-api/internal/auth"
	"github.com/serialpm/serialpm-api/internal/middleware"
	"github.com/serialpm/serialpm-api/internal/realtime"
	"github.com/serialpm/serialpm-api/internal/services"
)

// Dependencies carries everything the HTTP surface is built from.
type Dependencies struct {
	Issuer         *auth.Issuer
	AuthService    *services.AuthService
	UserService    *services.UserService
	OrgService     *services.OrganizationService
	ProjectService *services.ProjectService
	TaskService    *services.TaskService
	MessageService *services.MessageService
	Notifier       services.Notifier

	// PushServer is optional; /ws is only mounted when it is set.
	PushServer  *realtime.Server
	// Gatherer is optional; /metrics is only mounted when it is set.
	Gatherer    prometheus.Gatherer
	HTTPMetrics *middleware.HTTPMetrics

	CORS      middleware.CORSConfig
	UploadDir string
}

// NewRouter builds the gin engine with every API route.
func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.CORS(deps.CORS))
	if deps.HTTPMetrics != nil {
		r.Use(deps.HTTPMetrics.Middleware())
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.UserService, deps.OrgService, deps.UploadDir)
	orgHandler := NewOrganizationHandler(deps.OrgService, deps.ProjectService)
	projectHandler := NewProjectHandler(deps.ProjectService, deps.TaskService)
	taskHandler := NewTaskHandler(deps.TaskService)
	socketHandler := NewSocketHandler(deps.MessageService, deps.Notifier)

	requireAuth := middleware.RequireAuth(deps.Issuer)
	requireOrg := middleware.RequireOrganization()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "SerialPM API is running",
		})
	})
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
	if deps.PushServer != nil {
		r.GET("/ws", deps.PushServer.ServeWS)
	}
	if deps.UploadDir != "" {
		r.Static("/uploads", deps.UploadDir)
	}

	api := r.Group("/api")
	{
		api.GET("", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "Welcome to the SerialPM API"})
		})

		users := api.Group("/users")
		{
			users.POST("/add", authHandler.Signup)
			users.POST("/login", authHandler.Login)
			users.POST("/logout", requireAuth, authHandler.Logout)
			users.POST("/get-organization", requireAuth, authHandler.GetUserOrganization)
			users.GET("", requireAuth, authHandler.SearchUsers)
			users.GET("/:user_id", requireAuth, authHandler.GetUser)
			users.POST("/:user_id/profile-picture", requireAuth, authHandler.UploadProfilePicture)
		}

		api.POST("/orgs/signup", requireAuth, orgHandler.Onboard)

		orgs := api.Group("/organizations")
		orgs.Use(requireAuth)
		{
			orgs.GET("", orgHandler.ListOrganizations)
			orgs.PUT("/join", orgHandler.Join)
			orgs.GET("/:id", middleware.RequireOrganizationAccess(deps.OrgService), orgHandler.GetOrganization)
			orgs.PUT("/:id", middleware.RequireOrganizationAccess(deps.OrgService), middleware.RequireOrganizationAdmin(deps.UserService), orgHandler.UpdateOrganization)
			orgs.GET("/:id/projects", middleware.RequireOrganizationAccess(deps.OrgService), orgHandler.ListOrganizationProjects)
		}

		current := api.Group("/organization")
		current.Use(requireAuth, requireOrg)
		{
			current.GET("/projects", orgHandler.ListCurrentProjects)
			current.GET("/users", orgHandler.ListCurrentMembers)
		}

		projects := api.Group("/projects")
		projects.Use(requireAuth, requireOrg)
		{
			projects.GET("", projectHandler.ListProjects)
			projects.GET("/search", projectHandler.SearchProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.GET("/:id", middleware.RequireProjectAccess(deps.ProjectService), projectHandler.GetProject)
			projects.PUT("/:id", middleware.RequireProjectAccess(deps.ProjectService), projectHandler.UpdateProject)
			projects.POST("/:id/tasks/generate", middleware.RequireProjectAccess(deps.ProjectService), projectHandler.GenerateTasks)
		}

		tasks := api.Group("/tasks")
		tasks.Use(requireAuth, requireOrg)
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", middleware.RequireTaskAccess(deps.TaskService, deps.ProjectService), taskHandler.GetTask)
			tasks.PUT("/:id", middleware.RequireTaskAccess(deps.TaskService, deps.ProjectService), taskHandler.UpdateTask)
			tasks.PATCH("/:id/status", middleware.RequireTaskAccess(deps.TaskService, deps.ProjectService), taskHandler.UpdateTaskStatus)
			tasks.DELETE("/:id", middleware.RequireTaskAccess(deps.TaskService, deps.ProjectService), taskHandler.DeleteTask)
		}

		socket := api.Group("/socket")
		{
			socket.POST("/send-notification", socketHandler.SendNotification)
			socket.POST("/send-message", requireAuth, socketHandler.SendMessage)
			socket.POST("/get-messages", requireAuth, socketHandler.GetMessages)
		}
	}

	return r
}
