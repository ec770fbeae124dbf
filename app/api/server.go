package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/teamfeed/app/cfg"
)

const currentUserKey = "currentUser"

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	// Set Gin mode (can be controlled via GIN_MODE environment variable)
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// Middleware
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
		SkipPaths: []string{"/health"},
	}))

	r.Use(gin.Recovery())

	// CORS middleware for API endpoints
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-API-Key, X-User-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Routes
	setupRoutes(r, handler, apiAccessKey)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	// Team feed export
	r.GET("/feed.rss", handler.GetFeedRSS)

	// Health endpoint
	r.GET("/health", handler.GetHealth)

	api := r.Group("/api")
	api.Use(authMiddleware(apiAccessKey), handler.identityMiddleware())
	{
		api.GET("/posts", handler.ListPosts)
		api.POST("/posts", handler.CreatePost)

		api.GET("/team", handler.ListTeam)

		api.GET("/clients", handler.ListClients)
		api.POST("/clients", handler.CreateClient)
		api.GET("/clients/:id", handler.GetClient)
		api.PUT("/clients/:id", handler.UpdateClient)
		api.GET("/guilds", handler.ListGuilds)
		api.POST("/guilds", handler.CreateGuild)
		api.GET("/guilds/:id", handler.GetGuild)
		api.GET("/projects", handler.ListProjects)
		api.POST("/projects", handler.CreateProject)
		api.GET("/projects/:id", handler.GetProject)
		api.PUT("/projects/:id", handler.UpdateProject)
		api.GET("/project-guilds", handler.ListProjectGuilds)

		api.GET("/tasks", handler.ListTasks)
		api.POST("/tasks", handler.CreateTask)
		api.GET("/tasks/:id", handler.GetTask)
		api.GET("/tasks/:id/subtasks", handler.GetSubtasks)
		api.PUT("/tasks/:id", handler.UpdateTask)
		api.PATCH("/tasks/:id/status", handler.UpdateTaskStatus)

		api.GET("/notifications", handler.ListNotifications)
		api.PATCH("/notifications/:id/read", handler.MarkNotificationRead)
	}
	slog.Debug("API endpoints enabled with authentication")

	// Root endpoint with basic information
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":     "Team Feed",
			"version":     cfg.GetVersion(),
			"description": "Team feed with tag-driven task assignment",
			"endpoints": map[string]string{
				"feed":          "/feed.rss",
				"health":        "/health",
				"posts":         "/api/posts",
				"tasks":         "/api/tasks",
				"notifications": "/api/notifications",
			},
			"api_status": map[string]interface{}{
				"auth_required": true,
				"headers":       []string{"X-API-Key", "X-User-ID"},
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

// authMiddleware creates authentication middleware for API endpoints
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get API key from X-API-Key header
		providedKey := c.GetHeader("X-API-Key")

		// Also check Authorization header with Bearer prefix
		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// identityMiddleware resolves the calling team member from the X-User-ID header.
func (h *Handler) identityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader("X-User-ID"))
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "User required",
				"message": "Provide the team member id in the X-User-ID header",
			})
			c.Abort()
			return
		}

		user, err := h.userRepo.GetUser(c.Request.Context(), userID)
		if err != nil {
			slog.Error("Database error", "operation", "get_user", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			c.Abort()
			return
		}

		if user == nil {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "Unknown user",
				"message": "X-User-ID is not a member of the team roster",
			})
			c.Abort()
			return
		}

		c.Set(currentUserKey, *user)
		c.Next()
	}
}
