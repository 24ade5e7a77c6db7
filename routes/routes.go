package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"skillshare/handlers"
	"skillshare/middleware"
	"skillshare/websocket"
)

type Options struct {
	CORSOrigins []string
	// UploadDir is served at /uploads when files are stored locally.
	UploadDir string
	// AuthLimiter throttles signup, login and OTP calls per client IP.
	AuthLimiter *middleware.IPRateLimiter
}

func SetupRouter(h *handlers.Handler, hub *websocket.Hub, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"message":   "SkillShare API is running",
			"time":      time.Now().Unix(),
			"ws":        "WebSocket available at /ws",
			"wsClients": hub.ConnectedUsers(),
		})
	}
	router.GET("/", health)
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	router.GET("/api/health", health)

	router.GET("/ws", hub.Handler(h.Tokens))

	if opts.UploadDir != "" {
		router.Static("/uploads", opts.UploadDir)
	}

	api := router.Group("/api")

	// Public routes
	limited := api.Group("")
	if opts.AuthLimiter != nil {
		limited.Use(middleware.RateLimitMiddleware(opts.AuthLimiter))
	}
	limited.POST("/signup", h.Signup)
	limited.POST("/login", h.Login)
	limited.POST("/otp/request", h.RequestOTP)
	limited.POST("/otp/verify", h.VerifyOTP)
	limited.POST("/google-auth", h.GoogleAuth)

	api.GET("/google/auth-url", h.GoogleAuthURL)
	api.GET("/google/callback", h.GoogleOAuthCallback)
	api.GET("/vapid-public-key", h.GetVapidPublicKey)

	api.GET("/users/:id", h.GetUserProfile)
	api.GET("/creators", h.ListCreators)
	api.GET("/creators/:id", h.GetCreator)
	api.GET("/projects", h.ListProjects)
	api.GET("/projects/:id", h.GetProject)

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.JWTAuthMiddleware(h.Tokens))

	protected.GET("/me", h.GetMyProfile)
	protected.PUT("/me", h.UpdateMyProfile)
	protected.POST("/user/upgrade-role", h.UpgradeRole)

	protected.GET("/messages", h.GetMessages)
	protected.POST("/messages", h.SendMessage)
	protected.POST("/messages/read", h.MarkMessagesRead)
	protected.POST("/upload", h.Upload)

	protected.POST("/projects", h.CreateProject)
	protected.DELETE("/projects/:id", h.DeleteProject)

	protected.GET("/cart", h.GetCart)
	protected.POST("/cart", h.AddToCart)
	protected.DELETE("/cart/:projectId", h.RemoveFromCart)
	protected.POST("/checkout", h.Checkout)
	protected.GET("/orders", h.ListOrders)

	protected.POST("/subscribe", h.SubscribePush)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Endpoint not found",
				"path":    c.Request.URL.Path,
			})
			return
		}
		c.String(http.StatusNotFound, "404 page not found")
	})

	return router
}
