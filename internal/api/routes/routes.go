package routes

import (
	"dm-service/internal/api/handlers"
	"dm-service/internal/api/middleware"
	"dm-service/internal/auth"
	"dm-service/internal/message"
	ws "dm-service/internal/websocket"

	"github.com/gin-gonic/gin"
)

type Router struct {
	engine         *gin.Engine
	wsHandler      *handlers.WSHandler
	authHandler    *handlers.AuthHandler
	userHandler    *handlers.UserHandler
	messageHandler *handlers.MessageHandler
	authMW         *middleware.AuthMiddleware

	// uploadDir non-empty serves stored attachments statically.
	uploadDir string
}

func NewRouter(hub *ws.Hub, authService *auth.Service, messageStore message.Store, uploadDir string) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS())
	engine.Use(middleware.LogAPI())

	return &Router{
		engine:         engine,
		wsHandler:      handlers.NewWSHandler(hub, authService),
		authHandler:    handlers.NewAuthHandler(authService),
		userHandler:    handlers.NewUserHandler(authService),
		messageHandler: handlers.NewMessageHandler(messageStore),
		authMW:         middleware.NewAuthMiddleware(authService),
		uploadDir:      uploadDir,
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if r.uploadDir != "" {
		r.engine.Static("/uploads", r.uploadDir)
	}

	api := r.engine.Group("/api")

	// The websocket endpoint carries its own handshake auth.
	api.GET("/ws", r.wsHandler.HandleWebSocket)

	api.POST("/register", r.authHandler.Register)
	api.POST("/login", r.authHandler.Login)
	api.POST("/logout", r.authHandler.Logout)

	authed := api.Group("/")
	authed.Use(r.authMW.RequireAuth())
	{
		authed.GET("/profile", r.authHandler.Profile)
		authed.GET("/people", r.userHandler.People)
		authed.GET("/messages/:userId", r.messageHandler.History)
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
