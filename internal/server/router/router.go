package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/coldroom/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares. webhook may
// be nil when WhatsApp messaging is not configured.
func New(monitor *handlers.MonitoringHandler, webhook *handlers.WebhookHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if webhook != nil {
		r.GET("/webhook", webhook.Verify)
		r.POST("/webhook", webhook.Receive)
	}

	api := r.Group("/", handlers.RequireIdentity())

	api.GET("/session", monitor.GetSession)
	api.PUT("/session", monitor.UpdateSession)
	api.DELETE("/session", monitor.ResetSession)
	api.GET("/dashboard", monitor.Dashboard)

	api.GET("/rooms", monitor.ListRooms)
	api.POST("/rooms", monitor.AddRoom)
	api.GET("/rooms/:id", monitor.GetRoom)
	api.GET("/rooms/:id/history", monitor.History)
	api.GET("/rooms/:id/recommendation", monitor.Recommendation)
	api.POST("/rooms/:id/samples", monitor.TakeSample)
	api.PUT("/rooms/:id/target", monitor.SetTarget)
	api.POST("/rooms/:id/target/recommended", monitor.ApplyRecommended)
	api.PUT("/rooms/:id/product", monitor.AssignProduct)

	api.GET("/products", monitor.ListProducts)
	api.GET("/products/:ref", monitor.GetProduct)
	api.POST("/products", monitor.AddProduct)

	api.GET("/environment", monitor.Environment)
	api.POST("/environment/refresh", monitor.RefreshEnvironment)

	api.GET("/audit", monitor.AuditLog)
	api.DELETE("/history", monitor.PruneHistory)

	if webhook != nil {
		api.POST("/notify", webhook.Notify)
	}

	if logger != nil {
		logger.Info("router initialized", zap.Bool("whatsapp", webhook != nil))
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user", c.GetHeader(handlers.HeaderUser)))
	}
}
