package api

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"bistro/internal/cart"
	"bistro/internal/config"
	"bistro/internal/menu"
	"bistro/internal/monitoring"
	"bistro/internal/orders"
	"bistro/internal/session"
	"bistro/internal/transcript"
	"bistro/internal/users"

	"github.com/gin-gonic/gin"
)

// Services are the domain services exposed over HTTP. Metrics, Monitor,
// Chat and Dishes are optional; without a language model the chat and
// image search routes answer 503.
type Services struct {
	Menu        *menu.Store
	Catalog     menu.Catalog
	Carts       *cart.Service
	Orders      *orders.Service
	Users       *users.Service
	Sessions    *session.Manager
	Transcripts *transcript.Store
	Metrics     *monitoring.Metrics
	Monitor     *monitoring.Monitor
	Chat        MenuChatter
	Dishes      DishRecognizer
}

// Server represents the restaurant API
type Server struct {
	router  *gin.Engine
	svc     Services
	auth    config.AuthConfig
	origins []string
}

// NewServer creates the API server and registers its routes
func NewServer(cfg config.ServerConfig, auth config.AuthConfig, svc Services) *Server {
	if svc.Catalog == nil {
		svc.Catalog = menu.FallbackCatalog{Primary: svc.Menu}
	}
	if svc.Monitor == nil {
		svc.Monitor = monitoring.NewMonitor()
	}

	s := &Server{
		router:  gin.New(),
		svc:     svc,
		auth:    auth,
		origins: cfg.AllowedOrigins,
	}
	s.router.Use(gin.Logger(), gin.Recovery())
	if svc.Metrics != nil {
		s.router.Use(svc.Metrics.Middleware())
	}
	s.router.Use(s.cors())

	s.setupRoutes()
	return s
}

// Router returns the Gin router
func (s *Server) Router() *gin.Engine {
	return s.router
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/ws/conversations/:id", s.identify(), s.handleWebSocket)

	v1 := s.router.Group("/api/v1", s.identify())
	{
		v1.GET("/status", s.GetStatus)

		// Menu browsing
		v1.GET("/menu", s.ListMenu)
		v1.GET("/menu/categories", s.ListCategories)
		v1.GET("/menu/:id", s.GetMenuItem)
		v1.POST("/menu/chat", s.MenuChat)
		v1.POST("/menu/image-search", s.ImageSearch)

		// Cart, keyed by user or X-Cart-ID
		v1.GET("/cart", s.GetCart)
		v1.POST("/cart/items", s.AddCartItem)
		v1.PUT("/cart/items/:itemId", s.UpdateCartItem)
		v1.DELETE("/cart/items/:itemId", s.RemoveCartItem)
		v1.DELETE("/cart", s.ClearCart)
		v1.POST("/cart/merge", s.requireUser(), s.MergeCart)

		// Ordering assistant
		v1.POST("/conversations", s.CreateConversation)
		v1.POST("/conversations/:id/turns", s.PostTurn)
		v1.DELETE("/conversations/:id", s.CloseConversation)
		v1.GET("/conversations/:id/transcript", s.requireUser(), s.GetTranscript)
		v1.POST("/voice-assistant", s.VoiceAssistant)

		// Orders
		v1.POST("/orders", s.requireUser(), s.Checkout)
		v1.GET("/orders", s.requireUser(), s.ListMyOrders)
		v1.GET("/orders/:id", s.requireUser(), s.GetOrder)

		// Profile
		v1.GET("/profile", s.requireUser(), s.GetProfile)
		v1.PUT("/profile", s.requireUser(), s.UpdateProfile)
		v1.GET("/profile/conversations", s.requireUser(), s.ListMyConversations)
	}

	admin := v1.Group("/admin", s.requireUser(), s.requireAdmin())
	{
		admin.POST("/menu", s.CreateMenuItem)
		admin.PUT("/menu/:id", s.UpdateMenuItem)
		admin.DELETE("/menu/:id", s.DeleteMenuItem)
		admin.POST("/menu/seed", s.SeedMenu)

		admin.GET("/orders", s.ListAllOrders)
		admin.PUT("/orders/:id/status", s.UpdateOrderStatus)

		admin.POST("/status/reset", s.ResetStatus)

		admin.GET("/users", s.ListUsers)
		admin.PUT("/users/:id/role", s.SetUserRole)
	}
}

// cors answers preflight requests and sets the allowed origin
func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && s.originAllowed(origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, "+cartHeader)
			c.Header("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) originAllowed(origin string) bool {
	for _, o := range s.origins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// GetStatus reports service health and counters. With ?metric=name only
// that value is returned.
func (s *Server) GetStatus(c *gin.Context) {
	if s.svc.Sessions != nil {
		s.svc.Monitor.RecordMetric("active_conversations", s.svc.Sessions.Count())
	}
	if name := c.Query("metric"); name != "" {
		value, ok := s.svc.Monitor.GetMetric(name)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown metric %q", name)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"name": name, "value": value})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"metrics": s.svc.Monitor.GetMetrics(),
	})
}

// ResetStatus zeroes the status counters and returns what they held
func (s *Server) ResetStatus(c *gin.Context) {
	previous := s.svc.Monitor.Reset()
	log.Printf("api: status counters reset by %s", userID(c))
	c.JSON(http.StatusOK, gin.H{"previous": previous})
}
