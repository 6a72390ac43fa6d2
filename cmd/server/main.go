package main

import (
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ai-chat-relay/backend/api/handlers"
	"github.com/ai-chat-relay/backend/internal/db"
	"github.com/ai-chat-relay/backend/internal/gateway"
	"github.com/ai-chat-relay/backend/internal/repository"
	"github.com/ai-chat-relay/backend/internal/session"
	"github.com/ai-chat-relay/backend/internal/ws"
)

func main() {
	// Get configuration from environment
	port := getEnv("PORT", "3000")
	dbPath := getEnv("DB_PATH", "data/sessions.db")
	apiKey := os.Getenv("OPENAI_API_KEY")
	baseURL := os.Getenv("OPENAI_BASE_URL")
	modelName := getEnv("MODEL", "")
	systemInstruction := os.Getenv("SYSTEM_INSTRUCTION")
	requestTimeout := getEnvDuration("REQUEST_TIMEOUT", 60*time.Second)
	queueSize := getEnvInt("QUEUE_SIZE", 16)

	if apiKey == "" {
		log.Println("Warning: OPENAI_API_KEY is not set, backend calls will fail")
	}

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	// Initialize database
	database, err := db.InitDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	// Initialize session metadata store
	sessionRepo := repository.NewSessionRepository(database)
	sessionManager := session.NewManager(sessionRepo)

	// Initialize the generative backend gateway; the client is shared
	// across all connections.
	gen := gateway.NewOpenAIGateway(gateway.Config{
		APIKey:            apiKey,
		BaseURL:           baseURL,
		Model:             modelName,
		SystemInstruction: systemInstruction,
		Timeout:           requestTimeout,
	})

	// Initialize WebSocket handling
	wsHandler := ws.NewHandler(sessionManager, gen, queueSize)

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(sessionManager)
	webSocketHandler := handlers.NewWebSocketHandler(wsHandler)

	// Initialize Gin router
	r := gin.Default()

	// Enable CORS for development
	r.Use(corsMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// WebSocket route
	webSocketHandler.RegisterRoutes(r)

	// API routes
	api := r.Group("/api")
	{
		sessionHandler.RegisterRoutes(api)
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down server...")
		db.CloseDB()
		os.Exit(0)
	}()

	// Start server
	log.Printf("Starting server on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default value.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid %s value %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

// getEnvDuration returns a duration environment variable or a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid %s value %q, using default %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

// corsMiddleware returns a CORS middleware for development.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
