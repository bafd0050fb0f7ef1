package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/kingbootoshi/ordpedia-auto-poster/backend/internal/adapter"
	"github.com/kingbootoshi/ordpedia-auto-poster/backend/internal/graph"
	"github.com/kingbootoshi/ordpedia-auto-poster/backend/internal/ingest"
	"github.com/kingbootoshi/ordpedia-auto-poster/backend/internal/memory"
	"github.com/kingbootoshi/ordpedia-auto-poster/backend/pkg/config"
	apperrors "github.com/kingbootoshi/ordpedia-auto-poster/backend/pkg/errors"
	"github.com/kingbootoshi/ordpedia-auto-poster/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting memory API server...")

	toolStyle, err := memory.ParseToolStyle(cfg.ToolStyle)
	if err != nil {
		log.Fatal("Invalid tool style", zap.Error(err))
	}

	// Initialize Neo4j driver
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(apperrors.NewGraphConnectionFailed(cfg.Neo4jURI, err)))
	}
	defer driver.Close(context.Background())

	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(apperrors.NewGraphConnectionFailed(cfg.Neo4jURI, err)))
	}

	// Initialize dependencies
	repo := graph.NewRepository(driver)
	llm := adapter.NewLLMAdapter(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.ChatModel)
	embedder := adapter.NewEmbedder(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDims)
	engine := memory.NewEngine(repo, llm, embedder, toolStyle)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(requestID())
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())
	router.Use(requestTimeout(cfg.RequestTimeout))

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	registerMemoryRoutes(router, engine, cfg.SearchLimit, cfg.RequestTimeout, log)

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("Server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}

// requestID stamps every request with a UUID for log correlation
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// requestTimeout bounds every request; external calls inherit the deadline
func requestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// ginLogger logs requests with zap
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("Request",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

type filtersBody struct {
	UserID  string `json:"user_id"`
	AgentID string `json:"agent_id"`
	RunID   string `json:"run_id"`
}

func (f filtersBody) toFilters() graph.Filters {
	return graph.Filters{UserID: f.UserID, AgentID: f.AgentID, RunID: f.RunID}
}

// respondMemoryError maps an engine failure onto a response. Context expiry
// is reported as a timeout, config-type rejections as the client's fault,
// and failures a retry could plausibly clear as gateway errors.
func respondMemoryError(c *gin.Context, log *zap.Logger, op string, timeout time.Duration, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		err = apperrors.NewContextTimeout(op, timeout)
	}

	log.Error("Memory operation failed",
		zap.String("operation", op),
		zap.Error(err),
		zap.String("request_id", c.GetString("request_id")),
	)

	switch {
	case apperrors.IsErrorType(err, apperrors.ErrorTypeConfig):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperrors.IsErrorType(err, apperrors.ErrorTypeContext):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
	case apperrors.IsRetryable(err) || apperrors.IsErrorType(err, apperrors.ErrorTypeLLM):
		c.JSON(http.StatusBadGateway, gin.H{"error": op + " failed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": op + " failed"})
	}
}

func formatBullets(relations []graph.Relation) string {
	var sb strings.Builder
	for i, r := range relations {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("- %s %s %s", r.Source, r.Relationship, r.Target))
	}
	return sb.String()
}

func registerMemoryRoutes(router *gin.Engine, engine *memory.Engine, defaultLimit int, timeout time.Duration, log *zap.Logger) {
	api := router.Group("/")

	// Ingest text (or an HTML page revision) into the graph
	api.POST("/memories", func(c *gin.Context) {
		var req struct {
			Text string `json:"text" binding:"required"`
			HTML bool   `json:"html"`
			filtersBody
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		text := req.Text
		if req.HTML {
			text = ingest.Text(text)
		}

		result, err := engine.Add(c.Request.Context(), text, req.toFilters())
		if err != nil {
			respondMemoryError(c, log, "add memory", timeout, err)
			return
		}
		c.JSON(http.StatusOK, result)
	})

	// Search ranked triples
	api.POST("/memories/search", func(c *gin.Context) {
		var req struct {
			Query string `json:"query" binding:"required"`
			Limit int    `json:"limit"`
			filtersBody
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Limit < 1 {
			req.Limit = defaultLimit
		}

		results, err := engine.Search(c.Request.Context(), req.Query, req.toFilters(), req.Limit)
		if err != nil {
			respondMemoryError(c, log, "search", timeout, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": results})
	})

	// Search variant returning a bullet-point block alongside the triples,
	// ready to paste into a prompt
	api.POST("/memories/search/formatted", func(c *gin.Context) {
		var req struct {
			Query string `json:"query" binding:"required"`
			Limit int    `json:"limit"`
			filtersBody
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Limit < 1 {
			req.Limit = 20
		}

		results, err := engine.Search(c.Request.Context(), req.Query, req.toFilters(), req.Limit)
		if err != nil {
			respondMemoryError(c, log, "search", timeout, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"results":       results,
			"bullet_points": formatBullets(results),
		})
	})

	// Unranked scan of the scope
	api.GET("/memories", func(c *gin.Context) {
		filters := graph.Filters{
			UserID:  c.Query("user_id"),
			AgentID: c.Query("agent_id"),
			RunID:   c.Query("run_id"),
		}
		limit := defaultLimit
		if _, err := fmt.Sscanf(c.DefaultQuery("limit", ""), "%d", &limit); err != nil {
			limit = defaultLimit
		}

		results, err := engine.GetAll(c.Request.Context(), filters, limit)
		if err != nil {
			respondMemoryError(c, log, "fetch memories", timeout, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": results})
	})

	// Scoped wipe; an unscoped call is a client error, not a server one
	api.DELETE("/memories", func(c *gin.Context) {
		var req filtersBody
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := engine.DeleteAll(c.Request.Context(), req.toFilters()); err != nil {
			respondMemoryError(c, log, "delete memories", timeout, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	})
}
