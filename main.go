package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"codechat-service/internal/auth"
	"codechat-service/internal/config"
	"codechat-service/internal/db"
	"codechat-service/internal/handlers"
	"codechat-service/internal/middleware"
	"codechat-service/internal/observability"
	"codechat-service/internal/rabbitmq"
	"codechat-service/internal/ratelimit"
	"codechat-service/internal/repositories"
	"codechat-service/internal/runner"
	"codechat-service/internal/telemetry"
	"codechat-service/internal/terminal"
	"codechat-service/internal/ws"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	database, err := db.Connect(cfg.Database.DSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracing := observability.InitTracing(ctx, "codechat-service")
	defer func() {
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("tracing shutdown error: %v", err)
		}
	}()

	publisher := rabbitmq.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
	defer publisher.Close()
	log.Printf("audit publisher mode=%s", rabbitmq.PublisherMode(publisher))

	if eventPublisher, err := observability.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange); err != nil {
		log.Printf("ws event publishing disabled: %v", err)
	} else {
		observability.SetPublisher(eventPublisher)
		defer eventPublisher.Close()
	}

	audit := telemetry.NewAuditEmitter(publisher, "audit.codechat", "codechat-service", cfg.Environment)

	verifier, err := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if err != nil {
		log.Fatalf("failed to build token verifier: %v", err)
	}

	var limiter ratelimit.Limiter = ratelimit.NoopLimiter{}
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		limiter = ratelimit.NewRedisLimiter(redisClient, cfg.Runner.RateLimit, cfg.Runner.RateWindow)
	}

	profileRepo := repositories.NewProfileRepo(database)
	groupMessageRepo := repositories.NewGroupMessageRepo(database)
	dmRepo := repositories.NewDirectMessageRepo(database)
	snippetRepo := repositories.NewSnippetRepo(database)

	wandbox := runner.NewWandboxEngine(cfg.Runner.WandboxURL, cfg.Runner.WandboxToolset, cfg.Runner.Timeout)
	piston := runner.NewPistonEngine(cfg.Runner.PistonURL, cfg.Runner.Timeout)

	manager := terminal.NewManager([]runner.Engine{wandbox, piston}, cfg.Runner.SessionTTL)
	manager.StartJanitor(ctx)

	hub := ws.NewHub()

	profileHandler := handlers.NewProfileHandler(profileRepo)
	groupHandler := handlers.NewGroupHandler(groupMessageRepo, profileRepo, hub, audit)
	dmHandler := handlers.NewDMHandler(dmRepo, profileRepo, hub, audit)
	snippetHandler := handlers.NewSnippetHandler(snippetRepo, audit)
	wandboxHandler := handlers.NewExecuteHandler(wandbox, audit)
	pistonHandler := handlers.NewExecuteHandler(piston, audit)
	terminalHandler := handlers.NewTerminalHandler(manager, audit)

	groupWS := ws.NewGroupWebSocketHandler(hub, verifier)
	dmWS := ws.NewDMWebSocketHandler(hub, verifier)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("codechat-service"))
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(middleware.CORSMiddleware())

	authMiddleware := middleware.AuthMiddleware(verifier)
	runnerLimit := middleware.RateLimitMiddleware(limiter, cfg.Runner.RateLimit)

	router.PUT("/profile", authMiddleware, profileHandler.UpsertProfile)
	router.GET("/profile/:user_id", authMiddleware, profileHandler.GetProfile)

	router.GET("/group/messages", authMiddleware, groupHandler.ListGroupMessages)
	router.POST("/group/messages", authMiddleware, groupHandler.PostGroupMessage)
	router.PATCH("/group/messages/:message_id", authMiddleware, groupHandler.UpdateGroupMessageCode)
	router.DELETE("/group/messages/:message_id", authMiddleware, groupHandler.DeleteGroupMessage)

	router.GET("/dms", authMiddleware, dmHandler.ListConversations)
	router.GET("/dms/:user_id/messages", authMiddleware, dmHandler.GetConversation)
	router.POST("/dms/:user_id/messages", authMiddleware, dmHandler.PostDirectMessage)
	router.PATCH("/dms/:user_id/messages/:message_id", authMiddleware, dmHandler.UpdateDirectMessageCode)
	router.DELETE("/dms/:user_id/messages/:message_id", authMiddleware, dmHandler.DeleteDirectMessage)

	router.GET("/snippets", authMiddleware, snippetHandler.ListSnippets)
	router.POST("/snippets", authMiddleware, snippetHandler.CreateSnippet)
	router.GET("/snippets/:snippet_id", authMiddleware, snippetHandler.GetSnippet)
	router.PATCH("/snippets/:snippet_id", authMiddleware, snippetHandler.UpdateSnippet)
	router.DELETE("/snippets/:snippet_id", authMiddleware, snippetHandler.DeleteSnippet)

	router.POST("/execute/wandbox", runnerLimit, wandboxHandler.Execute)
	router.POST("/execute/piston", runnerLimit, pistonHandler.Execute)

	router.POST("/terminal/sessions", authMiddleware, runnerLimit, terminalHandler.StartSession)
	router.POST("/terminal/sessions/:session_id/input", authMiddleware, terminalHandler.SubmitInput)
	router.DELETE("/terminal/sessions/:session_id", authMiddleware, terminalHandler.CloseSession)

	router.GET("/ws/group", groupWS.Handle)
	router.GET("/ws/dms/:user_id", dmWS.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterDebugRoutes(router, audit, cfg.Debug)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
