package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/studyhive/studyhive-backend/internal/config"
	"github.com/studyhive/studyhive-backend/internal/handler"
	"github.com/studyhive/studyhive-backend/internal/middleware"
	"github.com/studyhive/studyhive-backend/internal/migration"
	"github.com/studyhive/studyhive-backend/internal/repository"
	"github.com/studyhive/studyhive-backend/internal/routes"
	"github.com/studyhive/studyhive-backend/internal/service"
	"github.com/studyhive/studyhive-backend/internal/ws"
	pkgcache "github.com/studyhive/studyhive-backend/pkg/cache"
	"github.com/studyhive/studyhive-backend/pkg/jwt"
	pkglogger "github.com/studyhive/studyhive-backend/pkg/logger"
	pkgredis "github.com/studyhive/studyhive-backend/pkg/redis"
)

// @title           StudyHive Backend API
// @version         1.0
// @description     StudyHive chat and friends service
//
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Authorization header using the Bearer scheme. Example: "Bearer {token}"

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.Init(env)
	pkglogger.Get().Info().
		Str("env", env).
		Strs("dotenv", dotenvFiles).
		Msg("starting")

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// MySQL
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	pkglogger.Get().Info().Msg("connected to MySQL")

	// Redis (optional: rate limiting, unread cache and multi-instance
	// fan-out degrade gracefully without it)
	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		pkglogger.Get().Warn().Err(err).Msg("continuing without Redis")
		redisClient = nil
	} else {
		pkglogger.Get().Info().Msg("connected to Redis")
	}

	var cacheService pkgcache.Service
	if redisClient != nil {
		cacheService = pkgcache.NewService(redisClient)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	chatRepo := repository.NewChatRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	// JWT
	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn, cfg.JWT.RefreshIn)

	// Realtime hub; membership checks at room-join time go through the
	// membership store, never the hub's own ephemeral state
	hub := ws.NewHub(redisClient, ws.MembershipCheckerFunc(func(chatID, userID string) (bool, error) {
		_, err := membershipRepo.Find(chatID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, err
		}
		return true, nil
	}))
	go hub.Run()

	// Services
	authService := service.NewAuthService(userRepo, messageRepo, jwtManager)
	friendService := service.NewFriendService(friendRepo, userRepo, hub)
	messageService := service.NewMessageService(messageRepo, membershipRepo, chatRepo, cacheService, hub)
	chatService := service.NewChatService(chatRepo, membershipRepo, messageRepo, friendRepo, messageService, hub)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	friendHandler := handler.NewFriendHandler(friendService)
	chatHandler := handler.NewChatHandler(chatService, messageService)
	wsHandler := handler.NewWSHandler(hub, jwtManager, cfg.CORS.AllowOrigins)

	// Router
	if env != "development" && env != "dev" && env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())

	allowOrigins := cfg.CORS.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "http://localhost:3000"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{allowOrigins},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	rlCfg := middleware.DefaultRateLimitConfig()
	rlCfg.RequestsPerMinute = cfg.RateLimit.RequestsPerMinute
	router.Use(middleware.RateLimit(redisClient, rlCfg))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.SetupAuth(router, authHandler, jwtManager)
	routes.Setup(router, friendHandler, chatHandler, jwtManager, redisClient, 60)
	routes.SetupRealtime(router, wsHandler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		pkglogger.Get().Info().Int("port", cfg.Server.Port).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	pkglogger.Get().Info().Msg("shutting down")
	hub.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		pkglogger.Get().Error().Err(err).Msg("forced shutdown")
	}
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	return gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		// Map duplicate-key violations to gorm.ErrDuplicatedKey so the
		// services can treat unique-index races as conflicts
		TranslateError: true,
	})
}
