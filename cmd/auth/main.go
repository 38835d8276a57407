package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	myPostgresRepo "github.com/Velarin/ChatHaven/auth-service/internal/adapters/db/postgres"
	myRedisRepo "github.com/Velarin/ChatHaven/auth-service/internal/adapters/db/redis"
	smtpMailer "github.com/Velarin/ChatHaven/auth-service/internal/adapters/mail/smtp"
	myHTTP "github.com/Velarin/ChatHaven/auth-service/internal/adapters/transport/http"
	httpmw "github.com/Velarin/ChatHaven/auth-service/internal/adapters/transport/http/middleware"
	appjwt "github.com/Velarin/ChatHaven/auth-service/internal/app/auth/jwt"
	appsvc "github.com/Velarin/ChatHaven/auth-service/internal/app/auth/service"
	"github.com/Velarin/ChatHaven/auth-service/internal/infra/config"
	lg "github.com/Velarin/ChatHaven/auth-service/internal/infra/log"
	"github.com/Velarin/ChatHaven/auth-service/internal/infra/metrics"
	"github.com/Velarin/ChatHaven/auth-service/internal/infra/migrate"
	"github.com/Velarin/ChatHaven/auth-service/internal/infra/server"
	"github.com/Velarin/ChatHaven/auth-service/internal/infra/validation"
)

func main() {
	zapLog := lg.Must(os.Getenv("LOG_LEVEL"))
	defer zapLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("failed to load config", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	redisCli := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisCli.Close()

	mailer, err := smtpMailer.New(cfg)
	if err != nil {
		zapLog.Fatal("failed to init mailer", zap.Error(err))
	}

	jwtUtil, err := appjwt.NewJWTUtil(cfg)
	if err != nil {
		zapLog.Fatal("failed to init JWT util", zap.Error(err))
	}

	userRepo := myPostgresRepo.NewPostgresUserRepo(db)
	tokenRepo := myRedisRepo.NewRedisTokenRepo(redisCli)
	svc := appsvc.New(userRepo, tokenRepo, jwtUtil, mailer, cfg, validation.New(), zapLog)

	m := metrics.New(prometheus.DefaultRegisterer)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpmw.RequestLogger(zapLog))

	corsConfig := cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			"Authorization",
			"X-Requested-With",
		},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	handler := myHTTP.NewHandler(svc, cfg, zapLog, m)
	handler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "time": time.Now().Unix()})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rootCtx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		return server.StartHTTPServer(ctx, cfg, router, zapLog)
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		zapLog.Info("shutdown signal received")
	case <-ctx.Done():
	}
	cancel()

	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
	}
}
