package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"cropdoc/config"
	"cropdoc/database"
	"cropdoc/pkg/ai"
	"cropdoc/pkg/imagestore"
	"cropdoc/pkg/logger"
	"cropdoc/pkg/middleware"
	"cropdoc/router"

	// KB
	kbCtrlImp "cropdoc/pkg/kb/controllerImp"
	kbRepoImp "cropdoc/pkg/kb/repositoryImp"
	kbServiceImp "cropdoc/pkg/kb/serviceImp"

	// Diagnosis
	diagCtrlImp "cropdoc/pkg/diagnosis/controllerImp"
	diagRepo "cropdoc/pkg/diagnosis/repository"
	diagRepoImp "cropdoc/pkg/diagnosis/repositoryImp"
	diagServiceImp "cropdoc/pkg/diagnosis/serviceImp"

	// Chat
	chatCtrlImp "cropdoc/pkg/chat/controllerImp"
	chatRepo "cropdoc/pkg/chat/repository"
	chatRepoImp "cropdoc/pkg/chat/repositoryImp"
	chatServiceImp "cropdoc/pkg/chat/serviceImp"

	// Auth + Health
	authCtrlImp "cropdoc/pkg/auth/controllerImp"
	healthCtrlImp "cropdoc/pkg/health/controllerImp"
)

func main() {
	// 1) Config + logging
	cfg := config.Load()
	if err := logger.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatalf("logger: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.Info("config loaded", "config", cfg)

	// 2) DB (sqlite) + automigrate
	var db *gorm.DB
	if cfg.DBPath != "" {
		var err error
		if db, err = database.OpenSQLite(cfg.DBPath); err != nil {
			slog.Error("database", "error", err)
			os.Exit(1)
		}
	}

	// 3) Redis (chat history)
	var rdb *redis.Client
	if cfg.ChatHistoryBackend == config.HistoryRedis {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Warn("redis ping failed, chat history degrades to stateless", "error", err)
		}
		cancel()
	}

	// 4) Gateway
	httpc := &http.Client{Timeout: cfg.GatewayTimeout}
	var llm ai.Client
	switch cfg.GatewayProvider {
	case config.ProviderGemini:
		var err error
		if llm, err = ai.NewGemini(cfg.GatewayBaseURL, cfg.GatewayAPIKey, httpc); err != nil {
			slog.Error("gateway", "error", err)
			os.Exit(1)
		}
	default:
		llm = ai.NewOpenAI(cfg.GatewayBaseURL, cfg.GatewayAPIKey, httpc)
	}

	// 5) KB wiring; a broken catalog is fatal
	kbRepo, err := kbRepoImp.New()
	if err != nil {
		slog.Error("knowledge base", "error", err)
		os.Exit(1)
	}
	kbSvc := kbServiceImp.New(kbRepo)
	kbCtrl := kbCtrlImp.New(kbSvc)

	// 6) Diagnosis
	var dRepo diagRepo.DiagnosisRepository
	if db != nil {
		dRepo = diagRepoImp.New(db)
	}
	var archive imagestore.Archiver
	if cfg.StorageEnabled() {
		archive = imagestore.NewSupabase(cfg.StorageURL, cfg.StorageKey, cfg.StorageBucket)
	}
	dSvc := diagServiceImp.New(kbSvc, llm, dRepo, archive, diagServiceImp.Options{
		Model:         cfg.DiagnosisModel,
		MaxTokens:     cfg.DiagnosisMaxTokens,
		MaxImageBytes: cfg.MaxImageBytes,
	})
	dCtrl := diagCtrlImp.New(dSvc)

	// 7) Chat
	var cStore chatRepo.ChatHistoryRepository
	switch cfg.ChatHistoryBackend {
	case config.HistoryRedis:
		cStore = chatRepoImp.NewRedis(rdb, cfg.ChatHistoryTTL)
	case config.HistorySQLite:
		cStore = chatRepoImp.NewSQLite(db)
	}
	cCtrl := chatCtrlImp.New(chatServiceImp.New(kbSvc, llm, cStore, cfg.ChatModel))

	// 8) Health
	hCtrl := healthCtrlImp.NewHealthCtrl(db, rdb)

	// 9) Echo + router
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.RequestLogger())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{
			"authorization", "x-client-info", "apikey", echo.HeaderContentType,
			"x-supabase-client-platform", "x-supabase-client-platform-version",
			"x-supabase-client-runtime", "x-supabase-client-runtime-version",
			middleware.HeaderUserID, middleware.HeaderRequestID,
		},
		ExposeHeaders: []string{middleware.HeaderRequestID, echo.HeaderContentDisposition},
	}))
	// base64 inflates by 4/3; leave headroom for the JSON envelope
	e.Use(echoMiddleware.BodyLimit(strconv.Itoa(cfg.MaxImageBytes/3*4+64*1024) + "B"))

	r := router.New(e, cfg.RequireAuthHistory, dCtrl, cCtrl, kbCtrl, hCtrl, authCtrlImp.NewAuthController())

	// 10) Start + graceful shutdown
	go func() {
		slog.Info("listening", "port", cfg.Port)
		if err := r.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server run failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := r.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}
