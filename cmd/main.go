package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"igire/backend/internal/api/handler"
	"igire/backend/internal/auth"
	"igire/backend/internal/categorize"
	"igire/backend/internal/complaint"
	"igire/backend/internal/config"
	"igire/backend/internal/dashboard"
	"igire/backend/internal/insights"
	"igire/backend/internal/llm"
	"igire/backend/internal/localization"
	"igire/backend/internal/media"
	"igire/backend/internal/metrics"
	"igire/backend/internal/models"
	"igire/backend/internal/rewards"
	"igire/backend/internal/routing"
	"igire/backend/internal/sms"
	"igire/backend/internal/storage"
	"igire/backend/internal/telegram"
	"igire/backend/internal/transcribe"
	"igire/backend/internal/ussd"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newLogger(cfg *config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	return logger
}

func setupDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*gorm.DB, *redis.Client) {
	// 1. PostgreSQL
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Fatal("failed to connect PostgreSQL", zap.Error(err))
	}

	// 2. Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect Redis", zap.Error(err))
	}

	// 3. Migrations
	if err := storage.NewStorageService(db, rdb).AutoMigrate(); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	logger.Info("database and redis connections established, migrations complete")
	return db, rdb
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using the environment")
	}
	cfg := config.Load()
	logger := newLogger(cfg)
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, rdb := setupDependencies(ctx, cfg, logger)
	store := storage.NewStorageService(db, rdb)

	texts, err := localization.New()
	if err != nil {
		logger.Fatal("failed to load translations", zap.Error(err))
	}

	// Categorization and routing
	institutions := routing.NewCache(store, config.InstitutionCacheTTL)
	var completer categorize.Completer
	if cfg.GeminiAPIKey != "" {
		client, err := llm.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Fatal("failed to create Gemini client", zap.Error(err))
		}
		completer = client
	} else {
		logger.Warn("GEMINI_API_KEY not set, categorizing with keywords only")
	}
	categorizer := categorize.NewService(completer, routing.NewResolver(institutions), logger)
	categorizer.OnResult(func(source models.CategorySource) {
		metrics.Categorizations.WithLabelValues(string(source)).Inc()
	})

	// Optional integrations
	var opts []complaint.Option
	if cfg.AssemblyAIKey != "" {
		opts = append(opts, complaint.WithTranscriber(
			transcribe.NewClient(cfg.AssemblyAIKey, config.TranscriptionTimeout, config.TranscriptionPollInterval)))
	}
	if cfg.CloudinaryCloudName != "" {
		opts = append(opts, complaint.WithUploader(media.NewClient(cfg.CloudinaryCloudName, cfg.CloudinaryUploadPreset)))
	}

	var gateway *sms.Gateway
	if cfg.ATAPIKey != "" {
		gateway = sms.NewGateway(cfg.ATUsername, cfg.ATAPIKey, cfg.ATSenderID)
		opts = append(opts, complaint.WithSMS(gateway))
	}

	if cfg.TelegramBotToken != "" {
		bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			logger.Fatal("failed to start Telegram bot", zap.Error(err))
		}
		logger.Info("telegram bot authorized", zap.String("username", bot.Self.UserName))
		opts = append(opts, complaint.WithNotifier(telegram.NewNotifier(bot, texts, logger)))
		go telegram.NewBotService(bot, store, texts, logger).Run(ctx)
	}

	complaints := complaint.NewService(store, categorizer, texts, logger, opts...)
	rewardService := rewards.NewService(store, logger)

	// Live dashboard fan-out
	hub := dashboard.NewHub(logger)
	go hub.Run(ctx)
	events := store.SubscribeEvents(ctx)
	defer events.Close()
	go hub.Listen(ctx, events.Channel())

	tokens := auth.NewTokens(cfg.JWTSecret)
	deps := handler.Handler{
		Store:         store,
		Complaints:    complaints,
		Categorizer:   categorizer,
		Rewards:       rewardService,
		Insights:      insights.NewGenerator(store, logger),
		USSD:          ussd.NewHandler(complaints, store, rewardService, texts, localization.DefaultLanguage, logger),
		Hub:           hub,
		Tokens:        tokens,
		Texts:         texts,
		Cache:         institutions,
		Logger:        logger,
		Production:    cfg.IsProduction(),
		SecureCookies: cfg.IsProduction(),

		AllowedOrigins: cfg.AllowedOrigins,
	}
	if gateway != nil {
		deps.SMS = gateway
	}
	router := handler.NewRouter(handler.NewHandler(deps), tokens, cfg.TrustedProxies)

	server := newServer(cfg.Port, router)

	go func() {
		logger.Info("igire hub listening", zap.String("addr", server.Addr), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newServer(port string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       config.ServerReadTimeout,
		WriteTimeout:      config.ServerWriteTimeout,
		MaxHeaderBytes:    1 << 20,
	}
}
