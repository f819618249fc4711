package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/orbitchat/platform/internal/api"
	"github.com/orbitchat/platform/internal/archive"
	"github.com/orbitchat/platform/internal/chat"
	"github.com/orbitchat/platform/internal/chatbot"
	"github.com/orbitchat/platform/internal/config"
	"github.com/orbitchat/platform/internal/conversation"
	"github.com/orbitchat/platform/internal/events"
	"github.com/orbitchat/platform/internal/http/middleware"
	"github.com/orbitchat/platform/internal/knowledge"
	"github.com/orbitchat/platform/internal/leads"
	"github.com/orbitchat/platform/internal/llm"
	"github.com/orbitchat/platform/internal/notify"
	"github.com/orbitchat/platform/internal/observability"
	"github.com/orbitchat/platform/internal/scheduling"
	"github.com/orbitchat/platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	if cfg.AdminJWTSecret == "" {
		logger.Error("ADMIN_JWT_SECRET is required")
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database handle", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	// LLM gateway: Bedrock primary, Gemini fallback when configured.
	var client llm.Client = llm.WithDefaultModel(
		llm.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg)), cfg.BedrockModelID)
	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create gemini client", "error", err)
			os.Exit(1)
		}
		defer gemini.Close()
		client = llm.NewFallbackClient(client, gemini, logger)
	}

	var locker conversation.Locker
	if cfg.UseMemoryLocks {
		locker = conversation.NewMemoryLocker()
	} else {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		locker = conversation.NewRedisLocker(rdb, cfg.SessionLockTTL)
	}

	var queue events.Queue
	if cfg.UseMemoryQueue || cfg.LeadEventsQueue == "" {
		queue = events.NewMemoryQueue()
	} else {
		queue = events.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.LeadEventsQueue)
	}

	var archiver archive.Archiver = archive.NopArchiver{}
	if cfg.ArchiveBucket != "" {
		archiver = archive.NewS3Archiver(s3.NewFromConfig(awsCfg), cfg.ArchiveBucket, logger)
	}

	var sender notify.EmailSender
	switch cfg.EmailProvider {
	case "sendgrid":
		sender = notify.NewSendGridSender(cfg.SendGridAPIKey, cfg.SendGridFromName, cfg.SendGridFromEmail)
	default:
		sender = notify.NewSESSender(sesv2.NewFromConfig(awsCfg), cfg.SESFromEmail)
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	chatbotRepo := chatbot.NewPostgresRepository(pool)
	convStore := conversation.NewSQLStore(db)
	kbRepo := knowledge.NewPostgresRepository(pool)
	leadRepo := leads.NewPostgresRepository(pool)
	schedRepo := scheduling.NewPostgresRepository(pool)

	announcer := &leadAnnouncer{
		publisher: events.NewPublisher(queue, logger),
		metrics:   metrics,
	}

	service := chat.NewService(chat.Config{
		Chatbots:      chatbotRepo,
		Conversations: convStore,
		Locker:        locker,
		Assembler:     knowledge.NewAssembler(kbRepo, cfg.GroundingMaxChars, logger),
		Generator:     chat.NewGenerator(client, cfg.ReplyMaxTokens, cfg.ReplyTemperature, cfg.LLMTimeout, logger),
		Extractor:     leads.NewExtractor(client, leadRepo, announcer, cfg.ExtractionMinTranscript, logger),
		Scheduling:    schedRepo,
		Archiver:      archiver,
		Metrics:       metrics,
		Logger:        logger,
	})

	worker := notify.NewWorker(queue, sender, tenantRecipient(pool, cfg.LeadNotifyEmail), logger)
	go worker.Run(ctx)

	router := api.NewRouter(api.Config{
		Chat:               chat.NewHandler(service, logger),
		Chatbots:           chatbot.NewHandler(chatbotRepo, logger),
		Conversations:      conversation.NewHandler(convStore, logger),
		Knowledge:          knowledge.NewHandler(kbRepo, logger),
		Leads:              leads.NewHandler(leadRepo, logger),
		Scheduling:         scheduling.NewHandler(schedRepo, logger),
		AdminJWTSecret:     cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		ChatRateLimiter:    middleware.NewRateLimiter(cfg.ChatRateLimit, cfg.ChatRateBurst),
		MetricsRegistry:    registry,
		Logger:             logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("api server listening", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// leadAnnouncer fans captured leads out to the event queue and the
// metrics registry.
type leadAnnouncer struct {
	publisher *events.Publisher
	metrics   *observability.Metrics
}

func (a *leadAnnouncer) LeadCaptured(ctx context.Context, lead *leads.Lead) {
	a.metrics.LeadsCaptured.WithLabelValues(lead.ChatbotID).Inc()
	a.publisher.LeadCaptured(ctx, lead)
}

// tenantRecipient resolves a tenant's notification address from the
// tenants table, falling back to the configured default.
func tenantRecipient(pool *pgxpool.Pool, fallback string) notify.RecipientResolver {
	return func(ctx context.Context, tenantID string) (string, error) {
		var email string
		err := pool.QueryRow(ctx,
			`SELECT notification_email FROM tenants WHERE id = $1`, tenantID).Scan(&email)
		if err != nil {
			return "", err
		}
		if email == "" {
			email = fallback
		}
		return email, nil
	}
}

func loadAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, "")))
	}
	if cfg.AWSEndpointOverride != "" {
		opts = append(opts, awsconfig.WithBaseEndpoint(cfg.AWSEndpointOverride))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}
