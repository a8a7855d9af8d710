package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"planmate/internal/analytics"
	"planmate/internal/api"
	"planmate/internal/chat"
	"planmate/internal/config"
	"planmate/internal/database"
	"planmate/internal/services"
	"planmate/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	loc, err := cfg.Analytics.Location()
	if err != nil {
		log.Fatalf("Failed to load analytics timezone: %v", err)
	}
	log.Printf("Analytics timezone: %s", loc)

	// Task storage: MongoDB when configured, otherwise in memory
	var taskStore services.TaskStore
	var subStore services.SubscriptionStore
	var mongoClient *database.MongoDBClient
	if cfg.MongoDB.Enabled() {
		log.Printf("Initializing MongoDB connection (Host: %s, Port: %s, Database: %s)",
			cfg.MongoDB.Host, cfg.MongoDB.Port, cfg.MongoDB.Database)
		mongoClient, err = database.NewMongoDBClient(cfg.MongoDB)
		if err != nil {
			log.Printf("WARNING: Failed to connect to MongoDB (using in-memory storage): %v", err)
			mongoClient = nil
		} else {
			log.Printf("Successfully connected to MongoDB")
			taskStore, subStore = mongoClient, mongoClient
		}
	}
	if mongoClient == nil {
		memory := services.NewMemoryStore()
		taskStore, subStore = memory, memory
		log.Printf("WARNING: Tasks are kept in memory and will be lost on restart")
	}

	// Initialize services
	notifier := services.NewNotifier()
	taskService := services.NewTaskService(taskStore, notifier, utils.SystemClock{}, loc)
	engine := analytics.NewEngine(analytics.WithLocation(loc))
	pdfService := services.NewPDFService()
	jwtService := services.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)

	// Completion events (optional)
	var influxClient *database.InfluxDBClient
	if cfg.InfluxDB.Enabled() {
		influxClient, err = database.NewInfluxDBClient(
			cfg.InfluxDB.URL,
			cfg.InfluxDB.Token,
			cfg.InfluxDB.Org,
			cfg.InfluxDB.Bucket,
		)
		if err != nil {
			log.Printf("WARNING: Failed to connect to InfluxDB (completion events disabled): %v", err)
			influxClient = nil
		} else {
			taskService.SetCompletionRecorder(influxClient)
		}
	} else {
		log.Printf("InfluxDB not configured, completion events disabled")
	}

	// Report archive: S3 when configured, otherwise the local filesystem
	var archive services.ReportArchive
	if cfg.S3.Enabled() {
		s3Service, err := services.NewS3Service(cfg.S3)
		if err != nil {
			log.Printf("WARNING: Failed to initialize S3 (falling back to local archive): %v", err)
		} else {
			archive = s3Service
		}
	}
	if archive == nil {
		localArchive, err := services.NewLocalArchive(cfg.Reports.ArchivePath, cfg.Reports.BaseURL)
		if err != nil {
			log.Printf("WARNING: Failed to initialize local report archive (archiving disabled): %v", err)
		} else {
			archive = localArchive
		}
	}

	// Weekly digests
	var mailer services.DigestMailer
	if cfg.Email.Enabled() {
		mailer = services.NewEmailService(cfg.Email)
	} else {
		log.Printf("SendGrid API key not configured, digests are archived but not emailed")
	}
	digestService := services.NewDigestService(taskService, subStore, pdfService, mailer, archive, loc)
	digestService.Start()
	if err := digestService.LoadAndScheduleSubscriptions(context.Background()); err != nil {
		log.Printf("WARNING: Failed to load digest subscriptions: %v", err)
	}

	// Chat assistant
	relay, err := newChatRelay(cfg.Chat)
	if err != nil {
		log.Printf("WARNING: Chat assistant disabled: %v", err)
	}

	// Initialize handlers
	handlers := api.NewHandlers(
		taskService,
		engine,
		pdfService,
		digestService,
		chat.NewSessionStore(),
		relay,
		notifier,
		jwtService,
	)

	// Setup routes
	router := api.SetupRoutes(handlers)

	setupGracefulShutdown(func() {
		digestService.Stop()
		if influxClient != nil {
			influxClient.Close()
		}
		if mongoClient != nil {
			mongoClient.Close()
		}
	})

	// Start server
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newChatRelay builds the relay for the configured provider
func newChatRelay(cfg config.ChatConfig) (*chat.Relay, error) {
	var backend chat.Backend
	var err error

	switch cfg.Provider {
	case "openai":
		backend, err = chat.NewOpenAIBackend(chat.Options{
			APIKey:      cfg.OpenAIKey,
			Model:       cfg.OpenAIModel,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
	default:
		backend, err = chat.NewGeminiBackend(context.Background(), chat.Options{
			APIKey:      cfg.GeminiKey,
			Model:       cfg.GeminiModel,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
	}
	if err != nil {
		return nil, err
	}

	log.Printf("Chat assistant using %s", cfg.Provider)
	return chat.NewRelay(backend), nil
}

// setupGracefulShutdown handles cleanup on application termination
func setupGracefulShutdown(cleanup func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutting down gracefully...")
		cleanup()
		os.Exit(0)
	}()
}
