package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/rs/cors"

	"eventfriend_server/auth"
	"eventfriend_server/config"
	"eventfriend_server/logging"
	"eventfriend_server/metrics"
	"eventfriend_server/routes"
	"eventfriend_server/services"
	"eventfriend_server/socket"
	"eventfriend_server/storage/backend"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		slog.Error("❌ Invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.UsingDevJWTSecret {
		slog.Warn("⚠️ JWT_SECRET not set, signing tokens with the development secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := backend.Open(ctx, cfg)
	if err != nil {
		slog.Error("❌ Failed to open storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("✅ Storage ready", "backend", cfg.StorageBackend)

	// Initialize Services
	m := metrics.New()
	broker := services.NewBroker()
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store, auth.LogMailer{}, cfg.ResetCodeTTL)
	interestService := services.NewInterestService(store, broker, m)
	chatService := services.NewChatService(store, broker, m)

	var uploadService *services.UploadService
	if cfg.S3BucketName != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			slog.Error("❌ Failed to load AWS config", "error", err)
			os.Exit(1)
		}
		uploadService = services.NewUploadService(awsCfg, cfg.S3BucketName, cfg.ImageCDNBaseURL)
	} else {
		slog.Warn("⚠️ S3_BUCKET_NAME not set, profile image uploads disabled")
	}

	chatRooms := socket.NewChatRooms(chatService, broker, jwtManager, m, cfg.CORSAllowedOrigins)
	go func() {
		if err := chatRooms.Server.Serve(); err != nil {
			slog.Error("❌ Socket.IO server stopped", "error", err)
		}
	}()
	defer chatRooms.Server.Close()

	r := routes.NewRouter(routes.Dependencies{
		Authenticator: authenticator,
		JWT:           jwtManager,
		Profiles:      services.NewUserProfileService(store),
		Events:        services.NewEventService(store),
		Interests:     interestService,
		Chat:          chatService,
		Uploads:       uploadService,
		Feeds:         socket.NewFeeds(interestService, chatService, broker, jwtManager, m, cfg.CORSAllowedOrigins),
		ChatRooms:     chatRooms,
		Metrics:       m,
	})

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           corsHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("❌ Graceful shutdown failed", "error", err)
		}
	}()

	slog.Info("🚀 Starting server", "addr", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("❌ Server failed", "error", err)
		os.Exit(1)
	}
}
