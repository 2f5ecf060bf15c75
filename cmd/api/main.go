package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	fbapp "firebase.google.com/go/v4"

	"profilehub/internal/adapter/api"
	"profilehub/internal/adapter/api/handler"
	apimiddleware "profilehub/internal/adapter/api/middleware"
	"profilehub/internal/adapter/api/router"
	"profilehub/internal/adapter/repository"
	domainrepo "profilehub/internal/domain/repository"
	"profilehub/internal/domain/service"
	"profilehub/internal/infrastructure/firebase"
	"profilehub/internal/infrastructure/ratelimit"
	"profilehub/internal/infrastructure/storage"
	"profilehub/internal/infrastructure/token"
	"profilehub/internal/usecase"
	"profilehub/pkg/config"
	"profilehub/pkg/logger"
	"profilehub/pkg/response"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	googleOpts, err := cfg.GoogleClientOptions()
	if err != nil {
		log.Fatalf("Failed to load Google credentials: %v", err)
	}
	if len(googleOpts) == 0 {
		logger.Info("No service account configured, using application default credentials")
	}

	var fbApp *fbapp.App
	if cfg.NeedsFirebase() {
		fbApp, err = fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, googleOpts...)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
	}

	var userRepo domainrepo.UserRepository
	switch cfg.StoreDriver {
	case "firestore":
		firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, googleOpts...)
		if err != nil {
			log.Fatalf("Failed to create Firestore client: %v", err)
		}
		defer firestoreClient.Close()

		userRepo = repository.NewFirestoreUserRepository(firestoreClient)
	default:
		mongoClient, err := mongo.Connect(ctx, mongooptions.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mongoClient.Disconnect(disconnectCtx)
		}()

		mongoRepo := repository.NewMongoUserRepository(mongoClient.Database(cfg.MongoDatabase))
		if err := mongoRepo.EnsureIndexes(ctx); err != nil {
			log.Fatalf("Failed to create MongoDB indexes: %v", err)
		}
		userRepo = mongoRepo
	}

	var stager service.BlobStager
	switch cfg.StorageDriver {
	case "gcs":
		stager, err = storage.NewCloudStorageStager(ctx, cfg.StorageBucket, cfg.StoragePrefix, googleOpts...)
	default:
		stager, err = storage.NewLocalStager(cfg.UploadDir)
	}
	if err != nil {
		log.Fatalf("Failed to initialize blob storage: %v", err)
	}
	defer stager.Close()

	var verifier service.TokenVerifier
	switch cfg.AuthProvider {
	case "firebase":
		authClient, err := fbApp.Auth(ctx)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase Auth: %v", err)
		}
		verifier = firebase.NewFirebaseAuthClient(authClient)
	default:
		jwtVerifier := token.NewJWTVerifier(cfg.JWTSecret)
		if cfg.IsDevelopment() {
			handler.SetupDevTokenHandler(jwtVerifier, userRepo)
		}
		verifier = jwtVerifier
	}

	window := time.Duration(cfg.RateWindowSeconds) * time.Second
	var limiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		limiter = ratelimit.NewRedisLimiter(rdb, cfg.RateLimit, window)
		logger.Info("Rate limiting through Redis at %s", cfg.RedisAddr)
	} else {
		memLimiter := ratelimit.NewMemoryLimiter(cfg.RateLimit, window)
		memLimiter.StartCleanupRoutine(ctx)
		limiter = memLimiter
	}

	userUseCase := usecase.NewUserUseCase(userRepo)

	handler.Setup(userUseCase, handler.NewFileHandler(stager, cfg.MaxUploadSize))
	handler.SetupHealthHandler(userRepo)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = response.HTTPErrorHandler
	e.Validator = api.NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("request_id", v.RequestID),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				logger.L().Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.L().Info("request", fields...)
			return nil
		},
	}))
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit("64M"))
	e.Use(apimiddleware.RateLimit(limiter))

	authMiddleware := apimiddleware.NewAuthMiddleware(verifier)
	accessMiddleware := apimiddleware.NewAccessMiddleware(userRepo)

	router.Setup(e, authMiddleware, accessMiddleware)
	router.SetupDevRouter(e, cfg.Environment)

	go func() {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
}
