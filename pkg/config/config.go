package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

// DevJWTSecret signs tokens when JWT_SECRET is unset in development. It is
// public, so any other environment must supply its own secret.
const DevJWTSecret = "your-secret-key"

type Config struct {
	ServerPort  string
	Environment string

	// Document store
	StoreDriver   string
	MongoURI      string
	MongoDatabase string

	FirebaseProject            string
	FirebaseServiceAccountJSON string
	FirebaseServiceAccountPath string

	// Blob staging
	StorageDriver string
	UploadDir     string
	StorageBucket string
	StoragePrefix string
	MaxUploadSize int64

	// Authentication
	AuthProvider string
	JWTSecret    string

	// Rate limiting
	RedisAddr         string
	RedisPassword     string
	RateLimit         int
	RateWindowSeconds int64
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "production"),

		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", "mongo")),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "profilehub"),

		FirebaseProject:            getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),

		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		StorageBucket: getEnv("STORAGE_BUCKET", ""),
		StoragePrefix: getEnv("STORAGE_PREFIX", "uploads"),
		MaxUploadSize: getEnvAsInt64("MAX_UPLOAD_SIZE", 5*1024*1024), // 5MB

		AuthProvider: strings.ToLower(getEnv("AUTH_PROVIDER", "jwt")),
		JWTSecret:    getEnv("JWT_SECRET", ""),

		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RateLimit:         int(getEnvAsInt64("RATE_LIMIT", 60)),
		RateWindowSeconds: getEnvAsInt64("RATE_WINDOW_SECONDS", 60),
	}

	if config.JWTSecret == "" && config.IsDevelopment() {
		config.JWTSecret = DevJWTSecret
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate reports combinations of settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "mongo":
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when STORE_DRIVER=mongo")
		}
	case "firestore":
		if c.FirebaseProject == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required when STORE_DRIVER=firestore")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want mongo or firestore)", c.StoreDriver)
	}

	switch c.StorageDriver {
	case "local":
		if c.UploadDir == "" {
			return fmt.Errorf("UPLOAD_DIR is required when STORAGE_DRIVER=local")
		}
	case "gcs":
		if c.StorageBucket == "" {
			return fmt.Errorf("STORAGE_BUCKET is required when STORAGE_DRIVER=gcs")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q (want local or gcs)", c.StorageDriver)
	}

	switch c.AuthProvider {
	case "jwt":
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_PROVIDER=jwt")
		}
		if c.JWTSecret == DevJWTSecret && !c.IsDevelopment() {
			return fmt.Errorf("JWT_SECRET must be a private value outside development")
		}
	case "firebase":
		if c.FirebaseProject == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required when AUTH_PROVIDER=firebase")
		}
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER %q (want jwt or firebase)", c.AuthProvider)
	}

	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}

	return nil
}

// NeedsFirebase is true when either the store or the token verifier talks to Firebase.
func (c *Config) NeedsFirebase() bool {
	return c.StoreDriver == "firestore" || c.AuthProvider == "firebase"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// GoogleClientOptions returns the credentials shared by Firebase, Firestore
// and Cloud Storage. With neither the JSON nor the path set it returns no
// options, so the clients fall back to application default credentials.
func (c *Config) GoogleClientOptions() ([]option.ClientOption, error) {
	if c.FirebaseServiceAccountJSON != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(c.FirebaseServiceAccountJSON))}, nil
	}
	if c.FirebaseServiceAccountPath != "" {
		if _, err := os.Stat(c.FirebaseServiceAccountPath); err != nil {
			return nil, fmt.Errorf("service account file %s: %w", c.FirebaseServiceAccountPath, err)
		}
		return []option.ClientOption{option.WithCredentialsFile(c.FirebaseServiceAccountPath)}, nil
	}
	return nil, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
