package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	// TenantScoped switches audience queries to the per-app users schema.
	// DefaultAppID is used when a triggering document carries no app id.
	TenantScoped bool
	DefaultAppID string

	GCPProjectID            string
	FirebaseCredentialsFile string
	PubSubSubscription      string // empty disables the Pub/Sub event intake

	RedisAddr     string // empty disables already-notified markers
	RedisPassword string
	RedisDB       int
	MarkerTTLDays int

	EventSecret    string   // HS256 secret for the HTTP event intake
	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each document collection.
type DynamoTables struct {
	Users         string
	Announcements string
	ChatMessages  string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:  getEnv("APP_PORT", "3000"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			Announcements: getEnv("DYNAMO_TABLE_ANNOUNCEMENTS", "announcements"),
			ChatMessages:  getEnv("DYNAMO_TABLE_CHAT_MESSAGES", "chat_messages"),
		},

		TenantScoped: getEnvBool("TENANT_SCOPED", false),
		DefaultAppID: getEnv("DEFAULT_APP_ID", ""),

		GCPProjectID:            getEnv("GCP_PROJECT_ID", ""),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		PubSubSubscription:      getEnv("PUBSUB_SUBSCRIPTION", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		MarkerTTLDays: getEnvInt("MARKER_TTL_DAYS", 7),

		EventSecret:    getEnv("EVENT_SECRET", ""),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
