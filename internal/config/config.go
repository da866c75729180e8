package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds the runtime settings read from the environment.
type Config struct {
	Port           string
	Env            string
	TrustedProxies []string
	// AllowedOrigins may open dashboard websockets besides the serving host.
	AllowedOrigins []string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	RedisAddr     string
	RedisPassword string

	JWTSecret string

	GeminiAPIKey string
	GeminiModel  string

	AssemblyAIKey string

	CloudinaryCloudName    string
	CloudinaryUploadPreset string

	ATUsername string
	ATAPIKey   string
	ATSenderID string

	TelegramBotToken string
}

// Load reads the configuration. Call godotenv.Load before it to pick up a .env file.
func Load() *Config {
	cfg := &Config{
		Port:                   getEnv("PORT", "8080"),
		Env:                    getEnv("APP_ENV", "production"),
		DBHost:                 getEnv("DB_HOST", "localhost"),
		DBUser:                 getEnv("DB_USER", "igire"),
		DBPassword:             getEnv("DB_PASSWORD", "igire"),
		DBName:                 getEnv("DB_NAME", "igire"),
		DBPort:                 getEnv("DB_PORT", "5432"),
		RedisAddr:              getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),
		JWTSecret:              getEnv("JWT_SECRET", "change-me"),
		GeminiAPIKey:           getEnv("GEMINI_API_KEY", ""),
		GeminiModel:            getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		AssemblyAIKey:          getEnv("ASSEMBLYAI_API_KEY", ""),
		CloudinaryCloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryUploadPreset: getEnv("CLOUDINARY_UPLOAD_PRESET", ""),
		ATUsername:             getEnv("AT_USERNAME", "sandbox"),
		ATAPIKey:               getEnv("AT_API_KEY", ""),
		ATSenderID:             getEnv("AT_SENDER_ID", ""),
		TelegramBotToken:       getEnv("TELEGRAM_BOT_TOKEN", ""),
	}

	cfg.TrustedProxies = splitList(os.Getenv("TRUSTED_PROXIES"))
	cfg.AllowedOrigins = splitList(os.Getenv("ALLOWED_ORIGINS"))

	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// PostgresDSN builds the gorm postgres connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// IsProduction reports whether error details should be hidden from API clients.
func (c *Config) IsProduction() bool {
	return c.Env != "development" && c.Env != "test"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
