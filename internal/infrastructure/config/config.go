package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// SMTPConfig holds the outbound email configuration
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	Enabled  bool
}

// OTPConfig holds the verification-code engine configuration
type OTPConfig struct {
	Length         int
	Expiry         time.Duration
	MaxAttempts    int
	ResendCooldown time.Duration
	CleanupEnabled bool
}

// GeminiConfig holds the AI backend configuration
type GeminiConfig struct {
	APIKey        string
	Model         string
	BaseURL       string
	MaxTokens     int
	Temperature   float64
	SafetyEnabled bool
	MaxImageSize  int64
}

// Config holds the application configuration
type Config struct {
	AppName        string
	ServerPort     int
	AllowedOrigins []string

	// Database configuration
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	// JWT configuration
	JWTSecret          string
	JWTAccessDuration  time.Duration
	JWTRefreshDuration time.Duration

	SMTP   SMTPConfig
	OTP    OTPConfig
	Gemini GeminiConfig

	// Rate limiting
	RateLimitWindow   time.Duration
	RateLimitRequests int

	// File uploads
	UploadDir   string
	MaxFileSize int64

	// Bootstrap admin account
	AdminEmail    string
	AdminPassword string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env from project root
	_ = godotenv.Load()

	accessDuration, err := time.ParseDuration(getEnv("JWT_ACCESS_TOKEN_DURATION", "12h"))
	if err != nil {
		return nil, err
	}

	refreshDuration, err := time.ParseDuration(getEnv("JWT_REFRESH_TOKEN_DURATION", "168h"))
	if err != nil {
		return nil, err
	}

	smtpUsername := getEnv("SMTP_USERNAME", "")
	smtp := SMTPConfig{
		Host:     getEnv("SMTP_SERVER", "smtp.gmail.com"),
		Port:     getEnvInt("SMTP_PORT", 587),
		Username: smtpUsername,
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("FROM_EMAIL", smtpUsername),
		FromName: getEnv("FROM_NAME", "Gemini Clone"),
		Enabled:  getEnvBool("EMAIL_ENABLED", true),
	}
	// An enabled but unconfigured mailer degrades to disabled instead of
	// failing every send.
	if smtp.Enabled && (smtp.Host == "" || smtp.Username == "" || smtp.Password == "") {
		smtp.Enabled = false
	}

	return &Config{
		AppName:        getEnv("APP_NAME", "Gemini Clone"),
		ServerPort:     getEnvInt("PORT", 8000),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "gemini"),

		JWTSecret:          getEnv("SECRET_KEY", "your-super-secret-key-change-in-production"),
		JWTAccessDuration:  accessDuration,
		JWTRefreshDuration: refreshDuration,

		SMTP: smtp,

		OTP: OTPConfig{
			Length:         getEnvInt("OTP_LENGTH", 6),
			Expiry:         time.Duration(getEnvInt("OTP_EXPIRY_MINUTES", 10)) * time.Minute,
			MaxAttempts:    getEnvInt("OTP_MAX_ATTEMPTS", 3),
			ResendCooldown: time.Duration(getEnvInt("OTP_RESEND_COOLDOWN", 2)) * time.Minute,
			CleanupEnabled: getEnvBool("OTP_CLEANUP_ENABLED", true),
		},

		Gemini: GeminiConfig{
			APIKey:        getEnv("GOOGLE_API_KEY", ""),
			Model:         getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			BaseURL:       getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			MaxTokens:     getEnvInt("GEMINI_MAX_TOKENS", 2048),
			Temperature:   getEnvFloat("GEMINI_TEMPERATURE", 0.7),
			SafetyEnabled: getEnvBool("GEMINI_SAFETY_ENABLED", true),
			MaxImageSize:  int64(getEnvInt("MAX_IMAGE_SIZE", 4194304)),
		},

		RateLimitWindow:   time.Duration(getEnvInt("RATE_LIMIT_WINDOW", 3600)) * time.Second,
		RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 100),

		UploadDir:   getEnv("UPLOAD_DIR", "uploads"),
		MaxFileSize: int64(getEnvInt("MAX_FILE_SIZE", 10485760)),

		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
	}, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a boolean or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvFloat gets an environment variable as a float or returns a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		floatValue, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvList gets a comma-separated environment variable as a string slice
func getEnvList(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
