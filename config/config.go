package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config holds every setting the server and feedbackctl read from the environment.
type Config struct {
	Port        string
	Environment string
	LogLevel    string

	MongoURI       string
	DBName         string
	CollectionName string

	GoogleClientEmail string
	GooglePrivateKey  string
	GoogleSheetID     string
	SheetTimeZone     *time.Location

	SendGridAPIKey string
	AlertEmail     string
	AlertFromEmail string

	JWTSecret string

	AWSRegion     string
	AWSBucketName string
}

// LoadConfig loads environment variables from .env file
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using default values or system environment variables")
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017/"),
		DBName:         getEnv("MONGO_DB", "club_feedback"),
		CollectionName: getEnv("MONGO_COLLECTION", "feedback_entries"),

		GoogleClientEmail: os.Getenv("GOOGLE_CLIENT_EMAIL"),
		// Hosting dashboards store the PEM key on one line with literal \n.
		GooglePrivateKey: strings.ReplaceAll(os.Getenv("GOOGLE_PRIVATE_KEY"), `\n`, "\n"),
		GoogleSheetID:    os.Getenv("GOOGLE_SHEET_ID"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		AlertEmail:     os.Getenv("ALERT_EMAIL"),
		AlertFromEmail: getEnv("ALERT_FROM_EMAIL", "no-reply@clubfeedback.app"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		AWSRegion:     getEnv("AWS_REGION", "ap-south-1"),
		AWSBucketName: os.Getenv("AWS_BUCKET_NAME"),
	}

	tzName := getEnv("SHEET_TIMEZONE", "Asia/Kolkata")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid SHEET_TIMEZONE %q: %w", tzName, err)
	}
	cfg.SheetTimeZone = loc

	return cfg, nil
}

// SheetsEnabled reports whether service-account credentials and a target sheet are configured.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleClientEmail != "" && c.GooglePrivateKey != "" && c.GoogleSheetID != ""
}

// AlertsEnabled reports whether sync-failure emails can be sent.
func (c *Config) AlertsEnabled() bool {
	return c.SendGridAPIKey != "" && c.AlertEmail != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
