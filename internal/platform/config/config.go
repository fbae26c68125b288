package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string

	// SessionSecret signs the session cookie. The fallback is for local
	// development only.
	SessionSecret string
	// UseHTTPS marks the session cookie Secure when the deployment
	// terminates TLS.
	UseHTTPS bool

	// Seed admin credentials. The bootstrap re-hashes and overwrites the
	// stored hash whenever this password stops verifying, so a password
	// changed through another path is reverted on the next restart.
	AdminUsername string
	AdminPassword string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:       getEnv("API_PORT", "8080"),
		SessionSecret: getEnv("SESSION_SECRET", "change-this-secret"),
		UseHTTPS:      getEnv("USE_HTTPS", "0") == "1",
		AdminUsername: getEnv("DEFAULT_ADMIN_USERNAME", "admin@example.com"),
		AdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", "change-me-please"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "user"),
		DBPassword:    getEnv("DB_PASSWORD", "password"),
		DBName:        getEnv("DB_NAME", "contactdesk_db"),
		DBSslMode:     getEnv("DB_SSLMODE", "disable"),
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
