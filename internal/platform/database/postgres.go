package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"contactdesk/internal/platform/config"
	"contactdesk/internal/platform/database/migrations"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/pressly/goose/v3"
)

var DB *sql.DB

func Connect() {
	var err error
	DB, err = sql.Open("pgx", config.AppConfig.DBConnStr)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	if err = DB.Ping(); err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}

	fmt.Println("Successfully connected to PostgreSQL database!")
}

// Migrate applies the embedded goose migrations.
func Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("database.Migrate set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, DB, "."); err != nil {
		return fmt.Errorf("database.Migrate: %w", err)
	}
	return nil
}

func Close() {
	if DB != nil {
		DB.Close()
		fmt.Println("Database connection closed.")
	}
}
