package postgres

import (
	"fmt"
	"log"

	"github.com/firepit/infernos/internal/config"
	"github.com/firepit/infernos/models"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
)

var DB *gorm.DB

// GetDB returns the package-level DB handle (exposed for testing).
func GetDB() *gorm.DB {
	return DB
}

// InitDB connects to PostgreSQL using the DB_* environment variables and sets
// the package-level DB handle.
func InitDB() error {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		config.GetEnv("DB_HOST"),
		config.GetEnv("DB_USER"),
		config.GetEnv("DB_PASSWORD"),
		config.GetEnv("DB_NAME"),
		config.GetEnv("DB_PORT"),
		config.GetEnv("DB_SSLMODE"),
	)

	db, err := gorm.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to the database: %v", err)
	}

	DB = db
	log.Println("Successfully connected to the database.")
	return nil
}

// Migrate creates or updates the three entity tables and their link tables.
func Migrate() error {
	return DB.AutoMigrate(&models.User{}, &models.Inferno{}, &models.Cult{}).Error
}

func CloseDB() error {
	if DB == nil {
		return nil
	}
	if err := DB.Close(); err != nil {
		return fmt.Errorf("failed to close the database connection: %v", err)
	}
	return nil
}

// InitDBWithConnection allows tests to inject a connection (sqlite in-memory).
func InitDBWithConnection(db *gorm.DB) {
	DB = db
}
