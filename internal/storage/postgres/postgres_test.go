package postgres

import (
	"fmt"
	"testing"

	"github.com/firepit/infernos/models"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/stretchr/testify/require"
)

// setupTestDB swaps the package-level DB for an in-memory SQLite database and
// returns the previous connection so the caller can restore it.
func setupTestDB(t *testing.T) *gorm.DB {
	oldDB := GetDB()

	db, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err, "Failed to connect to in-memory SQLite")

	// A second pool connection would see its own empty :memory: database.
	db.DB().SetMaxOpenConns(1)
	db.Exec("PRAGMA foreign_keys = ON")
	db.LogMode(false)

	err = db.AutoMigrate(&models.User{}, &models.Inferno{}, &models.Cult{}).Error
	require.NoError(t, err, "Failed to migrate database schema")

	InitDBWithConnection(db)
	return oldDB
}

func teardownTestDB(db *gorm.DB) {
	InitDBWithConnection(db)
}

func createTestUser(t *testing.T, key, username string) string {
	t.Helper()
	user := &models.User{
		ExternalID: key,
		Username:   username,
		Name:       "Test User",
		Onboarded:  true,
	}
	require.NoError(t, DB.Create(user).Error)
	return fmt.Sprint(user.ID)
}

func createTestCult(t *testing.T, key, username string, createdByID string) string {
	t.Helper()
	uid, err := parseID(createdByID)
	require.NoError(t, err)
	cult := &models.Cult{
		ExternalID:  key,
		Username:    username,
		Name:        "Test Cult",
		CreatedByID: uid,
	}
	require.NoError(t, DB.Create(cult).Error)
	return fmt.Sprint(cult.ID)
}

func createTestInferno(t *testing.T, authorID, text string) string {
	t.Helper()
	aid, err := parseID(authorID)
	require.NoError(t, err)
	in := &models.Inferno{Text: text, AuthorID: aid}
	require.NoError(t, DB.Create(in).Error)
	return fmt.Sprint(in.ID)
}
