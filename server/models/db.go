package models

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	sqliteEncrypt "github.com/Daskott/gorm-sqlite-cipher"
	"github.com/safeher/safeher/server/logger"
	"github.com/safeher/safeher/utils"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const DB_NAME = "safeher.db"

var logg = logger.NewLogger()

type BaseModel struct {
	ID        uint      `json:"id,omitempty" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// StorageRecord is a durable key-value record with a JSON-encoded string value.
// The contact list & settings are each persisted as one record.
type StorageRecord struct {
	BaseModel
	Key   string `json:"key" gorm:"not null;unique"`
	Value string `json:"value" gorm:"not null"`
}

// DispatchEntry is a record of a single alert dispatch run
type DispatchEntry struct {
	BaseModel
	TestMode  bool   `json:"test_mode"`
	Sent      int    `json:"sent"`
	Simulated int    `json:"simulated"`
	Failed    int    `json:"failed"`
	Message   string `json:"message"`
	Warnings  string `json:"warnings,omitempty"`
}

// Open connects to the encrypted sqlite db under 'dbRootDir'
func Open(passPhrase, dbRootDir string) (*gorm.DB, error) {
	dbDSNVal, err := dbDSN(passPhrase, dbRootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to set sqlite DSN: %v", err)
	}

	db, err := gorm.Open(sqliteEncrypt.Open(dbDSNVal), &gorm.Config{
		Logger: gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				LogLevel:                  gormLogger.Silent,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %v", err)
	}

	return db, nil
}

// AutoMigrate auto-migrates the db schema
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&StorageRecord{}, &DispatchEntry{})
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func dbDSN(passPhrase, dbRootDir string) (string, error) {
	dbDir, err := DbDirectory(dbRootDir)
	if err != nil {
		return "", err
	}

	dbFilePath := filepath.Join(dbDir, DB_NAME)
	dbName := fmt.Sprintf("file:%v", dbFilePath)

	return fmt.Sprintf(
		"%v?_pragma_key=%s&_pragma_cipher_page_size=4096&_journal_mode=WAL",
		dbName,
		passPhrase,
	), nil
}

func DbDirectory(dbRootDir string) (string, error) {
	dbDir := filepath.Join(dbRootDir, "db")

	err := utils.CreateDirIfNotExist(dbDir)
	if err != nil {
		return "", err
	}

	return dbDir, nil
}
