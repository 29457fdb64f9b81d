package database

import (
	"errors"
	"fmt"
	"log"

	sqlite3 "github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/libreria/internal/entities"
)

// ErrDuplicate is returned by repositories when a write violates one of the
// schema's uniqueness constraints (author name+birth date triple, genre name,
// book ISBN, username). The store rejects the write; nothing is merged or
// retried automatically.
var ErrDuplicate = errors.New("record already exists")

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens (or creates) the catalog database and migrates the
// schema. Foreign key enforcement is switched on so the declared constraints
// hold at the storage level.
func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath+"?_fk=1"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.Author{},
		&entities.Genre{},
		&entities.Book{},
		&entities.BookDetail{},
		&entities.User{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// IsUniqueViolation reports whether err is a SQLite unique-constraint
// failure. Repositories use it to translate driver errors into ErrDuplicate.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
