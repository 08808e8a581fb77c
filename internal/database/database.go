package database

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"

	"cockpityara/internal/domain/profile"
	"cockpityara/internal/domain/project"
)

// ConnectLocal opens the embedded per-device store. Opening failure is fatal
// to every operation attempted afterward, so callers should treat an error
// here as a hard startup error.
func ConnectLocal(path string) (*gorm.DB, error) {
	log.Println("Opening local store:", path)

	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        path,
		}),
		&gorm.Config{},
	)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	if err := db.AutoMigrate(
		&project.Project{},
		&profile.CarpenterProfile{},
		&profile.CreditTransaction{},
	); err != nil {
		return nil, fmt.Errorf("migrate local store: %w", err)
	}

	return db, nil
}

// ConnectRemote opens the cloud mirror of the clients collection. The caller
// decides what a failure means; the sync layer degrades to local-only mode.
func ConnectRemote(dsn string) (*gorm.DB, error) {
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return nil, fmt.Errorf("remote dsn is not a postgres url")
	}

	log.Println("Connecting to remote store...")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open remote store: %w", err)
	}

	if err := db.AutoMigrate(&project.Project{}); err != nil {
		return nil, fmt.Errorf("migrate remote store: %w", err)
	}

	return db, nil
}
