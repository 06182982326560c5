package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"yardgate-backend/config"
	"yardgate-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// Migrate runs AutoMigrate for every persisted entity. Exposed separately so
// tests can run it against their own (sqlite) connection.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.YardBlock{},
		&model.YardBay{},
		&model.Container{},
		&model.ContainerPosition{},
		&model.Movement{},
		&model.MovementPhoto{},
		&model.TicketPrint{},
		&model.PrintJob{},
		&model.AuditLog{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}

// SeedYard idempotently creates the configured block/bay grid. Existing bays
// are left untouched so per-bay capacity overrides survive restarts.
func SeedYard(db *gorm.DB, cfg *config.YardConfig) error {
	for _, blockCode := range cfg.Blocks {
		block := model.YardBlock{Code: blockCode}
		if err := db.Where(model.YardBlock{Code: blockCode}).FirstOrCreate(&block).Error; err != nil {
			return fmt.Errorf("seed block %s: %w", blockCode, err)
		}

		for n := 1; n <= cfg.BaysPerBlock; n++ {
			bayCode := fmt.Sprintf("%s%02d", blockCode, n)
			bay := model.YardBay{
				BlockID:      block.ID,
				BayNumber:    n,
				Code:         bayCode,
				MaxDepthRows: cfg.DefaultMaxDepthRows,
				MaxTiers:     cfg.DefaultMaxTiers,
				IsActive:     true,
			}
			if err := db.Where(model.YardBay{Code: bayCode}).FirstOrCreate(&bay).Error; err != nil {
				return fmt.Errorf("seed bay %s: %w", bayCode, err)
			}
		}
	}
	return nil
}
