package database

import (
	"context"
	"fmt"
	"time"

	"github.com/raseen-shahil/Med-App-sub000/models"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultCategories are the shelves the shopping app shows out of the box.
var DefaultCategories = []string{
	"Pain Relief",
	"Cold & Flu",
	"Diabetes",
	"Vitamins & Supplements",
	"Digestive Health",
	"Skin Care",
	"Baby Care",
	"First Aid",
}

// Open connects to postgres with the given DSN.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	log.Info().Msg("✅ database schema up to date")
	return nil
}

// Seed inserts the default categories that are missing and reports how many were added.
func Seed(db *gorm.DB) (int64, error) {
	rows := make([]models.Category, 0, len(DefaultCategories))
	for _, name := range DefaultCategories {
		rows = append(rows, models.Category{Name: name})
	}
	res := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).Create(&rows)
	if res.Error != nil {
		return 0, fmt.Errorf("seed categories: %w", res.Error)
	}
	log.Info().Int64("added", res.RowsAffected).Msg("🌱 categories seeded")
	return res.RowsAffected, nil
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn().Err(err).Msg("close database")
	}
}
