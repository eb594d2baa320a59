package config

import (
	"fmt"
	"log"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hotel-ops/models"
)

const defaultAdminEmail = "admin@hotel.local"

// AllModels lists every persisted entity in parent->child order.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Establishment{},
		&models.EstablishmentMember{},
		&models.ReferenceList{},
		&models.Room{},
		&models.InterventionTemplate{},
		&models.Intervention{},
		&models.InterventionComment{},
		&models.RoomBlockage{},
		&models.Supplier{},
		&models.InventoryItem{},
		&models.StockMovement{},
		&models.Notification{},
	}
}

func dialector(cfg DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "mysql":
		return mysql.Open(cfg.DSN), nil
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// ConnectDatabase opens the database, configures the pool and applies migrations.
func ConnectDatabase(cfg DatabaseConfig, logrusLogger *logrus.Logger) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if cfg.LogSQL {
		level = logger.Info
	}
	gormLogger := logger.New(
		log.New(logrusLogger.Writer(), "", 0),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(d, &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gorm open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB(): %w", err)
	}
	if cfg.Driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		if cfg.MaxConnections > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxConnections)
		}
		if cfg.MaxIdleConnections > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConnections)
		}
		if cfg.ConnMaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		}
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}

// SeedDatabase creates a default admin account when no user exists yet.
func SeedDatabase(db *gorm.DB, logrusLogger *logrus.Logger) {
	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		logrusLogger.WithError(err).Warn("failed to count users for seeding")
		return
	}
	if userCount > 0 {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		logrusLogger.WithError(err).Warn("failed to hash default admin password")
		return
	}
	admin := models.User{
		Email:        defaultAdminEmail,
		DisplayName:  "Admin User",
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		logrusLogger.WithError(err).Warn("failed to create default admin")
		return
	}
	logrusLogger.WithField("email", defaultAdminEmail).Info("Default admin seeded")
}
