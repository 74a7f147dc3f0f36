package database

import (
	"errors"
	"fmt"
	"time"

	"time-ledger/internal/logger"
	"time-ledger/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	maxAttempts   = 10
	slowThreshold = 1500 * time.Millisecond
)

// Init opens the database, migrates it and seeds the default admin.
// Any failure here is fatal for the process.
func Init(dsn, adminUser, adminPassword string, log *logger.Logger) *gorm.DB {
	db, err := Open(dsn, log)
	if err != nil {
		log.Fatal("failed to connect to db", "attempts", maxAttempts, "error", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatal("failed to migrate", "error", err)
	}

	SeedAdmin(db, adminUser, adminPassword, log)

	return db
}

// Open connects to postgres, retrying while the server comes up.
func Open(dsn string, log *logger.Logger) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	for i := 1; i <= maxAttempts; i++ {
		log.Info("trying to connect to DB", "attempt", i, "max", maxAttempts)

		db, err = gorm.Open(postgres.Open(dsn), Config(log))
		if err == nil {
			log.Info("connected to DB successfully")
			return db, nil
		}

		log.Warn("failed to connect to DB", "error", err)
		time.Sleep(2 * time.Second)
	}
	return nil, err
}

// Config is the gorm configuration shared by every dialect.
func Config(log *logger.Logger) *gorm.Config {
	return &gorm.Config{
		Logger:         log.GormLogger(slowThreshold),
		TranslateError: true,
	}
}

// Migrate creates the schema and the configuration singleton.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.LaborCode{},
		&models.Project{},
		&models.TimeEntry{},
		&models.ChangeAuditRecord{},
		&models.SavedQuery{},
		&models.FavoriteTemplate{},
		&models.Configuration{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	cfg := models.DefaultConfiguration()
	if err := db.FirstOrCreate(&cfg, models.Configuration{ID: models.ConfigurationID}).Error; err != nil {
		return fmt.Errorf("seed configuration: %w", err)
	}
	return nil
}

// SeedAdmin creates the first admin when none exists yet.
func SeedAdmin(db *gorm.DB, username, password string, log *logger.Logger) {
	var count int64
	if err := db.Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		log.Error("failed to check admin user", "error", err)
		return
	}
	if count > 0 {
		return
	}
	if password == "" {
		log.Warn("no admin exists and ADMIN_PASSWORD is empty, skipping seed")
		return
	}

	if _, err := CreateUser(db, username, password, models.RoleAdmin); err != nil {
		log.Error("failed to create default admin", "error", err)
		return
	}

	log.Info("created default admin user", "username", username)
}

var ErrUserExists = errors.New("user already exists")

// CreateUser stores a user with a bcrypt hash of password.
func CreateUser(db *gorm.DB, username, password string, role models.UserRole) (*models.User, error) {
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate returns the user when password matches its stored hash.
func Authenticate(db *gorm.DB, username, password string) (*models.User, bool) {
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, false
	}
	return &user, true
}
