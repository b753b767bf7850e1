// Package postgres implements the user credential store over gorm.
package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/octanews/authcore/internal/config"
	"github.com/octanews/authcore/internal/domain/models"
	"github.com/octanews/authcore/internal/domain/service"
	apperrors "github.com/octanews/authcore/pkg/errors"
	"github.com/octanews/authcore/pkg/logger"
)

// NewDB opens the user-store database and migrates the schema. The sqlite
// driver backs local development and tests; production runs on postgres.
func NewDB(cfg *config.DatabaseConfig, log logger.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if cfg.Driver == "sqlite" {
		dialector = sqlite.Open(cfg.Database)
	} else {
		dialector = postgres.Open(cfg.DSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, apperrors.ErrConfiguration("failed to connect to database").WithCause(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, apperrors.ErrConfiguration("failed to access database pool").WithCause(err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.User{}); err != nil {
		return nil, apperrors.ErrConfiguration("failed to migrate user schema").WithCause(err)
	}

	log.Info(context.Background(), "user store connected",
		logger.String("database", cfg.Database))
	return db, nil
}

type userRepository struct {
	db  *gorm.DB
	log logger.Logger
}

// NewUserRepository creates a UserRepository over an opened gorm handle.
func NewUserRepository(db *gorm.DB, log logger.Logger) service.UserRepository {
	return &userRepository{db: db, log: log.WithComponent("userrepo")}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrInvalidRequest("email already registered")
		}
		return apperrors.ErrInternal("failed to create user").WithCause(err)
	}
	return nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound("user")
	}
	if err != nil {
		return nil, apperrors.ErrInternal("failed to load user").WithCause(err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return apperrors.ErrInternal("failed to update user").WithCause(err)
	}
	return nil
}
