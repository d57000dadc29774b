package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/simp-lee/companyemployees/internal/config"
	"github.com/simp-lee/companyemployees/internal/domain"
	"github.com/simp-lee/companyemployees/internal/module/auth"
)

// Migrate creates or updates the schema and seeds the default roles.
// It is safe to run repeatedly.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("database is nil")
	}
	if err := db.WithContext(ctx).AutoMigrate(
		&domain.Company{},
		&domain.Employee{},
		&domain.Role{},
		&domain.User{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := backfillNameSearch(ctx, db); err != nil {
		return fmt.Errorf("backfill employee name search: %w", err)
	}
	if err := auth.NewUserRepository(db).EnsureRoles(ctx, domain.DefaultRoles); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}
	return nil
}

// backfillNameSearch folds the search column of employees stored before the
// column existed.
func backfillNameSearch(ctx context.Context, db *gorm.DB) error {
	var batch []domain.Employee
	return db.WithContext(ctx).
		Where("name_search IS NULL OR (name_search = '' AND name <> '')").
		FindInBatches(&batch, 200, func(*gorm.DB, int) error {
			for _, e := range batch {
				err := db.WithContext(ctx).Model(&domain.Employee{}).
					Where("id = ?", e.ID).
					UpdateColumn("name_search", domain.FoldSearchText(e.Name)).Error
				if err != nil {
					return err
				}
			}
			return nil
		}).Error
}

// RunMigrations opens the configured database, migrates it and closes it.
func RunMigrations(ctx context.Context, cfg *config.Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() {
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	db, err := config.SetupDatabase(&cfg.Database, log.Logger)
	if err != nil {
		return fmt.Errorf("setup database: %w", err)
	}
	defer closeDB(db, log.Logger)

	if err := Migrate(ctx, db); err != nil {
		return err
	}
	log.Info("migration completed", slog.String("driver", cfg.Database.Driver))
	return nil
}

func closeDB(db *gorm.DB, log *slog.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("database close error", slog.Any("error", err))
	}
}
