package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/hogarlink/hogar/internal/config"
	environmentdomain "github.com/hogarlink/hogar/internal/environment/domain"
	snapshotdomain "github.com/hogarlink/hogar/internal/snapshot/domain"
	userdomain "github.com/hogarlink/hogar/internal/user/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

const migrationsDir = "migrations"

// Run applies the embedded SQL migrations on postgres. The other dialects
// are for development and tests and fall back to AutoMigrate.
func Run(cfg config.Config, gdb *gorm.DB) error {
	if cfg.DBType != "postgres" {
		return gdb.AutoMigrate(
			&userdomain.User{},
			&environmentdomain.Environment{},
			&snapshotdomain.SensorSnapshot{},
		)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return runPostgres(sqlDB)
}

func runPostgres(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

var Module = fx.Module("migration",
	fx.Invoke(Run),
)
