// Package storage selects and opens the property store named by STORE_DRIVER.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/domain"
	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/shared"
	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/storage/gormpg"
	mysqlrepo "github.com/iconpropertiesg-arch/iconproperties-sub001/internal/storage/mysql"
)

// Store is an opened repository plus the handles bootstrap needs around it.
type Store struct {
	Repo  domain.PropertyRepository
	Ping  func(ctx context.Context) error
	Close func() error
}

// Open connects to the configured backend and pings it. The Postgres schema is
// migrated on open; MySQL expects migrations/mysql to have been applied.
func Open(ctx context.Context, cfg shared.Config) (Store, error) {
	switch cfg.StoreDriver {
	case shared.DriverMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return Store{}, fmt.Errorf("sql.Open: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return Store{}, fmt.Errorf("mysql ping: %w", err)
		}
		log.Info().Str("driver", cfg.StoreDriver).Msg("database connection ok")
		return Store{Repo: mysqlrepo.New(db), Ping: db.PingContext, Close: db.Close}, nil

	case shared.DriverPostgres:
		gdb, err := gormpg.Open(cfg.PostgresDSN)
		if err != nil {
			return Store{}, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return Store{}, fmt.Errorf("gorm db handle: %w", err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			return Store{}, fmt.Errorf("postgres ping: %w", err)
		}
		if err := gormpg.Migrate(gdb.WithContext(ctx)); err != nil {
			_ = sqlDB.Close()
			return Store{}, err
		}
		log.Info().Str("driver", cfg.StoreDriver).Msg("database connection ok, schema migrated")
		return Store{Repo: gormpg.New(gdb), Ping: sqlDB.PingContext, Close: sqlDB.Close}, nil
	}
	return Store{}, fmt.Errorf("unknown STORE_DRIVER %q (want %s or %s)", cfg.StoreDriver, shared.DriverMySQL, shared.DriverPostgres)
}
