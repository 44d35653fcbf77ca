// Package stores opens the repository backend selected by STORE_BACKEND.
package stores

import (
	"context"
	"fmt"

	"github.com/acolhimento-gf/visitantes-api/internal/platform/config"
	"github.com/acolhimento-gf/visitantes-api/internal/platform/database"
	firestoreclient "github.com/acolhimento-gf/visitantes-api/internal/platform/firestore"
	"github.com/acolhimento-gf/visitantes-api/internal/repository"
	"github.com/acolhimento-gf/visitantes-api/internal/repository/memstore"
	"github.com/acolhimento-gf/visitantes-api/internal/repository/sqlstore"
)

// Set groups one implementation of every store plus its lifecycle hooks.
type Set struct {
	Backend  string
	Source   string
	Visitors repository.VisitorStore
	Users    repository.UserStore
	Stats    repository.StatsStore
	Runs     repository.RunStore
	Ping     func(ctx context.Context) error
	Close    func() error
}

// Open connects to the configured backend. Callers must invoke Close.
func Open(ctx context.Context, cfg config.Config) (*Set, error) {
	switch cfg.StoreBackend {
	case config.BackendFirestore:
		client, source, err := firestoreclient.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := firestoreclient.Ping(ctx, client); err != nil {
			client.Close()
			return nil, err
		}
		return &Set{
			Backend:  cfg.StoreBackend,
			Source:   source,
			Visitors: repository.NewVisitorRepository(client),
			Users:    repository.NewUserRepository(client),
			Stats:    repository.NewStatsRepository(client),
			Runs:     repository.NewRunRepository(client),
			Ping:     func(ctx context.Context) error { return firestoreclient.Ping(ctx, client) },
			Close:    client.Close,
		}, nil

	case config.BackendSQL:
		db, err := database.Open(cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		if err := sqlstore.Migrate(db); err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sql handle: %w", err)
		}
		return &Set{
			Backend:  cfg.StoreBackend,
			Source:   cfg.DBDriver,
			Visitors: sqlstore.NewVisitorStore(db),
			Users:    sqlstore.NewUserStore(db),
			Stats:    sqlstore.NewStatsStore(db),
			Runs:     sqlstore.NewRunStore(db),
			Ping:     sqlDB.PingContext,
			Close:    sqlDB.Close,
		}, nil

	case config.BackendMemory:
		return &Set{
			Backend:  cfg.StoreBackend,
			Source:   "process memory",
			Visitors: memstore.NewVisitorStore(),
			Users:    memstore.NewUserStore(),
			Stats:    memstore.NewStatsStore(),
			Runs:     memstore.NewRunStore(),
			Ping:     func(context.Context) error { return nil },
			Close:    func() error { return nil },
		}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
