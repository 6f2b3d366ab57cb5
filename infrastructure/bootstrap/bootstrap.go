// Package bootstrap opens the stores and clients shared by the server and fleetctl.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"

	"github.com/fleetlog/fleetlog/application/port/outbound"
	"github.com/fleetlog/fleetlog/infrastructure/adapter/memory"
	"github.com/fleetlog/fleetlog/infrastructure/adapter/postgres"
	"github.com/fleetlog/fleetlog/infrastructure/config"
)

const pingTimeout = 5 * time.Second

type UserStore interface {
	outbound.UserRepository
	outbound.ActorDirectory
}

// Stores groups the repositories of one storage driver
type Stores struct {
	// DB is nil for the memory driver
	DB             *sql.DB
	Users          UserStore
	ChangeRequests outbound.ChangeRequestRepository
	Drivers        outbound.DriverRepository
	Vehicles       outbound.VehicleRepository
}

// OpenStores builds the repositories selected by cfg.StorageDriver
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		return &Stores{
			Users:          memory.NewUserRepository(),
			ChangeRequests: memory.NewChangeRequestRepository(),
			Drivers:        memory.NewDriverRepository(),
			Vehicles:       memory.NewVehicleRepository(),
		}, nil
	}

	db, err := OpenDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return &Stores{
		DB:             db,
		Users:          postgres.NewUserRepositoryAdapter(db),
		ChangeRequests: postgres.NewChangeRequestRepositoryAdapter(db),
		Drivers:        postgres.NewDriverRepositoryAdapter(db),
		Vehicles:       postgres.NewVehicleRepositoryAdapter(db),
	}, nil
}

// Ping checks the database, if any
func (s *Stores) Ping(ctx context.Context) error {
	if s.DB == nil {
		return nil
	}
	return s.DB.PingContext(ctx)
}

func (s *Stores) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// OpenDatabase opens a Postgres pool and verifies the connection
func OpenDatabase(ctx context.Context, url string) (*sql.DB, error) {
	if url == "" {
		return nil, config.ErrMissingDatabaseURL
	}

	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// OpenRedis connects to the Redis server at url
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}
