// Package bootstrap wires process-level runtime dependencies: database,
// Redis, and optional development seeding.
package bootstrap

import (
	"fmt"

	"instakilo/internal/cache"
	"instakilo/internal/config"
	"instakilo/internal/database"
	"instakilo/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemoAccounts creates the fixed demo/admin/test accounts on boot.
	// Only honored outside production.
	SeedDemoAccounts bool
}

// InitRuntime connects to DB and Redis and optionally seeds demo accounts.
// The Redis client may be nil when Redis is unreachable; callers degrade
// to DB-only operation.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemoAccounts && cfg.Env != "production" && cfg.Env != "prod" {
		if err := seed.DemoAccounts(db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo accounts: %w", err)
		}
	}

	return db, r, nil
}
