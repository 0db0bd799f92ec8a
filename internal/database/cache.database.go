package database

import (
	"context"
	"fmt"
	"time"
	"turnover/config"
	"turnover/internal/logger"

	"github.com/valkey-io/valkey-go"
)

// Valkey database index organization. Each index provides logical separation
// for a cache category.
const (
	// DASHBOARD_CACHE_INDEX (DB 0) - Hot dashboard reads: rooms by status,
	// per-worker active room lists.
	DASHBOARD_CACHE_INDEX = iota

	// LEDGER_CACHE_INDEX (DB 1) - History and assignment ledger query results.
	LEDGER_CACHE_INDEX

	// EVENTS_CACHE_INDEX (DB 2) - Pub/sub backing for room change
	// notifications pushed to the role dashboards.
	EVENTS_CACHE_INDEX
)

func (s *DB) initializeCacheDB(config config.Config) error {
	log := s.log.Function("initializeCacheDB")
	log.Info("initializing cache database")

	address := config.DatabaseCacheAddress
	port := config.DatabaseCachePort
	if address == "" || port == 0 {
		return log.Errorf("failed to initialize cache database", "address or port is empty")
	}

	var cacheDB Cache

	var err error
	cacheDB.Dashboard, err = valkey.NewClient(
		valkey.ClientOption{
			InitAddress: []string{fmt.Sprintf("%s:%d", address, port)},
			SelectDB:    DASHBOARD_CACHE_INDEX,
		},
	)
	if err != nil {
		return log.Err("failed to create dashboard valkey client", err)
	}

	cacheDB.Ledger, err = valkey.NewClient(
		valkey.ClientOption{
			InitAddress: []string{fmt.Sprintf("%s:%d", address, port)},
			SelectDB:    LEDGER_CACHE_INDEX,
		},
	)
	if err != nil {
		return log.Err("failed to create ledger valkey client", err)
	}

	cacheDB.Events, err = valkey.NewClient(
		valkey.ClientOption{
			InitAddress: []string{fmt.Sprintf("%s:%d", address, port)},
			SelectDB:    EVENTS_CACHE_INDEX,
		},
	)
	if err != nil {
		return log.Err("failed to create events valkey client", err)
	}

	s.Cache = cacheDB

	if config.DatabaseCacheReset != -1 {
		go clearCacheDB(config.DatabaseCacheReset, cacheDB)
	}

	return nil
}

func clearCacheDB(index int, cacheDB Cache) {
	log := logger.New("database").Function("clearCacheDB")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var client CacheClient
	var dbName string

	switch index {
	case DASHBOARD_CACHE_INDEX:
		client = cacheDB.Dashboard
		dbName = "Dashboard"
	case LEDGER_CACHE_INDEX:
		client = cacheDB.Ledger
		dbName = "Ledger"
	case EVENTS_CACHE_INDEX:
		client = cacheDB.Events
		dbName = "Events"
	default:
		log.Warn("Invalid cache database index", "index", index)
		return
	}

	if err := client.Do(ctx, client.B().Flushdb().Build()).Error(); err != nil {
		log.Er("Failed to clear cache database", err, "index", index, "dbName", dbName)
		return
	}

	log.Info("Successfully cleared cache database", "index", index, "dbName", dbName)
}
