package database

import (
	"turnover/internal/logger"
	"turnover/internal/models"
)

// MigrateModels runs GORM AutoMigrate for all models
func (db *DB) MigrateModels() error {
	log := logger.New("database").Function("MigrateModels")
	log.Info("Starting database migration")

	modelsToMigrate := []any{
		&models.Worker{},
		&models.Room{},
		&models.Activity{},
		&models.CleaningRecord{},
		&models.AssignmentEvent{},
		&models.Message{},
	}

	for _, model := range modelsToMigrate {
		if err := db.SQL.AutoMigrate(model); err != nil {
			return log.Err("failed to migrate model", err, "model", model)
		}
	}

	log.Info("Database migration completed successfully")
	return nil
}

// CreateIndexes creates additional indexes that GORM doesn't create automatically
func (db *DB) CreateIndexes() error {
	log := logger.New("database").Function("CreateIndexes")
	log.Info("Creating additional database indexes")

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_rooms_status_floor ON rooms(status, floor)",
		"CREATE INDEX IF NOT EXISTS idx_activities_room_category_position ON activities(room_id, category, position)",
		"CREATE INDEX IF NOT EXISTS idx_cleaning_records_worker_date ON cleaning_records(worker_id, cleaning_date DESC)",
		"CREATE INDEX IF NOT EXISTS idx_messages_timestamp ON messages(timestamp DESC)",
	}

	for _, index := range indexes {
		if err := db.SQL.Exec(index).Error; err != nil {
			return log.Err("failed to create index", err, "index", index)
		}
	}

	log.Info("Additional indexes created successfully")
	return nil
}
