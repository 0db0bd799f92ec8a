package messagesController

import (
	"context"
	"testing"
	"time"
	"turnover/config"
	"turnover/internal/database"
	. "turnover/internal/models"
	"turnover/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTest(t *testing.T) (database.DB, MessageControllerInterface) {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db := database.DB{SQL: gormDB}
	require.NoError(t, db.MigrateModels())

	repos := repositories.New(db)
	controller := New(repos, config.Config{}, db)

	return db, controller
}

func TestMessages_NewestFirst(t *testing.T) {
	db, controller := setupTest(t)
	ctx := context.Background()

	worker := &Worker{
		FirstName: "Message",
		LastName:  "Worker",
		Email:     uuid.NewString() + "@example.com",
		Active:    true,
	}
	require.NoError(t, db.SQL.Create(worker).Error)

	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	for i, note := range []string{"first", "second", "third"} {
		require.NoError(t, db.SQL.Create(&Message{
			RoomNumber:       "601",
			WorkerID:         worker.ID,
			TimeSpentSeconds: 600,
			Note:             note,
			Timestamp:        base.Add(time.Duration(i) * time.Hour),
		}).Error)
	}

	messages, err := controller.Messages(ctx, 0)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "third", messages[0].Note)
	assert.Equal(t, "first", messages[2].Note)

	limited, err := controller.Messages(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
