package jobs

import (
	"context"
	"turnover/internal/database"
	"turnover/internal/logger"
	"turnover/internal/models"
	"turnover/internal/services"
)

// HousekeepingDigestJob periodically logs queue depth per room status and the
// escalation backlog so operators can spot a stalled floor without opening the
// dashboard.
type HousekeepingDigestJob struct {
	db       database.DB
	log      logger.Logger
	schedule services.Schedule
}

func NewHousekeepingDigestJob(db database.DB, schedule services.Schedule) *HousekeepingDigestJob {
	return &HousekeepingDigestJob{
		db:       db,
		log:      logger.New("housekeepingDigestJob"),
		schedule: schedule,
	}
}

func (j *HousekeepingDigestJob) Name() string {
	return "HousekeepingDigest"
}

func (j *HousekeepingDigestJob) Schedule() services.Schedule {
	return j.schedule
}

func (j *HousekeepingDigestJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	statuses := []models.RoomStatus{
		models.RoomStatusCheckout,
		models.RoomStatusAssigned,
		models.RoomStatusInCleaning,
		models.RoomStatusAvailable,
		models.RoomStatusMaintenance,
	}

	counts := make(map[string]int64, len(statuses))
	for _, status := range statuses {
		var count int64
		if err := j.db.SQL.WithContext(ctx).
			Model(&models.Room{}).
			Where("status = ?", status).
			Count(&count).Error; err != nil {
			return log.Err("failed to count rooms by status", err, "status", status)
		}
		counts[status.String()] = count
	}

	var messageCount int64
	if err := j.db.SQL.WithContext(ctx).
		Model(&models.Message{}).
		Count(&messageCount).Error; err != nil {
		return log.Err("failed to count escalation messages", err)
	}

	log.Info("Housekeeping digest",
		"checkout", counts[models.RoomStatusCheckout.String()],
		"assigned", counts[models.RoomStatusAssigned.String()],
		"inCleaning", counts[models.RoomStatusInCleaning.String()],
		"available", counts[models.RoomStatusAvailable.String()],
		"maintenance", counts[models.RoomStatusMaintenance.String()],
		"escalations", messageCount,
	)

	return nil
}
