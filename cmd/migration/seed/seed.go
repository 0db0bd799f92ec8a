package seed

import (
	"fmt"
	"turnover/config"
	"turnover/internal/logger"
	"turnover/internal/models"

	"gorm.io/gorm"
)

// checklist is the default activity set applied to every seeded room.
var checklist = []models.Activity{
	{Label: "Strip beds", Category: "bedroom", Position: 0},
	{Label: "Make beds", Category: "bedroom", Position: 1},
	{Label: "Dust surfaces", Category: "bedroom", Position: 2},
	{Label: "Clear trash", Category: "bathroom", Position: 0},
	{Label: "Scrub shower", Category: "bathroom", Position: 1},
	{Label: "Restock towels", Category: "bathroom", Position: 2},
	{Label: "Vacuum floors", Category: "general", Position: 0},
	{Label: "Restock minibar", Category: "general", Position: 1},
	{Label: "Final inspection", Category: "general", Position: 2},
}

func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	workers := []models.Worker{
		{FirstName: "Maria", LastName: "Santos", Email: "maria.santos@example.com", Phone: "555-0101", Active: true},
		{FirstName: "James", LastName: "Okafor", Email: "james.okafor@example.com", Phone: "555-0102", Active: true},
		{FirstName: "Lena", LastName: "Kowalski", Email: "lena.kowalski@example.com", Phone: "555-0103", Active: true},
		{FirstName: "Tomas", LastName: "Rivera", Email: "tomas.rivera@example.com", Phone: "555-0104", Active: false},
	}

	for i := range workers {
		var existing models.Worker
		if err := db.First(&existing, "email = ?", workers[i].Email).Error; err == nil {
			log.Info("Worker already exists", "email", workers[i].Email)
			continue
		}
		if err := db.Create(&workers[i]).Error; err != nil {
			log.Er("failed to create worker", err, "email", workers[i].Email)
		}
	}

	roomTypes := []string{"standard", "standard", "deluxe", "suite"}
	for floor := 1; floor <= 3; floor++ {
		for i, roomType := range roomTypes {
			number := fmt.Sprintf("%d%02d", floor, i+1)

			var existing models.Room
			if err := db.First(&existing, "number = ?", number).Error; err == nil {
				log.Info("Room already exists", "number", number)
				continue
			}

			room := models.Room{
				Number: number,
				Type:   roomType,
				Floor:  floor,
				Status: models.RoomStatusCheckout,
			}
			for _, activity := range checklist {
				room.Activities = append(room.Activities, models.Activity{
					Label:    activity.Label,
					Category: activity.Category,
					Position: activity.Position,
				})
			}

			if err := db.Create(&room).Error; err != nil {
				log.Er("failed to create room", err, "number", number)
			}
		}
	}

	log.Info("Seeding complete")
	return nil
}
