package database

import (
	"fmt"

	"github.com/Eursukkul/parking-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates the schema and the constraints AutoMigrate cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		return fmt.Errorf("enable btree_gist: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Vehicle{},
		&models.ParkingSlot{},
		&models.Booking{},
		&models.Payment{},
		&models.VehicleEntry{},
		&models.Log{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	// Plates and slot numbers are unique among live rows only; older schemas
	// carried a full unique index.
	for _, idx := range []string{"idx_parking_slots_slot_number", "idx_vehicles_plate_number"} {
		if err := db.Exec("DROP INDEX IF EXISTS " + idx).Error; err != nil {
			return fmt.Errorf("drop index %s: %w", idx, err)
		}
	}

	// Active bookings of one slot may not overlap. Violations surface as SQLSTATE 23P01.
	if err := db.Exec(`
		DO $$
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'bookings_no_overlap') THEN
				ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap
				EXCLUDE USING gist (slot_id WITH =, tstzrange(start_time, end_time) WITH &&)
				WHERE (status IN ('PENDING', 'APPROVED'));
			END IF;
		END $$;
	`).Error; err != nil {
		return fmt.Errorf("create booking overlap constraint: %w", err)
	}

	return nil
}
