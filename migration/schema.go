package migration

import (
	"gorm.io/gorm"

	"github.com/arrendix/protecciones/internal/models"
)

// Schema returns the migrations that build the service's tables.
func Schema() []*Migration {
	return []*Migration{
		{
			Version: "20250301090000",
			Name:    "create_policies_and_actors",
			Up: func(db *gorm.DB) error {
				return db.AutoMigrate(
					&models.Policy{},
					&models.Tenant{},
					&models.Landlord{},
					&models.JointObligor{},
					&models.Aval{},
				)
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(
					&models.Aval{},
					&models.JointObligor{},
					&models.Landlord{},
					&models.Tenant{},
					&models.Policy{},
				)
			},
		},
		{
			Version: "20250301090100",
			Name:    "create_references_and_documents",
			Up: func(db *gorm.DB) error {
				return db.AutoMigrate(&models.Reference{}, &models.Document{})
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(&models.Document{}, &models.Reference{})
			},
		},
		{
			Version: "20250301090200",
			Name:    "create_policy_activities",
			Up: func(db *gorm.DB) error {
				return db.AutoMigrate(&models.PolicyActivity{})
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(&models.PolicyActivity{})
			},
		},
		{
			Version: "20250301090300",
			Name:    "create_payments",
			Up: func(db *gorm.DB) error {
				if err := db.AutoMigrate(&models.Payment{}); err != nil {
					return err
				}
				// one authoritative completed payment per policy
				return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_one_completed
					ON payments (policy_id) WHERE status = 'COMPLETED'`).Error
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(&models.Payment{})
			},
		},
	}
}
