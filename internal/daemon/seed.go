package daemon

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/classgroups/classgroups/internal/db/models"
)

// seed creates the admin user on an empty database.
func seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return errors.Wrap(err, "failed to count users")
	}

	if count > 0 {
		return nil
	}

	admin := &models.User{Username: "admin", FirstName: "System", LastName: "Administrator", IsAdmin: true}
	if err := db.Create(admin).Error; err != nil {
		return errors.Wrap(err, "failed to seed admin user")
	}

	log.Info().Str("username", admin.Username).Msg("seeded admin user")

	return nil
}
