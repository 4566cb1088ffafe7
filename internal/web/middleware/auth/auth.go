package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/classgroups/classgroups/internal/db/controller/unit"
	"github.com/classgroups/classgroups/internal/db/models"
	"github.com/classgroups/classgroups/internal/web/session"
)

const actorKey = "actor"

// New returns the middleware resolving the acting user.
func New(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(session.CookieName)
		if sessionID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		sessData := new(session.Data)
		if err := sessData.Read(sessionID); err != nil || sessData.User.ID == 0 {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		user, err := unit.UserByID(db.WithContext(c.UserContext()), sessData.User.ID)
		if err != nil {
			log.Warn().Err(err).Uint64("user_id", sessData.User.ID).Msg("session user is gone")
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		c.Locals(actorKey, user)

		return c.Next()
	}
}

// Actor returns the user resolved by the middleware, or nil.
func Actor(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(actorKey).(*models.User)
	return user
}
