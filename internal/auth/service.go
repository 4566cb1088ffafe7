package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/classgroups/classgroups/internal/db/models"
)

// Gate answers authorization questions for the engines.
type Gate interface {
	// RoleIn resolves the actor's role in a unit.
	RoleIn(ctx context.Context, actor *models.User, unitID uint) (Role, error)
	// Authorise reports whether the actor may perform action on the entity governed by policy.
	Authorise(ctx context.Context, actor *models.User, unitID uint, policy Policy, action Action) (bool, error)
}

// Service is the database backed Gate.
type Service struct {
	db *gorm.DB
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// RoleIn implements Gate.
func (s *Service) RoleIn(ctx context.Context, actor *models.User, unitID uint) (Role, error) {
	if actor == nil {
		return RoleNone, ErrNoActor
	}

	if actor.IsAdmin {
		return RoleAdmin, nil
	}

	db := s.db.WithContext(ctx)

	var ur models.UnitRole

	err := db.Where("unit_id = ? AND user_id = ?", unitID, actor.ID).First(&ur).Error

	switch {
	case err == nil:
		return Role(ur.Role), nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return RoleNone, fmt.Errorf("failed to look up unit role: %w", err)
	}

	var count int64

	err = db.Model(&models.Project{}).
		Where("unit_id = ? AND user_id = ?", unitID, actor.ID).
		Count(&count).Error
	if err != nil {
		return RoleNone, fmt.Errorf("failed to look up enrolment: %w", err)
	}

	if count > 0 {
		return RoleStudent, nil
	}

	return RoleNone, nil
}

// Authorise implements Gate.
func (s *Service) Authorise(
	ctx context.Context, actor *models.User, unitID uint, policy Policy, action Action,
) (bool, error) {
	role, err := s.RoleIn(ctx, actor, unitID)
	if err != nil {
		return false, err
	}

	if policy.Resolve(role, action) {
		return true, nil
	}

	log.Warn().
		Str("actor", actor.Username).
		Uint("unit_id", unitID).
		Str("role", string(role)).
		Str("action", string(action)).
		Type("policy", policy).
		Msg("action denied")

	return false, nil
}
