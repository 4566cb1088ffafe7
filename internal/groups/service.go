// Package groups is the group membership engine.
//
// Every operation resolves its target entities within the stated unit, asks
// the authorization gate, validates the domain rules and only then mutates.
// Errors are classified with the fault package.
package groups

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/classgroups/classgroups/internal/auth"
	"github.com/classgroups/classgroups/internal/db/controller/group"
	"github.com/classgroups/classgroups/internal/db/controller/groupset"
	"github.com/classgroups/classgroups/internal/db/controller/unit"
	"github.com/classgroups/classgroups/internal/db/models"
	"github.com/classgroups/classgroups/internal/fault"
	"github.com/classgroups/classgroups/internal/metrics"
)

// Service runs group set, group and membership operations.
type Service struct {
	db   *gorm.DB
	gate auth.Gate
}

// NewService creates a new group engine.
func NewService(db *gorm.DB, gate auth.Gate) *Service {
	return &Service{db: db, gate: gate}
}

// scope holds the entities an operation resolved.
type scope struct {
	unit     *models.Unit
	groupSet *models.GroupSet
	group    *models.Group
}

func (s *Service) resolveSet(db *gorm.DB, unitID, groupSetID uint) (*scope, error) {
	u, err := unit.Get(db, unitID)
	if err != nil {
		return nil, err
	}

	gs, err := groupset.Get(db, u.ID, groupSetID)
	if err != nil {
		return nil, err
	}

	return &scope{unit: u, groupSet: gs}, nil
}

func (s *Service) resolveGroup(db *gorm.DB, unitID, groupSetID, groupID uint) (*scope, error) {
	sc, err := s.resolveSet(db, unitID, groupSetID)
	if err != nil {
		return nil, err
	}

	sc.group, err = group.Get(db, sc.groupSet.ID, groupID)
	if err != nil {
		return nil, err
	}

	return sc, nil
}

// authorise turns a denial into a Forbidden failure carrying denied.
func (s *Service) authorise(
	ctx context.Context, actor *models.User, unitID uint, policy auth.Policy, action auth.Action, denied string,
) error {
	ok, err := s.gate.Authorise(ctx, actor, unitID, policy, action)
	if err != nil {
		return err
	}

	if !ok {
		return fault.Forbidden("%s", denied)
	}

	return nil
}

// done counts the operation and logs its outcome.
func done(op string, actor *models.User, sc *scope, err error) {
	metrics.Observe(op, err)

	var ev *zerolog.Event

	switch fault.KindOf(err) {
	case nil:
		if err != nil {
			ev = log.Error().Err(err)
		} else {
			ev = log.Info()
		}
	case fault.ErrForbidden:
		ev = log.Warn().Err(err)
	default:
		ev = log.Debug().Err(err)
	}

	if actor != nil {
		ev = ev.Str("actor", actor.Username)
	}

	if sc != nil && sc.unit != nil {
		ev = ev.Str("unit", sc.unit.Code)
	}

	if sc != nil && sc.groupSet != nil {
		ev = ev.Uint("group_set_id", sc.groupSet.ID)
	}

	if sc != nil && sc.group != nil {
		ev = ev.Uint("group_id", sc.group.ID)
	}

	ev.Str("operation", op).Msg("group engine")
}
