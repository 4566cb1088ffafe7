package groups

import (
	"context"

	"github.com/classgroups/classgroups/internal/auth"
	"github.com/classgroups/classgroups/internal/db/controller/group"
	"github.com/classgroups/classgroups/internal/db/controller/unit"
	"github.com/classgroups/classgroups/internal/db/models"
)

// CreateGroup adds a group to a set. A blank name becomes "Group {n}".
func (s *Service) CreateGroup(
	ctx context.Context, actor *models.User, unitID, groupSetID uint, name string, tutorialID uint,
) (g *models.Group, err error) {
	var sc *scope

	defer func() { done("group_create", actor, sc, err) }()

	db := s.db.WithContext(ctx)

	if sc, err = s.resolveSet(db, unitID, groupSetID); err != nil {
		return nil, err
	}

	tutorial, err := unit.Tutorial(db, sc.unit.ID, tutorialID)
	if err != nil {
		return nil, err
	}

	err = s.authorise(ctx, actor, sc.unit.ID, auth.GroupSetPolicy{GroupSet: sc.groupSet}, auth.ActionCreateGroup,
		"Not authorised to create a group for this unit")
	if err != nil {
		return nil, err
	}

	if g, err = group.Create(db, sc.groupSet.ID, name, tutorial.ID); err != nil {
		return nil, err
	}

	g.Tutorial = *tutorial
	sc.group = g

	return g, nil
}

// UpdateGroup renames a group or moves it to another tutorial of the unit.
func (s *Service) UpdateGroup(
	ctx context.Context, actor *models.User, unitID, groupSetID, groupID uint, changes group.Changes,
) (g *models.Group, err error) {
	var sc *scope

	defer func() { done("group_update", actor, sc, err) }()

	db := s.db.WithContext(ctx)

	if sc, err = s.resolveGroup(db, unitID, groupSetID, groupID); err != nil {
		return nil, err
	}

	err = s.authorise(ctx, actor, sc.unit.ID, auth.GroupPolicy{GroupSet: sc.groupSet}, auth.ActionManageGroup,
		"Not authorised to update this group")
	if err != nil {
		return nil, err
	}

	if changes.TutorialID != nil {
		if _, err = unit.Tutorial(db, sc.unit.ID, *changes.TutorialID); err != nil {
			return nil, err
		}
	}

	if err = group.Update(db, sc.group, changes); err != nil {
		return nil, err
	}

	return sc.group, nil
}

// DeleteGroup removes a group and its membership log.
// Actors without staff rights may only delete an empty group or one where they are the sole member.
func (s *Service) DeleteGroup(ctx context.Context, actor *models.User, unitID, groupSetID, groupID uint) (err error) {
	var sc *scope

	defer func() { done("group_delete", actor, sc, err) }()

	db := s.db.WithContext(ctx)

	if sc, err = s.resolveGroup(db, unitID, groupSetID, groupID); err != nil {
		return err
	}

	err = s.authorise(ctx, actor, sc.unit.ID, auth.GroupPolicy{GroupSet: sc.groupSet}, auth.ActionManageGroup,
		"Not authorised to delete group set for this unit")
	if err != nil {
		return err
	}

	role, err := s.gate.RoleIn(ctx, actor, sc.unit.ID)
	if err != nil {
		return err
	}

	var soleMember *uint64
	if !role.IsStaff() {
		soleMember = &actor.ID
	}

	return group.Delete(db, sc.group, soleMember)
}
