package groups

import (
	"context"

	"github.com/classgroups/classgroups/internal/auth"
	"github.com/classgroups/classgroups/internal/db/controller/group"
	"github.com/classgroups/classgroups/internal/db/controller/groupset"
	"github.com/classgroups/classgroups/internal/db/controller/unit"
	"github.com/classgroups/classgroups/internal/db/models"
)

// GroupSetParams configures a new group set. Flags default to false.
type GroupSetParams struct {
	Name                        string
	AllowStudentsToCreateGroups bool
	AllowStudentsToManageGroups bool
	KeepGroupsInSameClass       bool
}

// CreateGroupSet adds a group set to the unit.
func (s *Service) CreateGroupSet(
	ctx context.Context, actor *models.User, unitID uint, params GroupSetParams,
) (gs *models.GroupSet, err error) {
	var sc *scope

	defer func() { done("group_set_create", actor, sc, err) }()

	db := s.db.WithContext(ctx)

	u, err := unit.Get(db, unitID)
	if err != nil {
		return nil, err
	}

	sc = &scope{unit: u}

	err = s.authorise(ctx, actor, u.ID, auth.UnitPolicy{}, auth.ActionUpdate,
		"Not authorised to create a group set for this unit")
	if err != nil {
		return nil, err
	}

	gs = &models.GroupSet{
		UnitID:                      u.ID,
		Name:                        params.Name,
		AllowStudentsToCreateGroups: params.AllowStudentsToCreateGroups,
		AllowStudentsToManageGroups: params.AllowStudentsToManageGroups,
		KeepGroupsInSameClass:       params.KeepGroupsInSameClass,
	}

	if err = groupset.Create(db, gs); err != nil {
		return nil, err
	}

	sc.groupSet = gs

	return gs, nil
}

// UpdateGroupSet changes the supplied fields of a group set.
func (s *Service) UpdateGroupSet(
	ctx context.Context, actor *models.User, unitID, groupSetID uint, changes groupset.Changes,
) (gs *models.GroupSet, err error) {
	var sc *scope

	defer func() { done("group_set_update", actor, sc, err) }()

	db := s.db.WithContext(ctx)

	if sc, err = s.resolveSet(db, unitID, groupSetID); err != nil {
		return nil, err
	}

	err = s.authorise(ctx, actor, sc.unit.ID, auth.UnitPolicy{}, auth.ActionUpdate,
		"Not authorised to update group set for this unit")
	if err != nil {
		return nil, err
	}

	if err = groupset.Update(db, sc.groupSet, changes); err != nil {
		return nil, err
	}

	return sc.groupSet, nil
}

// DeleteGroupSet removes a group set with all its groups and memberships.
func (s *Service) DeleteGroupSet(ctx context.Context, actor *models.User, unitID, groupSetID uint) (err error) {
	var sc *scope

	defer func() { done("group_set_delete", actor, sc, err) }()

	db := s.db.WithContext(ctx)

	if sc, err = s.resolveSet(db, unitID, groupSetID); err != nil {
		return err
	}

	err = s.authorise(ctx, actor, sc.unit.ID, auth.UnitPolicy{}, auth.ActionUpdate,
		"Not authorised to delete group set for this unit")
	if err != nil {
		return err
	}

	return groupset.Delete(db, sc.groupSet)
}

// ListGroups returns the groups of a set ordered by number with their member counts.
func (s *Service) ListGroups(
	ctx context.Context, actor *models.User, unitID, groupSetID uint,
) (out []group.Summary, err error) {
	var sc *scope

	defer func() { done("group_list", actor, sc, err) }()

	db := s.db.WithContext(ctx)

	if sc, err = s.resolveSet(db, unitID, groupSetID); err != nil {
		return nil, err
	}

	err = s.authorise(ctx, actor, sc.unit.ID, auth.GroupSetPolicy{GroupSet: sc.groupSet}, auth.ActionGetGroups,
		"Not authorised to get groups for this unit")
	if err != nil {
		return nil, err
	}

	return group.List(db, sc.groupSet.ID)
}
