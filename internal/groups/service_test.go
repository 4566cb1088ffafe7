package groups_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classgroups/classgroups/internal/auth"
	"github.com/classgroups/classgroups/internal/db/controller/group"
	"github.com/classgroups/classgroups/internal/db/controller/groupset"
	"github.com/classgroups/classgroups/internal/db/dbtest"
	"github.com/classgroups/classgroups/internal/db/models"
	"github.com/classgroups/classgroups/internal/fault"
	"github.com/classgroups/classgroups/internal/groups"
)

type env struct {
	*dbtest.Fixture
	ctx      context.Context
	svc      *groups.Service
	unit     *models.Unit
	t1       *models.Tutorial
	t2       *models.Tutorial
	convenor *models.User
	tutor    *models.User
}

func newEnv(t *testing.T) *env {
	t.Helper()

	f := dbtest.NewFixture(t)
	unit := f.Unit("COS10001")
	convenor := f.User("convenor")
	tutor := f.User("tutor")

	f.Staff(unit, convenor, models.UnitRoleConvenor)
	f.Staff(unit, tutor, models.UnitRoleTutor)

	return &env{
		Fixture:  f,
		ctx:      context.Background(),
		svc:      groups.NewService(f.DB, auth.NewService(f.DB)),
		unit:     unit,
		t1:       f.Tutorial(unit, "LA1-01"),
		t2:       f.Tutorial(unit, "LA1-02"),
		convenor: convenor,
		tutor:    tutor,
	}
}

func (e *env) groupSet(t *testing.T, params groups.GroupSetParams) *models.GroupSet {
	t.Helper()

	gs, err := e.svc.CreateGroupSet(e.ctx, e.convenor, e.unit.ID, params)
	require.NoError(t, err)

	return gs
}

func TestLabGroupsScenario(t *testing.T) {
	e := newEnv(t)
	gs := e.groupSet(t, groups.GroupSetParams{Name: "Lab Groups", KeepGroupsInSameClass: true})
	p1 := e.Student(e.unit, "p1", e.t1)
	p2 := e.Student(e.unit, "p2", e.t2)

	g, err := e.svc.CreateGroup(e.ctx, e.tutor, e.unit.ID, gs.ID, "Team A", e.t1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Number)

	_, err = e.svc.AddMember(e.ctx, e.tutor, e.unit.ID, gs.ID, g.ID, p1.ID)
	require.NoError(t, err)

	_, err = e.svc.AddMember(e.ctx, e.tutor, e.unit.ID, gs.ID, g.ID, p2.ID)
	require.ErrorIs(t, err, fault.ErrConflict)

	_, err = e.svc.UpdateGroup(e.ctx, e.tutor, e.unit.ID, gs.ID, g.ID, group.Changes{TutorialID: &e.t2.ID})
	require.ErrorIs(t, err, fault.ErrConflict)

	require.NoError(t, e.svc.RemoveMember(e.ctx, e.tutor, e.unit.ID, gs.ID, g.ID, p1.ID))

	updated, err := e.svc.UpdateGroup(e.ctx, e.tutor, e.unit.ID, gs.ID, g.ID, group.Changes{TutorialID: &e.t2.ID})
	require.NoError(t, err)
	assert.Equal(t, e.t2.ID, updated.TutorialID)
}

func TestGroupSetLifecycle(t *testing.T) {
	e := newEnv(t)
	other := e.Unit("COS20007")

	_, err := e.svc.CreateGroupSet(e.ctx, e.tutor, e.unit.ID, groups.GroupSetParams{Name: "Teams"})
	require.ErrorIs(t, err, fault.ErrForbidden)
	assert.EqualError(t, err, "Not authorised to create a group set for this unit")

	_, err = e.svc.CreateGroupSet(e.ctx, e.convenor, e.unit.ID, groups.GroupSetParams{})
	require.ErrorIs(t, err, fault.ErrValidationFailed)

	_, err = e.svc.CreateGroupSet(e.ctx, e.convenor, 999, groups.GroupSetParams{Name: "Teams"})
	require.ErrorIs(t, err, fault.ErrNotFound)

	gs := e.groupSet(t, groups.GroupSetParams{Name: "Teams"})
	assert.False(t, gs.AllowStudentsToCreateGroups)
	assert.False(t, gs.KeepGroupsInSameClass)

	name := "Project Teams"
	open := true

	_, err = e.svc.UpdateGroupSet(e.ctx, e.convenor, other.ID, gs.ID, groupset.Changes{Name: &name})
	require.ErrorIs(t, err, fault.ErrNotFound, "group set of another unit")

	_, err = e.svc.UpdateGroupSet(e.ctx, e.tutor, e.unit.ID, gs.ID, groupset.Changes{Name: &name})
	require.ErrorIs(t, err, fault.ErrForbidden)

	gs, err = e.svc.UpdateGroupSet(e.ctx, e.convenor, e.unit.ID, gs.ID,
		groupset.Changes{Name: &name, AllowStudentsToCreateGroups: &open})
	require.NoError(t, err)
	assert.Equal(t, "Project Teams", gs.Name)
	assert.True(t, gs.AllowStudentsToCreateGroups)

	g, err := e.svc.CreateGroup(e.ctx, e.tutor, e.unit.ID, gs.ID, "", e.t1.ID)
	require.NoError(t, err)
	_, err = e.svc.AddMember(e.ctx, e.tutor, e.unit.ID, gs.ID, g.ID, e.Student(e.unit, "p1", e.t1).ID)
	require.NoError(t, err)

	require.ErrorIs(t, e.svc.DeleteGroupSet(e.ctx, e.tutor, e.unit.ID, gs.ID), fault.ErrForbidden)
	require.NoError(t, e.svc.DeleteGroupSet(e.ctx, e.convenor, e.unit.ID, gs.ID))

	var n int64
	require.NoError(t, e.DB.Model(&models.GroupMembership{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, e.DB.Model(&models.Group{}).Count(&n).Error)
	assert.Zero(t, n)

	require.ErrorIs(t, e.svc.DeleteGroupSet(e.ctx, e.convenor, e.unit.ID, gs.ID), fault.ErrNotFound)
}

func TestStudentGroupCreation(t *testing.T) {
	e := newEnv(t)
	closed := e.groupSet(t, groups.GroupSetParams{Name: "Closed"})
	open := e.groupSet(t, groups.GroupSetParams{Name: "Open", AllowStudentsToCreateGroups: true})
	student := e.Student(e.unit, "stud", e.t1).Student
	outsider := e.User("outsider")

	_, err := e.svc.CreateGroup(e.ctx, &student, e.unit.ID, closed.ID, "Mine", e.t1.ID)
	require.ErrorIs(t, err, fault.ErrForbidden)

	g, err := e.svc.CreateGroup(e.ctx, &student, e.unit.ID, open.ID, "Mine", e.t1.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", g.Name)

	_, err = e.svc.CreateGroup(e.ctx, outsider, e.unit.ID, open.ID, "Theirs", e.t1.ID)
	require.ErrorIs(t, err, fault.ErrForbidden)

	_, err = e.svc.CreateGroup(e.ctx, &student, e.unit.ID, open.ID, "Mine", e.t1.ID)
	require.ErrorIs(t, err, fault.ErrConflict)
	assert.EqualError(t, err, "This group name is not unique to the Open group set.")

	_, err = e.svc.CreateGroup(e.ctx, e.tutor, e.unit.ID, open.ID, "Other", 999)
	require.ErrorIs(t, err, fault.ErrNotFound)

	list, err := e.svc.ListGroups(e.ctx, &student, e.unit.ID, open.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Mine", list[0].Name)

	_, err = e.svc.ListGroups(e.ctx, outsider, e.unit.ID, open.ID)
	require.ErrorIs(t, err, fault.ErrForbidden)
}

func TestNumberingIsIncreasing(t *testing.T) {
	e := newEnv(t)
	gs := e.groupSet(t, groups.GroupSetParams{Name: "Teams"})

	var last int

	for i := 1; i <= 4; i++ {
		g, err := e.svc.CreateGroup(e.ctx, e.tutor, e.unit.ID, gs.ID, "", e.t1.ID)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, g.Number, i)
		assert.Greater(t, g.Number, last)

		if i == 2 {
			require.NoError(t, e.svc.DeleteGroup(e.ctx, e.tutor, e.unit.ID, gs.ID, g.ID))
		}

		last = g.Number
	}
}

func TestStudentDelete(t *testing.T) {
	e := newEnv(t)
	gs := e.groupSet(t, groups.GroupSetParams{
		Name: "Self managed", AllowStudentsToCreateGroups: true, AllowStudentsToManageGroups: true,
	})
	p1 := e.Student(e.unit, "p1", e.t1)
	p2 := e.Student(e.unit, "p2", e.t1)
	s1 := p1.Student
	s2 := p2.Student

	t.Run("sole member may delete", func(t *testing.T) {
		g, err := e.svc.CreateGroup(e.ctx, &s1, e.unit.ID, gs.ID, "Solo", e.t1.ID)
		require.NoError(t, err)
		_, err = e.svc.AddMember(e.ctx, &s1, e.unit.ID, gs.ID, g.ID, p1.ID)
		require.NoError(t, err)

		err = e.svc.DeleteGroup(e.ctx, &s2, e.unit.ID, gs.ID, g.ID)
		require.ErrorIs(t, err, fault.ErrConflict)
		assert.EqualError(t, err, "You cannot delete this group")

		require.NoError(t, e.svc.DeleteGroup(e.ctx, &s1, e.unit.ID, gs.ID, g.ID))
	})

	t.Run("group with members", func(t *testing.T) {
		g, err := e.svc.CreateGroup(e.ctx, &s1, e.unit.ID, gs.ID, "Pair", e.t1.ID)
		require.NoError(t, err)
		_, err = e.svc.AddMember(e.ctx, &s1, e.unit.ID, gs.ID, g.ID, p1.ID)
		require.NoError(t, err)
		_, err = e.svc.AddMember(e.ctx, &s2, e.unit.ID, gs.ID, g.ID, p2.ID)
		require.NoError(t, err)

		err = e.svc.DeleteGroup(e.ctx, &s1, e.unit.ID, gs.ID, g.ID)
		require.ErrorIs(t, err, fault.ErrConflict)
		assert.EqualError(t, err, "You cannot delete a group with members")

		require.NoError(t, e.svc.DeleteGroup(e.ctx, e.tutor, e.unit.ID, gs.ID, g.ID))
	})

	t.Run("empty group", func(t *testing.T) {
		g, err := e.svc.CreateGroup(e.ctx, &s1, e.unit.ID, gs.ID, "Empty", e.t1.ID)
		require.NoError(t, err)

		require.NoError(t, e.svc.DeleteGroup(e.ctx, &s2, e.unit.ID, gs.ID, g.ID))
	})
}

func TestStudentMembershipRights(t *testing.T) {
	e := newEnv(t)
	closed := e.groupSet(t, groups.GroupSetParams{Name: "Closed"})
	managed := e.groupSet(t, groups.GroupSetParams{Name: "Managed", AllowStudentsToManageGroups: true})
	p1 := e.Student(e.unit, "p1", e.t1)
	p2 := e.Student(e.unit, "p2", e.t1)
	s1 := p1.Student

	gClosed, err := e.svc.CreateGroup(e.ctx, e.tutor, e.unit.ID, closed.ID, "", e.t1.ID)
	require.NoError(t, err)
	gManaged, err := e.svc.CreateGroup(e.ctx, e.tutor, e.unit.ID, managed.ID, "", e.t1.ID)
	require.NoError(t, err)

	_, err = e.svc.AddMember(e.ctx, &s1, e.unit.ID, closed.ID, gClosed.ID, p1.ID)
	require.ErrorIs(t, err, fault.ErrForbidden)
	assert.EqualError(t, err, "Not authorised to manage this group")

	_, err = e.svc.AddMember(e.ctx, &s1, e.unit.ID, managed.ID, gManaged.ID, p2.ID)
	require.ErrorIs(t, err, fault.ErrForbidden)
	assert.EqualError(t, err, "Not authorised to manage this student")

	view, err := e.svc.AddMember(e.ctx, &s1, e.unit.ID, managed.ID, gManaged.ID, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, "p1", view.Username)
	assert.Equal(t, "p1@example.edu", view.Email)

	_, err = e.svc.AddMember(e.ctx, &s1, e.unit.ID, managed.ID, gManaged.ID, p1.ID)
	require.ErrorIs(t, err, fault.ErrConflict)
	assert.EqualError(t, err, "p1 Tester is already a member of this group")

	err = e.svc.RemoveMember(e.ctx, e.tutor, e.unit.ID, managed.ID, gManaged.ID, p2.ID)
	require.ErrorIs(t, err, fault.ErrNotFound)
	assert.EqualError(t, err, "p2 Tester is not a member of this group")

	require.NoError(t, e.svc.RemoveMember(e.ctx, &s1, e.unit.ID, managed.ID, gManaged.ID, p1.ID))
	_, err = e.svc.AddMember(e.ctx, &s1, e.unit.ID, managed.ID, gManaged.ID, p1.ID)
	require.NoError(t, err)

	history, err := group.Memberships(e.DB, gManaged.ID, p1.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.False(t, history[0].Active)
	assert.True(t, history[1].Active)
}

func TestMembersView(t *testing.T) {
	e := newEnv(t)
	gs := e.groupSet(t, groups.GroupSetParams{Name: "Teams"})
	p1 := e.Student(e.unit, "p1", e.t1)
	p2 := e.Student(e.unit, "p2", e.t1)
	s2 := p2.Student

	g, err := e.svc.CreateGroup(e.ctx, e.tutor, e.unit.ID, gs.ID, "", e.t1.ID)
	require.NoError(t, err)

	for _, p := range []*models.Project{p1, p2} {
		_, err = e.svc.AddMember(e.ctx, e.tutor, e.unit.ID, gs.ID, g.ID, p.ID)
		require.NoError(t, err)
	}

	staffView, err := e.svc.Members(e.ctx, e.tutor, e.unit.ID, gs.ID, g.ID)
	require.NoError(t, err)
	require.Len(t, staffView, 2)
	assert.Equal(t, "p1@example.edu", staffView[0].Email)
	assert.Equal(t, "p2@example.edu", staffView[1].Email)
	assert.Equal(t, "LA1-01", staffView[0].Tutorial)

	studentView, err := e.svc.Members(e.ctx, &s2, e.unit.ID, gs.ID, g.ID)
	require.NoError(t, err)
	require.Len(t, studentView, 2)
	assert.Empty(t, studentView[0].Email, "other students' email is hidden")
	assert.Equal(t, "p2@example.edu", studentView[1].Email)

	_, err = e.svc.Members(e.ctx, e.User("outsider"), e.unit.ID, gs.ID, g.ID)
	require.ErrorIs(t, err, fault.ErrForbidden)
}

func TestUpdateGroupRename(t *testing.T) {
	e := newEnv(t)
	gs := e.groupSet(t, groups.GroupSetParams{Name: "Teams"})

	a, err := e.svc.CreateGroup(e.ctx, e.tutor, e.unit.ID, gs.ID, "A", e.t1.ID)
	require.NoError(t, err)
	_, err = e.svc.CreateGroup(e.ctx, e.tutor, e.unit.ID, gs.ID, "B", e.t1.ID)
	require.NoError(t, err)

	b := "B"
	_, err = e.svc.UpdateGroup(e.ctx, e.tutor, e.unit.ID, gs.ID, a.ID, group.Changes{Name: &b})
	require.ErrorIs(t, err, fault.ErrConflict)

	c := "C"
	renamed, err := e.svc.UpdateGroup(e.ctx, e.tutor, e.unit.ID, gs.ID, a.ID, group.Changes{Name: &c})
	require.NoError(t, err)
	assert.Equal(t, "C", renamed.Name)

	missing := uint(999)
	_, err = e.svc.UpdateGroup(e.ctx, e.tutor, e.unit.ID, gs.ID, a.ID, group.Changes{TutorialID: &missing})
	require.ErrorIs(t, err, fault.ErrNotFound)

	student := e.Student(e.unit, "stud", e.t1).Student
	_, err = e.svc.UpdateGroup(e.ctx, &student, e.unit.ID, gs.ID, a.ID, group.Changes{Name: &b})
	require.ErrorIs(t, err, fault.ErrForbidden)
}
