package groups_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classgroups/classgroups/internal/db/controller/group"
	"github.com/classgroups/classgroups/internal/fault"
	"github.com/classgroups/classgroups/internal/groups"
)

func TestExportCSV(t *testing.T) {
	e := newEnv(t)
	gs := e.groupSet(t, groups.GroupSetParams{Name: "Teams"})
	p1 := e.Student(e.unit, "p1", e.t1)
	p2 := e.Student(e.unit, "p2", e.t1)

	a, err := e.svc.CreateGroup(e.ctx, e.tutor, e.unit.ID, gs.ID, "Alpha", e.t1.ID)
	require.NoError(t, err)
	_, err = e.svc.CreateGroup(e.ctx, e.tutor, e.unit.ID, gs.ID, "Beta", e.t2.ID)
	require.NoError(t, err)

	for _, id := range []uint{p1.ID, p2.ID} {
		_, err = e.svc.AddMember(e.ctx, e.tutor, e.unit.ID, gs.ID, a.ID, id)
		require.NoError(t, err)
	}

	_, err = e.svc.ExportCSV(e.ctx, e.tutor, e.unit.ID, gs.ID)
	require.ErrorIs(t, err, fault.ErrForbidden)
	assert.EqualError(t, err, "Not authorised to download csv of groups for this unit")

	out, err := e.svc.ExportCSV(e.ctx, e.convenor, e.unit.ID, gs.ID)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	assert.Equal(t, []string{
		"group_name,group_number,username,tutorial",
		"Alpha,1,p1,LA1-01",
		"Alpha,1,p2,LA1-01",
		"Beta,2,,LA1-02",
	}, lines)
}

func TestExportCSVEmptySet(t *testing.T) {
	e := newEnv(t)
	gs := e.groupSet(t, groups.GroupSetParams{Name: "Teams"})

	out, err := e.svc.ExportCSV(e.ctx, e.convenor, e.unit.ID, gs.ID)
	require.NoError(t, err)
	assert.Equal(t, "group_name,group_number,username,tutorial\n", string(out))
}

func TestImportCSV(t *testing.T) {
	e := newEnv(t)
	gs := e.groupSet(t, groups.GroupSetParams{Name: "Teams", KeepGroupsInSameClass: true})
	e.Student(e.unit, "p1", e.t1)
	e.Student(e.unit, "p2", e.t1)
	e.Student(e.unit, "p3", e.t2)

	data := strings.Join([]string{
		"group_name,username,tutorial",
		"Team X,p1,LA1-01",
		"Team X,p2,LA1-01",
		"Team X,p3,LA1-01",
		"Team Y,ghost,LA1-02",
		"Team Z,,LA9-99",
		",p1,LA1-01",
		"Team Y,,LA1-02",
		"Team X,p1,",
	}, "\n") + "\n"

	_, err := e.svc.ImportCSV(e.ctx, e.tutor, e.unit.ID, gs.ID, []byte(data))
	require.ErrorIs(t, err, fault.ErrForbidden)

	report, err := e.svc.ImportCSV(e.ctx, e.convenor, e.unit.ID, gs.ID, []byte(data))
	require.NoError(t, err)
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, 8, report.Rows)
	assert.Equal(t, 2, report.GroupsCreated, "Team X once, Team Y once")
	assert.Equal(t, 2, report.MembersAdded)

	rows := make([]int, 0, len(report.Errors))
	for _, re := range report.Errors {
		rows = append(rows, re.Row)
	}

	assert.Equal(t, []int{4, 5, 6, 7}, rows)
	assert.Equal(t, "Students from the tutorial 'LA1-01' can only be added to this group.", report.Errors[0].Message)

	kept, err := e.svc.ImportReportByID(e.ctx, e.convenor, e.unit.ID, gs.ID, report.ID)
	require.NoError(t, err)
	assert.Equal(t, report, kept)

	_, err = e.svc.ImportReportByID(e.ctx, e.convenor, e.unit.ID, gs.ID, "unknown")
	require.ErrorIs(t, err, fault.ErrNotFound)

	summaries, err := group.List(e.DB, gs.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "Team X", summaries[0].Name)
	assert.Equal(t, int64(2), summaries[0].MemberCount)
	assert.Equal(t, "Team Y", summaries[1].Name)
	assert.Zero(t, summaries[1].MemberCount)
}

func TestImportCSVRoundTrip(t *testing.T) {
	e := newEnv(t)
	source := e.groupSet(t, groups.GroupSetParams{Name: "Source"})
	target := e.groupSet(t, groups.GroupSetParams{Name: "Target"})
	p1 := e.Student(e.unit, "p1", e.t1)
	e.Student(e.unit, "p2", e.t2)

	g, err := e.svc.CreateGroup(e.ctx, e.tutor, e.unit.ID, source.ID, "Alpha", e.t1.ID)
	require.NoError(t, err)
	_, err = e.svc.AddMember(e.ctx, e.tutor, e.unit.ID, source.ID, g.ID, p1.ID)
	require.NoError(t, err)
	_, err = e.svc.CreateGroup(e.ctx, e.tutor, e.unit.ID, source.ID, "Beta", e.t2.ID)
	require.NoError(t, err)

	out, err := e.svc.ExportCSV(e.ctx, e.convenor, e.unit.ID, source.ID)
	require.NoError(t, err)

	report, err := e.svc.ImportCSV(e.ctx, e.convenor, e.unit.ID, target.ID, out)
	require.NoError(t, err)
	assert.Empty(t, report.Errors)
	assert.Equal(t, 2, report.GroupsCreated)
	assert.Equal(t, 1, report.MembersAdded)

	again, err := e.svc.ExportCSV(e.ctx, e.convenor, e.unit.ID, target.ID)
	require.NoError(t, err)
	assert.Equal(t, string(out), string(again))

	report, err = e.svc.ImportCSV(e.ctx, e.convenor, e.unit.ID, target.ID, out)
	require.NoError(t, err)
	assert.Empty(t, report.Errors, "importing twice is idempotent")
	assert.Zero(t, report.GroupsCreated)
	assert.Zero(t, report.MembersAdded)
}

func TestImportCSVRejectsFile(t *testing.T) {
	e := newEnv(t)
	gs := e.groupSet(t, groups.GroupSetParams{Name: "Teams"})

	testCases := []struct {
		name string
		data string
	}{
		{name: "empty", data: ""},
		{name: "missing username column", data: "group_name,tutorial\nTeam X,LA1-01\n"},
		{name: "binary", data: "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.svc.ImportCSV(e.ctx, e.convenor, e.unit.ID, gs.ID, []byte(tc.data))
			require.ErrorIs(t, err, fault.ErrValidationFailed)
		})
	}
}

func TestImportCSVTutorialMismatch(t *testing.T) {
	e := newEnv(t)
	gs := e.groupSet(t, groups.GroupSetParams{Name: "Teams"})

	g, err := e.svc.CreateGroup(e.ctx, e.tutor, e.unit.ID, gs.ID, "A", e.t1.ID)
	require.NoError(t, err)

	data := "group_name,username,tutorial\nA,,LA1-02\nA,,LA1-01\n"

	report, err := e.svc.ImportCSV(e.ctx, e.convenor, e.unit.ID, gs.ID, []byte(data))
	require.NoError(t, err)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 2, report.Errors[0].Row)
	assert.Equal(t, "Group A is in the tutorial 'LA1-01', not 'LA1-02'", report.Errors[0].Message)
	assert.Zero(t, report.GroupsCreated)

	kept, err := group.Get(e.DB, gs.ID, g.ID)
	require.NoError(t, err)
	assert.Equal(t, e.t1.ID, kept.TutorialID)
}
