package similarity_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classgroups/classgroups/internal/auth"
	"github.com/classgroups/classgroups/internal/db/dbtest"
	"github.com/classgroups/classgroups/internal/db/models"
	"github.com/classgroups/classgroups/internal/evidence"
	"github.com/classgroups/classgroups/internal/fault"
	"github.com/classgroups/classgroups/internal/similarity"
)

type env struct {
	*dbtest.Fixture
	ctx   context.Context
	fs    afero.Fs
	svc   *similarity.Service
	unit  *models.Unit
	tutor *models.User
}

func newEnv(t *testing.T) *env {
	t.Helper()

	f := dbtest.NewFixture(t)
	fs := afero.NewMemMapFs()
	unit := f.Unit("COS10001")
	tutor := f.User("tutor")
	f.Staff(unit, tutor, models.UnitRoleTutor)

	return &env{
		Fixture: f,
		ctx:     context.Background(),
		fs:      fs,
		svc:     similarity.NewService(f.DB, auth.NewService(f.DB), evidence.NewWithFs(fs)),
		unit:    unit,
		tutor:   tutor,
	}
}

func (e *env) exists(t *testing.T, key string) bool {
	t.Helper()

	ok, err := afero.Exists(e.fs, key)
	require.NoError(t, err)

	return ok
}

func (e *env) maxPct(t *testing.T, task *models.Task) int {
	t.Helper()

	var reloaded models.Task
	require.NoError(t, e.DB.First(&reloaded, task.ID).Error)

	return reloaded.MaxPctSimilar
}

func TestCreatePair(t *testing.T) {
	e := newEnv(t)
	a := e.Task(e.Student(e.unit, "a", nil), nil)
	b := e.Task(e.Student(e.unit, "b", nil), nil)

	link, err := e.svc.CreatePair(e.ctx, e.tutor, e.unit.ID, similarity.PairInput{
		TaskID: a.ID, OtherTaskID: b.ID, Pct: 65, Report: []byte("a vs b"), OtherReport: []byte("b vs a"),
	})
	require.NoError(t, err)
	assert.Equal(t, a.ID, link.TaskID)
	assert.Equal(t, 65, e.maxPct(t, a))
	assert.Equal(t, 65, e.maxPct(t, b))

	content, err := afero.ReadFile(e.fs, evidence.Key(a, b.ID))
	require.NoError(t, err)
	assert.Equal(t, "a vs b", string(content))

	content, err = e.svc.Evidence(e.ctx, e.tutor, e.unit.ID, link.ID)
	require.NoError(t, err)
	assert.Equal(t, "a vs b", string(content))

	assert.True(t, e.exists(t, evidence.Key(b, a.ID)))

	student := e.User("student")
	_, err = e.svc.CreatePair(e.ctx, student, e.unit.ID, similarity.PairInput{TaskID: a.ID, OtherTaskID: b.ID})
	require.ErrorIs(t, err, fault.ErrForbidden)

	foreign := e.Task(e.Student(e.Unit("COS20007"), "c", nil), nil)
	_, err = e.svc.CreatePair(e.ctx, e.tutor, e.unit.ID, similarity.PairInput{TaskID: a.ID, OtherTaskID: foreign.ID})
	require.ErrorIs(t, err, fault.ErrNotFound)
}

func TestDismissPair(t *testing.T) {
	e := newEnv(t)
	pa := e.Student(e.unit, "a", nil)
	a := e.Task(pa, nil)
	b := e.Task(e.Student(e.unit, "b", nil), nil)

	link, err := e.svc.CreatePair(e.ctx, e.tutor, e.unit.ID, similarity.PairInput{TaskID: a.ID, OtherTaskID: b.ID, Pct: 80})
	require.NoError(t, err)

	_, err = e.svc.DismissPair(e.ctx, &pa.Student, e.unit.ID, link.ID, true)
	require.ErrorIs(t, err, fault.ErrForbidden)
	assert.EqualError(t, err, "Not authorised to manage similarities for this unit")

	other := e.Unit("COS20007")
	_, err = e.svc.DismissPair(e.ctx, e.tutor, other.ID, link.ID, true)
	require.ErrorIs(t, err, fault.ErrNotFound)

	dismissed, err := e.svc.DismissPair(e.ctx, e.tutor, e.unit.ID, link.ID, true)
	require.NoError(t, err)
	assert.True(t, dismissed.Dismissed)
	assert.Zero(t, e.maxPct(t, a))
	assert.Zero(t, e.maxPct(t, b))

	_, err = e.svc.DismissPair(e.ctx, e.tutor, e.unit.ID, link.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 80, e.maxPct(t, a))
	assert.Equal(t, 80, e.maxPct(t, b))
}

func TestDeletePair(t *testing.T) {
	e := newEnv(t)
	submission := uint(7)
	g1 := e.Task(e.Student(e.unit, "g1", nil), &submission)
	g2 := e.Task(e.Student(e.unit, "g2", nil), &submission)
	x := e.Task(e.Student(e.unit, "x", nil), nil)

	g1x, err := e.svc.CreatePair(e.ctx, e.tutor, e.unit.ID, similarity.PairInput{
		TaskID: g1.ID, OtherTaskID: x.ID, Pct: 70, Report: []byte("group"), OtherReport: []byte("x vs g1"),
	})
	require.NoError(t, err)
	g2x, err := e.svc.CreatePair(e.ctx, e.tutor, e.unit.ID, similarity.PairInput{
		TaskID: g2.ID, OtherTaskID: x.ID, Pct: 60, Report: []byte("group"), OtherReport: []byte("x vs g2"),
	})
	require.NoError(t, err)

	shared := evidence.Key(g1, x.ID)
	assert.Equal(t, shared, evidence.Key(g2, x.ID))

	require.NoError(t, e.svc.DeletePair(e.ctx, e.tutor, e.unit.ID, g1x.ID))
	assert.True(t, e.exists(t, shared), "still used by g2")
	assert.False(t, e.exists(t, evidence.Key(x, g1.ID)))
	assert.True(t, e.exists(t, evidence.Key(x, g2.ID)))
	assert.Zero(t, e.maxPct(t, g1))
	assert.Equal(t, 60, e.maxPct(t, x))

	require.NoError(t, e.svc.DeletePair(e.ctx, e.tutor, e.unit.ID, g2x.ID))
	assert.False(t, e.exists(t, shared))
	assert.False(t, e.exists(t, evidence.Key(x, g2.ID)))
	assert.Zero(t, e.maxPct(t, x))

	require.ErrorIs(t, e.svc.DeletePair(e.ctx, e.tutor, e.unit.ID, g2x.ID), fault.ErrNotFound)
}

func TestDeletePairStorageFailure(t *testing.T) {
	e := newEnv(t)
	a := e.Task(e.Student(e.unit, "a", nil), nil)
	b := e.Task(e.Student(e.unit, "b", nil), nil)

	link, err := e.svc.CreatePair(e.ctx, e.tutor, e.unit.ID, similarity.PairInput{
		TaskID: a.ID, OtherTaskID: b.ID, Pct: 50, Report: []byte("a"), OtherReport: []byte("b"),
	})
	require.NoError(t, err)

	readOnly := similarity.NewService(e.DB, auth.NewService(e.DB), evidence.NewWithFs(afero.NewReadOnlyFs(e.fs)))

	err = readOnly.DeletePair(e.ctx, e.tutor, e.unit.ID, link.ID)
	require.Error(t, err)
	assert.Nil(t, fault.KindOf(err))

	var n int64
	require.NoError(t, e.DB.Model(&models.PlagiarismMatchLink{}).Count(&n).Error)
	assert.Zero(t, n, "rows are deleted before the artifacts")
	assert.True(t, e.exists(t, evidence.Key(a, b.ID)))
}
