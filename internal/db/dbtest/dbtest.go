// Package dbtest provides migrated in-memory databases and fixtures for tests.
package dbtest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/classgroups/classgroups/internal/config"
	"github.com/classgroups/classgroups/internal/db"
	"github.com/classgroups/classgroups/internal/db/models"
)

// New opens a fresh, migrated in-memory sqlite database.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(&config.Config{DB: config.DB{GormEngine: config.EngineSQLite, Name: ":memory:"}})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return gdb
}

// Fixture creates rows in a test database.
type Fixture struct {
	t  *testing.T
	DB *gorm.DB
}

// NewFixture opens a fresh database and wraps it in a Fixture.
func NewFixture(t *testing.T) *Fixture {
	t.Helper()

	return &Fixture{t: t, DB: New(t)}
}

// User creates a user with the given username.
func (f *Fixture) User(username string) *models.User {
	f.t.Helper()

	u := &models.User{
		Username:  username,
		Email:     username + "@example.edu",
		FirstName: username,
		LastName:  "Tester",
	}
	require.NoError(f.t, f.DB.Create(u).Error)

	return u
}

// Admin creates a system administrator.
func (f *Fixture) Admin(username string) *models.User {
	f.t.Helper()

	u := f.User(username)
	require.NoError(f.t, f.DB.Model(u).Update("is_admin", true).Error)
	u.IsAdmin = true

	return u
}

// Unit creates a unit.
func (f *Fixture) Unit(code string) *models.Unit {
	f.t.Helper()

	u := &models.Unit{Code: code, Name: code + " unit"}
	require.NoError(f.t, f.DB.Create(u).Error)

	return u
}

// Staff assigns a unit role to a user.
func (f *Fixture) Staff(unit *models.Unit, user *models.User, role models.UnitRoleName) {
	f.t.Helper()

	require.NoError(f.t, f.DB.Create(&models.UnitRole{UnitID: unit.ID, UserID: user.ID, Role: role}).Error)
}

// Tutorial creates a tutorial in the unit.
func (f *Fixture) Tutorial(unit *models.Unit, abbreviation string) *models.Tutorial {
	f.t.Helper()

	tut := &models.Tutorial{UnitID: unit.ID, Abbreviation: abbreviation}
	require.NoError(f.t, f.DB.Create(tut).Error)

	return tut
}

// Project enrols a student in the unit, optionally allocating a tutorial.
func (f *Fixture) Project(unit *models.Unit, student *models.User, tutorial *models.Tutorial) *models.Project {
	f.t.Helper()

	p := &models.Project{UnitID: unit.ID, UserID: student.ID}
	if tutorial != nil {
		p.TutorialID = &tutorial.ID
	}

	require.NoError(f.t, f.DB.Omit("Student", "Tutorial").Create(p).Error)
	p.Student = *student
	p.Tutorial = tutorial

	return p
}

// Student creates a user and enrols them in the unit.
func (f *Fixture) Student(unit *models.Unit, username string, tutorial *models.Tutorial) *models.Project {
	f.t.Helper()

	return f.Project(unit, f.User(username), tutorial)
}

// GroupSet creates a group set in the unit.
func (f *Fixture) GroupSet(unit *models.Unit, name string, mutate ...func(*models.GroupSet)) *models.GroupSet {
	f.t.Helper()

	gs := &models.GroupSet{UnitID: unit.ID, Name: name}
	for _, m := range mutate {
		m(gs)
	}

	require.NoError(f.t, f.DB.Omit("Unit").Create(gs).Error)

	return gs
}

// Task creates a task for the project, part of a group submission when submission is not nil.
func (f *Fixture) Task(project *models.Project, submission *uint) *models.Task {
	f.t.Helper()

	task := &models.Task{ProjectID: project.ID, GroupSubmissionID: submission}
	require.NoError(f.t, f.DB.Omit("Project").Create(task).Error)

	return task
}
