// Package group provides persistence for groups and their membership logs.
//
// Check-and-create sequences lock the parent row first: the group set while
// naming and numbering groups, the group while changing its membership.
package group

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/classgroups/classgroups/internal/db/controller/groupset"
	"github.com/classgroups/classgroups/internal/db/models"
	"github.com/classgroups/classgroups/internal/fault"
)

const (
	groupIDQueryPattern   = "group_id = ?"
	activeMembersPattern  = "group_id = ? AND active = ?"
	memberPairPattern     = "group_id = ? AND project_id = ?"
	groupSetQueryPattern  = "group_set_id = ?"
	lockStrengthForUpdate = "UPDATE"
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// Summary is a group with its number of active members.
type Summary struct {
	models.Group
	MemberCount int64 `json:"member_count"`
}

// Get retrieves a group of the group set.
func Get(db *gorm.DB, groupSetID, id uint) (*models.Group, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var g models.Group

	err := db.Preload("Tutorial").Where(groupSetQueryPattern, groupSetID).First(&g, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fault.NotFound("Unable to locate group for group set")
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load group: %w", err)
	}

	return &g, nil
}

// GetByName retrieves a group of the group set by its exact name.
// It returns nil without error when no group has that name.
func GetByName(db *gorm.DB, groupSetID uint, name string) (*models.Group, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var g models.Group

	err := db.Preload("Tutorial").Where("group_set_id = ? AND name = ?", groupSetID, name).First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil //nolint:nilnil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load group: %w", err)
	}

	return &g, nil
}

// List returns the groups of the group set ordered by number, with member counts.
func List(db *gorm.DB, groupSetID uint) ([]Summary, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var groups []models.Group
	if err := db.Where(groupSetQueryPattern, groupSetID).Order("number").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	var counts []struct {
		GroupID uint
		N       int64
	}

	err := db.Model(&models.GroupMembership{}).
		Select("group_memberships.group_id AS group_id, COUNT(*) AS n").
		Joins("JOIN student_groups ON student_groups.id = group_memberships.group_id").
		Where("student_groups.group_set_id = ? AND group_memberships.active = ?", groupSetID, true).
		Group("group_memberships.group_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}

	byGroup := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byGroup[c.GroupID] = c.N
	}

	out := make([]Summary, 0, len(groups))
	for _, g := range groups {
		out = append(out, Summary{Group: g, MemberCount: byGroup[g.ID]})
	}

	return out, nil
}

// Create adds a group to the group set. A blank name becomes "Group {n}".
// It runs in its own transaction, or in a savepoint when db already is one.
func Create(db *gorm.DB, groupSetID uint, name string, tutorialID uint) (*models.Group, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var g *models.Group

	err := db.Transaction(func(tx *gorm.DB) error {
		gs, err := groupset.Lock(tx, groupSetID)
		if err != nil {
			return err
		}

		number, err := nextNumber(tx, gs)
		if err != nil {
			return err
		}

		name = strings.TrimSpace(name)
		if name == "" {
			name = models.DefaultGroupName(number)
		}

		if err = checkNameUnique(tx, gs, name, 0); err != nil {
			return err
		}

		g = &models.Group{GroupSetID: gs.ID, TutorialID: tutorialID, Name: name, Number: number}
		if err = tx.Omit(clause.Associations).Create(g).Error; err != nil {
			return fault.Validation(err)
		}

		return tx.Model(&models.GroupSet{}).Where("id = ?", gs.ID).
			Update("last_group_number", number).Error
	})
	if err != nil {
		return nil, err
	}

	return g, nil
}

// nextNumber is one past the highest number ever issued in the set.
func nextNumber(tx *gorm.DB, gs *models.GroupSet) (int, error) {
	var highest int

	err := tx.Model(&models.Group{}).
		Where(groupSetQueryPattern, gs.ID).
		Select("COALESCE(MAX(number), 0)").
		Scan(&highest).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read group numbers: %w", err)
	}

	return max(highest, gs.LastGroupNumber) + 1, nil
}

func checkNameUnique(tx *gorm.DB, gs *models.GroupSet, name string, exceptID uint) error {
	var count int64

	err := tx.Model(&models.Group{}).
		Where("group_set_id = ? AND name = ? AND id <> ?", gs.ID, name, exceptID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check group name: %w", err)
	}

	if count > 0 {
		return fault.Conflict("This group name is not unique to the %s group set.", gs.Name)
	}

	return nil
}

// Changes is a partial update of a group; nil fields are left untouched.
type Changes struct {
	Name       *string
	TutorialID *uint
}

// Update renames the group or moves it to another tutorial and reloads g.
// Moving is refused while members exist in a set that keeps groups in one class.
// The group set row is locked before the group row, as Create and AddMember do.
func Update(db *gorm.DB, g *models.Group, changes Changes) error {
	if db == nil {
		return ErrDBNil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		gs, err := groupset.Lock(tx, g.GroupSetID)
		if err != nil {
			return err
		}

		current, err := lockGroup(tx, g.ID)
		if err != nil {
			return err
		}

		cols := map[string]any{}

		if changes.TutorialID != nil && *changes.TutorialID != current.TutorialID {
			if gs.KeepGroupsInSameClass {
				n, err := ActiveCount(tx, g.ID)
				if err != nil {
					return err
				}

				if n > 0 {
					return fault.Conflict("Cannot modify group tutorial as members already exist " +
						"and they must be in the same tutorial. Clear all members first.")
				}
			}

			cols["tutorial_id"] = *changes.TutorialID
		}

		if changes.Name != nil && *changes.Name != current.Name {
			name := strings.TrimSpace(*changes.Name)
			if name == "" {
				return fault.Invalid("name is required")
			}

			if err = checkNameUnique(tx, gs, name, g.ID); err != nil {
				return err
			}

			cols["name"] = name
		}

		if len(cols) == 0 {
			return nil
		}

		return fault.Validation(tx.Model(&models.Group{}).Where("id = ?", g.ID).Updates(cols).Error)
	})
	if err != nil {
		return err
	}

	return db.Preload("Tutorial").First(g, g.ID).Error
}

// Delete removes the group and its membership log.
// When soleMember is set the group must be empty or have that user as its
// only active member; the check runs under the group row lock.
func Delete(db *gorm.DB, g *models.Group, soleMember *uint64) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := lockGroup(tx, g.ID); err != nil {
			return err
		}

		if soleMember != nil {
			projects, err := ActiveProjects(tx, g.ID)
			if err != nil {
				return err
			}

			if len(projects) > 1 {
				return fault.Conflict("You cannot delete a group with members")
			}

			if len(projects) == 1 && projects[0].UserID != *soleMember {
				return fault.Conflict("You cannot delete this group")
			}
		}

		if err := tx.Where(groupIDQueryPattern, g.ID).Delete(&models.GroupMembership{}).Error; err != nil {
			return fault.Validation(err)
		}

		return fault.Validation(tx.Delete(&models.Group{}, g.ID).Error)
	})
}

// ActiveCount returns the number of active members of the group.
func ActiveCount(db *gorm.DB, groupID uint) (int64, error) {
	var n int64

	err := db.Model(&models.GroupMembership{}).Where(activeMembersPattern, groupID, true).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}

	return n, nil
}

// ActiveProjects returns the distinct projects with an active membership, with student and tutorial.
func ActiveProjects(db *gorm.DB, groupID uint) ([]models.Project, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var projects []models.Project

	members := db.Model(&models.GroupMembership{}).Select("project_id").Where(activeMembersPattern, groupID, true)

	err := db.Preload("Student").Preload("Tutorial").
		Where("id IN (?)", members).
		Order("id").
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}

	return projects, nil
}

// Memberships returns the membership log of a project in the group, oldest first.
func Memberships(db *gorm.DB, groupID, projectID uint) ([]models.GroupMembership, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var entries []models.GroupMembership
	if err := db.Where(memberPairPattern, groupID, projectID).Order("id").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load membership log: %w", err)
	}

	return entries, nil
}

// AddMember appends an active membership for the project.
// It fails with a conflict when the project is already an active member.
// The group's tutorial and the set's class rule are read after locking the group.
func AddMember(db *gorm.DB, g *models.Group, p *models.Project) (*models.GroupMembership, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var m *models.GroupMembership

	err := db.Transaction(func(tx *gorm.DB) error {
		var err error

		m, err = addMember(tx, g, p, false)

		return err
	})

	return m, err
}

// EnsureMember is AddMember where an existing active membership is not an error.
// It reports whether a membership was appended.
func EnsureMember(db *gorm.DB, g *models.Group, p *models.Project) (bool, error) {
	if db == nil {
		return false, ErrDBNil
	}

	var m *models.GroupMembership

	err := db.Transaction(func(tx *gorm.DB) error {
		var err error

		m, err = addMember(tx, g, p, true)

		return err
	})

	return m != nil, err
}

func addMember(tx *gorm.DB, g *models.Group, p *models.Project, existingOK bool) (*models.GroupMembership, error) {
	current, err := lockGroup(tx, g.ID)
	if err != nil {
		return nil, err
	}

	var gs models.GroupSet
	if err = tx.Select("id", "keep_groups_in_same_class").First(&gs, current.GroupSetID).Error; err != nil {
		return nil, fmt.Errorf("failed to load group set: %w", err)
	}

	if gs.KeepGroupsInSameClass && !p.InTutorial(current.TutorialID) {
		abbr, err := tutorialAbbreviation(tx, current.TutorialID)
		if err != nil {
			return nil, err
		}

		return nil, fault.Conflict("Students from the tutorial '%s' can only be added to this group.", abbr)
	}

	var active int64

	err = tx.Model(&models.GroupMembership{}).
		Where("group_id = ? AND project_id = ? AND active = ?", g.ID, p.ID, true).
		Count(&active).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	if active > 0 {
		if existingOK {
			return nil, nil
		}

		return nil, fault.Conflict("%s is already a member of this group", p.Student.Name())
	}

	m := &models.GroupMembership{
		GroupID:    g.ID,
		ProjectID:  p.ID,
		Active:     true,
		ActiveSlot: models.ActiveSlotValue(),
	}
	if err = tx.Omit(clause.Associations).Create(m).Error; err != nil {
		return nil, fault.Validation(err)
	}

	return m, nil
}

// RemoveMember deactivates the project's active membership.
// It fails with not found when the project never was a member; a project
// whose memberships are all inactive is left as is.
func RemoveMember(db *gorm.DB, g *models.Group, p *models.Project) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := lockGroup(tx, g.ID); err != nil {
			return err
		}

		var rows int64
		if err := tx.Model(&models.GroupMembership{}).Where(memberPairPattern, g.ID, p.ID).Count(&rows).Error; err != nil {
			return fmt.Errorf("failed to check membership: %w", err)
		}

		if rows == 0 {
			return fault.NotFound("%s is not a member of this group", p.Student.Name())
		}

		err := tx.Model(&models.GroupMembership{}).
			Where("group_id = ? AND project_id = ? AND active = ?", g.ID, p.ID, true).
			Updates(map[string]any{"active": false, "active_slot": gorm.Expr("NULL")}).Error

		return fault.Validation(err)
	})
}

// lockGroup re-reads the group inside tx, holding its row until tx ends.
func lockGroup(tx *gorm.DB, id uint) (*models.Group, error) {
	var g models.Group

	err := tx.Clauses(clause.Locking{Strength: lockStrengthForUpdate}).
		Select("id", "group_set_id", "tutorial_id", "name", "number").
		First(&g, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fault.NotFound("Unable to locate group for group set")
	}

	if err != nil {
		return nil, fmt.Errorf("failed to lock group: %w", err)
	}

	return &g, nil
}

func tutorialAbbreviation(tx *gorm.DB, tutorialID uint) (string, error) {
	var t models.Tutorial
	if err := tx.First(&t, tutorialID).Error; err != nil {
		return "", fmt.Errorf("failed to load group tutorial: %w", err)
	}

	return t.Abbreviation, nil
}
