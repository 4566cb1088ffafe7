package groups

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/classgroups/classgroups/internal/auth"
	"github.com/classgroups/classgroups/internal/csvio"
	"github.com/classgroups/classgroups/internal/db/controller/group"
	"github.com/classgroups/classgroups/internal/db/controller/importlog"
	"github.com/classgroups/classgroups/internal/db/controller/unit"
	"github.com/classgroups/classgroups/internal/db/models"
	"github.com/classgroups/classgroups/internal/fault"
	"github.com/classgroups/classgroups/internal/metrics"
)

// RowError is a rejected import row.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportReport summarises a CSV import.
// Rows are applied one by one; a rejected row leaves earlier rows committed.
type ImportReport struct {
	ID            string     `json:"id"`
	Rows          int        `json:"rows"`
	GroupsCreated int        `json:"groups_created"`
	MembersAdded  int        `json:"members_added"`
	Errors        []RowError `json:"errors"`
}

// ExportCSV renders the groups of a set and their active members.
func (s *Service) ExportCSV(ctx context.Context, actor *models.User, unitID, groupSetID uint) (out []byte, err error) {
	var sc *scope

	defer func() { done("group_csv_export", actor, sc, err) }()

	db := s.db.WithContext(ctx)

	if sc, err = s.resolveSet(db, unitID, groupSetID); err != nil {
		return nil, err
	}

	err = s.authorise(ctx, actor, sc.unit.ID, auth.UnitPolicy{}, auth.ActionUpdate,
		"Not authorised to download csv of groups for this unit")
	if err != nil {
		return nil, err
	}

	var groups []models.Group
	if err = db.Preload("Tutorial").Where("group_set_id = ?", sc.groupSet.ID).Order("number").Find(&groups).Error; err != nil {
		return nil, err
	}

	var rows []csvio.ExportRow

	for _, g := range groups {
		projects, err := group.ActiveProjects(db, g.ID)
		if err != nil {
			return nil, err
		}

		row := csvio.ExportRow{GroupName: g.Name, GroupNumber: g.Number, Tutorial: g.Tutorial.Abbreviation}

		if len(projects) == 0 {
			rows = append(rows, row)
			continue
		}

		for _, p := range projects {
			row.Username = p.Student.Username
			rows = append(rows, row)
		}
	}

	return csvio.Encode(rows)
}

// ImportCSV applies an uploaded CSV to a group set.
// Each row names a group, created with the row's tutorial when missing, and
// optionally a student who must end up an active member of it.
func (s *Service) ImportCSV(
	ctx context.Context, actor *models.User, unitID, groupSetID uint, data []byte,
) (report *ImportReport, err error) {
	var sc *scope

	defer func() { done("group_csv_import", actor, sc, err) }()

	db := s.db.WithContext(ctx)

	if sc, err = s.resolveSet(db, unitID, groupSetID); err != nil {
		return nil, err
	}

	err = s.authorise(ctx, actor, sc.unit.ID, auth.UnitPolicy{}, auth.ActionUpdate,
		"Not authorised to upload csv of groups for this unit")
	if err != nil {
		return nil, err
	}

	rows, err := csvio.Decode(data)
	if err != nil {
		return nil, err
	}

	report = &ImportReport{ID: uuid.NewString(), Rows: len(rows), Errors: []RowError{}}

	for _, row := range rows {
		var created, added bool

		err = db.Transaction(func(tx *gorm.DB) error {
			var rowErr error

			created, added, rowErr = s.importRow(tx, sc, row)

			return rowErr
		})

		switch {
		case err == nil:
			metrics.ImportRows.WithLabelValues(metrics.OutcomeOK).Inc()

			if created {
				report.GroupsCreated++
			}

			if added {
				report.MembersAdded++
			}
		case fault.KindOf(err) != nil:
			metrics.ImportRows.WithLabelValues(metrics.Outcome(err)).Inc()
			report.Errors = append(report.Errors, RowError{Row: row.Line, Message: err.Error()})
		default:
			return nil, err
		}
	}

	if _, err = importlog.Save(db, report.ID, sc.groupSet.ID, actor.ID, report); err != nil {
		log.Error().Err(err).Str("import_id", report.ID).Msg("failed to keep import report")
	}

	log.Info().
		Str("import_id", report.ID).
		Str("actor", actor.Username).
		Str("unit", sc.unit.Code).
		Int("rows", report.Rows).
		Int("groups_created", report.GroupsCreated).
		Int("members_added", report.MembersAdded).
		Int("errors", len(report.Errors)).
		Msg("group csv imported")

	return report, nil
}

// ImportReportByID returns the report of an earlier import into the group set.
func (s *Service) ImportReportByID(
	ctx context.Context, actor *models.User, unitID, groupSetID uint, importID string,
) (report *ImportReport, err error) {
	var sc *scope

	defer func() { done("group_csv_report", actor, sc, err) }()

	db := s.db.WithContext(ctx)

	if sc, err = s.resolveSet(db, unitID, groupSetID); err != nil {
		return nil, err
	}

	err = s.authorise(ctx, actor, sc.unit.ID, auth.UnitPolicy{}, auth.ActionUpdate,
		"Not authorised to upload csv of groups for this unit")
	if err != nil {
		return nil, err
	}

	report = &ImportReport{}
	if err = importlog.Load(db, sc.groupSet.ID, importID, report); err != nil {
		return nil, err
	}

	return report, nil
}

func (s *Service) importRow(tx *gorm.DB, sc *scope, row csvio.ImportRow) (created, added bool, err error) {
	if row.GroupName == "" {
		return false, false, fault.Invalid("group_name is required")
	}

	g, err := group.GetByName(tx, sc.groupSet.ID, row.GroupName)
	if err != nil {
		return false, false, err
	}

	if g == nil {
		if row.Tutorial == "" {
			return false, false, fault.Invalid("tutorial is required to create group %s", row.GroupName)
		}

		tutorial, err := unit.TutorialByAbbreviation(tx, sc.unit.ID, row.Tutorial)
		if err != nil {
			return false, false, err
		}

		if g, err = group.Create(tx, sc.groupSet.ID, row.GroupName, tutorial.ID); err != nil {
			return false, false, err
		}

		g.Tutorial = *tutorial
		created = true
	} else if row.Tutorial != "" && row.Tutorial != g.Tutorial.Abbreviation {
		return false, false, fault.Conflict("Group %s is in the tutorial '%s', not '%s'",
			g.Name, g.Tutorial.Abbreviation, row.Tutorial)
	}

	if row.Username == "" {
		return created, false, nil
	}

	project, err := unit.ProjectByUsername(tx, sc.unit.ID, row.Username)
	if err != nil {
		return false, false, err
	}

	added, err = group.EnsureMember(tx, g, project)
	if err != nil {
		return false, false, err
	}

	return created, added, nil
}
