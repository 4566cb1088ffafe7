// Package matchlink keeps plagiarism match links in symmetric pairs.
//
// A pair is created, dismissed and deleted as one unit, and every change
// recomputes the MaxPctSimilar statistic of both tasks in the same transaction.
package matchlink

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/classgroups/classgroups/internal/db/models"
	"github.com/classgroups/classgroups/internal/fault"
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// Get retrieves a link with both tasks and their projects.
func Get(db *gorm.DB, id uint) (*models.PlagiarismMatchLink, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var link models.PlagiarismMatchLink

	err := db.Preload("Task.Project").Preload("OtherTask.Project").First(&link, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fault.NotFound("Unable to locate similarity")
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load match link: %w", err)
	}

	return &link, nil
}

// Task retrieves a task with its project.
func Task(db *gorm.DB, id uint) (*models.Task, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var task models.Task

	err := db.Preload("Project").First(&task, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fault.NotFound("Unable to locate task")
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}

	return &task, nil
}

// Counterpart returns the link with task and other task swapped, or nil when it is missing.
func Counterpart(db *gorm.DB, link *models.PlagiarismMatchLink) (*models.PlagiarismMatchLink, error) {
	var other models.PlagiarismMatchLink

	err := db.Preload("Task").Where("task_id = ? AND other_task_id = ?", link.OtherTaskID, link.TaskID).First(&other).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil //nolint:nilnil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load counterpart link: %w", err)
	}

	return &other, nil
}

// CreatePair records that the two tasks are pct similar, in both directions.
func CreatePair(db *gorm.DB, task, other *models.Task, pct int) (*models.PlagiarismMatchLink, *models.PlagiarismMatchLink, error) {
	if db == nil {
		return nil, nil, ErrDBNil
	}

	if task.ID == other.ID {
		return nil, nil, fault.Invalid("a task cannot match itself")
	}

	if pct < 0 || pct > 100 {
		return nil, nil, fault.Invalid("pct must be between 0 and 100")
	}

	forward := &models.PlagiarismMatchLink{TaskID: task.ID, OtherTaskID: other.ID, Pct: pct}
	backward := &models.PlagiarismMatchLink{TaskID: other.ID, OtherTaskID: task.ID, Pct: pct}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, link := range []*models.PlagiarismMatchLink{forward, backward} {
			if err := tx.Omit(clause.Associations).Create(link).Error; err != nil {
				return fault.Validation(err)
			}
		}

		return recompute(tx, task.ID, other.ID)
	})
	if err != nil {
		return nil, nil, err
	}

	forward.Task, forward.OtherTask = *task, *other
	backward.Task, backward.OtherTask = *other, *task

	return forward, backward, nil
}

// SetDismissed flags both links of the pair and recomputes both statistics.
func SetDismissed(db *gorm.DB, link *models.PlagiarismMatchLink, dismissed bool) error {
	if db == nil {
		return ErrDBNil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.PlagiarismMatchLink{}).
			Where("(task_id = ? AND other_task_id = ?) OR (task_id = ? AND other_task_id = ?)",
				link.TaskID, link.OtherTaskID, link.OtherTaskID, link.TaskID).
			Update("dismissed", dismissed).Error
		if err != nil {
			return fault.Validation(err)
		}

		return recompute(tx, link.TaskID, link.OtherTaskID)
	})
	if err != nil {
		return err
	}

	link.Dismissed = dismissed

	return nil
}

// DeletePair removes the link and its counterpart and recomputes both statistics.
// It returns the removed links whose evidence artifact is no longer referenced;
// the caller deletes those artifacts once the transaction has committed.
func DeletePair(db *gorm.DB, id uint) ([]models.PlagiarismMatchLink, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var orphaned []models.PlagiarismMatchLink

	err := db.Transaction(func(tx *gorm.DB) error {
		var link models.PlagiarismMatchLink

		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Task").First(&link, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fault.NotFound("Unable to locate similarity")
		}

		if err != nil {
			return fmt.Errorf("failed to load match link: %w", err)
		}

		pair := []models.PlagiarismMatchLink{link}

		counterpart, err := Counterpart(tx, &link)
		if err != nil {
			return err
		}

		if counterpart != nil {
			pair = append(pair, *counterpart)
		}

		for _, l := range pair {
			shared, err := artifactShared(tx, &l)
			if err != nil {
				return err
			}

			if !shared {
				orphaned = append(orphaned, l)
			}
		}

		for _, l := range pair {
			if err = tx.Delete(&models.PlagiarismMatchLink{}, l.ID).Error; err != nil {
				return fault.Validation(err)
			}
		}

		return recompute(tx, link.TaskID, link.OtherTaskID)
	})
	if err != nil {
		return nil, err
	}

	return orphaned, nil
}

// artifactShared reports whether another task of the same group submission
// still links to the same other task, and so shares the link's artifact.
// Individual tasks never share.
func artifactShared(tx *gorm.DB, link *models.PlagiarismMatchLink) (bool, error) {
	if !link.Task.IsGroupTask() {
		return false, nil
	}

	siblings := tx.Model(&models.Task{}).
		Select("id").
		Where("group_submission_id = ? AND id <> ?", *link.Task.GroupSubmissionID, link.TaskID)

	var count int64

	err := tx.Model(&models.PlagiarismMatchLink{}).
		Where("task_id IN (?) AND other_task_id = ?", siblings, link.OtherTaskID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check shared evidence: %w", err)
	}

	return count > 0, nil
}

// recompute sets MaxPctSimilar of each task to the highest pct of its
// remaining non-dismissed links, or 0 without any.
func recompute(tx *gorm.DB, taskIDs ...uint) error {
	for _, id := range taskIDs {
		var highest int

		err := tx.Model(&models.PlagiarismMatchLink{}).
			Where("task_id = ? AND dismissed = ?", id, false).
			Select("COALESCE(MAX(pct), 0)").
			Scan(&highest).Error
		if err != nil {
			return fmt.Errorf("failed to compute similarity of task %d: %w", id, err)
		}

		err = tx.Model(&models.Task{}).Where("id = ?", id).Update("max_pct_similar", highest).Error
		if err != nil {
			return fmt.Errorf("failed to store similarity of task %d: %w", id, err)
		}
	}

	return nil
}
