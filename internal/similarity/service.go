// Package similarity manages plagiarism match link pairs and their evidence.
package similarity

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/classgroups/classgroups/internal/auth"
	"github.com/classgroups/classgroups/internal/db/controller/matchlink"
	"github.com/classgroups/classgroups/internal/db/models"
	"github.com/classgroups/classgroups/internal/evidence"
	"github.com/classgroups/classgroups/internal/fault"
	"github.com/classgroups/classgroups/internal/metrics"
)

const denied = "Not authorised to manage similarities for this unit"

// Service runs match link pair operations.
type Service struct {
	db    *gorm.DB
	gate  auth.Gate
	store *evidence.Store
}

// NewService creates a new similarity service.
func NewService(db *gorm.DB, gate auth.Gate, store *evidence.Store) *Service {
	return &Service{db: db, gate: gate, store: store}
}

// PairInput describes a detected match between two tasks of a unit.
type PairInput struct {
	TaskID      uint
	OtherTaskID uint
	Pct         int
	// Report is the evidence shown on TaskID; OtherReport on OtherTaskID.
	Report      []byte
	OtherReport []byte
}

// CreatePair records a match in both directions and stores the evidence of each.
func (s *Service) CreatePair(
	ctx context.Context, actor *models.User, unitID uint, in PairInput,
) (link *models.PlagiarismMatchLink, err error) {
	defer func() { done("similarity_create", actor, unitID, link, err) }()

	db := s.db.WithContext(ctx)

	task, err := taskInUnit(db, unitID, in.TaskID)
	if err != nil {
		return nil, err
	}

	other, err := taskInUnit(db, unitID, in.OtherTaskID)
	if err != nil {
		return nil, err
	}

	if err = s.authorise(ctx, actor, unitID); err != nil {
		return nil, err
	}

	forward, backward, err := matchlink.CreatePair(db, task, other, in.Pct)
	if err != nil {
		return nil, err
	}

	if err = s.store.Save(evidence.KeyOf(forward), in.Report); err != nil {
		return forward, err
	}

	if err = s.store.Save(evidence.KeyOf(backward), in.OtherReport); err != nil {
		return forward, err
	}

	return forward, nil
}

// DismissPair sets the dismissed flag on a link and its counterpart.
func (s *Service) DismissPair(
	ctx context.Context, actor *models.User, unitID, linkID uint, dismissed bool,
) (link *models.PlagiarismMatchLink, err error) {
	defer func() { done("similarity_dismiss", actor, unitID, link, err) }()

	db := s.db.WithContext(ctx)

	if link, err = s.resolve(ctx, db, actor, unitID, linkID); err != nil {
		return nil, err
	}

	if err = matchlink.SetDismissed(db, link, dismissed); err != nil {
		return nil, err
	}

	return link, nil
}

// DeletePair removes a link and its counterpart, then deletes the evidence no
// other link refers to. Storage failures are returned after the pair is gone.
func (s *Service) DeletePair(ctx context.Context, actor *models.User, unitID, linkID uint) (err error) {
	var link *models.PlagiarismMatchLink

	defer func() { done("similarity_delete", actor, unitID, link, err) }()

	db := s.db.WithContext(ctx)

	if link, err = s.resolve(ctx, db, actor, unitID, linkID); err != nil {
		return err
	}

	orphaned, err := matchlink.DeletePair(db, link.ID)
	if err != nil {
		return err
	}

	var errs []error

	for i := range orphaned {
		key := evidence.KeyOf(&orphaned[i])

		delErr := s.store.Delete(key)
		metrics.EvidenceDeletes.WithLabelValues(metrics.Outcome(delErr)).Inc()

		if delErr != nil {
			errs = append(errs, delErr)
		}
	}

	return errors.Join(errs...)
}

// Evidence returns the artifact of a link.
func (s *Service) Evidence(ctx context.Context, actor *models.User, unitID, linkID uint) ([]byte, error) {
	link, err := s.resolve(ctx, s.db.WithContext(ctx), actor, unitID, linkID)
	if err != nil {
		return nil, err
	}

	ok, err := s.store.Exists(evidence.KeyOf(link))
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, fault.NotFound("Unable to locate similarity evidence")
	}

	return s.store.Read(evidence.KeyOf(link))
}

// resolve loads a link of the unit and checks the actor may manage it.
func (s *Service) resolve(
	ctx context.Context, db *gorm.DB, actor *models.User, unitID, linkID uint,
) (*models.PlagiarismMatchLink, error) {
	link, err := matchlink.Get(db, linkID)
	if err != nil {
		return nil, err
	}

	if link.Task.Project.UnitID != unitID {
		return nil, fault.NotFound("Unable to locate similarity")
	}

	if err = s.authorise(ctx, actor, unitID); err != nil {
		return nil, err
	}

	return link, nil
}

func (s *Service) authorise(ctx context.Context, actor *models.User, unitID uint) error {
	ok, err := s.gate.Authorise(ctx, actor, unitID, auth.UnitPolicy{}, auth.ActionManageSimilarity)
	if err != nil {
		return err
	}

	if !ok {
		return fault.Forbidden(denied)
	}

	return nil
}

func taskInUnit(db *gorm.DB, unitID, taskID uint) (*models.Task, error) {
	task, err := matchlink.Task(db, taskID)
	if err != nil {
		return nil, err
	}

	if task.Project.UnitID != unitID {
		return nil, fault.NotFound("Unable to locate task")
	}

	return task, nil
}

func done(op string, actor *models.User, unitID uint, link *models.PlagiarismMatchLink, err error) {
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

	if link != nil {
		ev = ev.Uint("task_id", link.TaskID).Uint("other_task_id", link.OtherTaskID)
	}

	ev.Uint("unit_id", unitID).Str("operation", op).Msg("similarity")
}
