// Package evidence stores the HTML reports a plagiarism pass produces for each match link.
package evidence

import (
	"fmt"
	"os"
	"path"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/classgroups/classgroups/internal/db/models"
)

// Store keeps evidence artifacts on an afero filesystem.
type Store struct {
	fs afero.Fs
}

// New returns a store rooted at dir on the OS filesystem.
func New(dir string) *Store {
	return &Store{fs: afero.NewBasePathFs(afero.NewOsFs(), dir)}
}

// NewWithFs returns a store on the given filesystem, e.g. afero.NewMemMapFs in tests.
func NewWithFs(fs afero.Fs) *Store {
	return &Store{fs: fs}
}

// Key is the artifact path of a link.
// The tasks of one group submission share the artifact for the same other task.
func Key(task *models.Task, otherTaskID uint) string {
	if task.IsGroupTask() {
		return path.Join(fmt.Sprintf("submission-%d", *task.GroupSubmissionID), fmt.Sprintf("other-%d.html", otherTaskID))
	}

	return path.Join(fmt.Sprintf("task-%d", task.ID), fmt.Sprintf("other-%d.html", otherTaskID))
}

// KeyOf is Key for a link with its Task loaded.
func KeyOf(link *models.PlagiarismMatchLink) string {
	return Key(&link.Task, link.OtherTaskID)
}

// Save writes the artifact, replacing an existing one.
func (s *Store) Save(key string, content []byte) error {
	if err := s.fs.MkdirAll(path.Dir(key), 0o750); err != nil { //nolint:mnd
		return errors.Wrapf(err, "failed to create evidence directory for %s", key)
	}

	if err := afero.WriteFile(s.fs, key, content, 0o640); err != nil { //nolint:mnd
		return errors.Wrapf(err, "failed to write evidence %s", key)
	}

	return nil
}

// Read returns the artifact content.
func (s *Store) Read(key string) ([]byte, error) {
	b, err := afero.ReadFile(s.fs, key)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read evidence %s", key)
	}

	return b, nil
}

// Exists reports whether the artifact is present.
func (s *Store) Exists(key string) (bool, error) {
	ok, err := afero.Exists(s.fs, key)
	if err != nil {
		return false, errors.Wrapf(err, "failed to stat evidence %s", key)
	}

	return ok, nil
}

// Delete removes the artifact. A missing artifact is not an error.
func (s *Store) Delete(key string) error {
	err := s.fs.Remove(key)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to delete evidence %s", key)
	}

	return nil
}
