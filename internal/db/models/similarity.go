package models

// Task is a student's work on one task definition. Only the fields the
// similarity cascade needs are modelled.
type Task struct {
	ID uint `gorm:"primaryKey"`
	// ProjectID is the student's enrolment owning the task.
	ProjectID uint `gorm:"not null;index"`
	// GroupSubmissionID is shared by every task of one group submission; nil for individual work.
	GroupSubmissionID *uint `gorm:"index"`
	// MaxPctSimilar caches the highest pct of the task's non-dismissed match links.
	MaxPctSimilar int `gorm:"not null;default:0"`
	// Project is the associated project.
	Project Project `gorm:"foreignKey:ProjectID"`
}

// TableName specifies the database table name for the Task model.
func (Task) TableName() string {
	return "tasks"
}

// IsGroupTask reports whether the task was submitted as part of a group submission.
func (t *Task) IsGroupTask() bool {
	return t.GroupSubmissionID != nil
}

// PlagiarismMatchLink records that TaskID was found similar to OtherTaskID.
// Links always exist in pairs: the counterpart has TaskID and OtherTaskID swapped.
type PlagiarismMatchLink struct {
	// ID is the unique identifier for the link.
	ID uint `gorm:"primaryKey" json:"id"`
	// TaskID is the task this link belongs to.
	TaskID uint `gorm:"not null;uniqueIndex:idx_match_link_pair" json:"task_id"`
	// OtherTaskID is the task it was matched against.
	OtherTaskID uint `gorm:"not null;uniqueIndex:idx_match_link_pair;index" json:"other_task_id"`
	// Pct is the similarity percentage reported by the detector.
	Pct int `gorm:"not null" json:"pct"`
	// Dismissed excludes the link from the task's similarity statistic.
	Dismissed bool `gorm:"not null;default:false" json:"dismissed"`
	// Task is the associated task.
	Task Task `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
	// OtherTask is the matched task.
	OtherTask Task `gorm:"foreignKey:OtherTaskID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the database table name for the PlagiarismMatchLink model.
func (PlagiarismMatchLink) TableName() string {
	return "plagiarism_match_links"
}
