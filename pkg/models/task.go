package models

import "time"

// Task is a row of the tasks table. Lookup references are nullable; deleting
// a lookup row clears the reference instead of deleting the task.
type Task struct {
	ID             int64     `json:"id" db:"id"`                             // PostgreSQL auto-increment
	Number         string    `json:"number" db:"number"`                     // Unique across all tasks, max 100
	Title          string    `json:"title" db:"title"`                       // Required, max 300
	Duration       string    `json:"duration" db:"duration"`                 // Max 100, may be empty
	NumberOfTarget string    `json:"number_of_target" db:"number_of_target"` // Max 100, may be empty
	DepartmentID   *int64    `json:"department_id" db:"department_id"`
	InstituteID    *int64    `json:"institute_id" db:"institute_id"`
	ScopeID        *int64    `json:"scope_id" db:"scope_id"`
	TrialStageID   *int64    `json:"trial_stage_id" db:"trial_stage_id"`
	TypeID         *int64    `json:"type_id" db:"type_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"` // Immutable after insert
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"` // Advances on every update
}

// SetLookupID points the task at a lookup row of the given kind.
func (t *Task) SetLookupID(kind LookupKind, id int64) {
	switch kind {
	case DepartmentLookup:
		t.DepartmentID = &id
	case InstituteLookup:
		t.InstituteID = &id
	case ScopeLookup:
		t.ScopeID = &id
	case TrialStageLookup:
		t.TrialStageID = &id
	case TypeLookup:
		t.TypeID = &id
	}
}

// LookupID returns the referenced row id for kind, or nil when unset.
func (t Task) LookupID(kind LookupKind) *int64 {
	switch kind {
	case DepartmentLookup:
		return t.DepartmentID
	case InstituteLookup:
		return t.InstituteID
	case ScopeLookup:
		return t.ScopeID
	case TrialStageLookup:
		return t.TrialStageID
	case TypeLookup:
		return t.TypeID
	}
	return nil
}

// TaskRecord is a task joined with the names of its five lookup rows. A
// missing reference (or a NULL name) comes back as "".
type TaskRecord struct {
	Task
	Department string `json:"department" db:"department"`
	Institute  string `json:"institute" db:"institute"`
	Scope      string `json:"scope" db:"scope"`
	TrialStage string `json:"trial_stage" db:"trial_stage"`
	Type       string `json:"type" db:"type"`
}

// TaskFilter holds the optional search criteria. Empty strings are ignored.
type TaskFilter struct {
	Title      string // substring, case-insensitive
	Department string // exact, case-insensitive
	Institute  string // substring, case-sensitive
	Type       string // exact, case-sensitive
	TrialStage string // exact, case-insensitive
	Scope      string // exact, case-sensitive
	Page       Page
}

// Page is the [Offset, Offset+Limit) window applied after ordering.
type Page struct {
	Offset int
	Limit  int
}

const (
	DefaultOffset = 0
	DefaultLimit  = 10
)

// DefaultPage is used when a caller supplies no pagination.
func DefaultPage() Page {
	return Page{Offset: DefaultOffset, Limit: DefaultLimit}
}
