package models

import "time"

// LookupKind names one of the five categorical lookup tables.
type LookupKind string

const (
	DepartmentLookup LookupKind = "departments"
	InstituteLookup  LookupKind = "institutes"
	ScopeLookup      LookupKind = "scopes"
	TrialStageLookup LookupKind = "trial_stages"
	TypeLookup       LookupKind = "types"
)

// LookupKinds lists every lookup kind in the order create-task inserts them.
var LookupKinds = []LookupKind{
	TypeLookup,
	ScopeLookup,
	InstituteLookup,
	TrialStageLookup,
	DepartmentLookup,
}

// Table returns the table backing the kind.
func (k LookupKind) Table() string {
	return string(k)
}

func (k LookupKind) Valid() bool {
	switch k {
	case DepartmentLookup, InstituteLookup, ScopeLookup, TrialStageLookup, TypeLookup:
		return true
	}
	return false
}

// Lookup is a row of one of the categorical tables. Rows are never shared by
// name: every task creation inserts fresh ones.
type Lookup struct {
	ID        int64      `json:"id" db:"id"`                 // PostgreSQL auto-increment
	Kind      LookupKind `json:"kind" db:"-"`                // Table the row lives in
	Name      *string    `json:"name" db:"name"`             // Nullable, max 100 chars
	CreatedAt time.Time  `json:"created_at" db:"created_at"` // Set on insert
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"` // Set on insert and every update
}

// NameOrEmpty returns the lookup name, or "" when it is NULL.
func (l Lookup) NameOrEmpty() string {
	if l.Name == nil {
		return ""
	}
	return *l.Name
}
