package models

import (
	"time"

	"github.com/lib/pq"
)

// Professor represents an instructor profile scoped to one organization.
type Professor struct {
	ID             string         `db:"id" json:"id"`
	OrganizationID string         `db:"organization_id" json:"organization_id"`
	FullName       string         `db:"full_name" json:"full_name"`
	NationalID     string         `db:"national_id" json:"national_id"`
	Phone          *string        `db:"phone" json:"phone,omitempty"`
	Subjects       pq.StringArray `db:"subjects" json:"subjects"`
	Available      bool           `db:"is_available" json:"is_available"`
	ContractHours  float64        `db:"contract_hours" json:"contract_hours"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// ProfessorFilter captures filtering options for listing professors.
type ProfessorFilter struct {
	OrganizationID string
	Search         string
	Subject        string
	Available      *bool
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}

// MatchCandidate is the subset of a professor profile emitted for eligible
// substitutes. Candidates keep the relative order of the input pool.
type MatchCandidate struct {
	ID       string   `json:"id"`
	FullName string   `json:"full_name"`
	Phone    *string  `json:"phone,omitempty"`
	Subjects []string `json:"subjects"`
}
