package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the canonical wire/storage form for resolved leave dates.
const DateLayout = "2006-01-02"

// LeaveDate is either a resolved calendar date or, when the extracted text
// could not be parsed, the original raw text carried forward for human
// correction. Exactly one of the two states holds at a time.
type LeaveDate struct {
	resolved *time.Time
	raw      string
}

// ResolvedDate builds a LeaveDate from a calendar date. The time portion is
// truncated to midnight UTC.
func ResolvedDate(t time.Time) LeaveDate {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return LeaveDate{resolved: &day}
}

// UnresolvedDate builds a LeaveDate that preserves unparseable source text.
func UnresolvedDate(raw string) LeaveDate {
	return LeaveDate{raw: raw}
}

// IsResolved reports whether the date parsed to a real calendar date.
func (d LeaveDate) IsResolved() bool {
	return d.resolved != nil
}

// Date returns the resolved calendar date. The boolean is false for
// unresolved values.
func (d LeaveDate) Date() (time.Time, bool) {
	if d.resolved == nil {
		return time.Time{}, false
	}
	return *d.resolved, true
}

// Raw returns the original unparsed text for unresolved values.
func (d LeaveDate) Raw() string {
	return d.raw
}

// String renders the canonical form: ISO date when resolved, source text
// otherwise.
func (d LeaveDate) String() string {
	if d.resolved != nil {
		return d.resolved.Format(DateLayout)
	}
	return d.raw
}

// MarshalJSON emits the canonical string form.
func (d LeaveDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts the canonical ISO form and keeps anything else as
// unresolved text.
func (d *LeaveDate) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = ParseLeaveDate(raw)
	return nil
}

// Value stores the canonical string form.
func (d LeaveDate) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan reads the stored text back into the union.
func (d *LeaveDate) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = LeaveDate{}
		return nil
	case time.Time:
		*d = ResolvedDate(v)
		return nil
	case string:
		*d = ParseLeaveDate(v)
		return nil
	case []byte:
		*d = ParseLeaveDate(string(v))
		return nil
	default:
		return fmt.Errorf("unsupported leave date source %T", src)
	}
}

// ParseLeaveDate interprets canonical ISO text, falling back to unresolved.
func ParseLeaveDate(raw string) LeaveDate {
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return ResolvedDate(t)
	}
	return UnresolvedDate(raw)
}

// LeaveRecord is the canonical representation of one medical-leave document
// after normalization. Records are created once per extraction event and
// never mutated outside human date corrections.
type LeaveRecord struct {
	ID             string    `db:"id" json:"id"`
	OrganizationID string    `db:"organization_id" json:"organization_id"`
	ProfessorName  string    `db:"professor_name" json:"professor_name"`
	NationalID     string    `db:"national_id" json:"professor_id"`
	DiagnosisCode  *string   `db:"diagnosis_code" json:"diagnosis_code,omitempty"`
	RestDays       int       `db:"rest_days" json:"rest_days"`
	StartDate      LeaveDate `db:"start_date" json:"start_date"`
	EndDate        LeaveDate `db:"end_date" json:"end_date"`
	Issuer         string    `db:"issuer" json:"issuer"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// HasUnresolvedDates reports whether either date still carries raw text.
func (r *LeaveRecord) HasUnresolvedDates() bool {
	return !r.StartDate.IsResolved() || !r.EndDate.IsResolved()
}

// LeaveFilter captures filtering options for listing leave records.
type LeaveFilter struct {
	OrganizationID string
	NationalID     string
	Unresolved     *bool
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}
