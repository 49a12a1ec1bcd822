package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/synapse-edu/scholarflow-api/internal/models"
)

// LeaveRepository manages persistence for medical-leave records.
type LeaveRepository struct {
	db *sqlx.DB
}

// NewLeaveRepository constructs a LeaveRepository.
func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

const leaveColumns = "id, organization_id, professor_name, national_id, diagnosis_code, rest_days, start_date, end_date, issuer, created_at, updated_at"

func leaveFilterClause(filter models.LeaveFilter) (string, []interface{}) {
	base := "FROM leave_records WHERE organization_id = $1"
	args := []interface{}{filter.OrganizationID}

	if filter.NationalID != "" {
		base += fmt.Sprintf(" AND national_id = $%d", len(args)+1)
		args = append(args, filter.NationalID)
	}

	// Resolved dates are stored in ISO form; anything else is raw text
	// awaiting human correction.
	if filter.Unresolved != nil {
		resolved := "(start_date ~ '^[0-9]{4}-[0-9]{2}-[0-9]{2}$' AND end_date ~ '^[0-9]{4}-[0-9]{2}-[0-9]{2}$')"
		if *filter.Unresolved {
			base += " AND NOT " + resolved
		} else {
			base += " AND " + resolved
		}
	}
	return base, args
}

// List returns leave records matching filters along with total count.
func (r *LeaveRepository) List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveRecord, int, error) {
	base, args := leaveFilterClause(filter)

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"professor_name": "professor_name",
		"rest_days":      "rest_days",
		// ISO text sorts chronologically; unresolved raw dates land
		// wherever their text does.
		"start_date": "start_date",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "created_at"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", leaveColumns, base, column, order, size, offset)
	var records []models.LeaveRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list leave records: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count leave records: %w", err)
	}

	return records, total, nil
}

// ListAll returns every record matching the filter up to limit, skipping
// the page-size clamp used by the paginated listing. Exports render the
// whole register in one pass.
func (r *LeaveRepository) ListAll(ctx context.Context, filter models.LeaveFilter, limit int) ([]models.LeaveRecord, error) {
	if limit <= 0 {
		limit = 5000
	}
	base, args := leaveFilterClause(filter)
	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d", leaveColumns, base, limit)
	var records []models.LeaveRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list all leave records: %w", err)
	}
	return records, nil
}

// FindByID fetches a leave record scoped to its organization.
func (r *LeaveRepository) FindByID(ctx context.Context, orgID, id string) (*models.LeaveRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM leave_records WHERE organization_id = $1 AND id = $2", leaveColumns)
	var record models.LeaveRecord
	if err := r.db.GetContext(ctx, &record, query, orgID, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a new leave record.
func (r *LeaveRepository) Create(ctx context.Context, record *models.LeaveRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	const query = `INSERT INTO leave_records (id, organization_id, professor_name, national_id, diagnosis_code, rest_days, start_date, end_date, issuer, created_at, updated_at)
		VALUES (:id, :organization_id, :professor_name, :national_id, :diagnosis_code, :rest_days, :start_date, :end_date, :issuer, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create leave record: %w", err)
	}
	return nil
}

// Update persists corrected dates and day count on an existing record.
func (r *LeaveRepository) Update(ctx context.Context, record *models.LeaveRecord) error {
	record.UpdatedAt = time.Now().UTC()
	const query = `UPDATE leave_records SET professor_name = :professor_name, national_id = :national_id, diagnosis_code = :diagnosis_code, rest_days = :rest_days, start_date = :start_date, end_date = :end_date, issuer = :issuer, updated_at = :updated_at WHERE id = :id AND organization_id = :organization_id`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("update leave record: %w", err)
	}
	return nil
}
