package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/synapse-edu/scholarflow-api/internal/models"
)

// ProfessorRepository manages persistence for professor profiles.
type ProfessorRepository struct {
	db *sqlx.DB
}

// NewProfessorRepository constructs a ProfessorRepository.
func NewProfessorRepository(db *sqlx.DB) *ProfessorRepository {
	return &ProfessorRepository{db: db}
}

const professorColumns = "id, organization_id, full_name, national_id, phone, subjects, is_available, contract_hours, created_at, updated_at"

// List returns professors matching filters along with total count.
func (r *ProfessorRepository) List(ctx context.Context, filter models.ProfessorFilter) ([]models.Professor, int, error) {
	base := "FROM professors WHERE organization_id = $1"
	args := []interface{}{filter.OrganizationID}

	if filter.Available != nil {
		base += fmt.Sprintf(" AND is_available = $%d", len(args)+1)
		args = append(args, *filter.Available)
	}
	if filter.Subject != "" {
		base += fmt.Sprintf(" AND $%d = ANY(subjects)", len(args)+1)
		args = append(args, filter.Subject)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		base += fmt.Sprintf(" AND (LOWER(full_name) LIKE $%d OR LOWER(national_id) LIKE $%d)", len(args)+1, len(args)+1)
		args = append(args, search)
	}

	allowedSorts := map[string]string{
		"full_name":      "full_name",
		"contract_hours": "contract_hours",
		"created_at":     "created_at",
		"updated_at":     "updated_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "full_name"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", professorColumns, base, column, order, size, offset)
	var professors []models.Professor
	if err := r.db.SelectContext(ctx, &professors, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list professors: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count professors: %w", err)
	}

	return professors, total, nil
}

// FindByID fetches a professor by ID.
func (r *ProfessorRepository) FindByID(ctx context.Context, orgID, id string) (*models.Professor, error) {
	query := fmt.Sprintf("SELECT %s FROM professors WHERE organization_id = $1 AND id = $2", professorColumns)
	var professor models.Professor
	if err := r.db.GetContext(ctx, &professor, query, orgID, id); err != nil {
		return nil, err
	}
	return &professor, nil
}

// FindByNationalID fetches a professor by normalized national identity
// string within one organization.
func (r *ProfessorRepository) FindByNationalID(ctx context.Context, orgID, nationalID string) (*models.Professor, error) {
	query := fmt.Sprintf("SELECT %s FROM professors WHERE organization_id = $1 AND national_id = $2", professorColumns)
	var professor models.Professor
	if err := r.db.GetContext(ctx, &professor, query, orgID, nationalID); err != nil {
		return nil, err
	}
	return &professor, nil
}

// ListAvailable returns the substitute candidate pool for one organization.
// Order is stable so matching output stays deterministic.
func (r *ProfessorRepository) ListAvailable(ctx context.Context, orgID string) ([]models.Professor, error) {
	query := fmt.Sprintf("SELECT %s FROM professors WHERE organization_id = $1 AND is_available = TRUE ORDER BY created_at ASC", professorColumns)
	var professors []models.Professor
	if err := r.db.SelectContext(ctx, &professors, query, orgID); err != nil {
		return nil, fmt.Errorf("list available professors: %w", err)
	}
	return professors, nil
}

// ExistsByNationalID checks whether another professor in the organization
// uses the same national id.
func (r *ProfessorRepository) ExistsByNationalID(ctx context.Context, orgID, nationalID, excludeID string) (bool, error) {
	query := "SELECT 1 FROM professors WHERE organization_id = $1 AND national_id = $2"
	args := []interface{}{orgID, nationalID}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check professor national id: %w", err)
	}
	return true, nil
}

// Create inserts a new professor profile.
func (r *ProfessorRepository) Create(ctx context.Context, professor *models.Professor) error {
	if professor.ID == "" {
		professor.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if professor.CreatedAt.IsZero() {
		professor.CreatedAt = now
	}
	professor.UpdatedAt = now

	const query = `INSERT INTO professors (id, organization_id, full_name, national_id, phone, subjects, is_available, contract_hours, created_at, updated_at)
		VALUES (:id, :organization_id, :full_name, :national_id, :phone, :subjects, :is_available, :contract_hours, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, professor); err != nil {
		return fmt.Errorf("create professor: %w", err)
	}
	return nil
}

// Update modifies an existing professor profile.
func (r *ProfessorRepository) Update(ctx context.Context, professor *models.Professor) error {
	professor.UpdatedAt = time.Now().UTC()
	const query = `UPDATE professors SET full_name = :full_name, national_id = :national_id, phone = :phone, subjects = :subjects, is_available = :is_available, contract_hours = :contract_hours, updated_at = :updated_at WHERE id = :id AND organization_id = :organization_id`
	if _, err := r.db.NamedExecContext(ctx, query, professor); err != nil {
		return fmt.Errorf("update professor: %w", err)
	}
	return nil
}
