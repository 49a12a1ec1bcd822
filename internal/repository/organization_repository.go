package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/synapse-edu/scholarflow-api/internal/models"
)

// OrganizationRepository manages persistence for organizations.
type OrganizationRepository struct {
	db *sqlx.DB
}

// NewOrganizationRepository constructs an OrganizationRepository.
func NewOrganizationRepository(db *sqlx.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// List returns every organization ordered by name.
func (r *OrganizationRepository) List(ctx context.Context) ([]models.Organization, error) {
	const query = `SELECT id, name, created_at FROM organizations ORDER BY name ASC`
	var organizations []models.Organization
	if err := r.db.SelectContext(ctx, &organizations, query); err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	return organizations, nil
}

// FindByID fetches an organization by ID.
func (r *OrganizationRepository) FindByID(ctx context.Context, id string) (*models.Organization, error) {
	const query = `SELECT id, name, created_at FROM organizations WHERE id = $1`
	var organization models.Organization
	if err := r.db.GetContext(ctx, &organization, query, id); err != nil {
		return nil, err
	}
	return &organization, nil
}

// Create inserts a new organization.
func (r *OrganizationRepository) Create(ctx context.Context, organization *models.Organization) error {
	if organization.ID == "" {
		organization.ID = uuid.NewString()
	}
	if organization.CreatedAt.IsZero() {
		organization.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO organizations (id, name, created_at) VALUES (:id, :name, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, organization); err != nil {
		return fmt.Errorf("create organization: %w", err)
	}
	return nil
}
