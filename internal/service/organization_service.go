package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/synapse-edu/scholarflow-api/internal/models"
	appErrors "github.com/synapse-edu/scholarflow-api/pkg/errors"
)

type organizationRepository interface {
	List(ctx context.Context) ([]models.Organization, error)
	FindByID(ctx context.Context, id string) (*models.Organization, error)
	Create(ctx context.Context, organization *models.Organization) error
}

// CreateOrganizationRequest represents payload for registering schools.
type CreateOrganizationRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// OrganizationService orchestrates organization operations.
type OrganizationService struct {
	repo      organizationRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewOrganizationService constructs an OrganizationService.
func NewOrganizationService(repo organizationRepository, validate *validator.Validate, logger *zap.Logger) *OrganizationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrganizationService{repo: repo, validator: validate, logger: logger}
}

// List returns every registered organization.
func (s *OrganizationService) List(ctx context.Context) ([]models.Organization, error) {
	organizations, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list organizations")
	}
	return organizations, nil
}

// Get returns an organization by id.
func (s *OrganizationService) Get(ctx context.Context, id string) (*models.Organization, error) {
	organization, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "organization not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load organization")
	}
	return organization, nil
}

// Create registers a new organization.
func (s *OrganizationService) Create(ctx context.Context, req CreateOrganizationRequest) (*models.Organization, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid organization payload")
	}
	organization := &models.Organization{Name: strings.TrimSpace(req.Name)}
	if err := s.repo.Create(ctx, organization); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create organization")
	}
	return organization, nil
}
