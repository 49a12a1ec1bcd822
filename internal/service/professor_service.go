package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/synapse-edu/scholarflow-api/internal/models"
	appErrors "github.com/synapse-edu/scholarflow-api/pkg/errors"
)

type professorRepository interface {
	List(ctx context.Context, filter models.ProfessorFilter) ([]models.Professor, int, error)
	FindByID(ctx context.Context, orgID, id string) (*models.Professor, error)
	ExistsByNationalID(ctx context.Context, orgID, nationalID, excludeID string) (bool, error)
	Create(ctx context.Context, professor *models.Professor) error
	Update(ctx context.Context, professor *models.Professor) error
}

type professorCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CreateProfessorRequest represents payload for registering professors.
type CreateProfessorRequest struct {
	FullName      string   `json:"full_name" validate:"required"`
	NationalID    string   `json:"national_id" validate:"required"`
	Phone         *string  `json:"phone" validate:"omitempty,max=50"`
	Subjects      []string `json:"subjects" validate:"omitempty,dive,required"`
	Available     *bool    `json:"is_available"`
	ContractHours float64  `json:"contract_hours" validate:"omitempty,gte=0"`
}

// UpdateProfessorRequest represents payload for updating professors.
type UpdateProfessorRequest struct {
	FullName      string   `json:"full_name" validate:"required"`
	NationalID    string   `json:"national_id" validate:"required"`
	Phone         *string  `json:"phone" validate:"omitempty,max=50"`
	Subjects      []string `json:"subjects" validate:"omitempty,dive,required"`
	Available     *bool    `json:"is_available"`
	ContractHours float64  `json:"contract_hours" validate:"omitempty,gte=0"`
}

type cachedProfessorList struct {
	Professors []models.Professor `json:"professors"`
	TotalCount int                `json:"total_count"`
}

// ProfessorService orchestrates professor roster operations. Roster reads
// go through the cache; every write invalidates the organization's cached
// pages so the substitute pool never serves stale availability for long.
type ProfessorService struct {
	repo      professorRepository
	cache     professorCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewProfessorService constructs a ProfessorService. The cache is optional.
func NewProfessorService(repo professorRepository, cache professorCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *ProfessorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ProfessorService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger, metrics: metrics}
}

// List returns professors plus pagination data. The boolean reports
// whether the page came from cache so handlers can surface it in meta.
func (s *ProfessorService) List(ctx context.Context, filter models.ProfessorFilter) ([]models.Professor, *models.Pagination, bool, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}

	key := s.listCacheKey(filter, page, size)
	if s.cache != nil {
		var cached cachedProfessorList
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return cached.Professors, &models.Pagination{Page: page, PageSize: size, TotalCount: cached.TotalCount}, true, nil
		} else if err != appErrors.ErrCacheMiss {
			s.logger.Sugar().Warnw("professor cache read failed", "key", key, "error", err)
		}
		s.metrics.RecordCacheOperation(false)
	}

	professors, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list professors")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, cachedProfessorList{Professors: professors, TotalCount: total}, s.cacheTTL); err != nil {
			s.logger.Sugar().Warnw("professor cache write failed", "key", key, "error", err)
		}
	}

	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return professors, pagination, false, nil
}

// Get returns a professor by id.
func (s *ProfessorService) Get(ctx context.Context, orgID, id string) (*models.Professor, error) {
	professor, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "professor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor")
	}
	return professor, nil
}

// Create registers a new professor.
func (s *ProfessorService) Create(ctx context.Context, orgID string, req CreateProfessorRequest) (*models.Professor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid professor payload")
	}

	nationalID := normalizeNationalID(req.NationalID)
	if nationalID == "" {
		return nil, appErrors.InvalidField("national_id", "must not be blank")
	}
	if err := s.ensureUniqueNationalID(ctx, orgID, nationalID, ""); err != nil {
		return nil, err
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}
	professor := &models.Professor{
		OrganizationID: orgID,
		FullName:       strings.TrimSpace(req.FullName),
		NationalID:     nationalID,
		Phone:          normalizeOptional(req.Phone),
		Subjects:       pq.StringArray(trimSubjects(req.Subjects)),
		Available:      available,
		ContractHours:  req.ContractHours,
	}

	if err := s.repo.Create(ctx, professor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create professor")
	}
	s.invalidateRoster(ctx, orgID)
	return professor, nil
}

// Update modifies an existing professor, including availability used by the
// substitute pool.
func (s *ProfessorService) Update(ctx context.Context, orgID, id string, req UpdateProfessorRequest) (*models.Professor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid professor payload")
	}

	professor, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	nationalID := normalizeNationalID(req.NationalID)
	if nationalID == "" {
		return nil, appErrors.InvalidField("national_id", "must not be blank")
	}
	if err := s.ensureUniqueNationalID(ctx, orgID, nationalID, id); err != nil {
		return nil, err
	}

	professor.FullName = strings.TrimSpace(req.FullName)
	professor.NationalID = nationalID
	professor.Phone = normalizeOptional(req.Phone)
	professor.Subjects = pq.StringArray(trimSubjects(req.Subjects))
	if req.Available != nil {
		professor.Available = *req.Available
	}
	professor.ContractHours = req.ContractHours

	if err := s.repo.Update(ctx, professor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update professor")
	}
	s.invalidateRoster(ctx, orgID)
	return professor, nil
}

// SetAvailability flips the availability flag without touching the rest of
// the profile.
func (s *ProfessorService) SetAvailability(ctx context.Context, orgID, id string, available bool) (*models.Professor, error) {
	professor, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	professor.Available = available
	if err := s.repo.Update(ctx, professor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update professor availability")
	}
	s.invalidateRoster(ctx, orgID)
	return professor, nil
}

func (s *ProfessorService) ensureUniqueNationalID(ctx context.Context, orgID, nationalID, excludeID string) error {
	exists, err := s.repo.ExistsByNationalID(ctx, orgID, nationalID, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check national id uniqueness")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "national id already registered")
	}
	return nil
}

func (s *ProfessorService) listCacheKey(filter models.ProfessorFilter, page, size int) string {
	available := "any"
	if filter.Available != nil {
		available = fmt.Sprintf("%t", *filter.Available)
	}
	return fmt.Sprintf("professors:%s:search=%s:subject=%s:available=%s:page=%d:size=%d:sort=%s_%s",
		filter.OrganizationID, filter.Search, filter.Subject, available, page, size, filter.SortBy, filter.SortOrder)
}

func (s *ProfessorService) invalidateRoster(ctx context.Context, orgID string) {
	if s.cache == nil {
		return
	}
	pattern := fmt.Sprintf("professors:%s:*", orgID)
	if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Sugar().Warnw("professor cache invalidation failed", "organization_id", orgID, "error", err)
	}
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func trimSubjects(subjects []string) []string {
	out := make([]string, 0, len(subjects))
	for _, subject := range subjects {
		trimmed := strings.TrimSpace(subject)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
