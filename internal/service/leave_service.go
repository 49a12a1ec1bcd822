package service

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/synapse-edu/scholarflow-api/internal/models"
	appErrors "github.com/synapse-edu/scholarflow-api/pkg/errors"
	"github.com/synapse-edu/scholarflow-api/pkg/jobs"
)

type leaveRepository interface {
	List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveRecord, int, error)
	FindByID(ctx context.Context, orgID, id string) (*models.LeaveRecord, error)
	Create(ctx context.Context, record *models.LeaveRecord) error
	Update(ctx context.Context, record *models.LeaveRecord) error
}

type leaveOrganizationRepository interface {
	FindByID(ctx context.Context, id string) (*models.Organization, error)
}

type documentExtractor interface {
	Extract(ctx context.Context, document []byte, mimeType string) (map[string]interface{}, error)
}

// Matcher runs the substitute matching pass for a newly stored leave.
// Exported so composition roots can hand the service a nil matcher when
// matching is disabled.
type Matcher interface {
	Match(ctx context.Context, orgID, nationalID string) MatchResult
}

// NotificationQueue dispatches queued substitute notifications.
type NotificationQueue interface {
	Enqueue(job jobs.Job) error
}

// NotificationPayload is the job payload for one substitute notification.
type NotificationPayload struct {
	Phone   string
	Message string
}

// JobTypeSubstituteNotification tags substitute notification jobs.
const JobTypeSubstituteNotification = "substitute_notification"

var allowedUploadExtensions = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// CreateLeaveResult bundles a persisted record with its matching outcome so
// callers can tell "no eligible substitutes" apart from "matching did not
// run".
type CreateLeaveResult struct {
	Record *models.LeaveRecord `json:"record"`
	Match  MatchResult         `json:"match"`
}

// UpdateLeaveRequest carries human corrections after review, typically
// fixing dates the extractor could not resolve.
type UpdateLeaveRequest struct {
	ProfessorName string  `json:"professor_name" validate:"required"`
	ProfessorID   string  `json:"professor_id" validate:"required"`
	DiagnosisCode *string `json:"diagnosis_code" validate:"omitempty,max=20"`
	RestDays      int     `json:"rest_days" validate:"required,gt=0"`
	StartDate     string  `json:"start_date" validate:"required"`
	EndDate       string  `json:"end_date" validate:"required"`
	Issuer        string  `json:"issuer" validate:"required"`
}

// LeaveService orchestrates the document intake flow: extraction,
// normalization, persistence, substitute matching, and notification
// dispatch.
type LeaveService struct {
	leaves        leaveRepository
	organizations leaveOrganizationRepository
	extractor     documentExtractor
	matcher       Matcher
	notifications NotificationQueue
	validator     *validator.Validate
	logger        *zap.Logger
	metrics       *MetricsService
	maxUploadSize int64
}

// NewLeaveService constructs a LeaveService. The matcher and notification
// queue are optional; a nil matcher records a not-run match outcome.
func NewLeaveService(
	leaves leaveRepository,
	organizations leaveOrganizationRepository,
	extractor documentExtractor,
	matcher Matcher,
	notifications NotificationQueue,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics *MetricsService,
	maxUploadSize int64,
) *LeaveService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxUploadSize <= 0 {
		maxUploadSize = 10 * 1024 * 1024
	}
	return &LeaveService{
		leaves:        leaves,
		organizations: organizations,
		extractor:     extractor,
		matcher:       matcher,
		notifications: notifications,
		validator:     validate,
		logger:        logger,
		metrics:       metrics,
		maxUploadSize: maxUploadSize,
	}
}

// ExtractDocument sends an uploaded leave document through the extraction
// model and returns the normalized record for human review. Nothing is
// persisted and the document bytes never touch disk.
func (s *LeaveService) ExtractDocument(ctx context.Context, filename string, document []byte) (*models.LeaveRecord, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	mimeType, ok := allowedUploadExtensions[ext]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedMedia, "unsupported file format, upload PDF or image")
	}
	if int64(len(document)) > s.maxUploadSize {
		return nil, appErrors.ErrPayloadTooLarge
	}
	if len(document) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "uploaded file is empty")
	}

	raw, err := s.extractor.Extract(ctx, document, mimeType)
	if err != nil {
		s.metrics.CountExtraction(false)
		return nil, appErrors.Wrap(err, appErrors.ErrExtractionFailed.Code, appErrors.ErrExtractionFailed.Status, "document extraction failed")
	}
	s.metrics.CountExtraction(true)

	record, err := NormalizeLeave(raw)
	if err != nil {
		return nil, err
	}
	s.warnOnRestDayMismatch(record)
	return record, nil
}

// Create normalizes reviewed fields, persists the record, and runs the
// substitute matching pass. A failed match never rolls back the persisted
// record; it degrades to a not-run outcome.
func (s *LeaveService) Create(ctx context.Context, orgID string, raw map[string]interface{}) (*CreateLeaveResult, error) {
	if _, err := s.organizations.FindByID(ctx, orgID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "organization not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load organization")
	}

	record, err := NormalizeLeave(raw)
	if err != nil {
		return nil, err
	}
	record.OrganizationID = orgID
	s.warnOnRestDayMismatch(record)

	if err := s.leaves.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store leave record")
	}
	s.metrics.CountLeaveCreated()

	match := s.runMatching(ctx, record)
	return &CreateLeaveResult{Record: record, Match: match}, nil
}

// List returns leave records plus pagination data.
func (s *LeaveService) List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveRecord, *models.Pagination, error) {
	records, total, err := s.leaves.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leave records")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return records, pagination, nil
}

// Get returns a leave record by id.
func (s *LeaveService) Get(ctx context.Context, orgID, id string) (*models.LeaveRecord, error) {
	record, err := s.leaves.FindByID(ctx, orgID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "leave record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave record")
	}
	return record, nil
}

// Update applies reviewed corrections to an existing record. Corrections go
// through the same normalization pass as intake, so a corrected date that
// still does not parse stays unresolved rather than being rejected.
func (s *LeaveService) Update(ctx context.Context, orgID, id string, req UpdateLeaveRequest) (*models.LeaveRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid leave payload")
	}

	record, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	raw := map[string]interface{}{
		FieldProfessorName: req.ProfessorName,
		FieldProfessorID:   req.ProfessorID,
		FieldRestDays:      req.RestDays,
		FieldStartDate:     req.StartDate,
		FieldEndDate:       req.EndDate,
		FieldIssuer:        req.Issuer,
	}
	if req.DiagnosisCode != nil {
		raw[FieldDiagnosisCode] = *req.DiagnosisCode
	}
	corrected, err := NormalizeLeave(raw)
	if err != nil {
		return nil, err
	}
	s.warnOnRestDayMismatch(corrected)

	record.ProfessorName = corrected.ProfessorName
	record.NationalID = corrected.NationalID
	record.DiagnosisCode = corrected.DiagnosisCode
	record.RestDays = corrected.RestDays
	record.StartDate = corrected.StartDate
	record.EndDate = corrected.EndDate
	record.Issuer = corrected.Issuer

	if err := s.leaves.Update(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update leave record")
	}
	return record, nil
}

func (s *LeaveService) runMatching(ctx context.Context, record *models.LeaveRecord) MatchResult {
	if s.matcher == nil {
		return MatchResult{Ran: false, Candidates: []models.MatchCandidate{}}
	}

	match := s.matcher.Match(ctx, record.OrganizationID, record.NationalID)
	s.metrics.CountMatch(match.Ran, len(match.Candidates))
	if match.Ran {
		s.notifyCandidates(record, match.Candidates)
	}
	return match
}

func (s *LeaveService) notifyCandidates(record *models.LeaveRecord, candidates []models.MatchCandidate) {
	if s.notifications == nil {
		return
	}
	for _, candidate := range candidates {
		if candidate.Phone == nil || *candidate.Phone == "" {
			continue
		}
		message := fmt.Sprintf(
			"Hello %s, professor %s is on medical leave (%s to %s, %d days). Can you cover their classes?",
			candidate.FullName, record.ProfessorName, record.StartDate, record.EndDate, record.RestDays,
		)
		job := jobs.Job{
			ID:      fmt.Sprintf("%s:%s", record.ID, candidate.ID),
			Type:    JobTypeSubstituteNotification,
			Payload: NotificationPayload{Phone: *candidate.Phone, Message: message},
		}
		if err := s.notifications.Enqueue(job); err != nil {
			s.logger.Sugar().Warnw("failed to enqueue substitute notification",
				"leave_id", record.ID, "candidate_id", candidate.ID, "error", err)
			continue
		}
		s.metrics.CountNotificationEnqueued()
	}
}

// warnOnRestDayMismatch logs when the declared day count disagrees with the
// resolved date span. The record is still accepted; issuing entities count
// days in ways that do not always match the calendar.
func (s *LeaveService) warnOnRestDayMismatch(record *models.LeaveRecord) {
	span, ok := LeaveSpanDays(record.StartDate, record.EndDate)
	if !ok || span == record.RestDays {
		return
	}
	s.logger.Sugar().Warnw("rest day count disagrees with date span",
		"national_id", record.NationalID,
		"rest_days", record.RestDays,
		"date_span_days", span,
	)
}
