package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/synapse-edu/scholarflow-api/internal/models"
)

// FindSubstitutes computes the professors eligible to cover for the absent
// professor. A candidate is eligible when it belongs to the same
// organization, is a different person, is available, and shares at least one
// subject with the absent professor. The result keeps the relative order of
// the input pool; there is no scoring.
//
// An absent professor with no recorded subjects has no matchable
// replacement, so the result is empty regardless of the pool.
func FindSubstitutes(absent models.Professor, pool []models.Professor) []models.MatchCandidate {
	candidates := []models.MatchCandidate{}
	if len(absent.Subjects) == 0 {
		return candidates
	}

	absentSubjects := make(map[string]struct{}, len(absent.Subjects))
	for _, subject := range absent.Subjects {
		absentSubjects[subject] = struct{}{}
	}

	for _, candidate := range pool {
		if candidate.OrganizationID != absent.OrganizationID {
			continue
		}
		if candidate.ID == absent.ID {
			continue
		}
		if !candidate.Available {
			continue
		}
		if !sharesSubject(absentSubjects, candidate.Subjects) {
			continue
		}
		candidates = append(candidates, models.MatchCandidate{
			ID:       candidate.ID,
			FullName: candidate.FullName,
			Phone:    candidate.Phone,
			Subjects: candidate.Subjects,
		})
	}

	return candidates
}

func sharesSubject(absentSubjects map[string]struct{}, subjects []string) bool {
	for _, subject := range subjects {
		if _, ok := absentSubjects[subject]; ok {
			return true
		}
	}
	return false
}

type matchProfessorRepository interface {
	FindByNationalID(ctx context.Context, orgID, nationalID string) (*models.Professor, error)
	ListAvailable(ctx context.Context, orgID string) ([]models.Professor, error)
}

// MatchResult reports a matching pass. Ran distinguishes "no eligible
// substitutes" (true, empty candidates) from "matching did not run"
// (false): the caller persists the leave record either way.
type MatchResult struct {
	Ran        bool                   `json:"ran"`
	Candidates []models.MatchCandidate `json:"candidates"`
}

// SubstituteService loads professor data and applies the eligibility
// filter. All failures degrade to an empty, not-run result with a logged
// diagnostic; a broken matching pass must never abort a successful record
// persistence.
type SubstituteService struct {
	professors matchProfessorRepository
	logger     *zap.Logger
}

// NewSubstituteService constructs a SubstituteService.
func NewSubstituteService(professors matchProfessorRepository, logger *zap.Logger) *SubstituteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubstituteService{professors: professors, logger: logger}
}

// Match resolves the absent professor by national id within the given
// organization, loads the availability pool, and runs the pure filter.
func (s *SubstituteService) Match(ctx context.Context, orgID, nationalID string) MatchResult {
	notRun := MatchResult{Ran: false, Candidates: []models.MatchCandidate{}}

	absent, err := s.professors.FindByNationalID(ctx, orgID, nationalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Sugar().Warnw("substitute matching skipped, absent professor unknown",
				"organization_id", orgID, "national_id", nationalID)
		} else {
			s.logger.Sugar().Errorw("substitute matching failed loading absent professor",
				"organization_id", orgID, "national_id", nationalID, "error", err)
		}
		return notRun
	}

	pool, err := s.professors.ListAvailable(ctx, orgID)
	if err != nil {
		s.logger.Sugar().Errorw("substitute matching failed loading candidate pool",
			"organization_id", orgID, "error", err)
		return notRun
	}

	return MatchResult{Ran: true, Candidates: FindSubstitutes(*absent, pool)}
}
