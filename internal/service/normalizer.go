package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/synapse-edu/scholarflow-api/internal/models"
	appErrors "github.com/synapse-edu/scholarflow-api/pkg/errors"
)

// Extraction field names as emitted by the document-understanding model.
const (
	FieldProfessorName = "professor_name"
	FieldProfessorID   = "professor_id"
	FieldDiagnosisCode = "diagnosis_code"
	FieldRestDays      = "rest_days"
	FieldStartDate     = "start_date"
	FieldEndDate       = "end_date"
	FieldIssuer        = "issuer"
)

// Accepted date layouts for extracted text, tried in order. Day-first
// layouts match how issuing entities print leave dates.
var leaveDateLayouts = []string{"02-01-2006", "02/01/2006", "02-01-06"}

// NormalizeLeave converts raw, untrusted extraction output into a canonical
// LeaveRecord. It is a pure transform: same input, same output, no side
// effects. Missing required fields and invalid day counts reject the
// document; unparseable dates degrade to unresolved text so a reviewer can
// correct them later.
func NormalizeLeave(raw map[string]interface{}) (*models.LeaveRecord, error) {
	record := &models.LeaveRecord{}

	name, err := requireText(raw, FieldProfessorName)
	if err != nil {
		return nil, err
	}
	record.ProfessorName = name

	nationalID, err := requireText(raw, FieldProfessorID)
	if err != nil {
		return nil, err
	}
	record.NationalID = normalizeNationalID(nationalID)

	restDays, err := requirePositiveInt(raw, FieldRestDays)
	if err != nil {
		return nil, err
	}
	record.RestDays = restDays

	record.StartDate, err = requireDate(raw, FieldStartDate)
	if err != nil {
		return nil, err
	}
	record.EndDate, err = requireDate(raw, FieldEndDate)
	if err != nil {
		return nil, err
	}
	if start, ok := record.StartDate.Date(); ok {
		if end, ok := record.EndDate.Date(); ok && end.Before(start) {
			return nil, appErrors.InvalidField(FieldEndDate, "end date precedes start date")
		}
	}

	issuer, err := requireText(raw, FieldIssuer)
	if err != nil {
		return nil, err
	}
	record.Issuer = issuer

	// Privacy default: an absent or blank diagnosis stays null rather than
	// being guessed at.
	if code := optionalText(raw, FieldDiagnosisCode); code != "" {
		record.DiagnosisCode = &code
	}

	return record, nil
}

// normalizeNationalID canonicalizes a national identity string: thousands
// separators removed, whitespace trimmed, check character upper-cased. The
// check-digit algorithm itself is not verified.
func normalizeNationalID(raw string) string {
	return strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(raw, ".", "")))
}

// LeaveSpanDays returns the inclusive day count between two resolved dates.
// The boolean is false when either side is unresolved.
func LeaveSpanDays(start, end models.LeaveDate) (int, bool) {
	s, ok := start.Date()
	if !ok {
		return 0, false
	}
	e, ok := end.Date()
	if !ok {
		return 0, false
	}
	return int(e.Sub(s).Hours()/24) + 1, true
}

func requireText(raw map[string]interface{}, field string) (string, error) {
	value, ok := raw[field]
	if !ok || value == nil {
		return "", appErrors.MissingField(field)
	}
	text := strings.TrimSpace(coerceText(value))
	if text == "" {
		return "", appErrors.MissingField(field)
	}
	return text, nil
}

func optionalText(raw map[string]interface{}, field string) string {
	value, ok := raw[field]
	if !ok || value == nil {
		return ""
	}
	return strings.TrimSpace(coerceText(value))
}

func requirePositiveInt(raw map[string]interface{}, field string) (int, error) {
	value, ok := raw[field]
	if !ok || value == nil {
		return 0, appErrors.MissingField(field)
	}

	var n int
	switch v := value.(type) {
	case int:
		n = v
	case int64:
		n = int(v)
	case float64:
		if v != math.Trunc(v) {
			return 0, appErrors.InvalidField(field, "must be a whole number")
		}
		n = int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, appErrors.InvalidField(field, "must be numeric")
		}
		n = parsed
	default:
		return 0, appErrors.InvalidField(field, "must be numeric")
	}

	if n <= 0 {
		return 0, appErrors.InvalidField(field, "must be a positive number of days")
	}
	return n, nil
}

func requireDate(raw map[string]interface{}, field string) (models.LeaveDate, error) {
	value, ok := raw[field]
	if !ok || value == nil {
		return models.LeaveDate{}, appErrors.MissingField(field)
	}

	switch v := value.(type) {
	case time.Time:
		return models.ResolvedDate(v), nil
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return models.LeaveDate{}, appErrors.MissingField(field)
		}
		return parseLeaveDateText(text), nil
	default:
		// Anything non-textual is carried forward verbatim for review.
		return models.UnresolvedDate(coerceText(value)), nil
	}
}

// parseLeaveDateText tries the accepted layouts in order and keeps the raw
// text when none match.
func parseLeaveDateText(text string) models.LeaveDate {
	for _, layout := range leaveDateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return models.ResolvedDate(t)
		}
	}
	return models.UnresolvedDate(text)
}

func coerceText(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", value)
	}
}
