package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/synapse-edu/scholarflow-api/pkg/errors"
)

func validRawLeave() map[string]interface{} {
	return map[string]interface{}{
		"professor_name": "María Torres",
		"professor_id":   "12.345.678-k",
		"diagnosis_code": "J00",
		"rest_days":      float64(5),
		"start_date":     "05-03-2025",
		"end_date":       "09-03-2025",
		"issuer":         "COMPIN Valparaíso",
	}
}

func TestNormalizeLeaveCleansNationalID(t *testing.T) {
	record, err := NormalizeLeave(validRawLeave())
	require.NoError(t, err)
	assert.Equal(t, "12345678-K", record.NationalID)
}

func TestNormalizeLeaveNationalIDWhitespace(t *testing.T) {
	raw := validRawLeave()
	raw["professor_id"] = "  9.876.543-2 "
	record, err := NormalizeLeave(raw)
	require.NoError(t, err)
	assert.Equal(t, "9876543-2", record.NationalID)
}

func TestNormalizeLeaveAcceptedDateFormats(t *testing.T) {
	want := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)
	for _, text := range []string{"05-03-2025", "05/03/2025", "05-03-25"} {
		raw := validRawLeave()
		raw["start_date"] = text
		record, err := NormalizeLeave(raw)
		require.NoError(t, err, text)
		got, ok := record.StartDate.Date()
		require.True(t, ok, text)
		assert.Equal(t, want, got, text)
	}
}

func TestNormalizeLeaveUnparseableDateCarriedForward(t *testing.T) {
	raw := validRawLeave()
	raw["start_date"] = "2025-03-05"
	record, err := NormalizeLeave(raw)
	require.NoError(t, err)
	assert.False(t, record.StartDate.IsResolved())
	assert.Equal(t, "2025-03-05", record.StartDate.Raw())
	assert.True(t, record.HasUnresolvedDates())
}

func TestNormalizeLeaveResolvedDateValue(t *testing.T) {
	raw := validRawLeave()
	raw["end_date"] = time.Date(2025, time.March, 9, 15, 30, 0, 0, time.UTC)
	record, err := NormalizeLeave(raw)
	require.NoError(t, err)
	got, ok := record.EndDate.Date()
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC), got)
}

func TestNormalizeLeaveMissingRestDays(t *testing.T) {
	raw := validRawLeave()
	delete(raw, "rest_days")
	_, err := NormalizeLeave(raw)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, "MISSING_FIELD", appErr.Code)
	assert.Equal(t, "rest_days", appErr.Field)
}

func TestNormalizeLeaveMissingIssuer(t *testing.T) {
	raw := validRawLeave()
	raw["issuer"] = "   "
	_, err := NormalizeLeave(raw)
	require.Error(t, err)
	assert.Equal(t, "issuer", appErrors.FromError(err).Field)
}

func TestNormalizeLeaveRestDaysValidation(t *testing.T) {
	cases := map[string]interface{}{
		"non_numeric": "five",
		"zero":        float64(0),
		"negative":    float64(-3),
		"fractional":  4.5,
	}
	for name, value := range cases {
		raw := validRawLeave()
		raw["rest_days"] = value
		_, err := NormalizeLeave(raw)
		require.Error(t, err, name)
		appErr := appErrors.FromError(err)
		assert.Equal(t, "INVALID_FIELD", appErr.Code, name)
		assert.Equal(t, "rest_days", appErr.Field, name)
	}
}

func TestNormalizeLeaveRestDaysFromText(t *testing.T) {
	raw := validRawLeave()
	raw["rest_days"] = " 7 "
	record, err := NormalizeLeave(raw)
	require.NoError(t, err)
	assert.Equal(t, 7, record.RestDays)
}

func TestNormalizeLeaveEndBeforeStartRejected(t *testing.T) {
	raw := validRawLeave()
	raw["start_date"] = "09-03-2025"
	raw["end_date"] = "05-03-2025"
	_, err := NormalizeLeave(raw)
	require.Error(t, err)
	assert.Equal(t, "end_date", appErrors.FromError(err).Field)
}

func TestNormalizeLeaveDiagnosisDefaultsToNil(t *testing.T) {
	raw := validRawLeave()
	raw["diagnosis_code"] = "  "
	record, err := NormalizeLeave(raw)
	require.NoError(t, err)
	assert.Nil(t, record.DiagnosisCode)

	delete(raw, "diagnosis_code")
	record, err = NormalizeLeave(raw)
	require.NoError(t, err)
	assert.Nil(t, record.DiagnosisCode)
}

func TestNormalizeLeaveIdempotent(t *testing.T) {
	first, err := NormalizeLeave(validRawLeave())
	require.NoError(t, err)
	second, err := NormalizeLeave(validRawLeave())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLeaveSpanDays(t *testing.T) {
	record, err := NormalizeLeave(validRawLeave())
	require.NoError(t, err)

	span, ok := LeaveSpanDays(record.StartDate, record.EndDate)
	require.True(t, ok)
	assert.Equal(t, 5, span)
	assert.Equal(t, record.RestDays, span)
}

func TestLeaveSpanDaysUnresolved(t *testing.T) {
	raw := validRawLeave()
	raw["end_date"] = "marzo nueve"
	record, err := NormalizeLeave(raw)
	require.NoError(t, err)

	_, ok := LeaveSpanDays(record.StartDate, record.EndDate)
	assert.False(t, ok)
}
