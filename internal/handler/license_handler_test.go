package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synapse-edu/scholarflow-api/internal/models"
	"github.com/synapse-edu/scholarflow-api/internal/service"
	"github.com/synapse-edu/scholarflow-api/pkg/response"
)

type leaveRepoMock struct {
	items map[string]*models.LeaveRecord
}

func (m *leaveRepoMock) List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveRecord, int, error) {
	var out []models.LeaveRecord
	for _, record := range m.items {
		if record.OrganizationID == filter.OrganizationID {
			out = append(out, *record)
		}
	}
	return out, len(out), nil
}

func (m *leaveRepoMock) FindByID(ctx context.Context, orgID, id string) (*models.LeaveRecord, error) {
	if record, ok := m.items[id]; ok && record.OrganizationID == orgID {
		cp := *record
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *leaveRepoMock) Create(ctx context.Context, record *models.LeaveRecord) error {
	if m.items == nil {
		m.items = make(map[string]*models.LeaveRecord)
	}
	if record.ID == "" {
		record.ID = "leave-1"
	}
	cp := *record
	m.items[record.ID] = &cp
	return nil
}

func (m *leaveRepoMock) Update(ctx context.Context, record *models.LeaveRecord) error {
	cp := *record
	m.items[record.ID] = &cp
	return nil
}

type orgRepoMock struct{}

func (orgRepoMock) FindByID(ctx context.Context, id string) (*models.Organization, error) {
	if id == "org-1" {
		return &models.Organization{ID: "org-1", Name: "Liceo Central"}, nil
	}
	return nil, sql.ErrNoRows
}

type extractorMock struct {
	fields map[string]interface{}
}

func (m *extractorMock) Extract(ctx context.Context, document []byte, mimeType string) (map[string]interface{}, error) {
	return m.fields, nil
}

type matcherMock struct {
	result service.MatchResult
}

func (m *matcherMock) Match(ctx context.Context, orgID, nationalID string) service.MatchResult {
	return m.result
}

func rawLeaveFields() map[string]interface{} {
	return map[string]interface{}{
		"professor_name": "María Torres",
		"professor_id":   "12.345.678-k",
		"rest_days":      5,
		"start_date":     "05-03-2025",
		"end_date":       "09-03-2025",
		"issuer":         "COMPIN",
	}
}

func newLicenseRouter(repo *leaveRepoMock, matcher *matcherMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	leaves := service.NewLeaveService(repo, orgRepoMock{}, &extractorMock{fields: rawLeaveFields()}, matcher, nil, nil, nil, nil, 0)
	handler := NewLicenseHandler(leaves, nil)

	router := gin.New()
	org := router.Group("/api/v1/organizations/:orgId")
	org.POST("/licenses/extract", handler.Extract)
	org.POST("/licenses", handler.Create)
	org.GET("/licenses", handler.List)
	org.GET("/licenses/:id", handler.Get)
	org.PUT("/licenses/:id", handler.Update)
	return router
}

func multipartBody(t *testing.T, filename string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 fixture"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestLicenseHandlerExtract(t *testing.T) {
	router := newLicenseRouter(&leaveRepoMock{}, &matcherMock{})
	body, contentType := multipartBody(t, "licencia.pdf")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/organizations/org-1/licenses/extract", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "12345678-K", data["professor_id"])
	assert.Equal(t, "2025-03-05", data["start_date"])
}

func TestLicenseHandlerExtractUnsupportedFormat(t *testing.T) {
	router := newLicenseRouter(&leaveRepoMock{}, &matcherMock{})
	body, contentType := multipartBody(t, "licencia.docx")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/organizations/org-1/licenses/extract", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "UNSUPPORTED_MEDIA", envelope.Error.Code)
}

func TestLicenseHandlerCreateReturnsMatch(t *testing.T) {
	phone := "+56911111111"
	repo := &leaveRepoMock{}
	matcher := &matcherMock{result: service.MatchResult{
		Ran: true,
		Candidates: []models.MatchCandidate{
			{ID: "c1", FullName: "Ana Rojas", Phone: &phone, Subjects: []string{"Math"}},
		},
	}}
	router := newLicenseRouter(repo, matcher)

	payload, _ := json.Marshal(rawLeaveFields())
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/organizations/org-1/licenses", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	match, ok := data["match"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, match["ran"])
	require.Len(t, repo.items, 1)
}

func TestLicenseHandlerCreateMissingField(t *testing.T) {
	router := newLicenseRouter(&leaveRepoMock{}, &matcherMock{})

	fields := rawLeaveFields()
	delete(fields, "rest_days")
	payload, _ := json.Marshal(fields)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/organizations/org-1/licenses", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "MISSING_FIELD", envelope.Error.Code)
	assert.Equal(t, "rest_days", envelope.Error.Field)
}

func TestLicenseHandlerCreateUnknownOrganization(t *testing.T) {
	router := newLicenseRouter(&leaveRepoMock{}, &matcherMock{})

	payload, _ := json.Marshal(rawLeaveFields())
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/organizations/org-9/licenses", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestLicenseHandlerGetNotFound(t *testing.T) {
	router := newLicenseRouter(&leaveRepoMock{}, &matcherMock{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/organizations/org-1/licenses/missing", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestLicenseHandlerUpdateResolvesDate(t *testing.T) {
	repo := &leaveRepoMock{items: map[string]*models.LeaveRecord{
		"leave-1": {
			ID:             "leave-1",
			OrganizationID: "org-1",
			ProfessorName:  "María Torres",
			NationalID:     "12345678-K",
			RestDays:       5,
			StartDate:      models.UnresolvedDate("marzo cinco"),
			EndDate:        models.ParseLeaveDate("2025-03-09"),
			Issuer:         "COMPIN",
		},
	}}
	router := newLicenseRouter(repo, &matcherMock{})

	payload, _ := json.Marshal(service.UpdateLeaveRequest{
		ProfessorName: "María Torres",
		ProfessorID:   "12345678-K",
		RestDays:      5,
		StartDate:     "05-03-2025",
		EndDate:       "09-03-2025",
		Issuer:        "COMPIN",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/api/v1/organizations/org-1/licenses/leave-1", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "2025-03-05", data["start_date"])
}
