package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synapse-edu/scholarflow-api/internal/middleware"
	"github.com/synapse-edu/scholarflow-api/internal/models"
	"github.com/synapse-edu/scholarflow-api/internal/service"
	appErrors "github.com/synapse-edu/scholarflow-api/pkg/errors"
	"github.com/synapse-edu/scholarflow-api/pkg/response"
)

type professorRepoMock struct {
	items map[string]*models.Professor
}

func (m *professorRepoMock) List(ctx context.Context, filter models.ProfessorFilter) ([]models.Professor, int, error) {
	var out []models.Professor
	for _, p := range m.items {
		if p.OrganizationID == filter.OrganizationID {
			out = append(out, *p)
		}
	}
	return out, len(out), nil
}

func (m *professorRepoMock) FindByID(ctx context.Context, orgID, id string) (*models.Professor, error) {
	if p, ok := m.items[id]; ok && p.OrganizationID == orgID {
		cp := *p
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *professorRepoMock) ExistsByNationalID(ctx context.Context, orgID, nationalID, excludeID string) (bool, error) {
	return false, nil
}

func (m *professorRepoMock) Create(ctx context.Context, professor *models.Professor) error {
	return nil
}

func (m *professorRepoMock) Update(ctx context.Context, professor *models.Professor) error {
	return nil
}

type professorCacheMock struct {
	store map[string][]byte
}

func (m *professorCacheMock) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *professorCacheMock) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.store == nil {
		m.store = make(map[string][]byte)
	}
	m.store[key] = raw
	return nil
}

func (m *professorCacheMock) DeleteByPattern(ctx context.Context, pattern string) error {
	m.store = nil
	return nil
}

func newProfessorRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := &professorRepoMock{items: map[string]*models.Professor{
		"p1": {ID: "p1", OrganizationID: "org-1", FullName: "Ana Rojas", NationalID: "9876543-2", Available: true},
	}}
	svc := service.NewProfessorService(repo, &professorCacheMock{}, time.Minute, nil, nil, nil)
	h := NewProfessorHandler(svc)

	r := gin.New()
	r.Use(middleware.WithResponseMeta())
	r.GET("/organizations/:orgId/professors", h.List)
	return r
}

func TestProfessorHandlerListReportsCacheHitMeta(t *testing.T) {
	router := newProfessorRouter(t)

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/organizations/org-1/professors", nil))
	require.Equal(t, http.StatusOK, first.Code)

	var cold response.Envelope
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &cold))
	require.NotNil(t, cold.Meta)
	assert.Equal(t, false, cold.Meta["cache_hit"])

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/organizations/org-1/professors", nil))
	require.Equal(t, http.StatusOK, second.Code)

	var warm response.Envelope
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &warm))
	require.NotNil(t, warm.Meta)
	assert.Equal(t, true, warm.Meta["cache_hit"])
	require.NotNil(t, warm.Pagination)
	assert.Equal(t, 1, warm.Pagination.TotalCount)
}
