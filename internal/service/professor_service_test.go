package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synapse-edu/scholarflow-api/internal/models"
	appErrors "github.com/synapse-edu/scholarflow-api/pkg/errors"
)

type mockProfessorRepo struct {
	items     map[string]*models.Professor
	listCalls int
}

func (m *mockProfessorRepo) List(ctx context.Context, filter models.ProfessorFilter) ([]models.Professor, int, error) {
	m.listCalls++
	var out []models.Professor
	for _, p := range m.items {
		if p.OrganizationID == filter.OrganizationID {
			out = append(out, *p)
		}
	}
	return out, len(out), nil
}

func (m *mockProfessorRepo) FindByID(ctx context.Context, orgID, id string) (*models.Professor, error) {
	if p, ok := m.items[id]; ok && p.OrganizationID == orgID {
		cp := *p
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockProfessorRepo) ExistsByNationalID(ctx context.Context, orgID, nationalID, excludeID string) (bool, error) {
	for _, p := range m.items {
		if p.OrganizationID == orgID && p.NationalID == nationalID && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockProfessorRepo) Create(ctx context.Context, professor *models.Professor) error {
	if m.items == nil {
		m.items = make(map[string]*models.Professor)
	}
	if professor.ID == "" {
		professor.ID = "generated"
	}
	cp := *professor
	m.items[professor.ID] = &cp
	return nil
}

func (m *mockProfessorRepo) Update(ctx context.Context, professor *models.Professor) error {
	cp := *professor
	m.items[professor.ID] = &cp
	return nil
}

type mockProfessorCache struct {
	store      map[string][]byte
	getKeys    []string
	setKeys    []string
	deleted    []string
	missAlways bool
}

func (m *mockProfessorCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.getKeys = append(m.getKeys, key)
	if m.missAlways {
		return appErrors.ErrCacheMiss
	}
	raw, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockProfessorCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.setKeys = append(m.setKeys, key)
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

func (m *mockProfessorCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.deleted = append(m.deleted, pattern)
	return nil
}

func TestProfessorServiceCreateNormalizesNationalID(t *testing.T) {
	repo := &mockProfessorRepo{}
	cache := &mockProfessorCache{}
	svc := NewProfessorService(repo, cache, time.Minute, nil, nil, nil)

	professor, err := svc.Create(context.Background(), "org-1", CreateProfessorRequest{
		FullName:   "  Ana Rojas ",
		NationalID: "9.876.543-k",
		Subjects:   []string{" Math ", "Physics"},
	})
	require.NoError(t, err)
	assert.Equal(t, "9876543-K", professor.NationalID)
	assert.Equal(t, "Ana Rojas", professor.FullName)
	assert.Equal(t, []string{"Math", "Physics"}, []string(professor.Subjects))
	assert.True(t, professor.Available)
	assert.Equal(t, []string{"professors:org-1:*"}, cache.deleted)
}

func TestProfessorServiceCreateRejectsDuplicateNationalID(t *testing.T) {
	repo := &mockProfessorRepo{items: map[string]*models.Professor{
		"p1": {ID: "p1", OrganizationID: "org-1", NationalID: "9876543-K"},
	}}
	svc := NewProfessorService(repo, nil, time.Minute, nil, nil, nil)

	_, err := svc.Create(context.Background(), "org-1", CreateProfessorRequest{
		FullName:   "Ana Rojas",
		NationalID: "9.876.543-K",
	})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", appErrors.FromError(err).Code)
}

func TestProfessorServiceCreateAllowsSameNationalIDAcrossOrgs(t *testing.T) {
	repo := &mockProfessorRepo{items: map[string]*models.Professor{
		"p1": {ID: "p1", OrganizationID: "org-2", NationalID: "9876543-K"},
	}}
	svc := NewProfessorService(repo, nil, time.Minute, nil, nil, nil)

	_, err := svc.Create(context.Background(), "org-1", CreateProfessorRequest{
		FullName:   "Ana Rojas",
		NationalID: "9876543-K",
	})
	require.NoError(t, err)
}

func TestProfessorServiceListPopulatesCacheOnMiss(t *testing.T) {
	repo := &mockProfessorRepo{items: map[string]*models.Professor{
		"p1": {ID: "p1", OrganizationID: "org-1", FullName: "Ana Rojas"},
	}}
	cache := &mockProfessorCache{}
	svc := NewProfessorService(repo, cache, time.Minute, nil, nil, nil)

	professors, pagination, cacheHit, err := svc.List(context.Background(), models.ProfessorFilter{OrganizationID: "org-1"})
	require.NoError(t, err)
	assert.Len(t, professors, 1)
	assert.Equal(t, 1, pagination.TotalCount)
	assert.False(t, cacheHit)
	assert.Equal(t, 1, repo.listCalls)
	require.Len(t, cache.setKeys, 1)
	assert.Equal(t, cache.getKeys[:1], cache.setKeys)
}

func TestProfessorServiceListReportsCacheHit(t *testing.T) {
	repo := &mockProfessorRepo{items: map[string]*models.Professor{
		"p1": {ID: "p1", OrganizationID: "org-1", FullName: "Ana Rojas"},
	}}
	cache := &mockProfessorCache{}
	svc := NewProfessorService(repo, cache, time.Minute, nil, nil, nil)

	_, _, cacheHit, err := svc.List(context.Background(), models.ProfessorFilter{OrganizationID: "org-1"})
	require.NoError(t, err)
	assert.False(t, cacheHit)

	professors, pagination, cacheHit, err := svc.List(context.Background(), models.ProfessorFilter{OrganizationID: "org-1"})
	require.NoError(t, err)
	assert.True(t, cacheHit)
	assert.Len(t, professors, 1)
	assert.Equal(t, 1, pagination.TotalCount)
	assert.Equal(t, 1, repo.listCalls)
}

func TestProfessorServiceSetAvailability(t *testing.T) {
	repo := &mockProfessorRepo{items: map[string]*models.Professor{
		"p1": {ID: "p1", OrganizationID: "org-1", FullName: "Ana Rojas", Available: true},
	}}
	cache := &mockProfessorCache{}
	svc := NewProfessorService(repo, cache, time.Minute, nil, nil, nil)

	professor, err := svc.SetAvailability(context.Background(), "org-1", "p1", false)
	require.NoError(t, err)
	assert.False(t, professor.Available)
	assert.False(t, repo.items["p1"].Available)
	assert.NotEmpty(t, cache.deleted)
}

func TestProfessorServiceGetNotFound(t *testing.T) {
	svc := NewProfessorService(&mockProfessorRepo{}, nil, time.Minute, nil, nil, nil)

	_, err := svc.Get(context.Background(), "org-1", "missing")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", appErrors.FromError(err).Code)
}

func TestProfessorServiceUpdateChangesSubjects(t *testing.T) {
	repo := &mockProfessorRepo{items: map[string]*models.Professor{
		"p1": {ID: "p1", OrganizationID: "org-1", FullName: "Ana Rojas", NationalID: "9876543-K", Available: true},
	}}
	svc := NewProfessorService(repo, nil, time.Minute, nil, nil, nil)

	updated, err := svc.Update(context.Background(), "org-1", "p1", UpdateProfessorRequest{
		FullName:   "Ana Rojas",
		NationalID: "9876543-K",
		Subjects:   []string{"Chemistry"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Chemistry"}, []string(updated.Subjects))
	assert.True(t, updated.Available)
}
