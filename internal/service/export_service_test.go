package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/synapse-edu/scholarflow-api/internal/models"
	"github.com/synapse-edu/scholarflow-api/pkg/export"
	"github.com/synapse-edu/scholarflow-api/pkg/storage"
)

type leaveRegisterStub struct{}

func (leaveRegisterStub) ListAll(ctx context.Context, filter models.LeaveFilter, limit int) ([]models.LeaveRecord, error) {
	diagnosis := "J06.9"
	return []models.LeaveRecord{
		{
			ID:             "l1",
			OrganizationID: filter.OrganizationID,
			ProfessorName:  "María Torres",
			NationalID:     "12345678-K",
			DiagnosisCode:  &diagnosis,
			RestDays:       5,
			StartDate:      models.ParseLeaveDate("2025-03-05"),
			EndDate:        models.ParseLeaveDate("2025-03-09"),
			Issuer:         "COMPIN",
			CreatedAt:      time.Now().UTC(),
		},
		{
			ID:             "l2",
			OrganizationID: filter.OrganizationID,
			ProfessorName:  "Luis Soto",
			NationalID:     "9876543-2",
			RestDays:       3,
			StartDate:      models.UnresolvedDate("marzo cinco"),
			EndDate:        models.ParseLeaveDate("2025-03-07"),
			Issuer:         "ISAPRE",
			CreatedAt:      time.Now().UTC(),
		},
	}, nil
}

func newExportServiceForTest(t *testing.T) (*ExportService, *storage.LocalStorage) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	cfg := ExportConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour}
	svc := NewExportService(leaveRegisterStub{}, store, signer, cfg, zap.NewNop(), export.NewCSVExporter(), export.NewPDFExporter())
	return svc, store
}

func TestExportServiceGenerateCSV(t *testing.T) {
	svc, store := newExportServiceForTest(t)

	result, err := svc.Generate(context.Background(), models.LeaveFilter{OrganizationID: "org-1"}, ExportFormatCSV)
	require.NoError(t, err)
	require.NotEmpty(t, result.RelativePath)
	require.Contains(t, result.URL, "/export/")
	require.Equal(t, 2, result.RowCount)

	raw, err := os.ReadFile(store.Path(result.RelativePath))
	require.NoError(t, err)
	require.Contains(t, string(raw), "12345678-K")
	require.Contains(t, string(raw), "marzo cinco")
}

func TestExportServiceGeneratePDF(t *testing.T) {
	svc, store := newExportServiceForTest(t)

	result, err := svc.Generate(context.Background(), models.LeaveFilter{OrganizationID: "org-1"}, ExportFormatPDF)
	require.NoError(t, err)
	require.Equal(t, ExportFormatPDF, result.Format)

	path := filepath.Clean(store.Path(result.RelativePath))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

type limitRecordingRegister struct {
	gotLimit int
}

func (s *limitRecordingRegister) ListAll(ctx context.Context, filter models.LeaveFilter, limit int) ([]models.LeaveRecord, error) {
	s.gotLimit = limit
	return nil, nil
}

func TestExportServiceGenerateFetchesFullRegister(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	register := &limitRecordingRegister{}
	svc := NewExportService(register, store, signer, ExportConfig{}, zap.NewNop(), nil, nil)

	_, err = svc.Generate(context.Background(), models.LeaveFilter{OrganizationID: "org-1"}, ExportFormatCSV)
	require.NoError(t, err)
	require.Equal(t, 5000, register.gotLimit)
}

func TestExportServiceUnsupportedFormat(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	_, err := svc.Generate(context.Background(), models.LeaveFilter{OrganizationID: "org-1"}, ExportFormat("xlsx"))
	require.Error(t, err)
}

func TestExportServiceTokenRoundTrip(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	result, err := svc.Generate(context.Background(), models.LeaveFilter{OrganizationID: "org-1"}, ExportFormatCSV)
	require.NoError(t, err)

	exportID, relPath, expiresAt, err := svc.ParseToken(result.Token, false)
	require.NoError(t, err)
	require.Equal(t, result.ID, exportID)
	require.Equal(t, result.RelativePath, relPath)
	require.WithinDuration(t, result.ExpiresAt, expiresAt, time.Second)

	file, err := svc.Open(relPath)
	require.NoError(t, err)
	require.NoError(t, file.Close())
}
