package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtmaster/courtledger-api/internal/models"
	appErrors "github.com/courtmaster/courtledger-api/pkg/errors"
	"github.com/courtmaster/courtledger-api/pkg/storage"
)

func exportFixture(t *testing.T) (*ExportService, context.CancelFunc) {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)

	roster := &fakeRosterRepo{roster: models.NewRoster([]models.Student{
		{Name: "Ayse", PackageSize: 8, RemainingLessons: 5, Status: models.StatusActive, PaymentStatus: models.PaymentPaid},
	})}
	txns := &fakeTxnRepo{rows: []models.Transaction{txn("2025-03", "150,50", models.KindIncome)}}
	activity := &fakeActivityLister{rows: []models.ActivityLogEntry{entry("Ayse", models.ActionRegistration)}}

	svc := NewExportService(roster, txns, activity, files, signer, ExportConfig{APIPrefix: "/api/v1"}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)
	t.Cleanup(svc.Stop)
	return svc, cancel
}

func waitForJob(t *testing.T, svc *ExportService, id string) *ExportJob {
	t.Helper()
	var job *ExportJob
	require.Eventually(t, func() bool {
		var err error
		job, err = svc.Get(id, coach())
		return err == nil && job.Status != ExportStatusPending
	}, 5*time.Second, 10*time.Millisecond)
	return job
}

func TestExportRosterCSVEndToEnd(t *testing.T) {
	svc, cancel := exportFixture(t)
	defer cancel()

	job, err := svc.Enqueue(context.Background(), ExportTypeRoster, ExportFormatCSV, coach())
	require.NoError(t, err)
	assert.Equal(t, ExportStatusPending, job.Status)

	done := waitForJob(t, svc, job.ID)
	require.Equal(t, ExportStatusCompleted, done.Status)
	assert.Contains(t, done.DownloadURL, "/api/v1/exports/download/")
	require.NotNil(t, done.ExpiresAt)

	token := done.DownloadURL[len("/api/v1/exports/download/"):]
	file, relPath, err := svc.OpenByToken(token)
	require.NoError(t, err)
	defer file.Close()
	assert.Contains(t, relPath, "roster_")

	body, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Ayse")
	assert.Contains(t, string(body), "Name,Package,Remaining,Status,Payment,Notes")
}

func TestExportTransactionsXLSX(t *testing.T) {
	svc, cancel := exportFixture(t)
	defer cancel()

	job, err := svc.Enqueue(context.Background(), ExportTypeTransactions, ExportFormatXLSX, coach())
	require.NoError(t, err)

	done := waitForJob(t, svc, job.ID)
	assert.Equal(t, ExportStatusCompleted, done.Status)
}

func TestExportActivityPDF(t *testing.T) {
	svc, cancel := exportFixture(t)
	defer cancel()

	job, err := svc.Enqueue(context.Background(), ExportTypeActivity, ExportFormatPDF, coach())
	require.NoError(t, err)

	done := waitForJob(t, svc, job.ID)
	assert.Equal(t, ExportStatusCompleted, done.Status)
}

func TestExportEnqueueRequiresCoach(t *testing.T) {
	svc, cancel := exportFixture(t)
	defer cancel()

	_, err := svc.Enqueue(context.Background(), ExportTypeRoster, ExportFormatCSV, viewer())
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestExportEnqueueRejectsUnknownTypeAndFormat(t *testing.T) {
	svc, cancel := exportFixture(t)
	defer cancel()

	_, err := svc.Enqueue(context.Background(), ExportType("grades"), ExportFormatCSV, coach())
	require.Error(t, err)

	_, err = svc.Enqueue(context.Background(), ExportTypeRoster, ExportFormat("docx"), coach())
	require.Error(t, err)
}

func TestExportGetUnknownJob(t *testing.T) {
	svc, cancel := exportFixture(t)
	defer cancel()

	_, err := svc.Get("missing", coach())
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestOpenByTokenRejectsTamperedToken(t *testing.T) {
	svc, cancel := exportFixture(t)
	defer cancel()

	_, _, err := svc.OpenByToken("bogus.token.value.sig")
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}
