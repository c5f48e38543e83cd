package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtmaster/courtledger-api/internal/models"
	appErrors "github.com/courtmaster/courtledger-api/pkg/errors"
)

type fakeRosterRepo struct {
	roster  *models.Roster
	saveErr error
	saves   int
}

func (f *fakeRosterRepo) Load(ctx context.Context) *models.Roster {
	return f.roster
}

func (f *fakeRosterRepo) Save(ctx context.Context, roster *models.Roster) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.roster = roster
	return nil
}

type fakeTxnAppender struct {
	rows []models.Transaction
	err  error
}

func (f *fakeTxnAppender) Append(ctx context.Context, txn models.Transaction) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, txn)
	return nil
}

type fakeActivityAppender struct {
	rows []models.ActivityLogEntry
	err  error
}

func (f *fakeActivityAppender) Append(ctx context.Context, entry models.ActivityLogEntry) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, entry)
	return nil
}

func newLedgerFixture(students ...models.Student) (*LedgerService, *fakeRosterRepo, *fakeTxnAppender, *fakeActivityAppender) {
	roster := &fakeRosterRepo{roster: models.NewRoster(students)}
	txns := &fakeTxnAppender{}
	activity := &fakeActivityAppender{}
	svc := NewLedgerService(roster, txns, activity, nil, nil)
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC) }
	return svc, roster, txns, activity
}

func coach() *models.JWTClaims {
	return &models.JWTClaims{Role: models.RoleCoach}
}

func viewer() *models.JWTClaims {
	return &models.JWTClaims{Role: models.RoleViewer}
}

func activeStudent(name string, remaining int) models.Student {
	return models.Student{
		Name:             name,
		PackageSize:      remaining,
		RemainingLessons: remaining,
		Status:           models.StatusActive,
		PaymentStatus:    models.PaymentUnpaid,
	}
}

func TestConsumeLessonDecrementsAndStamps(t *testing.T) {
	svc, repo, _, activity := newLedgerFixture(activeStudent("Ayse", 3))

	st, err := svc.ConsumeLesson(context.Background(), "Ayse", coach())
	require.NoError(t, err)
	assert.Equal(t, 2, st.RemainingLessons)
	assert.Equal(t, models.StatusActive, st.Status)
	assert.Equal(t, "10-03 14:30", st.LastActivity)
	assert.Equal(t, 1, repo.saves)
	require.Len(t, activity.rows, 1)
	assert.Equal(t, models.ActionLessonConsumed, activity.rows[0].Action)
	assert.Equal(t, "Remaining: 2", activity.rows[0].Detail)
}

func TestConsumeLessonExhaustionScenario(t *testing.T) {
	svc, repo, _, _ := newLedgerFixture(activeStudent("Ayse", 3))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.ConsumeLesson(ctx, "Ayse", coach())
		require.NoError(t, err)
	}
	st, ok := repo.roster.Find("Ayse")
	require.True(t, ok)
	assert.Equal(t, 0, st.RemainingLessons)
	assert.Equal(t, models.StatusFinished, st.Status)

	_, err := svc.ConsumeLesson(ctx, "Ayse", coach())
	require.Error(t, err)
	appErr, ok2 := err.(*appErrors.Error)
	require.True(t, ok2)
	assert.Equal(t, appErrors.ErrInsufficientCredit.Code, appErr.Code)

	st, _ = repo.roster.Find("Ayse")
	assert.Equal(t, 0, st.RemainingLessons)
	assert.Equal(t, models.StatusFinished, st.Status)
}

func TestConsumeLessonRejectsFrozen(t *testing.T) {
	frozen := activeStudent("Mert", 5)
	frozen.Status = models.StatusFrozen
	svc, _, _, _ := newLedgerFixture(frozen)

	_, err := svc.ConsumeLesson(context.Background(), "Mert", coach())
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestConsumeLessonUnknownStudent(t *testing.T) {
	svc, _, _, _ := newLedgerFixture()

	_, err := svc.ConsumeLesson(context.Background(), "Nobody", coach())
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestConsumeThenRefundRoundTrip(t *testing.T) {
	svc, repo, _, _ := newLedgerFixture(activeStudent("Ayse", 1))
	ctx := context.Background()

	st, err := svc.ConsumeLesson(ctx, "Ayse", coach())
	require.NoError(t, err)
	assert.Equal(t, 0, st.RemainingLessons)
	assert.Equal(t, models.StatusFinished, st.Status)

	st, err = svc.RefundLesson(ctx, "Ayse", coach())
	require.NoError(t, err)
	assert.Equal(t, 1, st.RemainingLessons)
	assert.Equal(t, models.StatusActive, st.Status)

	stored, _ := repo.roster.Find("Ayse")
	assert.Equal(t, 1, stored.RemainingLessons)
}

func TestRefundLessonKeepsFrozen(t *testing.T) {
	frozen := activeStudent("Mert", 0)
	frozen.Status = models.StatusFrozen
	svc, _, _, _ := newLedgerFixture(frozen)

	st, err := svc.RefundLesson(context.Background(), "Mert", coach())
	require.NoError(t, err)
	assert.Equal(t, 1, st.RemainingLessons)
	assert.Equal(t, models.StatusFrozen, st.Status)
}

func TestAddPackageAdditiveLaw(t *testing.T) {
	svc, repo, _, _ := newLedgerFixture(activeStudent("Ayse", 2))
	ctx := context.Background()

	_, err := svc.AddPackage(ctx, "Ayse", AddPackageRequest{Lessons: 4}, coach())
	require.NoError(t, err)
	_, err = svc.AddPackage(ctx, "Ayse", AddPackageRequest{Lessons: 3}, coach())
	require.NoError(t, err)

	st, _ := repo.roster.Find("Ayse")
	assert.Equal(t, 9, st.RemainingLessons)
}

func TestAddPackageZeroLogsNothing(t *testing.T) {
	svc, _, _, activity := newLedgerFixture(activeStudent("Ayse", 2))

	st, err := svc.AddPackage(context.Background(), "Ayse", AddPackageRequest{Lessons: 0}, coach())
	require.NoError(t, err)
	assert.Equal(t, 2, st.RemainingLessons)
	assert.Empty(t, activity.rows)
}

func TestAddPackageNegativeRejected(t *testing.T) {
	svc, repo, _, _ := newLedgerFixture(activeStudent("Ayse", 2))

	_, err := svc.AddPackage(context.Background(), "Ayse", AddPackageRequest{Lessons: -1}, coach())
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrInvalidAmount.Code, appErr.Code)
	assert.Equal(t, 0, repo.saves)
}

func TestAddPackageFrozenStickiness(t *testing.T) {
	frozen := activeStudent("Mert", 0)
	frozen.Status = models.StatusFrozen
	svc, _, _, _ := newLedgerFixture(frozen)
	ctx := context.Background()

	st, err := svc.AddPackage(ctx, "Mert", AddPackageRequest{Lessons: 10}, coach())
	require.NoError(t, err)
	assert.Equal(t, 10, st.RemainingLessons)
	assert.Equal(t, models.StatusFrozen, st.Status)

	st, err = svc.SetFrozen(ctx, "Mert", false, coach())
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, st.Status)
}

func TestAddPackageReactivatesFinished(t *testing.T) {
	finished := activeStudent("Ayse", 0)
	finished.Status = models.StatusFinished
	svc, _, _, _ := newLedgerFixture(finished)

	st, err := svc.AddPackage(context.Background(), "Ayse", AddPackageRequest{Lessons: 5}, coach())
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, st.Status)
}

func TestAddPackageNeverTouchesPaymentStatus(t *testing.T) {
	svc, repo, _, _ := newLedgerFixture(activeStudent("Ayse", 0))

	_, err := svc.AddPackage(context.Background(), "Ayse", AddPackageRequest{Lessons: 8}, coach())
	require.NoError(t, err)
	st, _ := repo.roster.Find("Ayse")
	assert.Equal(t, models.PaymentUnpaid, st.PaymentStatus)
}

func TestRecordPaymentAppendsIncome(t *testing.T) {
	svc, repo, txns, activity := newLedgerFixture(activeStudent("Ayse", 2))

	st, err := svc.RecordPayment(context.Background(), "Ayse", RecordPaymentRequest{Amount: "150,50", Memo: "March package"}, coach())
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, st.PaymentStatus)

	require.Len(t, txns.rows, 1)
	txn := txns.rows[0]
	assert.Equal(t, models.KindIncome, txn.Kind)
	assert.True(t, txn.Amount.Equal(decimal.NewFromFloat(150.50)))
	assert.Equal(t, "2025-03", txn.Month)
	assert.Equal(t, "2025-03-10", txn.Date)
	assert.Equal(t, "March package", txn.Memo)

	require.Len(t, activity.rows, 1)
	assert.Equal(t, models.ActionPaymentReceived, activity.rows[0].Action)

	stored, _ := repo.roster.Find("Ayse")
	assert.Equal(t, models.PaymentPaid, stored.PaymentStatus)
}

func TestRecordPaymentRejectsNonPositive(t *testing.T) {
	svc, repo, txns, _ := newLedgerFixture(activeStudent("Ayse", 2))

	for _, amount := range []string{"0", "-5", "abc"} {
		_, err := svc.RecordPayment(context.Background(), "Ayse", RecordPaymentRequest{Amount: amount}, coach())
		require.Error(t, err, "amount %q", amount)
		appErr, ok := err.(*appErrors.Error)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrInvalidAmount.Code, appErr.Code)
	}
	assert.Equal(t, 0, repo.saves)
	assert.Empty(t, txns.rows)
}

func TestRegisterNewStudent(t *testing.T) {
	svc, repo, txns, activity := newLedgerFixture()

	st, err := svc.Register(context.Background(), RegisterStudentRequest{Name: "Ayse", PackageSize: 8}, coach())
	require.NoError(t, err)
	assert.Equal(t, 8, st.RemainingLessons)
	assert.Equal(t, models.StatusActive, st.Status)
	assert.Equal(t, models.PaymentUnpaid, st.PaymentStatus)

	assert.True(t, repo.roster.Contains("Ayse"))
	assert.Empty(t, txns.rows)
	require.Len(t, activity.rows, 1)
	assert.Equal(t, models.ActionRegistration, activity.rows[0].Action)
}

func TestRegisterWithDepositAppliesPayment(t *testing.T) {
	svc, _, txns, activity := newLedgerFixture()

	st, err := svc.Register(context.Background(), RegisterStudentRequest{Name: "Ayse", PackageSize: 8, Deposit: "200"}, coach())
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, st.PaymentStatus)

	require.Len(t, txns.rows, 1)
	assert.True(t, txns.rows[0].Amount.Equal(decimal.NewFromInt(200)))
	require.Len(t, activity.rows, 2)
	assert.Equal(t, models.ActionRegistration, activity.rows[0].Action)
	assert.Equal(t, models.ActionPaymentReceived, activity.rows[1].Action)
}

func TestRegisterZeroPackageStartsFinished(t *testing.T) {
	svc, _, _, _ := newLedgerFixture()

	st, err := svc.Register(context.Background(), RegisterStudentRequest{Name: "Ayse", PackageSize: 0}, coach())
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, st.Status)
}

func TestRegisterDuplicateNameNoMutation(t *testing.T) {
	svc, repo, txns, activity := newLedgerFixture(activeStudent("Ayse", 3))

	_, err := svc.Register(context.Background(), RegisterStudentRequest{Name: "Ayse", PackageSize: 8}, coach())
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrDuplicateName.Code, appErr.Code)

	assert.Equal(t, 0, repo.saves)
	assert.Empty(t, txns.rows)
	assert.Empty(t, activity.rows)
	st, _ := repo.roster.Find("Ayse")
	assert.Equal(t, 3, st.RemainingLessons)
}

func TestRegisterBlankNameRejected(t *testing.T) {
	svc, _, _, _ := newLedgerFixture()

	_, err := svc.Register(context.Background(), RegisterStudentRequest{Name: "   ", PackageSize: 4}, coach())
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestSetFrozenUnfreezeExhaustedLandsFinished(t *testing.T) {
	frozen := activeStudent("Mert", 0)
	frozen.Status = models.StatusFrozen
	svc, _, _, activity := newLedgerFixture(frozen)

	st, err := svc.SetFrozen(context.Background(), "Mert", false, coach())
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, st.Status)
	require.Len(t, activity.rows, 1)
	assert.Equal(t, models.ActionStatusChanged, activity.rows[0].Action)
}

func TestDeleteRemovesRowAndLogs(t *testing.T) {
	svc, repo, _, activity := newLedgerFixture(activeStudent("Ayse", 3), activeStudent("Mert", 5))

	err := svc.Delete(context.Background(), "Ayse", coach())
	require.NoError(t, err)
	assert.False(t, repo.roster.Contains("Ayse"))
	assert.True(t, repo.roster.Contains("Mert"))
	require.Len(t, activity.rows, 1)
	assert.Equal(t, models.ActionStudentRemoved, activity.rows[0].Action)
}

func TestManualAdjustReappliesRules(t *testing.T) {
	svc, repo, _, _ := newLedgerFixture(activeStudent("Ayse", 3))

	st, err := svc.ManualAdjust(context.Background(), "Ayse", ManualAdjustRequest{
		RemainingLessons: 0,
		PaymentStatus:    "Unpaid",
		Notes:            "corrected by hand",
	}, coach())
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, st.Status)
	assert.Equal(t, "corrected by hand", st.Notes)

	stored, _ := repo.roster.Find("Ayse")
	assert.Equal(t, models.StatusFinished, stored.Status)
}

func TestManualAdjustKeepsFrozen(t *testing.T) {
	frozen := activeStudent("Mert", 2)
	frozen.Status = models.StatusFrozen
	svc, _, _, _ := newLedgerFixture(frozen)

	st, err := svc.ManualAdjust(context.Background(), "Mert", ManualAdjustRequest{
		RemainingLessons: 7,
		PaymentStatus:    "Paid",
	}, coach())
	require.NoError(t, err)
	assert.Equal(t, models.StatusFrozen, st.Status)
	assert.Equal(t, 7, st.RemainingLessons)
}

func TestManualAdjustWithCollection(t *testing.T) {
	svc, _, txns, activity := newLedgerFixture(activeStudent("Ayse", 3))

	st, err := svc.ManualAdjust(context.Background(), "Ayse", ManualAdjustRequest{
		RemainingLessons: 5,
		PaymentStatus:    "Unpaid",
		CollectedAmount:  "75,25",
	}, coach())
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, st.PaymentStatus)
	require.Len(t, txns.rows, 1)
	assert.True(t, txns.rows[0].Amount.Equal(decimal.NewFromFloat(75.25)))
	require.Len(t, activity.rows, 2)
}

func TestMutationsRequireCoach(t *testing.T) {
	svc, repo, _, _ := newLedgerFixture(activeStudent("Ayse", 3))
	ctx := context.Background()

	calls := []struct {
		name string
		run  func() error
	}{
		{"register", func() error {
			_, err := svc.Register(ctx, RegisterStudentRequest{Name: "X", PackageSize: 1}, viewer())
			return err
		}},
		{"consume", func() error {
			_, err := svc.ConsumeLesson(ctx, "Ayse", viewer())
			return err
		}},
		{"refund", func() error {
			_, err := svc.RefundLesson(ctx, "Ayse", nil)
			return err
		}},
		{"add package", func() error {
			_, err := svc.AddPackage(ctx, "Ayse", AddPackageRequest{Lessons: 1}, viewer())
			return err
		}},
		{"payment", func() error {
			_, err := svc.RecordPayment(ctx, "Ayse", RecordPaymentRequest{Amount: "10"}, viewer())
			return err
		}},
		{"freeze", func() error {
			_, err := svc.SetFrozen(ctx, "Ayse", true, viewer())
			return err
		}},
		{"delete", func() error {
			return svc.Delete(ctx, "Ayse", viewer())
		}},
		{"adjust", func() error {
			_, err := svc.ManualAdjust(ctx, "Ayse", ManualAdjustRequest{PaymentStatus: "Paid"}, viewer())
			return err
		}},
	}
	for _, tc := range calls {
		err := tc.run()
		require.Error(t, err, tc.name)
		appErr, ok := err.(*appErrors.Error)
		require.True(t, ok, tc.name)
		assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code, tc.name)
	}
	assert.Equal(t, 0, repo.saves)
}

func TestListProjectsForViewer(t *testing.T) {
	st := activeStudent("Ayse", 3)
	st.Notes = "private note"
	svc, _, _, _ := newLedgerFixture(st)

	full, views := svc.List(context.Background(), viewer())
	assert.Nil(t, full)
	require.Len(t, views, 1)
	assert.Equal(t, "Ayse", views[0].Name)
	assert.Equal(t, 3, views[0].RemainingLessons)

	full, views = svc.List(context.Background(), coach())
	assert.Nil(t, views)
	require.Len(t, full, 1)
	assert.Equal(t, "private note", full[0].Notes)
}

func TestRosterSaveFailureReturnsStoreUnavailable(t *testing.T) {
	svc, repo, txns, activity := newLedgerFixture(activeStudent("Ayse", 3))
	repo.saveErr = appErrors.Clone(appErrors.ErrStoreUnavailable, "write failed")

	_, err := svc.ConsumeLesson(context.Background(), "Ayse", coach())
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrStoreUnavailable.Code, appErr.Code)
	assert.Empty(t, txns.rows)
	assert.Empty(t, activity.rows)
}

func TestAppendFailuresDoNotFailOperation(t *testing.T) {
	svc, repo, txns, activity := newLedgerFixture(activeStudent("Ayse", 3))
	txns.err = errors.New("append failed")
	activity.err = errors.New("append failed")

	st, err := svc.RecordPayment(context.Background(), "Ayse", RecordPaymentRequest{Amount: "100"}, coach())
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, st.PaymentStatus)
	assert.Equal(t, 1, repo.saves)
}
