package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/courtmaster/courtledger-api/internal/models"
	appErrors "github.com/courtmaster/courtledger-api/pkg/errors"
)

type rosterRepository interface {
	Load(ctx context.Context) *models.Roster
	Save(ctx context.Context, roster *models.Roster) error
}

type transactionAppender interface {
	Append(ctx context.Context, txn models.Transaction) error
}

type activityAppender interface {
	Append(ctx context.Context, entry models.ActivityLogEntry) error
}

// RegisterStudentRequest describes a new roster entry.
type RegisterStudentRequest struct {
	Name          string `json:"name" validate:"required"`
	PackageSize   int    `json:"package_size" validate:"min=0"`
	Deposit       string `json:"deposit"`
	PaymentStatus string `json:"payment_status" validate:"omitempty,oneof=Paid Unpaid"`
	Notes         string `json:"notes"`
}

// RecordPaymentRequest describes a payment collection.
type RecordPaymentRequest struct {
	Amount string `json:"amount" validate:"required"`
	Memo   string `json:"memo"`
}

// AddPackageRequest tops up a student's lesson credit.
type AddPackageRequest struct {
	Lessons int `json:"lessons"`
}

// SetFrozenRequest toggles a student's frozen state.
type SetFrozenRequest struct {
	Frozen bool `json:"frozen"`
}

// ManualAdjustRequest overwrites roster fields directly. It models a human
// correction, so the remaining balance is taken as-is.
type ManualAdjustRequest struct {
	RemainingLessons int    `json:"remaining_lessons"`
	PaymentStatus    string `json:"payment_status" validate:"required,oneof=Paid Unpaid"`
	Notes            string `json:"notes"`
	CollectedAmount  string `json:"collected_amount"`
}

// LedgerService is the credit and payment engine. Every operation loads the
// roster snapshot, validates, applies a pure transform, writes the roster
// back, and then appends transaction and activity rows. The roster write is
// the commit point: if it fails the in-memory change is discarded and the
// caller sees STORE_UNAVAILABLE. Appends after a committed roster write are
// best-effort and only logged on failure.
//
// Two concurrent sessions mutating the same student race on the write-back
// and the last writer wins. The backing store exposes no locking primitive,
// so this is documented rather than detected.
type LedgerService struct {
	roster       rosterRepository
	transactions transactionAppender
	activity     activityAppender
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

// NewLedgerService constructs LedgerService.
func NewLedgerService(roster rosterRepository, transactions transactionAppender, activity activityAppender, validate *validator.Validate, logger *zap.Logger) *LedgerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		roster:       roster,
		transactions: transactions,
		activity:     activity,
		validator:    validate,
		logger:       logger,
		now:          time.Now,
	}
}

// List returns the full roster for the coach and the reduced public
// projection for everyone else.
func (s *LedgerService) List(ctx context.Context, actor *models.JWTClaims) ([]models.Student, []models.PublicView) {
	roster := s.roster.Load(ctx)
	if actor.IsCoach() {
		return roster.Students(), nil
	}
	students := roster.Students()
	views := make([]models.PublicView, 0, len(students))
	for _, st := range students {
		views = append(views, st.Public())
	}
	return nil, views
}

// Get returns one student row by name.
func (s *LedgerService) Get(ctx context.Context, name string) (*models.Student, error) {
	roster := s.roster.Load(ctx)
	st, ok := roster.Find(name)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	copied := *st
	return &copied, nil
}

// Register inserts a new student. A positive deposit also applies the
// payment effects, so a student can be registered and paid up in one call.
func (s *LedgerService) Register(ctx context.Context, req RegisterStudentRequest, actor *models.JWTClaims) (*models.Student, error) {
	if err := s.requireCoach(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student name must not be blank")
	}

	roster := s.roster.Load(ctx)
	if roster.Contains(name) {
		return nil, appErrors.Clone(appErrors.ErrDuplicateName, fmt.Sprintf("student %q already registered", name))
	}

	deposit := models.ParseAmount(req.Deposit)
	status := models.StatusActive
	if req.PackageSize == 0 {
		status = models.StatusFinished
	}
	payment := models.PaymentUnpaid
	if req.PaymentStatus == string(models.PaymentPaid) || deposit.IsPositive() {
		payment = models.PaymentPaid
	}
	st := models.Student{
		Name:             name,
		PackageSize:      req.PackageSize,
		RemainingLessons: req.PackageSize,
		LastActivity:     s.stamp(),
		Status:           status,
		PaymentStatus:    payment,
		Notes:            req.Notes,
	}
	roster.Add(st)

	if err := s.roster.Save(ctx, roster); err != nil {
		return nil, err
	}
	s.logActivity(ctx, name, models.ActionRegistration, fmt.Sprintf("Package: %d lessons", req.PackageSize))
	if deposit.IsPositive() {
		s.appendIncome(ctx, name, deposit, "Registration deposit")
	}
	return &st, nil
}

// ConsumeLesson deducts one lesson from an active student. The balance
// check runs before the status check so a finished student reads as out of
// credit rather than merely inactive.
func (s *LedgerService) ConsumeLesson(ctx context.Context, name string, actor *models.JWTClaims) (*models.Student, error) {
	if err := s.requireCoach(actor); err != nil {
		return nil, err
	}
	roster := s.roster.Load(ctx)
	st, ok := roster.Find(name)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	if st.RemainingLessons <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInsufficientCredit, "no lessons remaining")
	}
	if st.Status != models.StatusActive {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("student is %s", strings.ToLower(string(st.Status))))
	}

	st.RemainingLessons--
	st.LastActivity = s.stamp()
	if st.RemainingLessons == 0 {
		st.Status = models.StatusFinished
	}

	if err := s.roster.Save(ctx, roster); err != nil {
		return nil, err
	}
	s.logActivity(ctx, name, models.ActionLessonConsumed, fmt.Sprintf("Remaining: %d", st.RemainingLessons))
	copied := *st
	return &copied, nil
}

// RefundLesson reverses one lesson deduction. A finished student with
// credit again becomes active; a frozen student stays frozen.
func (s *LedgerService) RefundLesson(ctx context.Context, name string, actor *models.JWTClaims) (*models.Student, error) {
	if err := s.requireCoach(actor); err != nil {
		return nil, err
	}
	roster := s.roster.Load(ctx)
	st, ok := roster.Find(name)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	st.RemainingLessons++
	st.LastActivity = s.stamp()
	if st.Status == models.StatusFinished && st.RemainingLessons > 0 {
		st.Status = models.StatusActive
	}

	if err := s.roster.Save(ctx, roster); err != nil {
		return nil, err
	}
	s.logActivity(ctx, name, models.ActionLessonRefunded, fmt.Sprintf("Remaining: %d", st.RemainingLessons))
	copied := *st
	return &copied, nil
}

// AddPackage tops up remaining lessons. Reactivation never overrides the
// frozen state.
func (s *LedgerService) AddPackage(ctx context.Context, name string, req AddPackageRequest, actor *models.JWTClaims) (*models.Student, error) {
	if err := s.requireCoach(actor); err != nil {
		return nil, err
	}
	if req.Lessons < 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidAmount, "lesson count must not be negative")
	}
	roster := s.roster.Load(ctx)
	st, ok := roster.Find(name)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	st.RemainingLessons += req.Lessons
	st.LastActivity = s.stamp()
	if st.Status != models.StatusFrozen && st.RemainingLessons > 0 {
		st.Status = models.StatusActive
	}

	if err := s.roster.Save(ctx, roster); err != nil {
		return nil, err
	}
	if req.Lessons > 0 {
		s.logActivity(ctx, name, models.ActionPackageAdded, fmt.Sprintf("+%d lessons, remaining: %d", req.Lessons, st.RemainingLessons))
	}
	copied := *st
	return &copied, nil
}

// RecordPayment marks the student paid and appends one income row.
func (s *LedgerService) RecordPayment(ctx context.Context, name string, req RecordPaymentRequest, actor *models.JWTClaims) (*models.Student, error) {
	if err := s.requireCoach(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	amount := models.ParseAmount(req.Amount)
	if !amount.IsPositive() {
		return nil, appErrors.Clone(appErrors.ErrInvalidAmount, "payment amount must be positive")
	}
	roster := s.roster.Load(ctx)
	st, ok := roster.Find(name)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	st.PaymentStatus = models.PaymentPaid
	st.LastActivity = s.stamp()

	if err := s.roster.Save(ctx, roster); err != nil {
		return nil, err
	}
	s.appendIncome(ctx, name, amount, req.Memo)
	copied := *st
	return &copied, nil
}

// SetFrozen toggles the frozen state. Unfreezing lands on Active or
// Finished depending on the remaining balance.
func (s *LedgerService) SetFrozen(ctx context.Context, name string, frozen bool, actor *models.JWTClaims) (*models.Student, error) {
	if err := s.requireCoach(actor); err != nil {
		return nil, err
	}
	roster := s.roster.Load(ctx)
	st, ok := roster.Find(name)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	if frozen {
		st.Status = models.StatusFrozen
	} else if st.RemainingLessons > 0 {
		st.Status = models.StatusActive
	} else {
		st.Status = models.StatusFinished
	}
	st.LastActivity = s.stamp()

	if err := s.roster.Save(ctx, roster); err != nil {
		return nil, err
	}
	s.logActivity(ctx, name, models.ActionStatusChanged, fmt.Sprintf("Status: %s", st.Status))
	copied := *st
	return &copied, nil
}

// Delete removes the roster row for good.
func (s *LedgerService) Delete(ctx context.Context, name string, actor *models.JWTClaims) error {
	if err := s.requireCoach(actor); err != nil {
		return err
	}
	roster := s.roster.Load(ctx)
	if !roster.Remove(name) {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	if err := s.roster.Save(ctx, roster); err != nil {
		return err
	}
	s.logActivity(ctx, name, models.ActionStudentRemoved, "Removed from roster")
	return nil
}

// ManualAdjust overwrites roster fields directly, then reapplies the
// zero-credit and frozen rules. An optional collected amount additionally
// applies the payment effects.
func (s *LedgerService) ManualAdjust(ctx context.Context, name string, req ManualAdjustRequest, actor *models.JWTClaims) (*models.Student, error) {
	if err := s.requireCoach(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid adjustment payload")
	}
	roster := s.roster.Load(ctx)
	st, ok := roster.Find(name)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	collected := models.ParseAmount(req.CollectedAmount)

	st.RemainingLessons = req.RemainingLessons
	st.PaymentStatus = models.PaymentStatus(req.PaymentStatus)
	st.Notes = req.Notes
	if collected.IsPositive() {
		st.PaymentStatus = models.PaymentPaid
	}
	if st.Status != models.StatusFrozen {
		if st.RemainingLessons <= 0 {
			st.Status = models.StatusFinished
		} else {
			st.Status = models.StatusActive
		}
	}
	st.LastActivity = s.stamp()

	if err := s.roster.Save(ctx, roster); err != nil {
		return nil, err
	}
	s.logActivity(ctx, name, models.ActionManualAdjust, fmt.Sprintf("Remaining: %d, payment: %s", st.RemainingLessons, st.PaymentStatus))
	if collected.IsPositive() {
		s.appendIncome(ctx, name, collected, "Manual collection")
	}
	copied := *st
	return &copied, nil
}

func (s *LedgerService) requireCoach(actor *models.JWTClaims) error {
	if !actor.IsCoach() {
		return appErrors.Clone(appErrors.ErrForbidden, "coach role required")
	}
	return nil
}

// stamp renders the display-only last-activity marker.
func (s *LedgerService) stamp() string {
	return s.now().Format("02-01 15:04")
}

func (s *LedgerService) logActivity(ctx context.Context, student, action, detail string) {
	entry := models.NewActivityLogEntry(s.now(), student, action, detail)
	if err := s.activity.Append(ctx, entry); err != nil {
		s.logger.Warn("activity append failed after committed write",
			zap.String("student", student),
			zap.String("action", action),
			zap.Error(err))
	}
}

func (s *LedgerService) appendIncome(ctx context.Context, student string, amount decimal.Decimal, memo string) {
	txn := models.NewTransaction(s.now(), student, amount, memo, models.KindIncome)
	if err := s.transactions.Append(ctx, txn); err != nil {
		s.logger.Warn("transaction append failed after committed write",
			zap.String("student", student),
			zap.Error(err))
	}
	s.logActivity(ctx, student, models.ActionPaymentReceived, fmt.Sprintf("Amount: %s", models.FormatAmount(amount)))
}
