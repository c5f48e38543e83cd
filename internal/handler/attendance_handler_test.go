package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/courtmaster/courtledger-api/internal/models"
	"github.com/courtmaster/courtledger-api/internal/service"
)

func activeFixture(remaining int) *service.LedgerService {
	return ledgerFixture(models.Student{
		Name:             "Ayse",
		PackageSize:      remaining,
		RemainingLessons: remaining,
		Status:           models.StatusActive,
		PaymentStatus:    models.PaymentUnpaid,
	})
}

func TestConsumeLessonOK(t *testing.T) {
	h := NewAttendanceHandler(activeFixture(3))

	c, rec := testContext(t, http.MethodPost, "/students/Ayse/consume", nil, true)
	c.Params = gin.Params{{Key: "name", Value: "Ayse"}}
	h.Consume(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "\"remaining_lessons\":2")
}

func TestConsumeLessonExhaustedConflict(t *testing.T) {
	h := NewAttendanceHandler(activeFixture(0))

	c, rec := testContext(t, http.MethodPost, "/students/Ayse/consume", nil, true)
	c.Params = gin.Params{{Key: "name", Value: "Ayse"}}
	h.Consume(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "INSUFFICIENT_CREDIT")
}

func TestRecordPaymentInvalidAmount(t *testing.T) {
	h := NewAttendanceHandler(activeFixture(3))

	c, rec := testContext(t, http.MethodPost, "/students/Ayse/payments", service.RecordPaymentRequest{Amount: "abc"}, true)
	c.Params = gin.Params{{Key: "name", Value: "Ayse"}}
	h.RecordPayment(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_AMOUNT")
}

func TestAddPackageOK(t *testing.T) {
	h := NewAttendanceHandler(activeFixture(1))

	c, rec := testContext(t, http.MethodPost, "/students/Ayse/packages", service.AddPackageRequest{Lessons: 4}, true)
	c.Params = gin.Params{{Key: "name", Value: "Ayse"}}
	h.AddPackage(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "\"remaining_lessons\":5")
}

func TestRefundForbiddenWithoutCoach(t *testing.T) {
	h := NewAttendanceHandler(activeFixture(1))

	c, rec := testContext(t, http.MethodPost, "/students/Ayse/refund", nil, false)
	c.Params = gin.Params{{Key: "name", Value: "Ayse"}}
	h.Refund(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
