package appointment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition_AllowedPaths(t *testing.T) {
	allowed := []struct {
		from, to Status
	}{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCancelled},
		{StatusPendingPayment, StatusPaymentSubmitted},
		{StatusPendingPayment, StatusCancelled},
		{StatusPaymentSubmitted, StatusConfirmed},
		{StatusPaymentSubmitted, StatusPaymentRejected},
		{StatusPaymentRejected, StatusPaymentSubmitted},
		{StatusPaymentRejected, StatusCancelled},
		{StatusConfirmed, StatusCompleted},
		{StatusConfirmed, StatusCancelled},
	}

	for _, tc := range allowed {
		assert.NoError(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCanTransition_ForbiddenPaths(t *testing.T) {
	forbidden := []struct {
		from, to Status
	}{
		{StatusPending, StatusCompleted},
		{StatusPending, StatusPaymentSubmitted},
		{StatusPendingPayment, StatusConfirmed},
		{StatusPaymentSubmitted, StatusPendingPayment},
		{StatusPaymentRejected, StatusPendingPayment},
		{StatusPaymentRejected, StatusConfirmed},
		{StatusConfirmed, StatusPending},
		{StatusCompleted, StatusConfirmed},
		{StatusCancelled, StatusPending},
		{StatusCancelled, StatusConfirmed},
	}

	for _, tc := range forbidden {
		assert.Error(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStatusesAreAbsorbing(t *testing.T) {
	all := []Status{
		StatusPending, StatusPendingPayment, StatusPaymentSubmitted,
		StatusPaymentRejected, StatusConfirmed, StatusCompleted, StatusCancelled,
	}

	for _, to := range all {
		assert.Error(t, CanTransition(StatusCancelled, to))
		assert.Error(t, CanTransition(StatusCompleted, to))
	}
}

func TestNonTerminalStatusesOccupySlots(t *testing.T) {
	got := NonTerminalStatuses()

	assert.NotContains(t, got, string(StatusCancelled))
	assert.NotContains(t, got, string(StatusCompleted))
	assert.Contains(t, got, string(StatusPending))
	assert.Contains(t, got, string(StatusPendingPayment))
	assert.Contains(t, got, string(StatusPaymentSubmitted))
	assert.Contains(t, got, string(StatusPaymentRejected))
	assert.Contains(t, got, string(StatusConfirmed))
}
