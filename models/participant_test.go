package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseParticipantEnums(t *testing.T) {
	role, err := ParseParticipantRole("EMERGENCY")
	assert.NoError(t, err)
	assert.Equal(t, RoleEmergency, role)
	_, err = ParseParticipantRole("SUBSTITUTE")
	assert.Error(t, err)

	status, err := ParseParticipantStatus("BACKED_OUT")
	assert.NoError(t, err)
	assert.Equal(t, ParticipantBackedOut, status)

	payment, err := ParsePaymentStatus("PAID")
	assert.NoError(t, err)
	assert.Equal(t, PaymentPaid, payment)

	mode, err := ParsePaymentMode("UPI")
	assert.NoError(t, err)
	assert.Equal(t, PaymentModeUPI, mode)
	_, err = ParsePaymentMode("CHEQUE")
	assert.Error(t, err)
}
