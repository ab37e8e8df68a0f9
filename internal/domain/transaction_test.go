package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to TransactionStatus
		want     bool
	}{
		{TransactionStatusPending, TransactionStatusApproved, true},
		{TransactionStatusPending, TransactionStatusRejected, true},
		{TransactionStatusApproved, TransactionStatusProcessed, true},
		{TransactionStatusProcessed, TransactionStatusPaid, true},
		{TransactionStatusPending, TransactionStatusProcessed, false},
		{TransactionStatusPending, TransactionStatusPaid, false},
		{TransactionStatusApproved, TransactionStatusPaid, false},
		{TransactionStatusApproved, TransactionStatusRejected, false},
		{TransactionStatusRejected, TransactionStatusApproved, false},
		{TransactionStatusPaid, TransactionStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, TransactionStatusPaid.Valid())
	assert.False(t, TransactionStatus("SETTLED").Valid())
	assert.True(t, TransactionTypeAdjustment.Valid())
	assert.False(t, TransactionType("CASHBACK").Valid())
	assert.True(t, UserStatusSuspended.Valid())
	assert.False(t, UserStatus("BANNED").Valid())
	assert.True(t, AdminRoleSuperAdmin.Valid())
	assert.False(t, AdminRole("OWNER").Valid())
}
