package txledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weisyn/txledger/pkg/types"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to types.TxStatus
		want     bool
	}{
		{types.TxStatusUnapproved, types.TxStatusApproved, true},
		{types.TxStatusUnapproved, types.TxStatusSigned, true},
		{types.TxStatusApproved, types.TxStatusConfirmed, true},
		{types.TxStatusSigned, types.TxStatusSigned, true},
		{types.TxStatusConfirmed, types.TxStatusConfirmed, true},
		{types.TxStatusSigned, types.TxStatusApproved, false},
		{types.TxStatusSubmitted, types.TxStatusUnapproved, false},
		{types.TxStatusUnapproved, types.TxStatusRejected, true},
		{types.TxStatusSubmitted, types.TxStatusFailed, true},
		{types.TxStatusSubmitted, types.TxStatusDropped, true},
		{types.TxStatusConfirmed, types.TxStatusFailed, false},
		{types.TxStatusRejected, types.TxStatusApproved, false},
		{types.TxStatusDropped, types.TxStatusRejected, false},
		{types.TxStatus("pending"), types.TxStatusApproved, false},
		{types.TxStatusApproved, types.TxStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestStatusEventType(t *testing.T) {
	assert.Equal(t, "7:confirmed", string(StatusEventType("7", types.TxStatusConfirmed)))
}
