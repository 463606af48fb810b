package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOrderStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    OrderStatus
		wantErr bool
	}{
		{"pending", OrderStatusPending, false},
		{"processing", OrderStatusProcessing, false},
		{"shipped", OrderStatusShipped, false},
		{"delivered", OrderStatusDelivered, false},
		{"cancelled", OrderStatusCancelled, false},
		{"", "", true},
		{"Pending", "", true},
		{"canceled", "", true},
	}

	for _, tt := range tests {
		got, err := ParseOrderStatus(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "ParseOrderStatus(%q)", tt.input)
			continue
		}
		assert.NoError(t, err, "ParseOrderStatus(%q)", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestOrderStatusesAreValid(t *testing.T) {
	assert.Len(t, OrderStatuses, 5)
	for _, s := range OrderStatuses {
		assert.True(t, s.Valid(), "status %q", s)
	}
	assert.False(t, OrderStatus("lost").Valid())
}
