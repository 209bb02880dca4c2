package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCheckAmount(t *testing.T) {
	tests := []struct {
		amount  string
		message string
	}{
		{"0", ""},
		{"15.49", ""},
		{"12.300", ""},
		{"9999999999.99", ""},
		{"-0.01", "must not be negative"},
		{"12.345", "must have at most 2 decimal places"},
		{"0.001", "must have at most 2 decimal places"},
		{"10000000000", "must be less than 10000000000"},
		{"1e12", "must be less than 10000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			err := CheckAmount("amount_due", decimal.RequireFromString(tt.amount))
			if tt.message == "" {
				assert.Nil(t, err)
				return
			}
			if assert.NotNil(t, err) {
				assert.Equal(t, "amount_due", err.Field)
				assert.Equal(t, tt.message, err.Message)
			}
		})
	}
}
