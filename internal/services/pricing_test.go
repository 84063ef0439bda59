package services

import (
	"testing"

	"solemate_backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestProfit(t *testing.T) {
	o := models.Order{TotalPrice: 500, HubPrice: 200, Expense: 50}
	assert.Equal(t, 250.0, Profit(o))

	// A hub charge above the customer price yields a loss.
	o = models.Order{TotalPrice: 100, HubPrice: 150}
	assert.Equal(t, -50.0, Profit(o))

	assert.Equal(t, 0.0, Profit(models.Order{}))
}

func TestBalanceDue(t *testing.T) {
	tests := []struct {
		name  string
		order models.Order
		want  float64
	}{
		{
			name:  "partial advance",
			order: models.Order{TotalPrice: 500, AdvanceAmount: 200},
			want:  300,
		},
		{
			name:  "advance plus balance payment settles",
			order: models.Order{TotalPrice: 500, AdvanceAmount: 200, BalancePaid: 300},
			want:  0,
		},
		{
			name:  "overpayment floors at zero",
			order: models.Order{TotalPrice: 500, AdvanceAmount: 600},
			want:  0,
		},
		{
			name:  "nothing paid",
			order: models.Order{TotalPrice: 375},
			want:  375,
		},
		{
			name:  "zero price order",
			order: models.Order{},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BalanceDue(tt.order)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0.0)
		})
	}
}

func TestIsFullyPaid(t *testing.T) {
	assert.True(t, IsFullyPaid(models.Order{TotalPrice: 100, AdvanceAmount: 100}))
	assert.True(t, IsFullyPaid(models.Order{TotalPrice: 100, AdvanceAmount: 40, BalancePaid: 60}))
	assert.False(t, IsFullyPaid(models.Order{TotalPrice: 100, AdvanceAmount: 40}))
	assert.True(t, IsFullyPaid(models.Order{}))
}

func TestSplitGroupExpense(t *testing.T) {
	assert.Equal(t, 50.0, SplitGroupExpense(2, 100))
	assert.Equal(t, 100.0, SplitGroupExpense(1, 100))
	assert.InDelta(t, 33.3333, SplitGroupExpense(3, 100), 0.001)
	assert.Equal(t, 0.0, SplitGroupExpense(0, 100))
	assert.Equal(t, 0.0, SplitGroupExpense(-1, 100))
}
