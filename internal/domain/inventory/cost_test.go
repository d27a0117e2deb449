package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestWeightedAverageCost(t *testing.T) {
	cases := []struct {
		name                       string
		curQty, curCost, qty, cost string
		want                       string
	}{
		{"primera entrada", "0", "0", "50", "20", "20"},
		{"promedio simple", "10", "100", "10", "200", "150"},
		{"promedio ponderado", "10", "100000", "5", "120000", "106666.666667"},
		{"entrada a costo cero", "30", "20", "10", "0", "15"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := inventory.WeightedAverageCost(d(tc.curQty), d(tc.curCost), d(tc.qty), d(tc.cost))
			assert.True(t, d(tc.want).Equal(got), "esperado %s, obtenido %s", tc.want, got)
		})
	}
}

func TestDistributionNumber(t *testing.T) {
	day := time.Date(2026, 3, 7, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "DIST-20260307-0001", inventory.DistributionNumber(day, 1))
	assert.Equal(t, "DIST-20260307-0123", inventory.DistributionNumber(day, 123))
	assert.Equal(t, "DIST-20260307-12345", inventory.DistributionNumber(day, 12345))
}

func TestDayOf(t *testing.T) {
	loc := time.FixedZone("COT", -5*3600)
	in := time.Date(2026, 3, 7, 23, 59, 0, 0, loc)
	assert.Equal(t, time.Date(2026, 3, 7, 0, 0, 0, 0, loc), inventory.DayOf(in))
}
