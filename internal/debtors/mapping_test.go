package debtors

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mmeshcher/debtdesk/internal/backend"
	"github.com/mmeshcher/debtdesk/internal/model"
)

func TestResolveStatus(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  model.DebtStatus
	}{
		{name: "bool true", value: true, want: model.DebtStatusPaid},
		{name: "bool false", value: false, want: model.DebtStatusPending},
		{name: "number one", value: json.Number("1"), want: model.DebtStatusPaid},
		{name: "number zero", value: json.Number("0"), want: model.DebtStatusPending},
		{name: "float one", value: float64(1), want: model.DebtStatusPaid},
		{name: "number two", value: json.Number("2"), want: model.DebtStatusUnpaid},
		{name: "string pago", value: "Pago", want: model.DebtStatusPaid},
		{name: "string true", value: "TRUE", want: model.DebtStatusPaid},
		{name: "string one", value: "1", want: model.DebtStatusPaid},
		{name: "string pendente", value: "pendente", want: model.DebtStatusPending},
		{name: "string nao pago", value: "nao pago", want: model.DebtStatusPending},
		{name: "string não pago", value: "Não Pago", want: model.DebtStatusPending},
		{name: "string zero", value: "0", want: model.DebtStatusPending},
		{name: "unknown string", value: "atrasado", want: model.DebtStatusUnpaid},
		{name: "missing", value: nil, want: model.DebtStatusUnpaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveStatus(tt.value))
		})
	}
}

func TestParseAmount(t *testing.T) {
	assert.True(t, ParseAmount("150.50").Equal(decimal.RequireFromString("150.5")))
	assert.True(t, ParseAmount(json.Number("99.9")).Equal(decimal.RequireFromString("99.9")))
	assert.True(t, ParseAmount(float64(12)).Equal(decimal.NewFromInt(12)))
	assert.True(t, ParseAmount("abc").IsZero())
	assert.True(t, ParseAmount(nil).IsZero())
	assert.True(t, ParseAmount("-10").IsZero())
}

func TestMapRecord(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	newID := func() string { return "#GEN" }
	clock := func() time.Time { return now }

	full := mapRecord(backend.DebtRecord{
		ID:            "a1",
		DebtValue:     "1149.95",
		DebtorName:    "Henrique",
		DebtorContact: "5511987654321",
		DebtorCPF:     "52998224725",
		DebtStatus:    "pago",
		CreatedAt:     "2022-06-15T10:00:00Z",
	}, newID, clock)

	assert.Equal(t, "a1", full.ID)
	assert.Equal(t, "Henrique", full.Name)
	assert.Equal(t, "529.982.247-25", full.CPF)
	assert.Equal(t, "(11) 98765-4321", full.Contact)
	assert.Equal(t, model.DebtStatusPaid, full.Status)
	assert.Equal(t, time.Date(2022, 6, 15, 10, 0, 0, 0, time.UTC), full.CreatedAt)
	assert.Equal(t, "2022-06-15T10:00:00Z", full.Date)

	sparse := mapRecord(backend.DebtRecord{
		UpdatedAt: "2023-01-01 08:30:00",
	}, newID, clock)

	assert.Equal(t, "#GEN", sparse.ID)
	assert.Equal(t, "—", sparse.Name)
	assert.True(t, sparse.Amount.IsZero())
	assert.Equal(t, model.DebtStatusUnpaid, sparse.Status)
	assert.Equal(t, time.Date(2023, 1, 1, 8, 30, 0, 0, time.UTC), sparse.CreatedAt)

	empty := mapRecord(backend.DebtRecord{}, newID, clock)
	assert.Equal(t, "2026-01-02T03:04:05Z", empty.Date)
	assert.Equal(t, now, empty.CreatedAt)
}

func TestFallbackID(t *testing.T) {
	a, b := fallbackID(), fallbackID()
	assert.Len(t, a, 9)
	assert.Equal(t, byte('#'), a[0])
	assert.NotEqual(t, a, b)
}
