package debtors

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/debtdesk/internal/backend"
	"github.com/mmeshcher/debtdesk/internal/model"
	"github.com/mmeshcher/debtdesk/internal/validation"
)

const missingName = "—"

// statusRule описывает правило таблицы разрешения статуса.
type statusRule struct {
	match  func(v any) bool
	status model.DebtStatus
}

// Таблица разрешения статуса долга. Правила проверяются по порядку, побеждает первое совпадение.
//
//	bool true / false                                 -> Pago / Pendente
//	число 1 / 0                                       -> Pago / Pendente
//	строка true, 1, pago                              -> Pago
//	строка false, 0, pendente, nao pago, não pago     -> Pendente
//	всё остальное                                     -> Não Pago
var statusRules = []statusRule{
	{match: isBool(true), status: model.DebtStatusPaid},
	{match: isBool(false), status: model.DebtStatusPending},
	{match: isNumber(1), status: model.DebtStatusPaid},
	{match: isNumber(0), status: model.DebtStatusPending},
	{match: isOneOf("true", "1", "pago"), status: model.DebtStatusPaid},
	{match: isOneOf("false", "0", "pendente", "nao pago", "não pago"), status: model.DebtStatusPending},
}

// ResolveStatus выводит статус долга из значения debt_status в любой из кодировок API.
func ResolveStatus(v any) model.DebtStatus {
	for _, rule := range statusRules {
		if rule.match(v) {
			return rule.status
		}
	}
	return model.DebtStatusUnpaid
}

func isBool(want bool) func(any) bool {
	return func(v any) bool {
		b, ok := v.(bool)
		return ok && b == want
	}
}

func isNumber(want float64) func(any) bool {
	return func(v any) bool {
		switch n := v.(type) {
		case json.Number:
			f, err := n.Float64()
			return err == nil && f == want
		case float64:
			return n == want
		case int:
			return float64(n) == want
		case int64:
			return float64(n) == want
		}
		return false
	}
}

func isOneOf(values ...string) func(any) bool {
	return func(v any) bool {
		s, ok := v.(string)
		return ok && slices.Contains(values, strings.ToLower(strings.TrimSpace(s)))
	}
}

// ParseAmount разбирает debt_value. Нечисловые и отрицательные значения дают ноль.
func ParseAmount(v any) decimal.Decimal {
	var (
		d   decimal.Decimal
		err error
	)

	switch val := v.(type) {
	case string:
		d, err = decimal.NewFromString(strings.TrimSpace(val))
	case json.Number:
		d, err = decimal.NewFromString(val.String())
	case float64:
		d = decimal.NewFromFloat(val)
	case int:
		d = decimal.NewFromInt(int64(val))
	case int64:
		d = decimal.NewFromInt(val)
	default:
		return decimal.Zero
	}

	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// parseTimestamp возвращает нулевое время, если ни один формат не подошёл.
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// fallbackID генерирует идентификатор строки, если API его не прислал.
func fallbackID() string {
	return "#" + strings.ToUpper(uuid.NewString()[:8])
}

// mapRecord переводит запись API в строку списка.
func mapRecord(rec backend.DebtRecord, newID func() string, now func() time.Time) model.DebtorRow {
	id := string(rec.ID)
	if id == "" {
		id = newID()
	}

	name := strings.TrimSpace(rec.DebtorName)
	if name == "" {
		name = missingName
	}

	date := rec.CreatedAt
	if date == "" {
		date = rec.UpdatedAt
	}
	if date == "" {
		date = now().UTC().Format(time.RFC3339)
	}

	cpf := rec.DebtorCPF
	if len(validation.Digits(cpf)) == 11 {
		cpf = validation.FormatCPF(cpf)
	}

	return model.DebtorRow{
		ID:        id,
		Name:      name,
		Date:      date,
		CreatedAt: parseTimestamp(date),
		Amount:    ParseAmount(rec.DebtValue),
		CPF:       cpf,
		Status:    ResolveStatus(rec.DebtStatus),
		Contact:   validation.FormatPhoneForDisplay(rec.DebtorContact),
	}
}
