// Package model содержит доменные сущности рабочего места взыскания долгов.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Session описывает сессию оператора, полученную из ответа на вход или регистрацию.
// Пустая строка означает отсутствие значения.
type Session struct {
	Token     string
	CompanyID string
	UserName  string
}

// Anonymous сообщает, что токен отсутствует и сессия считается гостевой.
func (s Session) Anonymous() bool {
	return s.Token == ""
}

// DebtStatus описывает статус оплаты долга.
type DebtStatus string

const (
	DebtStatusPaid    DebtStatus = "Pago"
	DebtStatusPending DebtStatus = "Pendente"
	DebtStatusUnpaid  DebtStatus = "Não Pago"
)

// Label возвращает подпись статуса, которая показывается оператору и участвует в поиске.
func (s DebtStatus) Label() string {
	return string(s)
}

// DebtorRow описывает строку списка должников.
type DebtorRow struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Date      string          `json:"date"`
	CreatedAt time.Time       `json:"created_at"`
	Amount    decimal.Decimal `json:"amount"`
	CPF       string          `json:"cpf"`
	Status    DebtStatus      `json:"status"`
	Contact   string          `json:"contact,omitempty"`
}

// DebtDraft содержит сырые данные формы создания долга.
// Amount хранит только цифры и трактуется как сумма в сентаво.
type DebtDraft struct {
	Name   string `json:"name"`
	CPF    string `json:"cpf"`
	Phone  string `json:"phone"`
	Amount string `json:"amount"`
}

// SortKey задаёт поле сортировки списка.
type SortKey string

const (
	SortNone   SortKey = ""
	SortAmount SortKey = "amount"
	SortDate   SortKey = "date"
)

// SortDir задаёт направление сортировки.
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// ToastKind описывает вид уведомления.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// Toast описывает временное уведомление оператору.
type Toast struct {
	Kind    ToastKind `json:"kind"`
	Message string    `json:"message"`
}
