package backend

import (
	"encoding/json"
	"fmt"
)

// DebtRecord описывает запись о долге в формате API. Поля с неоднородной кодировкой хранятся как есть.
type DebtRecord struct {
	ID            FlexString `json:"id,omitempty"`
	DebtValue     any        `json:"debt_value,omitempty"`
	DebtorName    string     `json:"debtor_name,omitempty"`
	DebtorContact string     `json:"debtor_contact,omitempty"`
	DebtorCPF     string     `json:"debtor_cpf,omitempty"`
	DebtStatus    any        `json:"debt_status,omitempty"`
	CreatedAt     string     `json:"created_at,omitempty"`
	UpdatedAt     string     `json:"updated_at,omitempty"`
}

// NewDebt описывает тело запроса на создание долга.
type NewDebt struct {
	CompanyID     string `json:"company_id"`
	DebtValue     string `json:"debt_value"`
	DebtorName    string `json:"debtor_name"`
	DebtorContact string `json:"debtor_contact"`
	DebtorCPF     string `json:"debtor_cpf"`
}

// FlexString принимает из JSON как строку, так и число.
type FlexString string

// UnmarshalJSON реализует json.Unmarshaler.
func (s *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = FlexString(str)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("id must be string or number: %w", err)
	}
	*s = FlexString(num.String())
	return nil
}
