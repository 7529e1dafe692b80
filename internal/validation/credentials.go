package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"
)

const minPasswordLength = 5

// CredentialErrors содержит сообщения об ошибках полей формы входа. Пустая строка означает, что поле корректно.
type CredentialErrors struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// Valid сообщает, что ошибок нет.
func (e CredentialErrors) Valid() bool {
	return e.Email == "" && e.Password == ""
}

// ValidateCredentials проверяет email и пароль перед отправкой формы входа.
func ValidateCredentials(email, password string) CredentialErrors {
	var errs CredentialErrors

	email = strings.TrimSpace(email)
	switch {
	case email == "":
		errs.Email = "Informe seu email."
	case !govalidator.IsEmail(email):
		errs.Email = "Digite um email válido."
	}

	switch {
	case password == "":
		errs.Password = "Informe sua senha."
	case utf8.RuneCountInString(password) < minPasswordLength:
		errs.Password = "A senha precisa ter pelo menos 5 caracteres."
	}

	return errs
}
