package validation

import "strings"

const (
	phoneMaxLength = 11
	countryCode    = "55"
)

// FormatPhone постепенно применяет маску (DD) NNNN-NNNN или (DD) NNNNN-NNNN, не более 11 цифр.
func FormatPhone(value string) string {
	digits := Digits(value)
	if len(digits) > phoneMaxLength {
		digits = digits[:phoneMaxLength]
	}

	switch {
	case digits == "":
		return ""
	case len(digits) <= 2:
		return "(" + digits
	case len(digits) <= 6:
		return "(" + digits[:2] + ") " + digits[2:]
	case len(digits) <= 10:
		return "(" + digits[:2] + ") " + digits[2:6] + "-" + digits[6:]
	default:
		return "(" + digits[:2] + ") " + digits[2:7] + "-" + digits[7:]
	}
}

// IsValidPhone сообщает, что в номере 10 или 11 цифр.
func IsValidPhone(value string) bool {
	n := len(Digits(value))
	return n >= 10 && n <= phoneMaxLength
}

// NormalizePhone приводит номер к виду для отправки в API: только цифры с кодом страны 55.
func NormalizePhone(value string) string {
	digits := Digits(value)
	if strings.HasPrefix(digits, countryCode) {
		return digits
	}
	return countryCode + digits
}

// FormatPhoneForDisplay форматирует контакт, полученный от API.
// Код страны отбрасывается у номеров длиннее 11 цифр, слишком короткие контакты возвращаются как есть.
func FormatPhoneForDisplay(contact string) string {
	if contact == "" {
		return ""
	}

	digits := Digits(contact)
	local := digits
	if len(digits) > phoneMaxLength && strings.HasPrefix(digits, countryCode) {
		local = digits[len(countryCode):]
	}

	switch {
	case len(local) < 10:
		return contact
	case len(local) == 10:
		return "(" + local[:2] + ") " + local[2:6] + "-" + local[6:]
	default:
		return "(" + local[:2] + ") " + local[2:7] + "-" + local[7:11]
	}
}
