// Package validation содержит форматирование и проверку полей, которые вводит оператор.
package validation

import "strings"

const cpfLength = 11

// Digits оставляет в строке только ASCII-цифры.
func Digits(value string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, value)
}

// FormatCPF группирует цифры CPF в виде XXX.XXX.XXX-XX по мере их ввода.
func FormatCPF(value string) string {
	digits := Digits(value)
	if len(digits) > cpfLength {
		digits = digits[:cpfLength]
	}

	var b strings.Builder
	for i, r := range digits {
		switch i {
		case 3, 6:
			b.WriteByte('.')
		case 9:
			b.WriteByte('-')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsValidCPF проверяет номер CPF по двум контрольным цифрам (взвешенная сумма по модулю 11).
func IsValidCPF(value string) bool {
	digits := Digits(value)
	if len(digits) != cpfLength {
		return false
	}
	if strings.Count(digits, digits[:1]) == cpfLength {
		return false
	}

	d1 := cpfCheckDigit(digits, 9)
	d2 := cpfCheckDigit(digits, 10)

	return d1 == int(digits[9]-'0') && d2 == int(digits[10]-'0')
}

// cpfCheckDigit считает контрольную цифру по первым n цифрам с весами от n+1 до 2.
func cpfCheckDigit(digits string, n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += int(digits[i]-'0') * (n + 1 - i)
	}

	mod := (sum * 10) % 11
	if mod == 10 {
		return 0
	}
	return mod
}
