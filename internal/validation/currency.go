package validation

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

// ParseCurrency трактует цифры ввода как сумму в сентаво и возвращает её в реалах.
// ok равно false, если в вводе нет ни одной цифры.
func ParseCurrency(value string) (amount decimal.Decimal, ok bool) {
	digits := Digits(value)
	if digits == "" {
		return decimal.Zero, false
	}

	cents, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero, false
	}
	return cents.Shift(-2), true
}

// FormatCurrency форматирует ввод оператора как сумму с двумя знаками и группировкой pt-BR.
func FormatCurrency(value string) string {
	amount, ok := ParseCurrency(value)
	if !ok {
		return ""
	}
	return FormatAmount(amount)
}

// FormatAmount выводит сумму с двумя знаками после запятой и разделителями разрядов pt-BR.
// Сумма форматируется из десятичного представления без потери точности.
func FormatAmount(amount decimal.Decimal) string {
	whole, frac, _ := strings.Cut(amount.StringFixed(2), ".")

	sign := ""
	if strings.HasPrefix(whole, "-") {
		sign, whole = "-", whole[1:]
	}

	return sign + groupThousands(whole) + "," + frac
}

// groupThousands расставляет разделители разрядов в строке цифр.
func groupThousands(digits string) string {
	if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
		return brPrinter.Sprintf("%d", n)
	}

	// за пределами int64 группы собираются вручную
	var b strings.Builder
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteByte('.')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatBRL выводит сумму в реалах, например "R$ 1.234,56".
func FormatBRL(amount decimal.Decimal) string {
	return "R$ " + FormatAmount(amount)
}
