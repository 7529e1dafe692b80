package debtors

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mmeshcher/debtdesk/internal/model"
	"github.com/mmeshcher/debtdesk/internal/validation"
)

// WhatsAppLink строит ссылку на диалог с должником с готовым текстом о долге.
// Для строк без контакта ok равно false.
func WhatsAppLink(row model.DebtorRow) (link string, ok bool) {
	if row.Contact == "" {
		return "", false
	}

	digits := validation.Digits(row.Contact)
	if digits == "" {
		return "", false
	}

	phone := digits
	if len(digits) == 11 || !strings.HasPrefix(digits, "55") {
		phone = "55" + digits
	}

	text := fmt.Sprintf("Olá %s, estamos entrando em contato sobre sua dívida de %s. Podemos conversar?",
		row.Name, validation.FormatBRL(row.Amount))

	q := url.Values{}
	q.Set("phone", phone)
	q.Set("text", text)

	return "https://api.whatsapp.com/send?" + q.Encode(), true
}
