// Package repository содержит долговременные хранилища сессии оператора.
package repository

import (
	"errors"

	"github.com/mmeshcher/debtdesk/internal/model"
)

// Ключи слотов сессии. Все три записываются и очищаются вместе.
const (
	SlotToken     = "auth_token"
	SlotCompanyID = "company_id"
	SlotUserName  = "user_name"
)

// ErrStorageUnavailable возвращается, если хранилище сессии недоступно.
var ErrStorageUnavailable = errors.New("session storage unavailable")

var slotKeys = []string{SlotToken, SlotCompanyID, SlotUserName}

func sessionToSlots(s model.Session) map[string]string {
	return map[string]string{
		SlotToken:     s.Token,
		SlotCompanyID: s.CompanyID,
		SlotUserName:  s.UserName,
	}
}

func sessionFromSlots(slots map[string]string) model.Session {
	return model.Session{
		Token:     slots[SlotToken],
		CompanyID: slots[SlotCompanyID],
		UserName:  slots[SlotUserName],
	}
}
