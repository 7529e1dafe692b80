// Package shell содержит навигационную оболочку защищённых экранов.
package shell

import (
	"context"

	"github.com/mmeshcher/debtdesk/internal/guard"
)

// Item описывает пункт навигации.
type Item struct {
	Label string `json:"label"`
	Link  string `json:"link"`
}

var items = []Item{
	{Label: "Início", Link: guard.LoginPath},
	{Label: "Devedores", Link: guard.LandingPath},
	{Label: "Relatórios", Link: "/relatorios"},
	{Label: "Atividades", Link: "/atividades"},
}

// Session описывает часть хранилища сессии, нужную оболочке.
type Session interface {
	UserName() string
	Logout(ctx context.Context)
}

// Shell показывает имя оператора, пункты навигации и выполняет выход.
type Shell struct {
	session Session
}

// New создаёт оболочку.
func New(session Session) *Shell {
	return &Shell{session: session}
}

// UserName возвращает имя оператора или пустую строку.
func (s *Shell) UserName() string {
	return s.session.UserName()
}

// Items возвращает копию пунктов навигации.
func (s *Shell) Items() []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// Logout завершает сессию и возвращает путь, на который нужно перейти.
func (s *Shell) Logout(ctx context.Context) string {
	s.session.Logout(ctx)
	return guard.LoginPath
}
