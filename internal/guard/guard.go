// Package guard содержит проверки доступа к экранам рабочего места.
package guard

import (
	"net/url"
	"strings"
)

// Маршруты, на которые перенаправляют проверки.
const (
	LoginPath   = "/login"
	LandingPath = "/debtors"
)

// Authenticator сообщает, есть ли действующая сессия.
type Authenticator interface {
	IsAuthenticated() bool
}

// Decision содержит результат проверки. Если Allow ложно, нужно перейти на Redirect.
type Decision struct {
	Allow    bool
	Redirect string
}

// Protected пропускает только оператора с действующей сессией.
// Иначе перенаправляет на вход, передавая исходный адрес в параметре returnUrl.
func Protected(a Authenticator, requestedURL string) Decision {
	if a.IsAuthenticated() {
		return Decision{Allow: true}
	}
	return Decision{Redirect: LoginRedirect(requestedURL)}
}

// Guest пропускает на экраны входа и регистрации только без действующей сессии.
func Guest(a Authenticator) Decision {
	if a.IsAuthenticated() {
		return Decision{Redirect: LandingPath}
	}
	return Decision{Allow: true}
}

// LoginRedirect строит адрес экрана входа с параметром returnUrl.
func LoginRedirect(requestedURL string) string {
	if requestedURL == "" {
		return LoginPath
	}
	q := url.Values{}
	q.Set("returnUrl", requestedURL)
	return LoginPath + "?" + q.Encode()
}

// SafeReturnURL возвращает адрес перехода после входа.
// Принимаются только абсолютные пути этого же сайта, для остальных возвращается LandingPath.
func SafeReturnURL(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, `\`) {
		return LandingPath
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" {
		return LandingPath
	}
	return raw
}
