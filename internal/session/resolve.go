package session

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mmeshcher/debtdesk/internal/model"
)

type source int

const (
	fromResponse source = iota
	fromClaims
)

type fieldSource struct {
	from source
	key  string
}

// Порядок разрешения полей сессии. Побеждает первое непустое значение.
//
//	token:      response.acess_token, response.access_token
//	company id: response.company_id, response.companyId, claims.company_id, claims.companyId
//	user name:  response.user_name, response.userName, claims.user_name, claims.name
var (
	tokenSources = []fieldSource{
		{fromResponse, "acess_token"},
		{fromResponse, "access_token"},
	}
	companySources = []fieldSource{
		{fromResponse, "company_id"},
		{fromResponse, "companyId"},
		{fromClaims, "company_id"},
		{fromClaims, "companyId"},
	}
	userNameSources = []fieldSource{
		{fromResponse, "user_name"},
		{fromResponse, "userName"},
		{fromClaims, "user_name"},
		{fromClaims, "name"},
	}
)

// FromAuthResponse строит сессию из ответа на вход или регистрацию.
func FromAuthResponse(resp map[string]any) (model.Session, error) {
	token := resolve(tokenSources, resp, nil)
	if token == "" {
		return model.Session{}, ErrMissingToken
	}

	claims := DecodeClaims(token)

	return model.Session{
		Token:     token,
		CompanyID: resolve(companySources, resp, claims),
		UserName:  resolve(userNameSources, resp, claims),
	}, nil
}

func resolve(sources []fieldSource, resp, claims map[string]any) string {
	for _, src := range sources {
		values := resp
		if src.from == fromClaims {
			values = claims
		}
		if values == nil {
			continue
		}
		if v := stringify(values[src.key]); v != "" {
			return v
		}
	}
	return ""
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return ""
	}
}
