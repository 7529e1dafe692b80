package session

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var segmentDecoder = jwt.NewParser(jwt.WithPaddingAllowed())

// DecodeClaims читает payload токена из трёх частей. Заголовок и подпись не проверяются.
// Для любого некорректного payload возвращается nil: это означает «claims нет», а не ошибку.
func DecodeClaims(token string) jwt.MapClaims {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil
	}

	payload, err := decodeSegment(parts[1])
	if err != nil {
		return nil
	}

	claims := jwt.MapClaims{}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&claims); err != nil {
		return nil
	}
	return claims
}

// decodeSegment принимает base64url с дополнением и без, а также стандартный base64.
func decodeSegment(seg string) ([]byte, error) {
	if b, err := segmentDecoder.DecodeSegment(seg); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(seg, "="))
}

// TokenAlive сообщает, действует ли токен в момент now.
// Пустой токен недействителен, токен без exp бессрочен, иначе exp должен быть строго больше now.
func TokenAlive(token string, now time.Time) bool {
	if token == "" {
		return false
	}

	claims := DecodeClaims(token)
	if claims == nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}

	return exp.Unix() > now.Unix()
}
