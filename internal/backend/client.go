// Package backend предоставляет клиент REST API сервиса долгов.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// StatusError описывает ответ API с неуспешным HTTP-статусом.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d", e.Code)
}

// IsUnauthorized сообщает, что API отклонил учётные данные.
func IsUnauthorized(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden
	}
	return false
}

// Client инкапсулирует HTTP-взаимодействие с API долгов.
type Client struct {
	baseURL       string
	debtsEndpoint string
	httpClient    *http.Client
	token         func() string
}

// Option настраивает Client.
type Option func(*Client)

// WithToken задаёт источник bearer-токена для заголовка Authorization.
func WithToken(token func() string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient подменяет HTTP-клиент.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient создаёт клиент API по базовому адресу и пути ресурса долгов.
func NewClient(baseURL, debtsEndpoint string, opts ...Option) *Client {
	base := strings.TrimRight(baseURL, "/")
	if base != "" && !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	if debtsEndpoint == "" {
		debtsEndpoint = "/debts"
	}
	if !strings.HasPrefix(debtsEndpoint, "/") {
		debtsEndpoint = "/" + debtsEndpoint
	}

	c := &Client{
		baseURL:       base,
		debtsEndpoint: debtsEndpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DebtsURL возвращает адрес ресурса долгов.
func (c *Client) DebtsURL() string {
	return c.baseURL + c.debtsEndpoint
}

// Login отправляет учётные данные и возвращает ответ API как JSON-объект.
func (c *Client) Login(ctx context.Context, email, password string) (map[string]any, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	var resp map[string]any
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/auth/login", body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Register регистрирует оператора и возвращает ответ API в том же виде, что и Login.
func (c *Client) Register(ctx context.Context, name, email, password string) (map[string]any, error) {
	body := map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}

	var resp map[string]any
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/auth/register", body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ListDebts запрашивает долги компании.
func (c *Client) ListDebts(ctx context.Context, companyID string) ([]DebtRecord, error) {
	u := c.DebtsURL() + "?company_id=" + url.QueryEscape(companyID)

	var resp []DebtRecord
	if err := c.do(ctx, http.MethodGet, u, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// RegisterDebt создаёт запись о долге. Пустое тело ответа допускается.
func (c *Client) RegisterDebt(ctx context.Context, debt NewDebt) (*DebtRecord, error) {
	var resp *DebtRecord
	if err := c.do(ctx, http.MethodPost, c.DebtsURL()+"/register", debt, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// DeleteDebt удаляет запись о долге.
func (c *Client) DeleteDebt(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.DebtsURL()+"/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, u string, in, out any) error {
	if c == nil || c.baseURL == "" {
		return fmt.Errorf("backend client not configured")
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Code: resp.StatusCode}
	}

	if out == nil {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
