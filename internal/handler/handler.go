// Package handler содержит HTTP-обработчики экранов рабочего места.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/debtdesk/internal/debtors"
	"github.com/mmeshcher/debtdesk/internal/guard"
	"github.com/mmeshcher/debtdesk/internal/model"
	"github.com/mmeshcher/debtdesk/internal/session"
	"github.com/mmeshcher/debtdesk/internal/shell"
	"github.com/mmeshcher/debtdesk/internal/validation"
)

const (
	msgLoginFailed    = "Falha no login. Verifique suas credenciais e tente novamente."
	msgRegisterFailed = "Falha no cadastro. Verifique os dados e tente novamente."
	msgNameRequired   = "Informe seu nome."
	msgNoContact      = "Contato indisponível para este devedor."
	msgBadRequest     = "Requisição inválida."
)

// SessionStore определяет контракт хранилища сессии, используемый обработчиками.
type SessionStore interface {
	IsAuthenticated() bool
	UserName() string
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, name, email, password string) error
	Logout(ctx context.Context)
}

// DebtorsView определяет контракт модели представления списка должников.
type DebtorsView interface {
	State() debtors.LoadState
	Load(ctx context.Context) error
	Reset()
	View() debtors.View
	Row(id string) (model.DebtorRow, bool)
	SetSearch(term string)
	SetSort(key model.SortKey) error
	GoTo(page int) int
	OpenForm()
	CloseForm() bool
	Submit(ctx context.Context, draft model.DebtDraft) (debtors.FieldErrors, error)
	RequestDelete(id string) (debtors.Confirmation, error)
	CancelDelete() bool
	ConfirmDelete(ctx context.Context, id string) error
}

// Handler реализует HTTP-обработчики экранов входа, регистрации и должников.
type Handler struct {
	session SessionStore
	debts   DebtorsView
	shell   *shell.Shell
	logger  *zap.Logger
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s SessionStore, debts DebtorsView, logger *zap.Logger) *Handler {
	return &Handler{
		session: s,
		debts:   debts,
		shell:   shell.New(s),
		logger:  logger,
	}
}

type redirectResponse struct {
	Redirect string `json:"redirect"`
}

type errorResponse struct {
	Error  string `json:"error,omitempty"`
	Errors any    `json:"errors,omitempty"`
}

type screenResponse struct {
	Screen    string `json:"screen"`
	ReturnURL string `json:"returnUrl,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", zap.Error(err))
	}
}

func (h *Handler) writeView(w http.ResponseWriter, status int) {
	h.writeJSON(w, status, h.debts.View())
}

func (h *Handler) badRequest(w http.ResponseWriter) {
	h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgBadRequest})
}

// Root отправляет на экран входа.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, guard.LoginPath, http.StatusSeeOther)
}

// LoginScreen описывает экран входа и адрес, на который оператор попадёт после входа.
func (h *Handler) LoginScreen(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, screenResponse{
		Screen:    "login",
		ReturnURL: guard.SafeReturnURL(r.URL.Query().Get("returnUrl")),
	})
}

// RegisterScreen описывает экран регистрации.
func (h *Handler) RegisterScreen(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, screenResponse{Screen: "register"})
}

type loginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	ReturnURL string `json:"returnUrl"`
}

// Login проверяет форму, выполняет вход и возвращает адрес перехода.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w)
		return
	}

	if errs := validation.ValidateCredentials(req.Email, req.Password); !errs.Valid() {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Errors: errs})
		return
	}

	if err := h.session.Login(r.Context(), strings.TrimSpace(req.Email), req.Password); err != nil {
		h.logAuthError("login error", err)
		h.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: msgLoginFailed})
		return
	}
	h.debts.Reset()

	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = r.URL.Query().Get("returnUrl")
	}
	h.writeJSON(w, http.StatusOK, redirectResponse{Redirect: guard.SafeReturnURL(returnURL)})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerErrors struct {
	Name string `json:"name,omitempty"`
	validation.CredentialErrors
}

// Register регистрирует оператора и сразу открывает сессию.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w)
		return
	}

	errs := registerErrors{CredentialErrors: validation.ValidateCredentials(req.Email, req.Password)}
	if strings.TrimSpace(req.Name) == "" {
		errs.Name = msgNameRequired
	}
	if errs.Name != "" || !errs.Valid() {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Errors: errs})
		return
	}

	err := h.session.Register(r.Context(), strings.TrimSpace(req.Name), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		h.logAuthError("register error", err)
		h.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: msgRegisterFailed})
		return
	}
	h.debts.Reset()

	h.writeJSON(w, http.StatusOK, redirectResponse{Redirect: guard.LandingPath})
}

func (h *Handler) logAuthError(msg string, err error) {
	if errors.Is(err, session.ErrInvalidCredentials) {
		h.logger.Info(msg, zap.Error(err))
		return
	}
	h.logger.Error(msg, zap.Error(err))
}

type meResponse struct {
	UserName string       `json:"user_name"`
	Items    []shell.Item `json:"items"`
}

// Me возвращает данные навигационной оболочки.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, meResponse{
		UserName: h.shell.UserName(),
		Items:    h.shell.Items(),
	})
}

// Logout завершает сессию и сбрасывает экран должников.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	redirect := h.shell.Logout(r.Context())
	h.debts.Reset()
	h.writeJSON(w, http.StatusOK, redirectResponse{Redirect: redirect})
}

// Debtors возвращает экран должников. Список загружается при первом входе на экран.
func (h *Handler) Debtors(w http.ResponseWriter, r *http.Request) {
	if h.debts.State() == debtors.LoadIdle {
		_ = h.debts.Load(r.Context())
	}
	h.writeView(w, http.StatusOK)
}

// Reload перезагружает список. Ошибка загрузки передаётся в состоянии экрана.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	_ = h.debts.Load(r.Context())
	h.writeView(w, http.StatusOK)
}

type searchRequest struct {
	Query string `json:"query"`
}

// Search задаёт поисковый запрос.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w)
		return
	}
	h.debts.SetSearch(req.Query)
	h.writeView(w, http.StatusOK)
}

type sortRequest struct {
	Key model.SortKey `json:"key"`
}

// Sort выбирает ключ сортировки.
func (h *Handler) Sort(w http.ResponseWriter, r *http.Request) {
	var req sortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w)
		return
	}
	if err := h.debts.SetSort(req.Key); err != nil {
		h.badRequest(w)
		return
	}
	h.writeView(w, http.StatusOK)
}

type pageRequest struct {
	Page int `json:"page"`
}

// Page переходит на страницу списка.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w)
		return
	}
	h.debts.GoTo(req.Page)
	h.writeView(w, http.StatusOK)
}

// OpenForm открывает форму создания долга.
func (h *Handler) OpenForm(w http.ResponseWriter, r *http.Request) {
	h.debts.OpenForm()
	h.writeView(w, http.StatusOK)
}

// CloseForm закрывает форму. Во время отправки возвращает 409.
func (h *Handler) CloseForm(w http.ResponseWriter, r *http.Request) {
	if !h.debts.CloseForm() {
		h.writeView(w, http.StatusConflict)
		return
	}
	h.writeView(w, http.StatusOK)
}

// CreateDebt отправляет черновик долга.
func (h *Handler) CreateDebt(w http.ResponseWriter, r *http.Request) {
	var draft model.DebtDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		h.badRequest(w)
		return
	}

	if _, err := h.debts.Submit(r.Context(), draft); err != nil {
		h.writeView(w, statusFor(err))
		return
	}
	h.writeView(w, http.StatusCreated)
}

// RequestDelete открывает подтверждение удаления.
func (h *Handler) RequestDelete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.debts.RequestDelete(chi.URLParam(r, "id")); err != nil {
		h.writeView(w, statusFor(err))
		return
	}
	h.writeView(w, http.StatusOK)
}

// ConfirmDelete выполняет подтверждённое удаление.
func (h *Handler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.debts.ConfirmDelete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeView(w, statusFor(err))
		return
	}
	h.writeView(w, http.StatusOK)
}

// CancelDelete закрывает подтверждение удаления.
func (h *Handler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	if !h.debts.CancelDelete() {
		h.writeView(w, http.StatusConflict)
		return
	}
	h.writeView(w, http.StatusOK)
}

type whatsAppResponse struct {
	Link string `json:"link"`
}

// WhatsApp возвращает ссылку на диалог с должником.
func (h *Handler) WhatsApp(w http.ResponseWriter, r *http.Request) {
	row, ok := h.debts.Row(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	link, ok := debtors.WhatsAppLink(row)
	if !ok {
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: msgNoContact})
		return
	}
	h.writeJSON(w, http.StatusOK, whatsAppResponse{Link: link})
}

// statusFor переводит ошибку модели представления в HTTP-статус.
func statusFor(err error) int {
	switch {
	case errors.Is(err, debtors.ErrInvalidDraft), errors.Is(err, debtors.ErrNoCompany):
		return http.StatusUnprocessableEntity
	case errors.Is(err, debtors.ErrBusy),
		errors.Is(err, debtors.ErrDuplicateDelete),
		errors.Is(err, debtors.ErrNotConfirmed):
		return http.StatusConflict
	case errors.Is(err, debtors.ErrUnknownRow):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
