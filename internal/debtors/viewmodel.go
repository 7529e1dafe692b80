// Package debtors реализует модель представления списка должников:
// загрузку, поиск, сортировку, постраничный вывод, создание и удаление долгов.
package debtors

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/debtdesk/internal/backend"
	"github.com/mmeshcher/debtdesk/internal/model"
	"github.com/mmeshcher/debtdesk/internal/validation"
)

// Сообщения, которые видит оператор.
const (
	msgNoCompanyLoad = "Não foi possível identificar a empresa para buscar as dívidas."
	msgLoadFailed    = "Não foi possível carregar as dívidas."
	msgNoCompanySave = "Não foi possível identificar a empresa do usuário."
	msgSaveFailed    = "Falha ao registrar a dívida. Tente novamente."
	msgSaveToastErr  = "Falha ao registrar a dívida."
	msgSaveToastOK   = "Dívida registrada com sucesso."
	msgDeleteOK      = "Dívida removida com sucesso."
	msgDeleteFailed  = "Falha ao remover a dívida."
)

var (
	// ErrNoCompany возвращается, если в сессии нет идентификатора компании. Запрос не отправляется.
	ErrNoCompany = errors.New("company id is not known")
	// ErrInvalidDraft возвращается, если форма не прошла проверку. Запрос не отправляется.
	ErrInvalidDraft = errors.New("debt draft is invalid")
	// ErrBusy возвращается, если действие заблокировано выполняющейся операцией.
	ErrBusy = errors.New("another operation is in progress")
	// ErrDuplicateDelete возвращается при повторном удалении строки, удаление которой ещё выполняется.
	ErrDuplicateDelete = errors.New("delete already in progress for this row")
	// ErrNotConfirmed возвращается, если удаление не было запрошено для этой строки.
	ErrNotConfirmed = errors.New("delete was not requested for this row")
	// ErrUnknownRow возвращается, если строки с таким идентификатором нет.
	ErrUnknownRow = errors.New("row not found")
	// ErrUnknownSortKey возвращается для неизвестного ключа сортировки.
	ErrUnknownSortKey = errors.New("unknown sort key")
)

// LoadState описывает состояние загрузки списка.
type LoadState string

const (
	LoadIdle    LoadState = "idle"
	LoadLoading LoadState = "loading"
	LoadLoaded  LoadState = "loaded"
	LoadFailed  LoadState = "error"
)

// SubmitState описывает состояние запроса создания или удаления.
type SubmitState string

const (
	SubmitIdle    SubmitState = "idle"
	Submitting    SubmitState = "submitting"
	SubmitSuccess SubmitState = "success"
	SubmitFailed  SubmitState = "error"
)

// Backend описывает вызовы API, которые использует модель представления.
type Backend interface {
	ListDebts(ctx context.Context, companyID string) ([]backend.DebtRecord, error)
	RegisterDebt(ctx context.Context, debt backend.NewDebt) (*backend.DebtRecord, error)
	DeleteDebt(ctx context.Context, id string) error
}

// CompanySource возвращает идентификатор компании текущей сессии.
type CompanySource interface {
	CompanyID() string
}

// FieldErrors отмечает поля формы, не прошедшие проверку.
type FieldErrors struct {
	Name   bool `json:"name,omitempty"`
	CPF    bool `json:"cpf,omitempty"`
	Phone  bool `json:"phone,omitempty"`
	Amount bool `json:"amount,omitempty"`
}

// Valid сообщает, что ошибок нет.
func (e FieldErrors) Valid() bool {
	return e == FieldErrors{}
}

// ValidateDraft проверяет форму создания долга.
func ValidateDraft(d model.DebtDraft) FieldErrors {
	amount, ok := validation.ParseCurrency(d.Amount)
	return FieldErrors{
		Name:   strings.TrimSpace(d.Name) == "",
		CPF:    !validation.IsValidCPF(d.CPF),
		Phone:  !validation.IsValidPhone(d.Phone),
		Amount: !ok || !amount.IsPositive(),
	}
}

// Confirmation описывает открытый запрос подтверждения удаления.
type Confirmation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DraftDisplay содержит поля формы в формате для показа.
type DraftDisplay struct {
	CPF    string `json:"cpf"`
	Phone  string `json:"phone"`
	Amount string `json:"amount"`
}

// FormView описывает состояние формы создания долга.
type FormView struct {
	Open    bool            `json:"open"`
	State   SubmitState     `json:"state"`
	Draft   model.DebtDraft `json:"draft"`
	Display DraftDisplay    `json:"display"`
	Errors  FieldErrors     `json:"errors"`
	Error   string          `json:"error,omitempty"`
}

// View содержит снимок состояния экрана должников.
type View struct {
	State      LoadState         `json:"state"`
	LoadError  string            `json:"load_error,omitempty"`
	Search     string            `json:"search"`
	SortKey    model.SortKey     `json:"sort_key,omitempty"`
	SortDir    model.SortDir     `json:"sort_dir"`
	Page       int               `json:"page"`
	TotalPages int               `json:"total_pages"`
	Pages      []int             `json:"pages"`
	Total      int               `json:"total"`
	Rows       []model.DebtorRow `json:"rows"`
	Form       FormView          `json:"form"`
	Confirm    *Confirmation     `json:"confirm,omitempty"`
	Deleting   []string          `json:"deleting,omitempty"`
	Toast      *model.Toast      `json:"toast,omitempty"`
}

// ViewModel хранит строки, полученные от API, и выводит из них отфильтрованный,
// отсортированный и разбитый на страницы список.
type ViewModel struct {
	client  Backend
	company CompanySource
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
	toasts  *notifier

	mu        sync.Mutex
	rows      []model.DebtorRow
	loadState LoadState
	loadErr   string
	loadSeq   uint64

	search  string
	sortKey model.SortKey
	sortDir model.SortDir
	page    int

	formOpen      bool
	formState     SubmitState
	formSubmitted bool
	draft         model.DebtDraft
	saveErr       string

	confirm *Confirmation
	deletes map[string]SubmitState
}

// Option настраивает ViewModel.
type Option func(*ViewModel)

// WithLogger задаёт логгер.
func WithLogger(logger *zap.Logger) Option {
	return func(v *ViewModel) {
		v.logger = logger
	}
}

// WithToastDelay задаёт время показа уведомлений.
func WithToastDelay(d time.Duration) Option {
	return func(v *ViewModel) {
		v.toasts.delay = d
	}
}

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(v *ViewModel) {
		v.now = now
	}
}

// WithIDGenerator подменяет генератор идентификаторов для записей без id.
func WithIDGenerator(newID func() string) Option {
	return func(v *ViewModel) {
		v.newID = newID
	}
}

// New создаёт модель представления.
func New(client Backend, company CompanySource, opts ...Option) *ViewModel {
	v := &ViewModel{
		client:    client,
		company:   company,
		logger:    zap.NewNop(),
		now:       time.Now,
		newID:     fallbackID,
		toasts:    &notifier{delay: ToastDelay},
		loadState: LoadIdle,
		sortDir:   model.SortAsc,
		page:      1,
		formState: SubmitIdle,
		deletes:   make(map[string]SubmitState),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Close останавливает таймер уведомлений.
func (v *ViewModel) Close() {
	v.toasts.stop()
}

// Reset возвращает модель в исходное состояние при смене сессии.
// Результат загрузки, начатой до сброса, отбрасывается.
func (v *ViewModel) Reset() {
	v.mu.Lock()
	v.loadSeq++
	v.rows = nil
	v.loadState = LoadIdle
	v.loadErr = ""

	v.search = ""
	v.sortKey = model.SortNone
	v.sortDir = model.SortAsc
	v.page = 1

	v.formOpen = false
	v.formState = SubmitIdle
	v.formSubmitted = false
	v.draft = model.DebtDraft{}
	v.saveErr = ""

	v.confirm = nil
	v.deletes = make(map[string]SubmitState)
	v.mu.Unlock()

	v.toasts.clear()
}

// State возвращает состояние загрузки.
func (v *ViewModel) State() LoadState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loadState
}

// Load запрашивает долги компании и полностью заменяет набор строк.
// Без идентификатора компании запрос не отправляется.
func (v *ViewModel) Load(ctx context.Context) error {
	companyID := v.company.CompanyID()

	v.mu.Lock()
	if companyID == "" {
		v.loadState = LoadFailed
		v.loadErr = msgNoCompanyLoad
		v.mu.Unlock()
		return ErrNoCompany
	}
	v.loadSeq++
	seq := v.loadSeq
	v.loadState = LoadLoading
	v.loadErr = ""
	v.mu.Unlock()

	records, err := v.client.ListDebts(ctx, companyID)

	v.mu.Lock()
	defer v.mu.Unlock()

	// результат устаревшей загрузки отбрасывается
	if seq != v.loadSeq {
		return nil
	}

	if err != nil {
		v.logger.Error("load debts error", zap.Error(err), zap.String("companyID", companyID))
		v.loadState = LoadFailed
		v.loadErr = msgLoadFailed
		return fmt.Errorf("list debts: %w", err)
	}

	rows := make([]model.DebtorRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, mapRecord(rec, v.newID, v.now))
	}

	v.rows = rows
	v.loadState = LoadLoaded
	v.page = 1
	v.pruneDeletes()

	return nil
}

func (v *ViewModel) pruneDeletes() {
	for id, st := range v.deletes {
		if st == Submitting {
			continue
		}
		if !slices.ContainsFunc(v.rows, func(r model.DebtorRow) bool { return r.ID == id }) {
			delete(v.deletes, id)
		}
	}
}

// SetSearch задаёт поисковый запрос.
func (v *ViewModel) SetSearch(term string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.search = term
}

// SetSort выбирает ключ сортировки. Повторный выбор того же ключа меняет направление,
// новый ключ сортирует по возрастанию. Всегда возвращает на первую страницу.
func (v *ViewModel) SetSort(key model.SortKey) error {
	if key != model.SortAmount && key != model.SortDate {
		return fmt.Errorf("%w: %q", ErrUnknownSortKey, key)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.sortKey == key {
		if v.sortDir == model.SortAsc {
			v.sortDir = model.SortDesc
		} else {
			v.sortDir = model.SortAsc
		}
	} else {
		v.sortKey = key
		v.sortDir = model.SortAsc
	}
	v.page = 1

	return nil
}

// GoTo переходит на страницу, ограничивая номер диапазоном [1, TotalPages].
func (v *ViewModel) GoTo(page int) int {
	v.mu.Lock()
	defer v.mu.Unlock()

	total := TotalPages(len(Filter(v.rows, v.search)), PageSize)
	v.page = ClampPage(page, total)
	return v.page
}

// View вычисляет снимок экрана: rows -> Filter -> Sort -> Paginate.
func (v *ViewModel) View() View {
	v.mu.Lock()
	defer v.mu.Unlock()

	ordered := Sort(Filter(v.rows, v.search), v.sortKey, v.sortDir)
	total := TotalPages(len(ordered), PageSize)
	page := ClampPage(v.page, total)

	pages := make([]int, total)
	for i := range pages {
		pages[i] = i + 1
	}

	view := View{
		State:      v.loadState,
		LoadError:  v.loadErr,
		Search:     v.search,
		SortKey:    v.sortKey,
		SortDir:    v.sortDir,
		Page:       page,
		TotalPages: total,
		Pages:      pages,
		Total:      len(ordered),
		Rows:       Paginate(ordered, page, PageSize),
		Form:       v.formView(),
		Toast:      v.toasts.toast(),
	}

	if v.confirm != nil {
		c := *v.confirm
		view.Confirm = &c
	}
	for id, st := range v.deletes {
		if st == Submitting {
			view.Deleting = append(view.Deleting, id)
		}
	}
	slices.Sort(view.Deleting)

	return view
}

func (v *ViewModel) formView() FormView {
	fv := FormView{
		Open:  v.formOpen,
		State: v.formState,
		Draft: v.draft,
		Display: DraftDisplay{
			CPF:    validation.FormatCPF(v.draft.CPF),
			Phone:  validation.FormatPhone(v.draft.Phone),
			Amount: validation.FormatCurrency(v.draft.Amount),
		},
		Error: v.saveErr,
	}
	if v.formSubmitted {
		fv.Errors = ValidateDraft(v.draft)
	}
	return fv
}

// Row возвращает строку по идентификатору.
func (v *ViewModel) Row(id string) (model.DebtorRow, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rowLocked(id)
}

func (v *ViewModel) rowLocked(id string) (model.DebtorRow, bool) {
	i := slices.IndexFunc(v.rows, func(r model.DebtorRow) bool { return r.ID == id })
	if i < 0 {
		return model.DebtorRow{}, false
	}
	return v.rows[i], true
}

// OpenForm открывает пустую форму создания долга.
func (v *ViewModel) OpenForm() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.draft = model.DebtDraft{}
	v.saveErr = ""
	v.formSubmitted = false
	v.formState = SubmitIdle
	v.formOpen = true
}

// CloseForm закрывает форму и отбрасывает черновик. Во время отправки закрытие не выполняется.
func (v *ViewModel) CloseForm() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.formState == Submitting {
		return false
	}
	v.formOpen = false
	v.draft = model.DebtDraft{}
	v.formSubmitted = false
	v.saveErr = ""
	return true
}

// Submit проверяет черновик и отправляет его в API. При ошибке проверки или отсутствии компании
// запрос не отправляется. После успешного создания список перезагружается.
func (v *ViewModel) Submit(ctx context.Context, draft model.DebtDraft) (FieldErrors, error) {
	companyID := v.company.CompanyID()

	v.mu.Lock()
	if v.formState == Submitting {
		v.mu.Unlock()
		return FieldErrors{}, ErrBusy
	}

	v.draft = draft
	v.formSubmitted = true
	fieldErrs := ValidateDraft(draft)
	if !fieldErrs.Valid() {
		v.mu.Unlock()
		return fieldErrs, ErrInvalidDraft
	}

	if companyID == "" {
		v.saveErr = msgNoCompanySave
		v.mu.Unlock()
		return fieldErrs, ErrNoCompany
	}

	v.formState = Submitting
	v.saveErr = ""
	v.mu.Unlock()

	amount, _ := validation.ParseCurrency(draft.Amount)
	payload := backend.NewDebt{
		CompanyID:     companyID,
		DebtValue:     amount.StringFixed(2),
		DebtorName:    strings.TrimSpace(draft.Name),
		DebtorContact: validation.NormalizePhone(draft.Phone),
		DebtorCPF:     validation.Digits(draft.CPF),
	}

	if _, err := v.client.RegisterDebt(ctx, payload); err != nil {
		v.logger.Error("register debt error", zap.Error(err), zap.String("companyID", companyID))

		v.mu.Lock()
		v.formState = SubmitFailed
		v.saveErr = msgSaveFailed
		v.mu.Unlock()

		v.toasts.show(model.ToastError, msgSaveToastErr)
		return fieldErrs, fmt.Errorf("register debt: %w", err)
	}

	v.mu.Lock()
	v.formState = SubmitSuccess
	v.draft = model.DebtDraft{}
	v.formSubmitted = false
	v.saveErr = ""
	v.formOpen = false
	v.mu.Unlock()

	v.reload(ctx)
	v.toasts.show(model.ToastSuccess, msgSaveToastOK)

	return fieldErrs, nil
}

// RequestDelete открывает подтверждение удаления строки.
func (v *ViewModel) RequestDelete(id string) (Confirmation, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.formState == Submitting {
		return Confirmation{}, ErrBusy
	}
	if v.confirm != nil && v.deletes[v.confirm.ID] == Submitting {
		return Confirmation{}, ErrBusy
	}

	row, ok := v.rowLocked(id)
	if !ok {
		return Confirmation{}, fmt.Errorf("%w: %s", ErrUnknownRow, id)
	}

	v.confirm = &Confirmation{ID: row.ID, Name: row.Name}
	return *v.confirm, nil
}

// CancelDelete закрывает подтверждение. Пока удаление выполняется, подтверждение не закрывается.
func (v *ViewModel) CancelDelete() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.confirm != nil && v.deletes[v.confirm.ID] == Submitting {
		return false
	}
	v.confirm = nil
	return true
}

// ConfirmDelete удаляет строку, для которой открыто подтверждение.
// Повторный запрос для строки, удаление которой ещё выполняется, подавляется.
func (v *ViewModel) ConfirmDelete(ctx context.Context, id string) error {
	v.mu.Lock()
	if v.deletes[id] == Submitting {
		v.mu.Unlock()
		return ErrDuplicateDelete
	}
	if v.confirm == nil || v.confirm.ID != id {
		v.mu.Unlock()
		return ErrNotConfirmed
	}
	v.deletes[id] = Submitting
	v.mu.Unlock()

	err := v.client.DeleteDebt(ctx, id)

	v.mu.Lock()
	if v.confirm != nil && v.confirm.ID == id {
		v.confirm = nil
	}
	if err != nil {
		v.deletes[id] = SubmitFailed
		v.mu.Unlock()

		v.logger.Error("delete debt error", zap.Error(err), zap.String("id", id))
		v.toasts.show(model.ToastError, msgDeleteFailed)
		return fmt.Errorf("delete debt: %w", err)
	}
	v.deletes[id] = SubmitSuccess
	v.mu.Unlock()

	v.toasts.show(model.ToastSuccess, msgDeleteOK)
	v.reload(ctx)

	return nil
}

// reload перезагружает список после успешного изменения. Ошибка уже отражена в состоянии.
func (v *ViewModel) reload(ctx context.Context) {
	if err := v.Load(ctx); err != nil {
		v.logger.Warn("reload after change failed", zap.Error(err))
	}
}

// Toast возвращает текущее уведомление.
func (v *ViewModel) Toast() *model.Toast {
	return v.toasts.toast()
}
