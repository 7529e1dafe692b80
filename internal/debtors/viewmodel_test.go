package debtors

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/debtdesk/internal/backend"
	"github.com/mmeshcher/debtdesk/internal/model"
)

type company string

func (c company) CompanyID() string { return string(c) }

// gate блокирует вызов стаба, пока тест его не отпустит.
type gate struct {
	started chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{started: make(chan struct{}, 1), release: make(chan struct{})}
}

func (g *gate) wait() {
	if g == nil {
		return
	}
	g.started <- struct{}{}
	<-g.release
}

type stubBackend struct {
	mu sync.Mutex

	records   []backend.DebtRecord
	listErr   error
	listCalls int

	registerErr  error
	registered   []backend.NewDebt
	registerGate *gate

	deleteErr   error
	deleted     []string
	deleteGate  *gate
	deleteCalls int
}

func (s *stubBackend) ListDebts(ctx context.Context, companyID string) ([]backend.DebtRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	return s.records, s.listErr
}

func (s *stubBackend) RegisterDebt(ctx context.Context, debt backend.NewDebt) (*backend.DebtRecord, error) {
	s.registerGate.wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.registered = append(s.registered, debt)
	return nil, s.registerErr
}

func (s *stubBackend) DeleteDebt(ctx context.Context, id string) error {
	s.mu.Lock()
	s.deleteCalls++
	s.mu.Unlock()

	s.deleteGate.wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	kept := s.records[:0]
	for _, r := range s.records {
		if string(r.ID) != id {
			kept = append(kept, r)
		}
	}
	s.records = kept
	return nil
}

func (s *stubBackend) calls() (list, register, del int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls, len(s.registered), s.deleteCalls
}

func makeRecords(n int) []backend.DebtRecord {
	recs := make([]backend.DebtRecord, 0, n)
	for i := 0; i < n; i++ {
		recs = append(recs, backend.DebtRecord{
			ID:         backend.FlexString(fmt.Sprintf("d%02d", i)),
			DebtValue:  fmt.Sprintf("%d.50", 100+i),
			DebtorName: fmt.Sprintf("Devedor %02d", i),
			DebtStatus: i%2 == 0,
			CreatedAt:  time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC).Format(time.RFC3339),
		})
	}
	return recs
}

func validDraft() model.DebtDraft {
	return model.DebtDraft{
		Name:   "Joao",
		CPF:    "529.982.247-25",
		Phone:  "(11) 98765-4321",
		Amount: "12345",
	}
}

func newTestViewModel(t *testing.T, be *stubBackend, companyID string) *ViewModel {
	t.Helper()
	vm := New(be, company(companyID), WithToastDelay(time.Hour))
	t.Cleanup(vm.Close)
	return vm
}

func TestLoad_WithoutCompanyFailsWithoutRequest(t *testing.T) {
	be := &stubBackend{records: makeRecords(3)}
	vm := newTestViewModel(t, be, "")

	err := vm.Load(context.Background())
	require.ErrorIs(t, err, ErrNoCompany)

	view := vm.View()
	assert.Equal(t, LoadFailed, view.State)
	assert.Equal(t, msgNoCompanyLoad, view.LoadError)

	list, _, _ := be.calls()
	assert.Zero(t, list)
}

func TestLoad_ReplacesRowsAndResetsPage(t *testing.T) {
	be := &stubBackend{records: makeRecords(25)}
	vm := newTestViewModel(t, be, "7")

	assert.Equal(t, LoadIdle, vm.State())
	require.NoError(t, vm.Load(context.Background()))

	view := vm.View()
	assert.Equal(t, LoadLoaded, view.State)
	assert.Equal(t, 25, view.Total)
	assert.Equal(t, 3, view.TotalPages)
	assert.Equal(t, []int{1, 2, 3}, view.Pages)
	assert.Len(t, view.Rows, PageSize)

	assert.Equal(t, 3, vm.GoTo(3))
	assert.Len(t, vm.View().Rows, 5)
	assert.Equal(t, 3, vm.GoTo(10))
	assert.Equal(t, 1, vm.GoTo(0))
	vm.GoTo(2)

	be.records = makeRecords(4)
	require.NoError(t, vm.Load(context.Background()))

	view = vm.View()
	assert.Equal(t, 1, view.Page)
	assert.Equal(t, 4, view.Total)
	assert.Equal(t, 1, view.TotalPages)
}

func TestLoad_ErrorKeepsRows(t *testing.T) {
	be := &stubBackend{records: makeRecords(2)}
	vm := newTestViewModel(t, be, "7")
	require.NoError(t, vm.Load(context.Background()))

	be.listErr = errors.New("do request: connection refused")
	require.Error(t, vm.Load(context.Background()))

	view := vm.View()
	assert.Equal(t, LoadFailed, view.State)
	assert.Equal(t, msgLoadFailed, view.LoadError)
	assert.Equal(t, 2, view.Total)
}

func TestView_SearchAndSort(t *testing.T) {
	be := &stubBackend{records: makeRecords(12)}
	vm := newTestViewModel(t, be, "7")
	require.NoError(t, vm.Load(context.Background()))

	vm.SetSearch("DEVEDOR 1")
	view := vm.View()
	assert.Equal(t, 2, view.Total)
	assert.Equal(t, []string{"d10", "d11"}, ids(view.Rows))

	vm.SetSearch("")
	vm.GoTo(2)
	require.NoError(t, vm.SetSort(model.SortAmount))
	view = vm.View()
	assert.Equal(t, 1, view.Page, "sorting returns to the first page")
	assert.Equal(t, model.SortAsc, view.SortDir)
	assert.Equal(t, "d00", view.Rows[0].ID)

	require.NoError(t, vm.SetSort(model.SortAmount))
	view = vm.View()
	assert.Equal(t, model.SortDesc, view.SortDir)
	assert.Equal(t, "d11", view.Rows[0].ID)

	require.NoError(t, vm.SetSort(model.SortDate))
	view = vm.View()
	assert.Equal(t, model.SortDate, view.SortKey)
	assert.Equal(t, model.SortAsc, view.SortDir)

	assert.ErrorIs(t, vm.SetSort("name"), ErrUnknownSortKey)
}

func TestView_PageClampedWhenSearchShrinksList(t *testing.T) {
	be := &stubBackend{records: makeRecords(25)}
	vm := newTestViewModel(t, be, "7")
	require.NoError(t, vm.Load(context.Background()))

	vm.GoTo(3)
	vm.SetSearch("Devedor 0")

	view := vm.View()
	assert.Equal(t, 1, view.TotalPages)
	assert.Equal(t, 1, view.Page)
	assert.Len(t, view.Rows, 10)
}

func TestSubmit_InvalidCPFSendsNothing(t *testing.T) {
	be := &stubBackend{}
	vm := newTestViewModel(t, be, "7")
	vm.OpenForm()

	draft := validDraft()
	draft.CPF = "529.982.247-26"

	fieldErrs, err := vm.Submit(context.Background(), draft)
	require.ErrorIs(t, err, ErrInvalidDraft)
	assert.True(t, fieldErrs.CPF)
	assert.False(t, fieldErrs.Phone)

	_, registered, _ := be.calls()
	assert.Zero(t, registered)

	form := vm.View().Form
	assert.True(t, form.Open)
	assert.True(t, form.Errors.CPF)
	assert.Equal(t, draft, form.Draft)
}

func TestSubmit_ValidationFlags(t *testing.T) {
	fieldErrs := ValidateDraft(model.DebtDraft{Name: " ", CPF: "", Phone: "123", Amount: "000"})
	assert.Equal(t, FieldErrors{Name: true, CPF: true, Phone: true, Amount: true}, fieldErrs)
	assert.True(t, ValidateDraft(validDraft()).Valid())
}

func TestSubmit_NoCompany(t *testing.T) {
	be := &stubBackend{}
	vm := newTestViewModel(t, be, "")
	vm.OpenForm()

	_, err := vm.Submit(context.Background(), validDraft())
	require.ErrorIs(t, err, ErrNoCompany)
	assert.Equal(t, msgNoCompanySave, vm.View().Form.Error)

	_, registered, _ := be.calls()
	assert.Zero(t, registered)
}

func TestSubmit_Success(t *testing.T) {
	be := &stubBackend{records: makeRecords(1)}
	vm := newTestViewModel(t, be, "7")
	vm.OpenForm()

	_, err := vm.Submit(context.Background(), validDraft())
	require.NoError(t, err)

	require.Len(t, be.registered, 1)
	assert.Equal(t, backend.NewDebt{
		CompanyID:     "7",
		DebtValue:     "123.45",
		DebtorName:    "Joao",
		DebtorContact: "5511987654321",
		DebtorCPF:     "52998224725",
	}, be.registered[0])

	view := vm.View()
	assert.False(t, view.Form.Open)
	assert.Equal(t, SubmitSuccess, view.Form.State)
	assert.Equal(t, model.DebtDraft{}, view.Form.Draft)
	assert.Equal(t, LoadLoaded, view.State)
	require.NotNil(t, view.Toast)
	assert.Equal(t, model.Toast{Kind: model.ToastSuccess, Message: msgSaveToastOK}, *view.Toast)

	list, _, _ := be.calls()
	assert.Equal(t, 1, list, "successful create triggers a reload")
}

func TestSubmit_FailureKeepsDraft(t *testing.T) {
	be := &stubBackend{registerErr: &backend.StatusError{Code: 422}}
	vm := newTestViewModel(t, be, "7")
	vm.OpenForm()

	_, err := vm.Submit(context.Background(), validDraft())
	require.Error(t, err)

	view := vm.View()
	assert.True(t, view.Form.Open)
	assert.Equal(t, SubmitFailed, view.Form.State)
	assert.Equal(t, msgSaveFailed, view.Form.Error)
	assert.Equal(t, validDraft(), view.Form.Draft)
	assert.Equal(t, "(11) 98765-4321", view.Form.Display.Phone)
	assert.Equal(t, "123,45", view.Form.Display.Amount)
	require.NotNil(t, view.Toast)
	assert.Equal(t, model.ToastError, view.Toast.Kind)

	list, _, _ := be.calls()
	assert.Zero(t, list)
}

func TestCloseForm_SuppressedWhileSubmitting(t *testing.T) {
	g := newGate()
	be := &stubBackend{registerGate: g}
	vm := newTestViewModel(t, be, "7")
	vm.OpenForm()

	done := make(chan error, 1)
	go func() {
		_, err := vm.Submit(context.Background(), validDraft())
		done <- err
	}()

	<-g.started
	assert.False(t, vm.CloseForm())
	_, err := vm.Submit(context.Background(), validDraft())
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, Submitting, vm.View().Form.State)

	close(g.release)
	require.NoError(t, <-done)
	assert.True(t, vm.CloseForm())
}

func TestDelete_RequiresConfirmation(t *testing.T) {
	be := &stubBackend{records: makeRecords(2)}
	vm := newTestViewModel(t, be, "7")
	require.NoError(t, vm.Load(context.Background()))

	assert.ErrorIs(t, vm.ConfirmDelete(context.Background(), "d00"), ErrNotConfirmed)

	_, err := vm.RequestDelete("missing")
	assert.ErrorIs(t, err, ErrUnknownRow)

	c, err := vm.RequestDelete("d01")
	require.NoError(t, err)
	assert.Equal(t, Confirmation{ID: "d01", Name: "Devedor 01"}, c)

	assert.ErrorIs(t, vm.ConfirmDelete(context.Background(), "d00"), ErrNotConfirmed)
	assert.True(t, vm.CancelDelete())
	assert.Nil(t, vm.View().Confirm)

	_, _, del := be.calls()
	assert.Zero(t, del)
}

func TestDelete_SuccessReloads(t *testing.T) {
	be := &stubBackend{records: makeRecords(3)}
	vm := newTestViewModel(t, be, "7")
	require.NoError(t, vm.Load(context.Background()))

	_, err := vm.RequestDelete("d01")
	require.NoError(t, err)
	require.NoError(t, vm.ConfirmDelete(context.Background(), "d01"))

	view := vm.View()
	assert.Nil(t, view.Confirm)
	assert.Equal(t, []string{"d00", "d02"}, ids(view.Rows))
	require.NotNil(t, view.Toast)
	assert.Equal(t, msgDeleteOK, view.Toast.Message)

	list, _, _ := be.calls()
	assert.Equal(t, 2, list)
}

func TestDelete_FailureLeavesRows(t *testing.T) {
	be := &stubBackend{records: makeRecords(3), deleteErr: &backend.StatusError{Code: 500}}
	vm := newTestViewModel(t, be, "7")
	require.NoError(t, vm.Load(context.Background()))

	_, err := vm.RequestDelete("d01")
	require.NoError(t, err)
	require.Error(t, vm.ConfirmDelete(context.Background(), "d01"))

	view := vm.View()
	assert.Nil(t, view.Confirm)
	assert.Equal(t, 3, view.Total)
	require.NotNil(t, view.Toast)
	assert.Equal(t, model.Toast{Kind: model.ToastError, Message: msgDeleteFailed}, *view.Toast)

	list, _, _ := be.calls()
	assert.Equal(t, 1, list, "failed delete does not reload")
}

func TestDelete_DuplicateSuppressed(t *testing.T) {
	g := newGate()
	be := &stubBackend{records: makeRecords(3), deleteGate: g}
	vm := newTestViewModel(t, be, "7")
	require.NoError(t, vm.Load(context.Background()))

	_, err := vm.RequestDelete("d02")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- vm.ConfirmDelete(context.Background(), "d02")
	}()
	<-g.started

	assert.ErrorIs(t, vm.ConfirmDelete(context.Background(), "d02"), ErrDuplicateDelete)
	assert.Equal(t, []string{"d02"}, vm.View().Deleting)

	_, err = vm.RequestDelete("d00")
	assert.ErrorIs(t, err, ErrBusy)
	assert.False(t, vm.CancelDelete())

	close(g.release)
	require.NoError(t, <-done)

	_, _, del := be.calls()
	assert.Equal(t, 1, del)
	assert.Empty(t, vm.View().Deleting)
}

func TestToast_AutoClearsAndIsReplaced(t *testing.T) {
	vm := New(&stubBackend{}, company("7"), WithToastDelay(30*time.Millisecond))
	defer vm.Close()

	vm.toasts.show(model.ToastError, "first")
	vm.toasts.show(model.ToastSuccess, "second")

	toast := vm.Toast()
	require.NotNil(t, toast)
	assert.Equal(t, "second", toast.Message)

	assert.Eventually(t, func() bool { return vm.Toast() == nil }, time.Second, 5*time.Millisecond)
}

func TestClose_StopsToastTimer(t *testing.T) {
	vm := New(&stubBackend{}, company("7"), WithToastDelay(10*time.Millisecond))

	vm.toasts.show(model.ToastSuccess, "ok")
	vm.Close()

	time.Sleep(50 * time.Millisecond)
	assert.NotNil(t, vm.Toast())
}

// seqBackend отдаёт свой набор записей на каждый вызов ListDebts и держит первый вызов до сигнала.
type seqBackend struct {
	stubBackend

	first   *gate
	seqMu   sync.Mutex
	seqCall int
	batches [][]backend.DebtRecord
}

func (s *seqBackend) ListDebts(ctx context.Context, companyID string) ([]backend.DebtRecord, error) {
	s.seqMu.Lock()
	n := s.seqCall
	s.seqCall++
	s.seqMu.Unlock()

	if n == 0 {
		s.first.wait()
	}
	return s.batches[n], nil
}

func TestLoad_StaleResultDiscarded(t *testing.T) {
	be := &seqBackend{
		first:   newGate(),
		batches: [][]backend.DebtRecord{makeRecords(5), makeRecords(2)},
	}
	vm := New(be, company("7"), WithToastDelay(time.Hour))
	t.Cleanup(vm.Close)

	done := make(chan error, 1)
	go func() {
		done <- vm.Load(context.Background())
	}()
	<-be.first.started

	require.NoError(t, vm.Load(context.Background()))
	assert.Equal(t, 2, vm.View().Total)

	close(be.first.release)
	require.NoError(t, <-done)

	view := vm.View()
	assert.Equal(t, LoadLoaded, view.State)
	assert.Equal(t, 2, view.Total)
	assert.Equal(t, []string{"d00", "d01"}, ids(view.Rows))
}

func TestReset_ClearsScreenState(t *testing.T) {
	be := &stubBackend{records: makeRecords(12)}
	vm := newTestViewModel(t, be, "7")
	require.NoError(t, vm.Load(context.Background()))

	vm.SetSearch("Devedor")
	require.NoError(t, vm.SetSort(model.SortAmount))
	vm.GoTo(2)
	vm.OpenForm()
	_, err := vm.RequestDelete("d03")
	require.NoError(t, err)
	vm.toasts.show(model.ToastSuccess, "ok")

	vm.Reset()

	view := vm.View()
	assert.Equal(t, LoadIdle, view.State)
	assert.Zero(t, view.Total)
	assert.Empty(t, view.Search)
	assert.Equal(t, model.SortNone, view.SortKey)
	assert.Equal(t, model.SortAsc, view.SortDir)
	assert.Equal(t, 1, view.Page)
	assert.False(t, view.Form.Open)
	assert.Equal(t, model.DebtDraft{}, view.Form.Draft)
	assert.Nil(t, view.Confirm)
	assert.Nil(t, view.Toast)
}

func TestReset_DiscardsLoadInFlight(t *testing.T) {
	be := &seqBackend{
		first:   newGate(),
		batches: [][]backend.DebtRecord{makeRecords(5)},
	}
	vm := New(be, company("7"), WithToastDelay(time.Hour))
	t.Cleanup(vm.Close)

	done := make(chan error, 1)
	go func() {
		done <- vm.Load(context.Background())
	}()
	<-be.first.started

	vm.Reset()
	close(be.first.release)
	require.NoError(t, <-done)

	view := vm.View()
	assert.Equal(t, LoadIdle, view.State)
	assert.Zero(t, view.Total)
}
