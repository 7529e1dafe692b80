// Package session хранит сессию оператора и определяет, действует ли она.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/debtdesk/internal/backend"
	"github.com/mmeshcher/debtdesk/internal/model"
)

var (
	// ErrInvalidCredentials возвращается, если API отклонил учётные данные.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingToken возвращается, если в ответе API нет токена ни под одним из известных имён.
	ErrMissingToken = errors.New("auth response has no token")
	// ErrAuthFailed оборачивает прочие ошибки входа и регистрации.
	ErrAuthFailed = errors.New("authentication failed")
)

// Repository описывает долговременное хранилище слотов сессии.
type Repository interface {
	Load(ctx context.Context) (model.Session, error)
	Save(ctx context.Context, s model.Session) error
	Clear(ctx context.Context) error
}

// AuthClient описывает вызовы API, создающие сессию.
type AuthClient interface {
	Login(ctx context.Context, email, password string) (map[string]any, error)
	Register(ctx context.Context, name, email, password string) (map[string]any, error)
}

// Store владеет сессией оператора. Сессия читается из хранилища при открытии,
// каждое изменение сразу записывается обратно.
type Store struct {
	repo   Repository
	client AuthClient
	logger *zap.Logger
	now    func() time.Time

	mu      sync.RWMutex
	current model.Session
}

// Option настраивает Store.
type Option func(*Store)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger задаёт логгер.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Open загружает сохранённую сессию и возвращает готовый Store.
func Open(ctx context.Context, repo Repository, client AuthClient, opts ...Option) (*Store, error) {
	s := &Store{
		repo:   repo,
		client: client,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	current, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	s.current = current

	return s, nil
}

// Login выполняет вход и сохраняет полученную сессию.
func (s *Store) Login(ctx context.Context, email, password string) error {
	resp, err := s.client.Login(ctx, email, password)
	if err != nil {
		return authError(err)
	}
	return s.establish(ctx, resp)
}

// Register регистрирует оператора и сохраняет сессию так же, как Login.
func (s *Store) Register(ctx context.Context, name, email, password string) error {
	resp, err := s.client.Register(ctx, name, email, password)
	if err != nil {
		return authError(err)
	}
	return s.establish(ctx, resp)
}

func authError(err error) error {
	if backend.IsUnauthorized(err) {
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	return fmt.Errorf("%w: %w", ErrAuthFailed, err)
}

func (s *Store) establish(ctx context.Context, resp map[string]any) error {
	next, err := FromAuthResponse(resp)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Save(ctx, next); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.current = next

	return nil
}

// Logout очищает сессию. Ошибка хранилища только логируется: в памяти сессия очищается всегда.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = model.Session{}
	if err := s.repo.Clear(ctx); err != nil {
		s.logger.Error("clear session error", zap.Error(err))
	}
}

// IsAuthenticated сообщает, есть ли действующий токен.
// Токен без читаемых claims или без exp считается бессрочным.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	token := s.current.Token
	s.mu.RUnlock()

	return TokenAlive(token, s.now())
}

// Token возвращает сохранённый токен.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

// CompanyID возвращает идентификатор компании оператора.
func (s *Store) CompanyID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.CompanyID
}

// UserName возвращает отображаемое имя оператора.
func (s *Store) UserName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.UserName
}

// Snapshot возвращает копию текущей сессии.
func (s *Store) Snapshot() model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}
