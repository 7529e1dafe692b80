package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mmeshcher/debtdesk/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// pgxPool описывает методы пула, которые использует репозиторий.
type pgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

// PostgresRepository хранит слоты сессии в таблице session_slots.
type PostgresRepository struct {
	pool pgxPool
}

// NewPostgresRepository подключается к БД и применяет миграции схемы.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping database: %w", ErrStorageUnavailable, err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresRepository{pool: pool}, nil
}

func newPostgresRepository(pool pgxPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// Load читает слоты сессии.
func (r *PostgresRepository) Load(ctx context.Context) (model.Session, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, value FROM session_slots`)
	if err != nil {
		return model.Session{}, classify("select session slots", err)
	}
	defer rows.Close()

	slots := make(map[string]string, len(slotKeys))
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return model.Session{}, fmt.Errorf("scan session slot: %w", err)
		}
		slots[key] = value
	}

	if err := rows.Err(); err != nil {
		return model.Session{}, classify("rows error", err)
	}

	return sessionFromSlots(slots), nil
}

// Save записывает три слота в одной транзакции. Пустые значения удаляют слот.
func (r *PostgresRepository) Save(ctx context.Context, s model.Session) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return classify("begin tx", err)
	}
	defer tx.Rollback(ctx)

	slots := sessionToSlots(s)
	for _, key := range slotKeys {
		value := slots[key]
		if value == "" {
			if _, err := tx.Exec(ctx, `DELETE FROM session_slots WHERE key = $1`, key); err != nil {
				return classify("delete session slot", err)
			}
			continue
		}

		_, err := tx.Exec(ctx,
			`INSERT INTO session_slots (key, value, updated_at) VALUES ($1, $2, now())
			 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
			key, value,
		)
		if err != nil {
			return classify("upsert session slot", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return classify("commit tx", err)
	}

	return nil
}

// Clear удаляет все слоты сессии.
func (r *PostgresRepository) Clear(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM session_slots`); err != nil {
		return classify("clear session slots", err)
	}
	return nil
}

// classify помечает ошибки соединения как ErrStorageUnavailable.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgerrcode.IsConnectionException(pgErr.Code) {
		return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
	}
	if isConnectionError(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isConnectionError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection reset by peer")
}
