package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/gigwork-backend/internal/domain/repository"
	"github.com/ignatzorin/gigwork-backend/internal/pkg/apperror"
)

const uniqueViolation = "23505"

// queryer: общий интерфейс *sqlx.DB и *sqlx.Tx для чтения.
type queryer interface {
	sqlx.QueryerContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

type txKey struct{}

// Transactor открывает транзакцию, к которой присоединяются репозитории.
type Transactor struct {
	db *sqlx.DB
}

func NewTransactor(db *sqlx.DB) *Transactor {
	return &Transactor{db: db}
}

var _ repository.Transactor = (*Transactor)(nil)

// WithinTransaction выполняет fn в одной транзакции. Все вызовы WorkerRepository и
// TaskRepository с контекстом fn идут через неё и фиксируются вместе.
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTransaction(ctx, t.db, func(tx *sqlx.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func txFromContext(ctx context.Context) (*sqlx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sqlx.Tx)
	return tx, ok
}

// conn возвращает транзакцию из контекста, если она есть, иначе пул соединений.
func conn(ctx context.Context, db *sqlx.DB) queryer {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return db
}

// withTransaction выполняет fn внутри транзакции. Ошибка или паника в fn откатывают её.
// Если в ctx уже есть транзакция, fn выполняется в ней, а фиксирует её владелец.
func withTransaction(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	if tx, ok := txFromContext(ctx); ok {
		return fn(tx)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось начать транзакцию")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return mapped
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось зафиксировать транзакцию")
	}
	return nil
}

// constraintErrors сопоставляет уникальные индексы с доменными ошибками.
var constraintErrors = map[string]*apperror.AppError{
	"workers_username_key":        apperror.ErrUsernameTaken,
	"work_sessions_one_open_idx":  apperror.ErrSessionAlreadyOpen,
	"session_breaks_one_open_idx": apperror.ErrBreakAlreadyOpen,
}

// mapConstraintError превращает нарушение уникальности в CONFLICT; для прочих ошибок возвращает nil.
func mapConstraintError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return nil
	}
	if appErr, ok := constraintErrors[pqErr.Constraint]; ok {
		return appErr
	}
	return apperror.Wrap(err, apperror.ErrCodeConflict, "запись уже существует")
}

// dbError оборачивает ошибку базы, сохраняя конфликты уникальности.
func dbError(err error, message string) error {
	if mapped := mapConstraintError(err); mapped != nil {
		return mapped
	}
	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, message)
}
