package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/Clark-Hu/gamestore-catalogue/internal/repository"
)

// TxBeginner starts database transactions. *pgxpool.Pool and *store.Store
// both satisfy it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// UnitOfWorkFactory opens one pgx transaction per unit of work.
type UnitOfWorkFactory struct {
	db     TxBeginner
	logger *logrus.Logger
}

var _ repository.UnitOfWorkFactory = (*UnitOfWorkFactory)(nil)

// NewUnitOfWorkFactory constructs a factory over db.
func NewUnitOfWorkFactory(db TxBeginner, logger *logrus.Logger) *UnitOfWorkFactory {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &UnitOfWorkFactory{db: db, logger: logger}
}

// Begin starts a transaction. The caller must Close the returned unit of work.
func (f *UnitOfWorkFactory) Begin(ctx context.Context) (repository.UnitOfWork, error) {
	tx, err := f.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &unitOfWork{
		tx:     tx,
		games:  &VideoGamesRepository{q: tx},
		logger: f.logger,
	}, nil
}

type unitOfWork struct {
	tx     pgx.Tx
	games  *VideoGamesRepository
	logger *logrus.Logger
	done   bool
}

func (u *unitOfWork) VideoGames() repository.VideoGameRepository {
	return u.games
}

// Commit makes every pending change durable.
func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.done {
		return repository.ErrUnitOfWorkClosed
	}
	u.done = true
	if err := u.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Close rolls back anything not committed. Rollback runs detached from ctx
// cancellation so the connection always returns to the pool.
func (u *unitOfWork) Close(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	if err := u.tx.Rollback(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		u.logger.WithError(err).Warn("postgres: rollback failed")
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}
