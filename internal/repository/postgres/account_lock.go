package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dtroode/signalements-server/internal/model"
)

var _ model.AccountLockStore = (*AccountLockRepository)(nil)

type AccountLockRepository struct {
	db *Connection
}

func NewAccountLockRepository(db *Connection) *AccountLockRepository {
	return &AccountLockRepository{
		db: db,
	}
}

func (r *AccountLockRepository) Get(ctx context.Context, identity string) (model.AccountLock, error) {
	query := `SELECT identity, failed_attempts, locked, locked_until FROM account_locks WHERE identity = $1`

	var lock model.AccountLock
	err := r.db.QueryRow(ctx, query, identity).Scan(
		&lock.Identity, &lock.FailedAttempts, &lock.Locked, &lock.LockedUntil,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.AccountLock{}, model.ErrNotFound
		}
		return model.AccountLock{}, fmt.Errorf("failed to get account lock: %w", err)
	}

	return lock, nil
}

// RegisterFailure bumps the counter and sets the lock in one statement so
// that concurrent failures for the same identity never lose an increment.
func (r *AccountLockRepository) RegisterFailure(
	ctx context.Context,
	identity string,
	maxAttempts int,
	lockUntil time.Time,
) (model.AccountLock, error) {
	query := `INSERT INTO account_locks (identity, failed_attempts, locked, locked_until)
			  VALUES ($1, 1, 1 >= $2, CASE WHEN 1 >= $2 THEN $3::timestamptz END)
			  ON CONFLICT (identity) DO UPDATE SET
			      failed_attempts = account_locks.failed_attempts + 1,
			      locked = CASE WHEN account_locks.failed_attempts + 1 >= $2 THEN TRUE ELSE account_locks.locked END,
			      locked_until = CASE WHEN account_locks.failed_attempts + 1 >= $2 THEN $3::timestamptz ELSE account_locks.locked_until END
			  RETURNING identity, failed_attempts, locked, locked_until`

	var lock model.AccountLock
	err := r.db.QueryRow(ctx, query, identity, maxAttempts, lockUntil).Scan(
		&lock.Identity, &lock.FailedAttempts, &lock.Locked, &lock.LockedUntil,
	)
	if err != nil {
		return model.AccountLock{}, fmt.Errorf("failed to register login failure: %w", err)
	}

	return lock, nil
}

func (r *AccountLockRepository) Delete(ctx context.Context, identity string) error {
	query := `DELETE FROM account_locks WHERE identity = $1`

	if _, err := r.db.Exec(ctx, query, identity); err != nil {
		return fmt.Errorf("failed to delete account lock: %w", err)
	}
	return nil
}

// ListLocked returns identities whose lock window is still open at now.
func (r *AccountLockRepository) ListLocked(ctx context.Context, now time.Time) ([]model.AccountLock, error) {
	query := `SELECT identity, failed_attempts, locked, locked_until
			  FROM account_locks
			  WHERE locked AND locked_until > $1
			  ORDER BY locked_until`

	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list locked accounts: %w", err)
	}
	defer rows.Close()

	var locks []model.AccountLock
	for rows.Next() {
		var lock model.AccountLock
		if err := rows.Scan(&lock.Identity, &lock.FailedAttempts, &lock.Locked, &lock.LockedUntil); err != nil {
			return nil, fmt.Errorf("failed to scan account lock: %w", err)
		}
		locks = append(locks, lock)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate account locks: %w", err)
	}

	return locks, nil
}
