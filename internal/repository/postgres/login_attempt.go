package postgres

import (
	"context"
	"fmt"

	"github.com/dtroode/signalements-server/internal/model"
)

var _ model.LoginAttemptStore = (*LoginAttemptRepository)(nil)

type LoginAttemptRepository struct {
	db *Connection
}

func NewLoginAttemptRepository(db *Connection) *LoginAttemptRepository {
	return &LoginAttemptRepository{
		db: db,
	}
}

func (r *LoginAttemptRepository) Append(ctx context.Context, attempt model.LoginAttempt) error {
	query := `INSERT INTO login_attempts (identity, attempted_at, success) VALUES ($1, $2, $3)`

	if _, err := r.db.Exec(ctx, query, attempt.Identity, attempt.AttemptedAt, attempt.Success); err != nil {
		return fmt.Errorf("failed to append login attempt: %w", err)
	}
	return nil
}
