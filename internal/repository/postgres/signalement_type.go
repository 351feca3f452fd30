package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dtroode/signalements-server/internal/model"
)

var _ model.SignalementTypeStore = (*SignalementTypeRepository)(nil)

type SignalementTypeRepository struct {
	db *Connection
}

func NewSignalementTypeRepository(db *Connection) *SignalementTypeRepository {
	return &SignalementTypeRepository{
		db: db,
	}
}

func (r *SignalementTypeRepository) GetByID(ctx context.Context, id int64) (model.SignalementType, error) {
	query := `SELECT id, libelle, icon_color, icon_symbol FROM signalement_types WHERE id = $1`

	var t model.SignalementType
	err := r.db.QueryRow(ctx, query, id).Scan(&t.ID, &t.Libelle, &t.IconColor, &t.IconSymbol)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.SignalementType{}, model.ErrNotFound
		}
		return model.SignalementType{}, fmt.Errorf("failed to get signalement type: %w", err)
	}

	return t, nil
}

// UpsertByID writes the type under the id chosen by the document store,
// bypassing the sequence.
func (r *SignalementTypeRepository) UpsertByID(ctx context.Context, t model.SignalementType) error {
	query := `INSERT INTO signalement_types (id, libelle, icon_color, icon_symbol)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (id) DO UPDATE SET
			      libelle = EXCLUDED.libelle,
			      icon_color = EXCLUDED.icon_color,
			      icon_symbol = EXCLUDED.icon_symbol`

	if _, err := r.db.Exec(ctx, query, t.ID, t.Libelle, t.IconColor, t.IconSymbol); err != nil {
		return fmt.Errorf("failed to upsert signalement type: %w", err)
	}
	return nil
}

// ResyncSequence moves the id sequence past the highest stored id so that
// locally created types never collide with mirrored ones.
func (r *SignalementTypeRepository) ResyncSequence(ctx context.Context) error {
	query := `SELECT setval(
				  pg_get_serial_sequence('signalement_types', 'id'),
				  COALESCE((SELECT MAX(id) FROM signalement_types), 0) + 1,
				  false)`

	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to resync signalement type sequence: %w", err)
	}
	return nil
}
